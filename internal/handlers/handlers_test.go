package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attributely-core/internal/export"
	"attributely-core/internal/leads"
	"attributely-core/internal/models"
	"attributely-core/internal/orchestrator"
	"attributely-core/internal/storage"
)

// stubFetcher serves canned platform payloads; platforms without an entry
// are unreachable.
type stubFetcher struct {
	statuses  map[models.Platform]models.RawStatus
	readiness models.RawStatus
}

func (f *stubFetcher) FetchStatus(_ context.Context, platform models.Platform) (models.RawStatus, error) {
	status, ok := f.statuses[platform]
	if !ok {
		return nil, errors.New("unavailable")
	}
	return status, nil
}

func (f *stubFetcher) FetchReadinessReport(context.Context) (models.RawStatus, error) {
	if f.readiness == nil {
		return nil, errors.New("unavailable")
	}
	return f.readiness, nil
}

func (f *stubFetcher) FetchAttributionSummary(context.Context) (*models.AttributionSummary, error) {
	return nil, errors.New("unavailable")
}

func newTestRouter(t *testing.T, fetcher *stubFetcher) (*gin.Engine, *storage.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	engine := leads.NewEngine("https://attributelypro.com/t")
	store := storage.NewMemoryStore(100)
	exporter := export.NewExporter("", "", nil, logger)
	orch := orchestrator.New(fetcher, engine, store, nil, exporter, time.Second, logger)
	handler := New(orch, store, logger)

	router := gin.New()
	router.GET("/healthz", handler.HealthCheck)
	router.GET("/readyz", handler.ReadinessCheck)
	router.POST("/api/orchestrator", handler.ExecuteAction)
	router.GET("/api/orchestrator", handler.Analyze)
	router.GET("/api/status", handler.GetStatus)
	router.POST("/api/leads/qualify", handler.QualifyLead)
	router.GET("/api/leads", handler.GetLeads)
	return router, store
}

func connectedFetcher() *stubFetcher {
	statuses := make(map[models.Platform]models.RawStatus)
	for _, platform := range models.TrackedPlatforms {
		statuses[platform] = models.RawStatus{"status": "connected"}
	}
	return &stubFetcher{
		statuses:  statuses,
		readiness: models.RawStatus{"overall_completion": 90.0},
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.Envelope {
	t.Helper()
	var envelope models.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, connectedFetcher())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "attributely-core", body["service"])
}

func TestReadinessBeforeAndAfterAnalysis(t *testing.T) {
	router, store := newTestRouter(t, connectedFetcher())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	store.StoreResult(models.AggregateResult{})

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExecuteActionAnalyze(t *testing.T) {
	router, store := newTestRouter(t, connectedFetcher())

	body := bytes.NewBufferString(`{"action": "analyze"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orchestrator", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.StatusSuccess, envelope.Status)
	assert.Equal(t, "analyze", envelope.Action)
	assert.True(t, store.HasData())
}

func TestExecuteActionInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t, connectedFetcher())

	req := httptest.NewRequest(http.MethodPost, "/api/orchestrator", bytes.NewBufferString(`{"action":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.StatusError, envelope.Status)
}

func TestExecuteActionUnknownAction(t *testing.T) {
	router, _ := newTestRouter(t, connectedFetcher())

	body := bytes.NewBufferString(`{"action": "launch_rockets"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/orchestrator", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.StatusError, envelope.Status)
	assert.Contains(t, envelope.Message, models.ErrUnknownAction)
}

func TestAnalyzeBackendUnavailable(t *testing.T) {
	router, _ := newTestRouter(t, &stubFetcher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orchestrator", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.StatusError, envelope.Status)
	assert.Contains(t, envelope.Message, models.ErrBackendUnavailable)
}

func TestGetStatus(t *testing.T) {
	router, _ := newTestRouter(t, connectedFetcher())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.StatusSuccess, envelope.Status)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var platforms []models.PlatformStatus
	require.NoError(t, json.Unmarshal(raw, &platforms))
	assert.Len(t, platforms, len(models.TrackedPlatforms))
}

func TestQualifyLeadEndToEnd(t *testing.T) {
	router, store := newTestRouter(t, connectedFetcher())

	body := bytes.NewBufferString(`{"source": "linkedin", "campaign": "enterprise-q3", "message": "urgent budget decision today"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/leads/qualify", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.StatusSuccess, envelope.Status)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var assessment models.LeadAssessment
	require.NoError(t, json.Unmarshal(raw, &assessment))
	assert.Equal(t, models.ActionHumanHandoff, assessment.Action)
	assert.NotEmpty(t, assessment.TrackingToken)

	require.Len(t, store.RecentLeads(), 1)
}

func TestGetLeads(t *testing.T) {
	router, store := newTestRouter(t, connectedFetcher())
	store.StoreLead(models.LeadAssessment{TrackingToken: "tok-a"})
	store.StoreLead(models.LeadAssessment{TrackingToken: "tok-b"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leads", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)

	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var recent []models.LeadAssessment
	require.NoError(t, json.Unmarshal(raw, &recent))
	require.Len(t, recent, 2)
	assert.Equal(t, "tok-b", recent[0].TrackingToken)
}
