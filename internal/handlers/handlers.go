package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attributely-core/internal/models"
	"attributely-core/internal/orchestrator"
	"attributely-core/internal/storage"
)

type Handler struct {
	orchestrator *orchestrator.Orchestrator
	store        *storage.MemoryStore
	logger       *logrus.Logger
}

func New(orch *orchestrator.Orchestrator, store *storage.MemoryStore, logger *logrus.Logger) *Handler {
	return &Handler{
		orchestrator: orch,
		store:        store,
		logger:       logger,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "attributely-core",
	})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.store.HasData() {
		c.JSON(http.StatusOK, gin.H{
			"status":        "ready",
			"has_data":      true,
			"last_analysis": h.store.LastAnalysisTime().Format(time.RFC3339),
		})
	} else {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"has_data": false,
			"message":  "No analysis run yet",
		})
	}
}

// orchestratorRequest is the generic action envelope accepted over HTTP.
type orchestratorRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

func (h *Handler) ExecuteAction(c *gin.Context) {
	var req orchestratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Envelope{
			Status:  models.StatusError,
			Message: "Invalid request body",
		})
		return
	}

	envelope := h.orchestrator.Execute(c.Request.Context(), req.Action, req.Payload)
	c.JSON(statusCode(envelope), envelope)
}

// Analyze runs the full aggregation pass; GET equivalent of the analyze
// action so dashboards can poll without a body.
func (h *Handler) Analyze(c *gin.Context) {
	envelope := h.orchestrator.Execute(c.Request.Context(), orchestrator.ActionAnalyze, nil)
	c.JSON(statusCode(envelope), envelope)
}

func (h *Handler) GetStatus(c *gin.Context) {
	envelope := h.orchestrator.Execute(c.Request.Context(), orchestrator.ActionGetStatus, nil)
	c.JSON(statusCode(envelope), envelope)
}

func (h *Handler) QualifyLead(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		payload = nil
	}

	envelope := h.orchestrator.Execute(c.Request.Context(), orchestrator.ActionQualifyLead, payload)
	c.JSON(statusCode(envelope), envelope)
}

func (h *Handler) GetLeads(c *gin.Context) {
	envelope := h.orchestrator.Execute(c.Request.Context(), orchestrator.ActionGetLeads, nil)
	c.JSON(statusCode(envelope), envelope)
}

func statusCode(envelope models.Envelope) int {
	if envelope.Status == models.StatusSuccess {
		return http.StatusOK
	}
	if strings.Contains(envelope.Message, models.ErrBackendUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}
