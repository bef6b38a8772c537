package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attributely-core/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestRecorder(t *testing.T) (*Recorder, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	rec, err := New("redis://"+mr.Addr(), testLogger())
	require.NoError(t, err)
	require.NotNil(t, rec)
	t.Cleanup(func() { rec.Close() })
	return rec, mr
}

func TestNewWithoutURLDisablesRecording(t *testing.T) {
	rec, err := New("", testLogger())

	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New("not-a-redis-url", testLogger())

	assert.Error(t, err)
}

func TestRecordLeadPushesAssessment(t *testing.T) {
	rec, mr := newTestRecorder(t)

	assessment := models.LeadAssessment{
		Score:         86,
		Action:        models.ActionHumanHandoff,
		Priority:      models.PriorityHigh,
		TrackingToken: "tok1234567890",
		Source:        "linkedin",
	}
	err := rec.RecordLead(context.Background(), assessment)

	require.NoError(t, err)
	entries, err := mr.List(leadListKey)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var stored models.LeadAssessment
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &stored))
	assert.Equal(t, 86, stored.Score)
	assert.Equal(t, models.ActionHumanHandoff, stored.Action)
	assert.Equal(t, "tok1234567890", stored.TrackingToken)
}

func TestRecordLeadKeepsMostRecentFirst(t *testing.T) {
	rec, mr := newTestRecorder(t)

	for i := 0; i < 3; i++ {
		err := rec.RecordLead(context.Background(), models.LeadAssessment{
			TrackingToken: fmt.Sprintf("tok-%d", i),
		})
		require.NoError(t, err)
	}

	entries, err := mr.List(leadListKey)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	var newest models.LeadAssessment
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &newest))
	assert.Equal(t, "tok-2", newest.TrackingToken)
}

func TestRecordLeadTrimsToCap(t *testing.T) {
	rec, mr := newTestRecorder(t)

	for i := 0; i < maxRetained+25; i++ {
		err := rec.RecordLead(context.Background(), models.LeadAssessment{
			TrackingToken: fmt.Sprintf("tok-%d", i),
		})
		require.NoError(t, err)
	}

	entries, err := mr.List(leadListKey)
	require.NoError(t, err)
	assert.Len(t, entries, maxRetained)
}

func TestNilRecorderIsNoOp(t *testing.T) {
	var rec *Recorder

	assert.NoError(t, rec.RecordLead(context.Background(), models.LeadAssessment{}))
	assert.NoError(t, rec.Close())
}

func TestRecordLeadSurfacesRedisFailure(t *testing.T) {
	rec, mr := newTestRecorder(t)
	mr.Close()

	err := rec.RecordLead(context.Background(), models.LeadAssessment{})

	assert.Error(t, err)
}
