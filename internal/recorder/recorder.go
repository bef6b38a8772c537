package recorder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"attributely-core/internal/models"
)

const (
	leadListKey = "attributely:qualified_leads"
	maxRetained = 1000
)

// Recorder hands qualified leads to the external analytics collaborator via
// a capped Redis list. A nil Recorder is a no-op so callers don't need to
// care whether Redis is configured.
type Recorder struct {
	client *redis.Client
	logger *logrus.Logger
}

func New(redisURL string, logger *logrus.Logger) (*Recorder, error) {
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &Recorder{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

// RecordLead pushes one assessment onto the hand-off list, trimming it to
// the retention cap.
func (r *Recorder) RecordLead(ctx context.Context, assessment models.LeadAssessment) error {
	if r == nil || r.client == nil {
		return nil
	}

	payload, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("failed to marshal lead assessment: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, leadListKey, payload)
	pipe.LTrim(ctx, leadListKey, 0, maxRetained-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record lead: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"tracking_token": assessment.TrackingToken,
		"score":          assessment.Score,
	}).Debug("Recorded qualified lead")
	return nil
}

func (r *Recorder) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
