package export

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"attributely-core/internal/gateway"
	"attributely-core/internal/models"
)

// Exporter forwards qualified leads to the attribution sink so later clicks
// on the tracking link can be correlated. Delivery is best effort; the
// caller decides whether a failure matters.
type Exporter struct {
	secret  string
	sinkURL string
	client  *gateway.Client
	logger  *logrus.Logger
}

func NewExporter(sinkURL, secret string, client *gateway.Client, logger *logrus.Logger) *Exporter {
	return &Exporter{
		secret:  secret,
		sinkURL: sinkURL,
		client:  client,
		logger:  logger,
	}
}

// Enabled reports whether a sink is configured.
func (e *Exporter) Enabled() bool {
	return e.sinkURL != ""
}

// ForwardLead signs and delivers one assessment to the sink.
func (e *Exporter) ForwardLead(ctx context.Context, assessment models.LeadAssessment) error {
	if !e.Enabled() {
		return nil
	}

	signature, err := e.createSignature(assessment)
	if err != nil {
		e.logger.WithError(err).Error("Failed to create signature")
		return fmt.Errorf("failed to create signature: %w", err)
	}

	if err := e.client.PostJSON(ctx, e.sinkURL, assessment, signature); err != nil {
		e.logger.WithError(err).WithField("tracking_token", assessment.TrackingToken).Error("Failed to forward lead")
		return fmt.Errorf("failed to forward lead: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"tracking_token": assessment.TrackingToken,
		"score":          assessment.Score,
		"action":         assessment.Action,
	}).Info("Forwarded qualified lead")
	return nil
}

func (e *Exporter) createSignature(data interface{}) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	h := hmac.New(sha256.New, []byte(e.secret))
	h.Write(jsonData)
	signature := hex.EncodeToString(h.Sum(nil))

	return "sha256=" + signature, nil
}
