package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"attributely-core/internal/analyzer"
	"attributely-core/internal/export"
	"attributely-core/internal/leads"
	"attributely-core/internal/models"
	"attributely-core/internal/normalizer"
	"attributely-core/internal/recorder"
	"attributely-core/internal/scoring"
	"attributely-core/internal/storage"
)

// Actions accepted by Execute. An empty action falls back to a full analysis;
// any other name is rejected with an error envelope.
const (
	ActionAnalyze            = "analyze"
	ActionGetStatus          = "get_status"
	ActionQualifyLead        = "qualify_lead"
	ActionGetLeads           = "get_leads"
	ActionOptimizeBudgets    = "optimize_budgets"
	ActionPredictPerformance = "predict_performance"
)

// PlatformFetcher is the upstream gateway contract the orchestrator consumes.
type PlatformFetcher interface {
	FetchStatus(ctx context.Context, platform models.Platform) (models.RawStatus, error)
	FetchReadinessReport(ctx context.Context) (models.RawStatus, error)
	FetchAttributionSummary(ctx context.Context) (*models.AttributionSummary, error)
}

// Orchestrator is the single entry point dispatching named actions to the
// aggregation pipeline and the lead scoring engine. It holds no mutable
// state of its own; every request is an independent pass.
type Orchestrator struct {
	fetcher      PlatformFetcher
	normalizer   *normalizer.Normalizer
	analyzer     *analyzer.Analyzer
	engine       *leads.Engine
	store        *storage.MemoryStore
	recorder     *recorder.Recorder
	exporter     *export.Exporter
	logger       *logrus.Logger
	fetchTimeout time.Duration
}

func New(fetcher PlatformFetcher, engine *leads.Engine, store *storage.MemoryStore,
	rec *recorder.Recorder, exp *export.Exporter, fetchTimeout time.Duration,
	logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher:      fetcher,
		normalizer:   normalizer.New(),
		analyzer:     analyzer.New(),
		engine:       engine,
		store:        store,
		recorder:     rec,
		exporter:     exp,
		logger:       logger,
		fetchTimeout: fetchTimeout,
	}
}

// Execute dispatches one named action and always returns a well-formed
// envelope; raw transport errors never escape to the caller.
func (o *Orchestrator) Execute(ctx context.Context, action string, payload json.RawMessage) models.Envelope {
	name := strings.ToLower(strings.TrimSpace(action))
	if name == "" {
		name = ActionAnalyze
	}

	o.logger.WithField("action", name).Info("Executing orchestrator action")

	switch name {
	case ActionAnalyze:
		return o.analyze(ctx, name)
	case ActionGetStatus:
		return o.getStatus(ctx, name)
	case ActionQualifyLead:
		return o.qualifyLead(ctx, name, payload)
	case ActionGetLeads:
		return models.Envelope{
			Status: models.StatusSuccess,
			Action: name,
			Data:   o.store.RecentLeads(),
		}
	case ActionOptimizeBudgets:
		return o.optimizeBudgets(ctx, name)
	case ActionPredictPerformance:
		return o.predictPerformance(ctx, name)
	default:
		return models.Envelope{
			Status:  models.StatusError,
			Action:  name,
			Message: fmt.Sprintf("%s: unknown action %q", models.ErrUnknownAction, action),
		}
	}
}

// fetchAll issues every upstream call concurrently and joins them under the
// per-request timeout. Individual failures are swallowed; the corresponding
// platform simply stays absent from the raw map and normalizes to unknown.
func (o *Orchestrator) fetchAll(ctx context.Context) (map[models.Platform]models.RawStatus, models.RawStatus, *models.AttributionSummary) {
	ctx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	raw := make([]models.RawStatus, len(models.TrackedPlatforms))
	var readiness models.RawStatus
	var summary *models.AttributionSummary

	var g errgroup.Group
	for i, platform := range models.TrackedPlatforms {
		i, platform := i, platform
		g.Go(func() error {
			status, err := o.fetcher.FetchStatus(ctx, platform)
			if err != nil {
				o.logger.WithError(err).WithField("platform", platform).Warn("Platform status fetch failed")
				return nil
			}
			raw[i] = status
			return nil
		})
	}
	g.Go(func() error {
		report, err := o.fetcher.FetchReadinessReport(ctx)
		if err != nil {
			o.logger.WithError(err).Warn("Readiness report fetch failed")
			return nil
		}
		readiness = report
		return nil
	})
	g.Go(func() error {
		s, err := o.fetcher.FetchAttributionSummary(ctx)
		if err != nil {
			o.logger.WithError(err).Warn("Attribution summary fetch failed")
			return nil
		}
		summary = s
		return nil
	})
	g.Wait()

	statuses := make(map[models.Platform]models.RawStatus, len(models.TrackedPlatforms))
	for i, platform := range models.TrackedPlatforms {
		if raw[i] != nil {
			statuses[platform] = raw[i]
		}
	}
	return statuses, readiness, summary
}

func (o *Orchestrator) analyze(ctx context.Context, action string) models.Envelope {
	statuses, readiness, summary := o.fetchAll(ctx)
	if len(statuses) == 0 {
		return o.backendUnavailable(action)
	}

	platforms := o.normalizer.NormalizeAll(statuses)
	result := o.analyzer.Analyze(platforms, readiness, summary)
	o.store.StoreResult(result)

	o.logger.WithFields(logrus.Fields{
		"platforms_reached": len(statuses),
		"confidence":        result.ConfidenceScore,
		"overall":           result.OverallCompletionPercent,
	}).Info("Aggregate analysis completed")

	return models.Envelope{
		Status: models.StatusSuccess,
		Action: action,
		Data:   result,
	}
}

func (o *Orchestrator) getStatus(ctx context.Context, action string) models.Envelope {
	statuses, _, _ := o.fetchAll(ctx)
	if len(statuses) == 0 {
		return o.backendUnavailable(action)
	}

	platforms := o.normalizer.NormalizeAll(statuses)
	for i := range platforms {
		platforms[i].HealthScore = scoring.HealthScore(platforms[i])
	}

	return models.Envelope{
		Status: models.StatusSuccess,
		Action: action,
		Data:   platforms,
	}
}

func (o *Orchestrator) qualifyLead(ctx context.Context, action string, payload json.RawMessage) models.Envelope {
	var lead models.LeadRecord
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &lead); err != nil {
			// Unknown payload shapes still score with documented defaults.
			o.logger.WithError(err).Warn("Malformed lead payload, scoring with defaults")
		}
	}

	assessment := o.engine.Score(lead)
	o.store.StoreLead(assessment)

	// Downstream delivery is best effort; the assessment is already final.
	if err := o.recorder.RecordLead(ctx, assessment); err != nil {
		o.logger.WithError(err).Warn("Lead recording failed, continuing")
	}
	if err := o.exporter.ForwardLead(ctx, assessment); err != nil {
		o.logger.WithError(err).Warn("Lead sink forwarding failed, continuing")
	}

	return models.Envelope{
		Status: models.StatusSuccess,
		Action: action,
		Data:   assessment,
	}
}

func (o *Orchestrator) optimizeBudgets(ctx context.Context, action string) models.Envelope {
	envelope := o.analyze(ctx, action)
	if envelope.Status != models.StatusSuccess {
		return envelope
	}

	result := envelope.Data.(models.AggregateResult)
	return models.Envelope{
		Status: models.StatusSuccess,
		Action: action,
		Data: map[string]interface{}{
			"optimizations":    result.Optimizations,
			"confidence_score": result.ConfidenceScore,
		},
	}
}

func (o *Orchestrator) predictPerformance(ctx context.Context, action string) models.Envelope {
	envelope := o.analyze(ctx, action)
	if envelope.Status != models.StatusSuccess {
		return envelope
	}

	result := envelope.Data.(models.AggregateResult)
	return models.Envelope{
		Status: models.StatusSuccess,
		Action: action,
		Data: map[string]interface{}{
			"predictions": result.Predictions,
		},
	}
}

func (o *Orchestrator) backendUnavailable(action string) models.Envelope {
	o.logger.Error("No upstream platform could be reached")
	return models.Envelope{
		Status:  models.StatusError,
		Action:  action,
		Message: fmt.Sprintf("%s: no upstream platform could be reached", models.ErrBackendUnavailable),
	}
}
