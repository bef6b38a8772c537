package analyzer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"attributely-core/internal/models"
	"attributely-core/internal/scoring"
)

// Analyzer combines normalized platform statuses into the consolidated
// dashboard view: rankings, optimization buckets, confidence and
// recommendations.
type Analyzer struct{}

func New() *Analyzer {
	return &Analyzer{}
}

const (
	// Health threshold above which a platform counts toward confidence.
	confidenceHealthThreshold = 50

	// Reported when the readiness subsystem does not self-report.
	defaultOverallCompletion = 78

	increaseBudgetConfidence = 0.9
	activateNeuralConfidence = 0.95
	urgentConfidence         = 0.8

	increaseBudgetHealthMin = 80
	urgentHealthMax         = 30
)

// Prediction policy constants, applied to the attribution summary totals.
const (
	next30RevenueGrowth     = 1.2
	next30ConversionsGrowth = 1.15
	next30EventsGrowth      = 1.1
	next7RevenueShare       = 0.25
	next7ConversionsShare   = 0.23
	next7EventsShare        = 0.22
	predictionConfidence    = 0.85
)

// Analyze scores every platform and derives the aggregate result. The
// readiness report and attribution summary are optional; their absence only
// degrades the derived figures, never the analysis itself.
func (a *Analyzer) Analyze(platforms []models.PlatformStatus, readiness models.RawStatus, summary *models.AttributionSummary) models.AggregateResult {
	scored := make([]models.PlatformStatus, len(platforms))
	priorities := make([]models.PlatformPriority, 0, len(platforms))

	for i, platform := range platforms {
		health, priority := scoring.Score(platform)
		platform.HealthScore = health
		scored[i] = platform

		priorities = append(priorities, models.PlatformPriority{
			Platform:      platform.Platform,
			PriorityScore: priority,
			HealthScore:   health,
			NeuralReady:   platform.NeuralReady,
		})
	}

	// Stable sort keeps the canonical platform order for equal priorities.
	sort.SliceStable(priorities, func(i, j int) bool {
		return priorities[i].PriorityScore > priorities[j].PriorityScore
	})

	optimizations := a.buildOptimizations(scored)

	return models.AggregateResult{
		OverallCompletionPercent: overallCompletion(readiness),
		PlatformPriorities:       priorities,
		Optimizations:            optimizations,
		ConfidenceScore:          a.confidenceScore(scored),
		Recommendations:          a.buildRecommendations(priorities, optimizations),
		Predictions:              a.buildPredictions(summary),
		Platforms:                scored,
		GeneratedAt:              time.Now().UTC().Format(time.RFC3339),
	}
}

func (a *Analyzer) buildOptimizations(platforms []models.PlatformStatus) models.OptimizationSet {
	set := models.OptimizationSet{
		IncreaseBudget: []models.Optimization{},
		ActivateNeural: []models.Optimization{},
		Urgent:         []models.Optimization{},
	}

	for _, p := range platforms {
		if p.HealthScore > increaseBudgetHealthMin && p.NeuralReady {
			set.IncreaseBudget = append(set.IncreaseBudget, models.Optimization{
				Platform:   p.Platform,
				Reason:     "high health and automation-ready",
				Confidence: increaseBudgetConfidence,
			})
		}
		if p.ConnectionState == models.StateConnected && !p.NeuralReady {
			set.ActivateNeural = append(set.ActivateNeural, models.Optimization{
				Platform:   p.Platform,
				Reason:     "connected but automation not enabled",
				Confidence: activateNeuralConfidence,
			})
		}
		if p.HealthScore < urgentHealthMax {
			set.Urgent = append(set.Urgent, models.Optimization{
				Platform:   p.Platform,
				Reason:     "low health score",
				Confidence: urgentConfidence,
				Urgency:    "high",
			})
		}
	}

	return set
}

func (a *Analyzer) confidenceScore(platforms []models.PlatformStatus) float64 {
	if len(platforms) == 0 {
		return 0
	}
	healthy := 0
	for _, p := range platforms {
		if p.HealthScore > confidenceHealthThreshold {
			healthy++
		}
	}
	ratio := float64(healthy) / float64(len(platforms))
	return math.Round(ratio*100) / 100
}

// buildRecommendations emits lines in a fixed order: top-ranked platform,
// then neural activations, then urgent platforms, with a single fallback
// line when nothing needs attention.
func (a *Analyzer) buildRecommendations(priorities []models.PlatformPriority, optimizations models.OptimizationSet) []string {
	recommendations := []string{}

	if len(priorities) > 0 {
		top := priorities[0]
		recommendations = append(recommendations,
			fmt.Sprintf("Focus on %s: highest priority score (%d)", top.Platform, top.PriorityScore))
	}

	for _, opt := range optimizations.ActivateNeural {
		recommendations = append(recommendations,
			fmt.Sprintf("Activate neural optimization on %s - %s", opt.Platform, opt.Reason))
	}

	for _, opt := range optimizations.Urgent {
		recommendations = append(recommendations,
			fmt.Sprintf("Urgent: review %s connection - %s", opt.Platform, opt.Reason))
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "All platforms performing within acceptable ranges")
	}

	return recommendations
}

// overallCompletion reads the readiness subsystem's self-reported figure.
// The payload nests it under quintuple_ai_analysis when present.
func overallCompletion(readiness models.RawStatus) int {
	if readiness == nil {
		return defaultOverallCompletion
	}
	if v, ok := numericField(readiness, "overall_completion"); ok {
		return clampPercent(v)
	}
	if nested, ok := readiness["quintuple_ai_analysis"].(map[string]interface{}); ok {
		if v, ok := numericField(nested, "overall_completion"); ok {
			return clampPercent(v)
		}
	}
	return defaultOverallCompletion
}

func (a *Analyzer) buildPredictions(summary *models.AttributionSummary) *models.Predictions {
	if summary == nil {
		return nil
	}
	return &models.Predictions{
		Next7Days: models.PredictionWindow{
			PredictedRevenue:     summary.TotalRevenue * next7RevenueShare,
			PredictedConversions: summary.TotalConversions * next7ConversionsShare,
			PredictedEvents:      summary.TotalEvents * next7EventsShare,
		},
		Next30Days: models.PredictionWindow{
			PredictedRevenue:     summary.TotalRevenue * next30RevenueGrowth,
			PredictedConversions: summary.TotalConversions * next30ConversionsGrowth,
			PredictedEvents:      summary.TotalEvents * next30EventsGrowth,
		},
		Confidence: predictionConfidence,
	}
}

func numericField(raw map[string]interface{}, key string) (float64, bool) {
	switch v := raw[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func clampPercent(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
