package models

// Platform identifies one integrated advertising channel.
type Platform string

const (
	PlatformMeta        Platform = "meta"
	PlatformGoogle      Platform = "google"
	PlatformTikTok      Platform = "tiktok"
	PlatformYouTube     Platform = "youtube"
	PlatformMicroBudget Platform = "micro_budget"
)

// TrackedPlatforms is the canonical ordering used for ranking tie-breaks.
var TrackedPlatforms = []Platform{
	PlatformMeta,
	PlatformGoogle,
	PlatformTikTok,
	PlatformYouTube,
	PlatformMicroBudget,
}

// ConnectionState classifies how an upstream account responded.
type ConnectionState string

const (
	StateConnected      ConnectionState = "connected"
	StateConnectedIssue ConnectionState = "connected_with_issue"
	StateConfigured     ConnectionState = "configured"
	StateUnconfigured   ConnectionState = "unconfigured"
	StateUnknown        ConnectionState = "unknown"
)

// RawStatus is the platform-specific payload returned by the upstream gateway.
// Shapes differ per platform, so fields are resolved by the normalizer.
type RawStatus map[string]interface{}

// PlatformStatus is the normalized per-platform connection/health record.
// Built fresh on every aggregation pass and never persisted.
type PlatformStatus struct {
	Platform          Platform          `json:"platform"`
	ConnectionState   ConnectionState   `json:"connection_state"`
	CompletionPercent int               `json:"completion_percent"`
	NeuralReady       bool              `json:"neural_ready"`
	HealthScore       int               `json:"health_score"`
	AccountMeta       map[string]string `json:"account_meta,omitempty"`
}

// PlatformPriority is one ranked entry of the aggregate analysis.
type PlatformPriority struct {
	Platform      Platform `json:"platform"`
	PriorityScore int      `json:"priority_score"`
	HealthScore   int      `json:"health_score"`
	NeuralReady   bool     `json:"neural_ready"`
}

// Optimization is a single recommended action for a platform.
type Optimization struct {
	Platform   Platform `json:"platform"`
	Reason     string   `json:"reason"`
	Confidence float64  `json:"confidence"`
	Urgency    string   `json:"urgency,omitempty"`
}

// OptimizationSet holds the closed set of optimization buckets.
type OptimizationSet struct {
	IncreaseBudget []Optimization `json:"increase_budget"`
	ActivateNeural []Optimization `json:"activate_neural"`
	Urgent         []Optimization `json:"urgent"`
}

// PredictionWindow projects attribution totals over a fixed horizon.
type PredictionWindow struct {
	PredictedRevenue     float64 `json:"predicted_revenue"`
	PredictedConversions float64 `json:"predicted_conversions"`
	PredictedEvents      float64 `json:"predicted_events"`
}

// Predictions carries the 7 and 30 day projections.
type Predictions struct {
	Next7Days  PredictionWindow `json:"next_7_days"`
	Next30Days PredictionWindow `json:"next_30_days"`
	Confidence float64          `json:"confidence"`
}

// AttributionSummary is the dashboard summary consumed for predictions.
type AttributionSummary struct {
	TotalRevenue     float64 `json:"total_value"`
	TotalConversions float64 `json:"total_conversions"`
	TotalEvents      float64 `json:"total_events"`
}

// AggregateResult is the consolidated multi-platform analysis.
type AggregateResult struct {
	OverallCompletionPercent int                `json:"overall_completion_percent"`
	PlatformPriorities       []PlatformPriority `json:"platform_priorities"`
	Optimizations            OptimizationSet    `json:"optimizations"`
	ConfidenceScore          float64            `json:"confidence_score"`
	Recommendations          []string           `json:"recommendations"`
	Predictions              *Predictions       `json:"predictions,omitempty"`
	Platforms                []PlatformStatus   `json:"platforms"`
	GeneratedAt              string             `json:"generated_at"`
}

// LeadRecord is an inbound chat lead as submitted by the presentation layer.
// Every field is optional; absence degrades to minimum scoring.
type LeadRecord struct {
	Phone     string `json:"phone"`
	Source    string `json:"source"`
	Campaign  string `json:"campaign"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// LeadAction routes a scored lead.
type LeadAction string

const (
	ActionHumanHandoff   LeadAction = "HUMAN_HANDOFF"
	ActionScheduleReview LeadAction = "SCHEDULE_REVIEW"
	ActionAINurturing    LeadAction = "AI_NURTURING"
	ActionRemarketing    LeadAction = "REMARKETING"
)

// LeadPriority is the routing tier of a scored lead.
type LeadPriority string

const (
	PriorityHigh   LeadPriority = "HIGH"
	PriorityMedium LeadPriority = "MEDIUM"
	PriorityLow    LeadPriority = "LOW"
)

// LeadAssessment is the scoring result returned for one lead submission.
type LeadAssessment struct {
	Score             int          `json:"score"`
	Action            LeadAction   `json:"action"`
	Priority          LeadPriority `json:"priority"`
	ConfidencePercent int          `json:"confidence_percent"`
	TrackingToken     string       `json:"tracking_token"`
	TrackingLink      string       `json:"tracking_link"`
	StrategyHint      string       `json:"strategy_hint"`
	AlertMessage      string       `json:"alert_message"`
	Phone             string       `json:"phone,omitempty"`
	Source            string       `json:"source,omitempty"`
	Campaign          string       `json:"campaign,omitempty"`
	ScoredAt          string       `json:"scored_at"`
}

// Envelope is the uniform orchestrator response.
type Envelope struct {
	Status  string      `json:"status"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Orchestrator error kinds surfaced in error envelopes.
const (
	ErrBackendUnavailable = "backend_unavailable"
	ErrUnknownAction      = "unknown_action"
)
