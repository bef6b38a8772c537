package scoring

import (
	"math"

	"attributely-core/internal/models"
)

// Policy weights for health and priority scoring. Downstream ranking depends
// on these exact values; change them only together with the dashboard.
const (
	BaseConnected    = 40
	BaseConfigured   = 30
	NeuralBonus      = 20
	HealthCompletion = 0.4

	PriorityHealthWeight     = 0.4
	PriorityNeuralWeight     = 30
	PriorityCompletionWeight = 0.3
)

// HealthScore computes the 0-100 operational readiness of a platform.
// Pure; no side effects.
func HealthScore(status models.PlatformStatus) int {
	base := 0
	switch status.ConnectionState {
	case models.StateConnected, models.StateConnectedIssue:
		base = BaseConnected
	case models.StateConfigured:
		base = BaseConfigured
	}

	bonus := 0
	if status.NeuralReady {
		bonus = NeuralBonus
	}

	score := float64(base) + HealthCompletion*float64(status.CompletionPercent) + float64(bonus)
	return clamp(int(math.Round(score)), 0, 100)
}

// PriorityScore derives the ranking value from an already-computed health
// score. Unbounded above but deterministic for fixed input.
func PriorityScore(status models.PlatformStatus, healthScore int) int {
	neural := 0.0
	if status.NeuralReady {
		neural = 1.0
	}

	score := PriorityHealthWeight*float64(healthScore) +
		PriorityNeuralWeight*neural +
		PriorityCompletionWeight*float64(status.CompletionPercent)
	return int(math.Round(score))
}

// Score computes both values in one pass.
func Score(status models.PlatformStatus) (healthScore, priorityScore int) {
	healthScore = HealthScore(status)
	priorityScore = PriorityScore(status, healthScore)
	return healthScore, priorityScore
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
