package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"attributely-core/internal/models"
)

func TestHealthScoreConnectedPlatform(t *testing.T) {
	status := models.PlatformStatus{
		Platform:          models.PlatformMeta,
		ConnectionState:   models.StateConnected,
		CompletionPercent: 100,
		NeuralReady:       false,
	}

	health, priority := Score(status)

	assert.Equal(t, 80, health, "40 base + 40 completion share")
	assert.Equal(t, 62, priority, "0.4*80 + 0 + 0.3*100")
}

func TestHealthScoreNeuralBonus(t *testing.T) {
	status := models.PlatformStatus{
		ConnectionState:   models.StateConnected,
		CompletionPercent: 100,
		NeuralReady:       true,
	}

	health, priority := Score(status)

	assert.Equal(t, 100, health, "clamped at 100")
	assert.Equal(t, 100, priority)
}

func TestHealthScoreConfiguredPlatform(t *testing.T) {
	status := models.PlatformStatus{
		ConnectionState:   models.StateConfigured,
		CompletionPercent: 0,
		NeuralReady:       false,
	}

	assert.Equal(t, 30, HealthScore(status))
}

func TestHealthScoreConnectedWithIssue(t *testing.T) {
	status := models.PlatformStatus{
		ConnectionState:   models.StateConnectedIssue,
		CompletionPercent: 95,
		NeuralReady:       true,
	}

	assert.Equal(t, 98, HealthScore(status), "40 + 38 + 20")
}

func TestHealthScoreUnknownPlatformIsZero(t *testing.T) {
	for _, state := range []models.ConnectionState{models.StateUnknown, models.StateUnconfigured} {
		status := models.PlatformStatus{ConnectionState: state}
		assert.Equal(t, 0, HealthScore(status), "state %s", state)
	}
}

func TestHealthScoreBounds(t *testing.T) {
	for completion := 0; completion <= 100; completion += 5 {
		for _, state := range []models.ConnectionState{
			models.StateConnected, models.StateConnectedIssue, models.StateConfigured,
			models.StateUnconfigured, models.StateUnknown,
		} {
			for _, neural := range []bool{true, false} {
				status := models.PlatformStatus{
					ConnectionState:   state,
					CompletionPercent: completion,
					NeuralReady:       neural,
				}
				health, priority := Score(status)
				assert.GreaterOrEqual(t, health, 0)
				assert.LessOrEqual(t, health, 100)
				assert.GreaterOrEqual(t, priority, 0)
			}
		}
	}
}

func TestHealthScoreMonotonicInCompletion(t *testing.T) {
	previous := -1
	for completion := 0; completion <= 100; completion++ {
		status := models.PlatformStatus{
			ConnectionState:   models.StateConnected,
			CompletionPercent: completion,
			NeuralReady:       false,
		}
		health := HealthScore(status)
		assert.GreaterOrEqual(t, health, previous, "completion %d", completion)
		previous = health
	}
}

func TestScoreDeterministic(t *testing.T) {
	status := models.PlatformStatus{
		ConnectionState:   models.StateConnectedIssue,
		CompletionPercent: 95,
		NeuralReady:       true,
	}

	h1, p1 := Score(status)
	h2, p2 := Score(status)
	assert.Equal(t, h1, h2)
	assert.Equal(t, p1, p2)
}
