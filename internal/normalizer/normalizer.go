package normalizer

import (
	"strings"

	"attributely-core/internal/models"
)

// platformRules captures the accepted markers for one platform. Upstream
// shapes are inconsistent, so every status string a platform is known to
// emit for a working connection must be whitelisted here.
type platformRules struct {
	connectedStates  []string
	issueStates      []string
	configuredStates []string
	neuralFlags      []string
	metaKeys         []string
}

var rules = map[models.Platform]platformRules{
	models.PlatformMeta: {
		connectedStates: []string{"connected", "success"},
		neuralFlags:     []string{"advantage_plus_ready", "auto_optimization"},
		metaKeys:        []string{"account_id", "account_name", "currency"},
	},
	models.PlatformGoogle: {
		connectedStates: []string{"connected"},
		issueStates:     []string{"connected_with_format_issue"},
		neuralFlags:     []string{"performance_max_ready", "smart_bidding_enabled"},
		metaKeys:        []string{"customer_id", "account_name", "currency"},
	},
	models.PlatformTikTok: {
		connectedStates:  []string{"connected"},
		configuredStates: []string{"configured", "configured_ready"},
		neuralFlags:      []string{"auto_optimization"},
		metaKeys:         []string{"advertiser_id", "account_name", "currency"},
	},
	models.PlatformYouTube: {
		connectedStates: []string{"connected", "success", "active"},
		neuralFlags:     []string{"data_available"},
		metaKeys:        []string{"channel_id", "api_key_status"},
	},
	models.PlatformMicroBudget: {
		configuredStates: []string{"configured", "active"},
		neuralFlags:      []string{"optimization_active"},
		metaKeys:         []string{"platforms_optimized"},
	},
}

// Completion values assigned on a positive connection signal.
const (
	completionConnected = 100
	completionWithIssue = 95
)

type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// NormalizeAll produces exactly one PlatformStatus per tracked platform, in
// canonical order, regardless of which raw entries are missing or malformed.
func (n *Normalizer) NormalizeAll(raw map[models.Platform]models.RawStatus) []models.PlatformStatus {
	statuses := make([]models.PlatformStatus, 0, len(models.TrackedPlatforms))
	for _, platform := range models.TrackedPlatforms {
		statuses = append(statuses, n.Normalize(platform, raw[platform]))
	}
	return statuses
}

// Normalize maps one platform's raw payload onto the common status record.
// A nil or garbage payload yields the unknown/zero record, never an error.
func (n *Normalizer) Normalize(platform models.Platform, raw models.RawStatus) models.PlatformStatus {
	status := models.PlatformStatus{
		Platform:          platform,
		ConnectionState:   models.StateUnknown,
		CompletionPercent: 0,
		NeuralReady:       false,
	}

	r, ok := rules[platform]
	if !ok || raw == nil {
		return status
	}

	rawState := stringField(raw, "status")

	switch {
	case containsFold(r.connectedStates, rawState):
		status.ConnectionState = models.StateConnected
		status.CompletionPercent = completionConnected
	case containsFold(r.issueStates, rawState):
		status.ConnectionState = models.StateConnectedIssue
		status.CompletionPercent = completionWithIssue
	case containsFold(r.configuredStates, rawState):
		status.ConnectionState = models.StateConfigured
	case rawState != "":
		status.ConnectionState = models.StateUnconfigured
	}

	// Automation readiness arrives on three independent signals depending
	// on which upstream produced the payload; any one of them counts.
	status.NeuralReady = anyFlagSet(raw, r.neuralFlags) ||
		status.ConnectionState == models.StateConnected ||
		strings.EqualFold(stringField(raw, "connection_status"), "connected")

	status.AccountMeta = collectMeta(raw, r.metaKeys)

	return status
}

func stringField(raw models.RawStatus, key string) string {
	if v, ok := raw[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func containsFold(list []string, value string) bool {
	if value == "" {
		return false
	}
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// anyFlagSet looks for boolean automation flags either at the top level or
// one map level down (upstreams nest feature flags under a features object).
func anyFlagSet(raw models.RawStatus, flags []string) bool {
	for _, flag := range flags {
		if b, ok := raw[flag].(bool); ok && b {
			return true
		}
	}
	for _, value := range raw {
		nested, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		for _, flag := range flags {
			if b, ok := nested[flag].(bool); ok && b {
				return true
			}
		}
	}
	return false
}

func collectMeta(raw models.RawStatus, keys []string) map[string]string {
	var meta map[string]string
	for _, key := range keys {
		value := stringField(raw, key)
		if value == "" {
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		meta[key] = value
	}
	return meta
}
