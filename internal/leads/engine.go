package leads

import (
	"encoding/base64"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"

	"attributely-core/internal/models"
)

// Source quality table. Unlisted sources fall back to defaultSourcePoints.
var sourcePoints = map[string]int{
	"linkedin": 40,
	"google":   35,
	"facebook": 30,
	"meta":     30,
	"youtube":  25,
	"organic":  20,
	"tiktok":   20,
	"direct":   15,
}

const defaultSourcePoints = 10

// Campaign intent bonuses; first matching tier wins.
const (
	enterpriseCampaignBonus = 20
	starterCampaignBonus    = 10
)

var enterpriseCampaignTerms = []string{"enterprise", "premium"}
var starterCampaignTerms = []string{"startup", "small"}

// Message keyword tables; every occurrence counts independently.
var urgencyKeywords = []string{"urgent", "immediately", "asap", "today", "now", "budget", "price", "cost"}
var businessKeywords = []string{"enterprise", "company", "business", "team", "employees", "scale"}

const (
	urgencyKeywordPoints  = 10
	businessKeywordPoints = 8
)

// Tier thresholds, evaluated high to low.
const (
	handoffThreshold   = 80
	reviewThreshold    = 60
	nurturingThreshold = 40
)

const defaultPhoneRegion = "US"

// Engine scores inbound chat leads. Safe for concurrent use; only the
// injected randomness needs guarding.
type Engine struct {
	trackingBaseURL string

	mu        sync.Mutex
	rng       *rand.Rand
	tokenFunc func() string
}

// Option customizes an Engine, mainly so tests can pin the randomness.
type Option func(*Engine)

// WithRandSource replaces the strategy-hint randomness.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) {
		e.rng = rand.New(src)
	}
}

// WithTokenFunc replaces the tracking-token generator.
func WithTokenFunc(fn func() string) Option {
	return func(e *Engine) {
		e.tokenFunc = fn
	}
}

func NewEngine(trackingBaseURL string, opts ...Option) *Engine {
	e := &Engine{
		trackingBaseURL: strings.TrimRight(trackingBaseURL, "/"),
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
		tokenFunc:       defaultToken,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score converts a lead submission into a bounded score, a routing action
// and the supporting artifacts. Missing fields contribute their documented
// defaults; the call never fails.
func (e *Engine) Score(lead models.LeadRecord) models.LeadAssessment {
	score := e.rawScore(lead)
	action, priority := route(score)
	token := e.token()

	assessment := models.LeadAssessment{
		Score:             score,
		Action:            action,
		Priority:          priority,
		ConfidencePercent: confidencePercent(score),
		TrackingToken:     token,
		TrackingLink:      e.trackingLink(token, lead),
		StrategyHint:      e.strategyHint(score),
		AlertMessage:      alertMessage(score, action, lead.Source),
		Phone:             normalizePhone(lead.Phone),
		Source:            lead.Source,
		Campaign:          lead.Campaign,
		ScoredAt:          time.Now().UTC().Format(time.RFC3339),
	}
	return assessment
}

func (e *Engine) rawScore(lead models.LeadRecord) int {
	score := sourceScore(lead.Source)
	score += campaignScore(lead.Campaign)

	message := strings.ToLower(lead.Message)
	for _, keyword := range urgencyKeywords {
		if strings.Contains(message, keyword) {
			score += urgencyKeywordPoints
		}
	}
	for _, keyword := range businessKeywords {
		if strings.Contains(message, keyword) {
			score += businessKeywordPoints
		}
	}

	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

func sourceScore(source string) int {
	if points, ok := sourcePoints[strings.ToLower(strings.TrimSpace(source))]; ok {
		return points
	}
	return defaultSourcePoints
}

func campaignScore(campaign string) int {
	lowered := strings.ToLower(campaign)
	for _, term := range enterpriseCampaignTerms {
		if strings.Contains(lowered, term) {
			return enterpriseCampaignBonus
		}
	}
	for _, term := range starterCampaignTerms {
		if strings.Contains(lowered, term) {
			return starterCampaignBonus
		}
	}
	return 0
}

func route(score int) (models.LeadAction, models.LeadPriority) {
	switch {
	case score >= handoffThreshold:
		return models.ActionHumanHandoff, models.PriorityHigh
	case score >= reviewThreshold:
		return models.ActionScheduleReview, models.PriorityMedium
	case score >= nurturingThreshold:
		return models.ActionAINurturing, models.PriorityLow
	default:
		return models.ActionRemarketing, models.PriorityLow
	}
}

// confidencePercent maps the score linearly onto [5,100] so even a
// zero-score lead reports nonzero confidence.
func confidencePercent(score int) int {
	return int(math.Round(float64(score)/100*95 + 5))
}

func (e *Engine) token() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tokenFunc()
}

func defaultToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// trackingLink builds the outbound correlation URL. The phone number is
// hashed, never embedded verbatim.
func (e *Engine) trackingLink(token string, lead models.LeadRecord) string {
	source := strings.TrimSpace(lead.Source)
	if source == "" {
		source = "whatsapp"
	}

	params := url.Values{}
	params.Set("utm_source", source)
	params.Set("utm_medium", "whatsapp")
	if hash := phoneHash(lead.Phone); hash != "" {
		params.Set("phone", hash)
	}

	return fmt.Sprintf("%s/t/%s?%s", e.trackingBaseURL, token, params.Encode())
}

func phoneHash(phone string) string {
	normalized := normalizePhone(phone)
	if normalized == "" {
		return ""
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(normalized))
	if len(encoded) > 8 {
		encoded = encoded[:8]
	}
	return encoded
}

// normalizePhone formats to E.164 when possible; otherwise returns the
// trimmed input untouched.
func normalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultPhoneRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func alertMessage(score int, action models.LeadAction, source string) string {
	switch action {
	case models.ActionHumanHandoff:
		return fmt.Sprintf("HOT LEAD ALERT: score %d/100, source %s - urgent human review needed", score, source)
	case models.ActionScheduleReview:
		return fmt.Sprintf("QUALIFIED LEAD: score %d/100 - schedule human review within 2 hours", score)
	case models.ActionAINurturing:
		return fmt.Sprintf("AI NURTURING: score %d/100 - starting automated nurturing sequence", score)
	default:
		return fmt.Sprintf("REMARKETING: score %d/100 - adding to remarketing automation", score)
	}
}
