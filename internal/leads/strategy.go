package leads

// Tier-specific sales strategy pools. One suggestion is drawn uniformly at
// random per assessment.
var strategyPools = map[string][]string{
	"high": {
		"Focus on ROI and immediate value",
		"Emphasize enterprise features and scalability",
		"Offer custom demo and consultation",
		"Discuss implementation timeline",
	},
	"medium": {
		"Highlight success stories and case studies",
		"Explain core platform benefits",
		"Offer free trial or assessment",
		"Address specific pain points",
	},
	"low": {
		"Educate on attribution basics",
		"Share valuable content and resources",
		"Build trust with testimonials",
		"Focus on long-term relationship",
	},
}

func strategyTier(score int) string {
	switch {
	case score >= handoffThreshold:
		return "high"
	case score >= reviewThreshold:
		return "medium"
	default:
		return "low"
	}
}

func (e *Engine) strategyHint(score int) string {
	pool := strategyPools[strategyTier(score)]

	e.mu.Lock()
	defer e.mu.Unlock()
	return pool[e.rng.Intn(len(pool))]
}
