package storage

import (
	"sync"
	"time"

	"attributely-core/internal/models"
)

// MemoryStore retains the latest aggregate analysis and a bounded list of
// recent lead assessments. Persistence of record is an external
// collaborator's responsibility; this is serving state for the dashboard.
type MemoryStore struct {
	mu           sync.RWMutex
	lastResult   *models.AggregateResult
	lastAnalysis time.Time
	leads        []models.LeadAssessment
	leadLimit    int
}

func NewMemoryStore(leadLimit int) *MemoryStore {
	if leadLimit <= 0 {
		leadLimit = 100
	}
	return &MemoryStore{
		leads:     make([]models.LeadAssessment, 0),
		leadLimit: leadLimit,
	}
}

func (s *MemoryStore) StoreResult(result models.AggregateResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastResult = &result
	s.lastAnalysis = time.Now()
}

func (s *MemoryStore) LastResult() (models.AggregateResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastResult == nil {
		return models.AggregateResult{}, false
	}
	return *s.lastResult, true
}

func (s *MemoryStore) StoreLead(assessment models.LeadAssessment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Most recent first, capped at the configured history length.
	s.leads = append([]models.LeadAssessment{assessment}, s.leads...)
	if len(s.leads) > s.leadLimit {
		s.leads = s.leads[:s.leadLimit]
	}
}

func (s *MemoryStore) RecentLeads() []models.LeadAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	leads := make([]models.LeadAssessment, len(s.leads))
	copy(leads, s.leads)
	return leads
}

func (s *MemoryStore) LastAnalysisTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAnalysis
}

func (s *MemoryStore) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult != nil
}
