package repo

import (
	"context"
	"sync"

	"oracle/internal/domain"
)

// MemoryStore is a mutex-guarded in-memory domain.EntitlementStore and
// domain.QuestionLog. It backs unit tests and the no-database development
// mode; PostgreSQL is the durable store in production.
type MemoryStore struct {
	mu           sync.Mutex
	entitlements map[string]domain.Entitlement
	log          []domain.QuestionLogEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entitlements: make(map[string]domain.Entitlement)}
}

// Get returns a copy of the user's entitlement, or domain.ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, userID string) (*domain.Entitlement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entitlements[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := e
	return &out, nil
}

// Create inserts a fresh record.
func (s *MemoryStore) Create(ctx context.Context, e *domain.Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entitlements[e.UserID]; ok {
		return nil
	}
	s.entitlements[e.UserID] = *e
	return nil
}

// Save overwrites an existing record.
func (s *MemoryStore) Save(ctx context.Context, e *domain.Entitlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entitlements[e.UserID]; !ok {
		return domain.ErrNotFound
	}
	s.entitlements[e.UserID] = *e
	return nil
}

// ConsumeQuestion applies the same conditional increment the SQL store runs,
// under the store mutex.
func (s *MemoryStore) ConsumeQuestion(ctx context.Context, userID string, p domain.ConsumeParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entitlements[userID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Quota != domain.QuotaUnlimited && e.QuestionsUsed >= p.Quota {
		return false, nil
	}
	if e.LastQuestionAt != nil && p.Now.Sub(*e.LastQuestionAt) < p.Cooldown {
		return false, nil
	}
	now := p.Now
	e.QuestionsUsed++
	e.LastQuestionAt = &now
	e.UpdatedAt = now
	s.entitlements[userID] = e
	return true, nil
}

// Append records one audit row.
func (s *MemoryStore) Append(ctx context.Context, entry *domain.QuestionLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, *entry)
	return nil
}

// LogEntries returns a snapshot of the appended audit rows.
func (s *MemoryStore) LogEntries() []domain.QuestionLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.QuestionLogEntry, len(s.log))
	copy(out, s.log)
	return out
}

var (
	_ domain.EntitlementStore = (*MemoryStore)(nil)
	_ domain.QuestionLog      = (*MemoryStore)(nil)
)
