package resolver

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Darius662/Readloom-Angular-sub001/pkg/models"
)

// Session is the short-lived per-caller memory cache. It short-circuits
// repeated lookups inside one resolution batch (e.g. importing a whole
// library) and must not outlive the batch: callers create one per job and
// drop it. Purely a latency optimization; correctness comes from the
// persistent cache.
type Session struct {
	ID string

	mu   sync.Mutex
	memo map[string]models.ResolutionResult
}

func NewSession() *Session {
	return &Session{
		ID:   uuid.NewString(),
		memo: make(map[string]models.ResolutionResult),
	}
}

func (s *Session) get(key string) (models.ResolutionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.memo[key]
	return res, ok
}

func (s *Session) put(key string, res models.ResolutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memo[key] = res
}

// Len reports how many titles this session has memoized.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.memo)
}
