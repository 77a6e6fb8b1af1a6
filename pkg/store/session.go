package store

import (
	"sync"
	"time"

	"vegan-agent-be/pkg/history"
)

// Session is the per-visitor state kept in memory. It owns the scan
// history and the API key the visitor typed in, if any.
type Session struct {
	mu sync.Mutex

	ID        string        `json:"id"`
	APIKey    string        `json:"-"`
	History   *history.List `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	LastSeen  time.Time     `json:"last_seen"`
}

func NewSession(id string, historySize int, now time.Time) *Session {
	return &Session{
		ID:        id,
		History:   history.New(historySize),
		CreatedAt: now,
		LastSeen:  now,
	}
}

// With runs fn while holding the session lock.
func (s *Session) With(fn func(s *Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}
