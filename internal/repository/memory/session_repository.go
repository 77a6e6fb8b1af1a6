package memory

import (
	"context"
	"time"

	"vegan-agent-be/internal/repository/contract"
	"vegan-agent-be/pkg/history"
	"vegan-agent-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

var (
	_ contract.HistoryRepository    = (*SessionRepository)(nil)
	_ contract.SessionKeyRepository = (*SessionRepository)(nil)
)

type SessionRepository struct {
	cache       *cache.Cache
	historySize int
	now         func() time.Time
}

// NewSessionRepository keeps sessions for ttl after their last use and
// purges expired ones every ttl/6.
func NewSessionRepository(ttl time.Duration, historySize int) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, ttl/6)
	return &SessionRepository{
		cache:       c,
		historySize: history.ClampSize(historySize),
		now:         time.Now,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// getOrCreate returns the session and refreshes its expiry.
func (r *SessionRepository) getOrCreate(sessionID string) *store.Session {
	now := r.now()
	s, ok := r.Get(sessionID)
	if !ok {
		s = store.NewSession(sessionID, r.historySize, now)
		// Add loses to a concurrent creator; use whichever won.
		if err := r.cache.Add(sessionID, s, cache.DefaultExpiration); err != nil {
			if existing, found := r.Get(sessionID); found {
				s = existing
			}
		}
	}
	s.With(func(s *store.Session) { s.LastSeen = now })
	r.Save(s)
	return s
}

func (r *SessionRepository) Push(ctx context.Context, sessionID string, entry history.Entry) error {
	r.getOrCreate(sessionID).With(func(s *store.Session) {
		s.History.Push(entry)
	})
	return nil
}

func (r *SessionRepository) List(ctx context.Context, sessionID string) ([]history.Entry, error) {
	s, ok := r.Get(sessionID)
	if !ok {
		return []history.Entry{}, nil
	}
	var out []history.Entry
	s.With(func(s *store.Session) {
		out = s.History.Entries()
	})
	return out, nil
}

func (r *SessionRepository) Clear(ctx context.Context, sessionID string) error {
	if s, ok := r.Get(sessionID); ok {
		s.With(func(s *store.Session) {
			s.History.Clear()
		})
	}
	return nil
}

func (r *SessionRepository) SetAPIKey(ctx context.Context, sessionID, apiKey string) error {
	r.getOrCreate(sessionID).With(func(s *store.Session) {
		s.APIKey = apiKey
	})
	return nil
}

func (r *SessionRepository) APIKey(ctx context.Context, sessionID string) (string, error) {
	s, ok := r.Get(sessionID)
	if !ok {
		return "", nil
	}
	var key string
	s.With(func(s *store.Session) {
		key = s.APIKey
	})
	return key, nil
}

func (r *SessionRepository) ClearAPIKey(ctx context.Context, sessionID string) error {
	if s, ok := r.Get(sessionID); ok {
		s.With(func(s *store.Session) {
			s.APIKey = ""
		})
	}
	return nil
}
