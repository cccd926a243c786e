package session

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rossmatican/thoughtleaderai/internal/logging"
)

// DefaultMaxSessions bounds the registry when no size is configured.
const DefaultMaxSessions = 256

// Registry keeps live sessions for long-running hosts. The least recently
// used session is ended and dropped once the registry is full.
type Registry struct {
	cache *lru.Cache[string, *Session]
	log   *slog.Logger
}

// NewRegistry creates a registry holding at most size sessions.
func NewRegistry(size int, logger *slog.Logger) (*Registry, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Registry{log: logger}
	cache, err := lru.NewWithEvict[string, *Session](size, r.evicted)
	if err != nil {
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}
	r.cache = cache
	return r, nil
}

func (r *Registry) evicted(id string, s *Session) {
	if err := s.End(context.Background()); err != nil {
		r.log.Warn("failed to end evicted session", "session_id", id, "err", err)
		return
	}
	r.log.Info("session evicted", "session_id", id)
}

// Add registers s, evicting the oldest session when full.
func (r *Registry) Add(s *Session) {
	r.cache.Add(s.ID(), s)
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Session, bool) {
	return r.cache.Get(id)
}

// Remove ends and drops the session with id.
func (r *Registry) Remove(id string) bool {
	return r.cache.Remove(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Close ends every live session.
func (r *Registry) Close() {
	r.cache.Purge()
}
