package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long an idle session is kept
const DefaultTTL = 24 * time.Hour

// Store is an in-memory session registry with idle expiry
type Store struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewStore creates a store that evicts sessions idle for longer than ttl
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[Key]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// Get returns the session for key, creating it on first use. The caller
// does not hold the session lock.
func (s *Store) Get(key Key) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key)
}

// Acquire returns the session for key and holds it exclusively until
// release is called. Held sessions are never evicted.
func (s *Store) Acquire(key Key) (*Session, func()) {
	s.mu.Lock()
	sess := s.lookup(key)
	sess.refs++
	s.mu.Unlock()

	sess.mu.Lock()

	var once sync.Once
	release := func() {
		once.Do(func() {
			sess.mu.Unlock()

			s.mu.Lock()
			sess.refs--
			sess.lastSeen = s.now()
			s.mu.Unlock()
		})
	}
	return sess, release
}

// lookup must be called with s.mu held
func (s *Store) lookup(key Key) *Session {
	now := s.now()
	sess, ok := s.sessions[key]
	if !ok {
		sess = newSession(key, now)
		s.sessions[key] = sess
	}
	sess.lastSeen = now
	return sess
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for key, sess := range s.sessions {
		if sess.refs > 0 || sess.lastSeen.After(cutoff) {
			continue
		}
		delete(s.sessions, key)
		removed++
	}
	return removed
}

// Run sweeps on every interval until ctx is done
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Session janitor stopping")
			return
		case <-t.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug("Evicted idle sessions",
					zap.Int("removed", removed),
					zap.Int("remaining", s.Len()),
				)
			}
		}
	}
}
