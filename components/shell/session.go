package shell

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL matches the session refetch interval of the console.
const DefaultSessionTTL = 10 * time.Minute

// ErrSessionStoreRequired is returned when the shell has no session store.
var ErrSessionStoreRequired = errors.New("shell: session store is required")

// Session is the per-viewer state bag shared by pages.
type Session struct {
	ID        string
	CreatedAt time.Time
	// Created is true on the request that created the session.
	Created bool

	mu       sync.Mutex
	lastSeen time.Time
	locale   string
	values   map[string]any
}

// Get returns a stored value.
func (s *Session) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// GetOrCreate returns the stored value or stores the one built by create.
// create runs under the session lock, once per key.
func (s *Session) GetOrCreate(key string, create func() (any, error)) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return nil, err
	}
	s.values[key] = v
	return v, nil
}

// Set stores a value.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

// Locale returns the locale pinned to the session.
func (s *Session) Locale() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locale
}

// SetLocale pins a locale to the session.
func (s *Session) SetLocale(locale string) {
	s.mu.Lock()
	s.locale = locale
	s.mu.Unlock()
}

// SessionStore keeps sessions in memory and expires idle ones.
type SessionStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore builds a store; non-positive ttl uses DefaultSessionTTL.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// WithClock swaps the time source, used by tests.
func (s *SessionStore) WithClock(now func() time.Time) *SessionStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Resolve returns the live session for id, or a fresh one when id is unknown
// or expired. Resolving refreshes the idle timer.
func (s *SessionStore) Resolve(id string) *Session {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.mu.Lock()
		expired := now.Sub(sess.lastSeen) > s.ttl
		if !expired {
			sess.lastSeen = now
			sess.Created = false
		}
		sess.mu.Unlock()
		if !expired {
			return sess
		}
		delete(s.sessions, id)
	}
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Created:   true,
		lastSeen:  now,
		values:    map[string]any{},
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := now.Sub(sess.lastSeen) > s.ttl
		sess.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// TTL returns the idle timeout.
func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func sessionProvider(store *SessionStore, locales *LocaleMatcher) Provider {
	return ProviderFunc{
		ProviderName: "session",
		Fn: func(_ context.Context, page *PageContext) error {
			if store == nil {
				return ErrSessionStoreRequired
			}
			sess := store.Resolve(page.Request.SessionID)
			page.Session = sess
			locale := sess.Locale()
			if locale == "" {
				locale = locales.Match(page.Request.AcceptLanguage)
				sess.SetLocale(locale)
			}
			page.Locale = locale
			return nil
		},
	}
}
