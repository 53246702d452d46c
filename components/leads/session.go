package leads

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultSessionID is used when a request carries no session identifier.
const DefaultSessionID = "default"

// Session is the per-viewer dashboard state.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	criteria     FilterCriteria
	selection    *SelectionSet
	fetch        *FetchSimulator
	notices      []Notice
	dismissedGen uint64
}

func newSession(id string, fetch *FetchSimulator, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		selection: NewSelectionSet(),
		fetch:     fetch,
	}
}

func (s *Session) pushNotice(n Notice) {
	s.mu.Lock()
	s.notices = append(s.notices, n)
	s.mu.Unlock()
}

func (s *Session) drainNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// SessionStore keeps sessions between requests.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, bool, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// Session store defaults.
const (
	DefaultSessionIdleTTL = 30 * time.Minute
	DefaultMaxSessions    = 1000
)

var errMissingSessionID = errors.New("leads: session store requires a session id")

// SessionStoreOptions bounds the in-memory store. A negative IdleTTL or
// MaxSessions disables that limit.
type SessionStoreOptions struct {
	IdleTTL     time.Duration
	MaxSessions int
	Now         func() time.Time
}

func (o SessionStoreOptions) withDefaults() SessionStoreOptions {
	if o.IdleTTL == 0 {
		o.IdleTTL = DefaultSessionIdleTTL
	}
	if o.MaxSessions == 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

type storedSession struct {
	session  *Session
	lastSeen time.Time
}

// InMemorySessionStore provides a concurrency-safe default store. Sessions
// idle longer than IdleTTL are evicted, and the least recently used session
// is evicted when a save would exceed MaxSessions.
type InMemorySessionStore struct {
	opts SessionStoreOptions

	mu   sync.Mutex
	data map[string]*storedSession
}

// NewInMemorySessionStore creates an empty session store.
func NewInMemorySessionStore(opts SessionStoreOptions) *InMemorySessionStore {
	return &InMemorySessionStore{
		opts: opts.withDefaults(),
		data: make(map[string]*storedSession),
	}
}

// Get returns a stored session and marks it as recently used.
func (s *InMemorySessionStore) Get(_ context.Context, id string) (*Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.Now()
	entry, ok := s.data[id]
	if !ok {
		return nil, false, nil
	}
	if s.expiredLocked(entry, now) {
		s.evictLocked(id, entry)
		return nil, false, nil
	}
	entry.lastSeen = now
	return entry.session, true, nil
}

// Save stores session under its id.
func (s *InMemorySessionStore) Save(_ context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return errMissingSessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.Now()
	s.sweepLocked(now)
	if _, exists := s.data[session.ID]; !exists && s.opts.MaxSessions > 0 {
		for len(s.data) >= s.opts.MaxSessions {
			s.evictOldestLocked()
		}
	}
	s.data[session.ID] = &storedSession{session: session, lastSeen: now}
	return nil
}

// Delete forgets a session.
func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *InMemorySessionStore) expiredLocked(entry *storedSession, now time.Time) bool {
	return s.opts.IdleTTL > 0 && now.Sub(entry.lastSeen) > s.opts.IdleTTL
}

func (s *InMemorySessionStore) sweepLocked(now time.Time) {
	for id, entry := range s.data {
		if s.expiredLocked(entry, now) {
			s.evictLocked(id, entry)
		}
	}
}

func (s *InMemorySessionStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   *storedSession
	)
	for id, entry := range s.data {
		if oldest == nil || entry.lastSeen.Before(oldest.lastSeen) {
			oldestID, oldest = id, entry
		}
	}
	if oldest != nil {
		s.evictLocked(oldestID, oldest)
	}
}

func (s *InMemorySessionStore) evictLocked(id string, entry *storedSession) {
	delete(s.data, id)
	if entry.session.fetch != nil {
		entry.session.fetch.Stop()
	}
}
