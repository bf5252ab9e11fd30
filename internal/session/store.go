package session

import (
	"sync"
	"time"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("session")

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type callerLock struct {
	mu   sync.Mutex
	refs int
}

// Store is the active-sessions registry. The map itself is guarded by a
// single mutex; read-modify-write of one caller's session is serialized
// by Lock so different callers never contend beyond the map lookup.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	customers map[string]*Customer
	locks     map[string]*callerLock
	timeout   time.Duration
	now       func() time.Time
}

// NewStore returns an empty store. Sessions idle longer than timeout are
// discarded on next access; a non-positive timeout disables expiry.
func NewStore(timeout time.Duration, opts ...Option) *Store {
	s := &Store{
		sessions:  make(map[string]*Session),
		customers: make(map[string]*Customer),
		locks:     make(map[string]*callerLock),
		timeout:   timeout,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now is the store's clock.
func (s *Store) Now() time.Time { return s.now() }

// Lock acquires the per-caller lock and returns its release func.
// Lock entries are reference counted and dropped when unused.
func (s *Store) Lock(callerID string) func() {
	s.mu.Lock()
	l, ok := s.locks[callerID]
	if !ok {
		l = &callerLock{}
		s.locks[callerID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, callerID)
		}
		s.mu.Unlock()
	}
}

// Get returns the caller's session. An idle session past the timeout is
// removed and reported as expired.
func (s *Store) Get(callerID string) (sess *Session, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[callerID]
	if !ok {
		return nil, false
	}
	if s.timeout > 0 && s.now().Sub(sess.LastActivity) > s.timeout {
		delete(s.sessions, callerID)
		log.Infof("session expired caller=%s idle=%s", callerID, s.now().Sub(sess.LastActivity).Round(time.Second))
		return nil, true
	}
	return sess, false
}

// Put stores sess, replacing any previous session for the caller.
func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.CallerID] = sess
	s.mu.Unlock()
}

// Delete discards the caller's session. Customer memory is kept.
func (s *Store) Delete(callerID string) {
	s.mu.Lock()
	delete(s.sessions, callerID)
	s.mu.Unlock()
}

// Len is the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Customer returns the caller's customer memory, creating it on first use.
// Callers mutate it only while holding Lock(callerID).
func (s *Store) Customer(callerID string) *Customer {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[callerID]
	if !ok {
		c = &Customer{LastModifiers: make(map[string]string)}
		s.customers[callerID] = c
	}
	return c
}
