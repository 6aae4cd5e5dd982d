package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// EventType identifies a change to the session set
type EventType string

const (
	EventLogin   EventType = "login"
	EventLogout  EventType = "logout"
	EventExpired EventType = "expired"
)

// Event is delivered to subscribers whenever a session starts or ends
type Event struct {
	Type      EventType
	SessionID string
	UserID    uuid.UUID
}

// Session is an authenticated portal session. Tokens reference sessions
// by ID so revoking the session invalidates every token minted for it.
type Session struct {
	ID        string
	UserID    uuid.UUID
	Email     string
	Roles     []string
	CreatedAt time.Time
}

// Store is the single process-wide session registry. All components
// observe the same state; subscribers receive login, logout and expiry
// events.
type Store struct {
	cache *gocache.Cache
	ttl   time.Duration

	mu          sync.Mutex
	subscribers map[int]chan Event
	nextSub     int
	explicit    map[string]struct{}
}

// NewStore creates a session store whose sessions expire after ttl of
// inactivity if not explicitly logged out.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		cache:       gocache.New(ttl, 10*time.Minute),
		ttl:         ttl,
		subscribers: make(map[int]chan Event),
		explicit:    make(map[string]struct{}),
	}

	s.cache.OnEvicted(func(key string, value interface{}) {
		s.mu.Lock()
		_, wasExplicit := s.explicit[key]
		delete(s.explicit, key)
		s.mu.Unlock()
		if wasExplicit {
			return
		}
		if sess, ok := value.(*Session); ok {
			s.publish(Event{Type: EventExpired, SessionID: sess.ID, UserID: sess.UserID})
		}
	})

	return s
}

// Create starts a session for a user and notifies subscribers
func (s *Store) Create(userID uuid.UUID, email string, roles []string) *Session {
	sess := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Email:     email,
		Roles:     roles,
		CreatedAt: time.Now().UTC(),
	}
	s.cache.Set(sess.ID, sess, s.ttl)
	s.publish(Event{Type: EventLogin, SessionID: sess.ID, UserID: userID})
	return sess
}

// Get returns a live session or false if it ended or never existed
func (s *Store) Get(sessionID string) (*Session, bool) {
	v, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Touch extends a live session's expiry
func (s *Store) Touch(sessionID string) {
	if v, ok := s.cache.Get(sessionID); ok {
		s.cache.Set(sessionID, v, s.ttl)
	}
}

// Delete ends a session explicitly and notifies subscribers with a
// logout event rather than an expiry
func (s *Store) Delete(sessionID string) {
	v, ok := s.cache.Get(sessionID)
	if !ok {
		return
	}
	sess := v.(*Session)

	s.mu.Lock()
	s.explicit[sessionID] = struct{}{}
	s.mu.Unlock()

	s.cache.Delete(sessionID)
	s.publish(Event{Type: EventLogout, SessionID: sess.ID, UserID: sess.UserID})
}

// Count reports the number of live sessions
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// Subscribe returns a channel of session events and a cancel function.
// Events are dropped for slow subscribers rather than blocking logins.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 16)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(existing)
		}
	}
	return ch, cancel
}

func (s *Store) publish(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
