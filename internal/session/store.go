// Package session keeps per-client selection state in a bounded LRU with
// idle expiry.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/foodmap/internal/selection"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = eris.New("session: not found")

// Session owns one selection state. Do serializes access to it.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state *selection.State
}

// Do runs fn with exclusive access to the session's state.
func (s *Session) Do(fn func(*selection.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// Store is a concurrent-safe LRU of sessions. Entries idle longer than the TTL
// are dropped on the next access.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*entry
	order      []string // LRU order: front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	newState   func() *selection.State
	now        func() time.Time

	created atomic.Int64
	expired atomic.Int64
	evicted atomic.Int64
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// Stats describes the store.
type Stats struct {
	Active     int   `json:"active"`
	MaxEntries int   `json:"max_entries"`
	Created    int64 `json:"created"`
	Expired    int64 `json:"expired"`
	Evicted    int64 `json:"evicted"`
}

// NewStore creates a store. newState builds the initial state of each session.
func NewStore(maxEntries int, ttl time.Duration, newState func() *selection.State) *Store {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Store{
		entries:    make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		newState:   newState,
		now:        time.Now,
	}
}

// Create starts a session, evicting the least recently used one if full.
func (st *Store) Create() *Session {
	now := st.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		state:     st.newState(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	for len(st.entries) >= st.maxEntries && len(st.order) > 0 {
		oldest := st.order[0]
		st.order = st.order[1:]
		delete(st.entries, oldest)
		st.evicted.Add(1)
	}
	st.entries[s.ID] = &entry{session: s, lastUsed: now}
	st.order = append(st.order, s.ID)
	st.created.Add(1)
	return s
}

// Get returns a live session and marks it used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.entries[id]
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "id %q", id)
	}
	now := st.now()
	if st.ttl > 0 && now.Sub(e.lastUsed) > st.ttl {
		delete(st.entries, id)
		st.removeFromOrder(id)
		st.expired.Add(1)
		return nil, eris.Wrapf(ErrNotFound, "id %q expired", id)
	}

	e.lastUsed = now
	st.removeFromOrder(id)
	st.order = append(st.order, id)
	return e.session, nil
}

// Delete drops a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.entries[id]; !ok {
		return false
	}
	delete(st.entries, id)
	st.removeFromOrder(id)
	return true
}

// Stats returns store counters.
func (st *Store) Stats() Stats {
	st.mu.Lock()
	active := len(st.entries)
	st.mu.Unlock()

	return Stats{
		Active:     active,
		MaxEntries: st.maxEntries,
		Created:    st.created.Load(),
		Expired:    st.expired.Load(),
		Evicted:    st.evicted.Load(),
	}
}

func (st *Store) removeFromOrder(id string) {
	for i, k := range st.order {
		if k == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			return
		}
	}
}
