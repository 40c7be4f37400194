package session

import (
	"sync"
	"time"
)

// DefaultCapacity bounds the store when no capacity is configured.
const DefaultCapacity = 1024

// Store keeps sessions in memory, created lazily on first reference.
// Mutations to a single session are serialized; distinct sessions never
// block one another beyond the map lookup. When the store grows past its
// capacity the least recently touched idle session is evicted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	capacity int
}

type entry struct {
	// turnMu is held for the duration of one in-flight turn, keeping at
	// most one turn active per session.
	turnMu  sync.Mutex
	mu      sync.Mutex
	session *Session
	touched time.Time
}

// NewStore creates an empty session store. A capacity of 0 or less falls
// back to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		sessions: make(map[string]*entry),
		capacity: capacity,
	}
}

// GetOrCreate returns a read-only snapshot of the session, creating a
// zero-valued one for unseen ids. It never fails; unknown keys are legal.
func (s *Store) GetOrCreate(id string) Snapshot {
	e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.snapshot()
}

// AppendTurn pushes a (user, assistant) pair onto the session's history
// and trims it to the most recent HistoryPairs exchanges.
func (s *Store) AppendTurn(id, userText, assistantText string) {
	e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.session
	sess.History = append(sess.History,
		Line{Role: RoleUser, Content: userText},
		Line{Role: RoleAssistant, Content: assistantText},
	)
	if len(sess.History) > maxHistoryLines {
		sess.History = append(sess.History[:0:0], sess.History[len(sess.History)-maxHistoryLines:]...)
	}
	sess.UpdatedAt = time.Now()
}

// SetDish records the dish the assistant has committed to for this session.
func (s *Store) SetDish(id, dish string) {
	e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.CurrentDish = dish
	e.session.UpdatedAt = time.Now()
}

// SetRecipeText records the generated recipe body for the current dish.
func (s *Store) SetRecipeText(id, text string) {
	e := s.lookup(id)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.CurrentRecipeText = text
	e.session.UpdatedAt = time.Now()
}

// Guard blocks until no other turn is in flight for the session and
// returns the release function. The orchestrator holds the guard for the
// whole turn so session reads and the final commit see consistent state.
// The entry is re-checked after the turn lock is taken: a concurrent
// insert at capacity may evict the session between the lookup and the
// lock, and the guard must pin the entry that is live in the map.
func (s *Store) Guard(id string) func() {
	for {
		e := s.lookup(id)
		e.turnMu.Lock()

		s.mu.Lock()
		live := s.sessions[id] == e
		s.mu.Unlock()
		if live {
			return e.turnMu.Unlock
		}
		e.turnMu.Unlock()
	}
}

// Len reports how many sessions are currently resident.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) lookup(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.sessions[id]; ok {
		e.touched = time.Now()
		return e
	}

	if len(s.sessions) >= s.capacity {
		s.evictOldest()
	}

	now := time.Now()
	e := &entry{
		session: &Session{
			ID:        id,
			History:   []Line{},
			CreatedAt: now,
			UpdatedAt: now,
		},
		touched: now,
	}
	s.sessions[id] = e
	return e
}

// evictOldest removes the least recently touched session that has no turn
// in flight. Called with s.mu held.
func (s *Store) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, e := range s.sessions {
		if !e.turnMu.TryLock() {
			continue
		}
		e.turnMu.Unlock()
		if oldestID == "" || e.touched.Before(oldest) {
			oldestID = id
			oldest = e.touched
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}
