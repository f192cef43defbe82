package chat

import (
	"container/list"
	"sync"

	"github.com/google/uuid"
)

// DefaultSessionCapacity bounds the registry when no capacity is given.
const DefaultSessionCapacity = 256

// Sessions is a bounded registry of chat sessions keyed by UUID. When full,
// the least recently used session is evicted.
type Sessions struct {
	gw       *Gateway
	capacity int

	mu    sync.Mutex
	byID  map[string]*list.Element
	order *list.List // front is most recently used
}

// NewSessions creates a registry. capacity <= 0 means DefaultSessionCapacity.
func NewSessions(gw *Gateway, capacity int) *Sessions {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	return &Sessions{
		gw:       gw,
		capacity: capacity,
		byID:     make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Open returns the session with id, moved to lessonID, or a new session
// when id is empty or unknown. The boolean reports whether it was created.
func (r *Sessions) Open(id, lessonID string) (*Session, bool) {
	r.mu.Lock()
	if el, ok := r.byID[id]; ok && id != "" {
		r.order.MoveToFront(el)
		s := el.Value.(*Session)
		r.mu.Unlock()
		s.SwitchLesson(lessonID)
		return s, false
	}

	s := NewSession(uuid.NewString(), r.gw, lessonID)
	r.byID[s.ID] = r.order.PushFront(s)
	for r.order.Len() > r.capacity {
		oldest := r.order.Back()
		r.order.Remove(oldest)
		delete(r.byID, oldest.Value.(*Session).ID)
	}
	r.mu.Unlock()
	return s, true
}

// Get looks up a session without creating one.
func (r *Sessions) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	el, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	r.order.MoveToFront(el)
	return el.Value.(*Session), true
}

// Len reports how many sessions are held.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}
