package api

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/knowledge-engine/ayahfinder/internal/engine"
)

// DefaultMaxSessions bounds the store when no size is configured.
const DefaultMaxSessions = 1024

// SessionHandle serializes access to one engine.Session.
type SessionHandle struct {
	mu      sync.Mutex
	session *engine.Session
}

// Do runs fn with exclusive access to the session.
func (h *SessionHandle) Do(fn func(*engine.Session)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.session)
}

// Apply runs fn and returns the refreshed view. The view is nil when the
// session has no focus yet.
func (h *SessionHandle) Apply(fn func(*engine.Session) error) (*engine.View, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := fn(h.session); err != nil {
		return nil, err
	}
	view, err := h.session.Refresh()
	if errors.Is(err, engine.ErrNoFocus) {
		return nil, nil
	}
	return view, err
}

// SessionStore keeps the most recently used sessions. The least recently
// used one is evicted once the store is full.
type SessionStore struct {
	engine *engine.Engine
	cache  *lru.Cache[string, *SessionHandle]
}

func NewSessionStore(eng *engine.Engine, size int) (*SessionStore, error) {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	cache, err := lru.New[string, *SessionHandle](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	return &SessionStore{engine: eng, cache: cache}, nil
}

// Create starts and stores a new session.
func (st *SessionStore) Create() *SessionHandle {
	sess := st.engine.NewSession()
	h := &SessionHandle{session: sess}
	st.cache.Add(sess.ID, h)
	return h
}

func (st *SessionStore) Get(id string) (*SessionHandle, bool) {
	return st.cache.Get(id)
}

func (st *SessionStore) Remove(id string) {
	st.cache.Remove(id)
}

func (st *SessionStore) Len() int {
	return st.cache.Len()
}
