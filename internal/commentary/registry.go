package commentary

import (
	"sync"
)

// Source is a registered, non-empty commentary dataset.
type Source struct {
	ID    string
	Label string
	Shape Shape
	Set   *Set
}

// SourceStatus describes one load attempt so hosts can tell "not available"
// apart from "no entry for this verse".
type SourceStatus struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
	Entries   int    `json:"entries"`
	Shape     Shape  `json:"shape,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Registry holds every commentary source by id. Sources are independent: a
// failed or empty dataset never affects the others.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*Source
	status  map[string]*SourceStatus
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]*Source),
		status:  make(map[string]*SourceStatus),
	}
}

// Load normalizes raw and registers it under id. It reports whether the
// resulting set is non-empty; false means the source is unusable, not that
// anything failed.
func (r *Registry) Load(id, label string, raw any, opts Options) bool {
	set, shape := NormalizeWith(raw, opts)

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.track(id, label)
	if set.Len() == 0 {
		delete(r.sources, id)
		st.Available = false
		st.Entries = 0
		st.Shape = ShapeUnknown
		st.Reason = "no usable entries"
		return false
	}

	r.sources[id] = &Source{ID: id, Label: label, Shape: shape, Set: set}
	st.Available = true
	st.Entries = set.Len()
	st.Shape = shape
	st.Reason = ""
	return true
}

// MarkUnavailable records a source whose dataset could not be read at all.
func (r *Registry) MarkUnavailable(id, label, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sources, id)
	st := r.track(id, label)
	st.Available = false
	st.Entries = 0
	st.Reason = reason
}

func (r *Registry) track(id, label string) *SourceStatus {
	st, ok := r.status[id]
	if !ok {
		st = &SourceStatus{ID: id}
		r.status[id] = st
		r.order = append(r.order, id)
	}
	st.Label = label
	return st
}

// Get returns the source registered under id.
func (r *Registry) Get(id string) (*Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.sources[id]
	return src, ok
}

// Lookup returns the commentary text of a verse in source id.
func (r *Registry) Lookup(id string, surah, ayah int) (string, bool) {
	src, ok := r.Get(id)
	if !ok {
		return "", false
	}
	return src.Set.Lookup(surah, ayah)
}

// Available lists the ids of usable sources in load order.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for _, id := range r.order {
		if _, ok := r.sources[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Status lists every attempted source in load order.
func (r *Registry) Status() []SourceStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SourceStatus, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.status[id])
	}
	return out
}
