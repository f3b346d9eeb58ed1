// Package window selects the neighborhood of verses shown around a focused
// verse and keeps it stable across nearby selections.
package window

const (
	// MaxSize is the largest number of verses in a window.
	MaxSize = 10
	// Before is the number of verses placed ahead of the target.
	Before = 2
)

// VerseCounter reports how many verses a surah has.
type VerseCounter interface {
	VerseCount(surah int) int
}

// State is the visible range. 1 <= Start <= End <= verse count and the range
// never exceeds MaxSize verses.
type State struct {
	Surah int `json:"surah"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// Size returns the number of verses in the range.
func (s State) Size() int {
	return s.End - s.Start + 1
}

// Contains reports whether ayah lies inside the range.
func (s State) Contains(ayah int) bool {
	return ayah >= s.Start && ayah <= s.End
}

// Fresh places a window around ayah: two verses before it and the rest after,
// shifted to stay inside [1, count].
func Fresh(surah, ayah, count int) State {
	if count < 1 {
		return State{Surah: surah}
	}
	size := min(MaxSize, count)
	ayah = max(1, min(ayah, count))

	start := ayah - Before
	end := start + size - 1
	if start < 1 {
		start, end = 1, size
	}
	if end > count {
		start, end = count-size+1, count
	}
	return State{Surah: surah, Start: start, End: end}
}

// Manager holds the window state of one session. It is not safe for
// concurrent use.
type Manager struct {
	counter VerseCounter
	state   State
	valid   bool
}

// NewManager creates a manager with no window until the first Focus.
func NewManager(counter VerseCounter) *Manager {
	return &Manager{counter: counter}
}

// State returns the current window; ok is false before the first Focus.
func (m *Manager) State() (State, bool) {
	return m.state, m.valid
}

// Focus moves the focus to (surah, ayah). The bounds are kept when the verse
// is already visible and not sitting on an edge the window could still move
// past; otherwise a fresh window replaces them. changed reports a new range.
func (m *Manager) Focus(surah, ayah int) (state State, changed bool) {
	count := m.counter.VerseCount(surah)

	if m.valid && surah == m.state.Surah && m.state.Contains(ayah) && !m.movableEdge(ayah, count) {
		return m.state, false
	}

	next := Fresh(surah, ayah, count)
	changed = !m.valid || next != m.state
	m.state, m.valid = next, true
	return next, changed
}

func (m *Manager) movableEdge(ayah, count int) bool {
	if ayah == m.state.Start && m.state.Start > 1 {
		return true
	}
	return ayah == m.state.End && m.state.End < count
}

// Reset forgets the current window.
func (m *Manager) Reset() {
	m.state, m.valid = State{}, false
}
