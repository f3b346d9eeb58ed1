package window_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knowledge-engine/ayahfinder/internal/window"
)

type counts map[int]int

func (c counts) VerseCount(surah int) int { return c[surah] }

var testCounts = counts{1: 7, 2: 20, 3: 10}

func TestFresh(t *testing.T) {
	tests := []struct {
		name        string
		surah, ayah int
		start, end  int
	}{
		{"Default placement", 2, 5, 3, 12},
		{"Clipped at start", 2, 1, 1, 10},
		{"Clipped at start, second verse", 2, 2, 1, 10},
		{"Clipped at end", 2, 20, 11, 20},
		{"Shifted near end", 2, 15, 11, 20},
		{"Small surah covers everything", 1, 4, 1, 7},
		{"Exactly ten verses", 3, 9, 1, 10},
		{"Ayah past the end is clamped", 2, 99, 11, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := window.Fresh(tt.surah, tt.ayah, testCounts[tt.surah])
			assert.Equal(t, window.State{Surah: tt.surah, Start: tt.start, End: tt.end}, s)
			assert.LessOrEqual(t, s.Size(), window.MaxSize)
		})
	}
}

func TestFreshUnknownSurah(t *testing.T) {
	assert.Equal(t, window.State{Surah: 9}, window.Fresh(9, 1, 0))
}

func TestManagerHysteresis(t *testing.T) {
	m := window.NewManager(testCounts)

	_, ok := m.State()
	assert.False(t, ok)

	s, changed := m.Focus(2, 5)
	assert.True(t, changed)
	assert.Equal(t, window.State{Surah: 2, Start: 3, End: 12}, s)

	// inside, not an edge
	s, changed = m.Focus(2, 6)
	assert.False(t, changed)
	assert.Equal(t, window.State{Surah: 2, Start: 3, End: 12}, s)

	s, changed = m.Focus(2, 11)
	assert.False(t, changed)
	assert.Equal(t, 3, s.Start)

	// movable start edge
	s, changed = m.Focus(2, 3)
	assert.True(t, changed)
	assert.True(t, s.Contains(3))
	assert.Equal(t, window.State{Surah: 2, Start: 1, End: 10}, s)

	// start edge at verse 1 cannot move
	s, changed = m.Focus(2, 1)
	assert.False(t, changed)
	assert.Equal(t, window.State{Surah: 2, Start: 1, End: 10}, s)

	// movable end edge
	s, changed = m.Focus(2, 10)
	assert.True(t, changed)
	assert.Equal(t, window.State{Surah: 2, Start: 8, End: 17}, s)

	// outside the range
	s, _ = m.Focus(2, 20)
	assert.Equal(t, window.State{Surah: 2, Start: 11, End: 20}, s)

	// end edge at the last verse cannot move
	s, changed = m.Focus(2, 20)
	assert.False(t, changed)
	assert.Equal(t, 11, s.Start)
}

func TestManagerSurahChange(t *testing.T) {
	m := window.NewManager(testCounts)

	m.Focus(2, 5)
	s, changed := m.Focus(1, 5)
	assert.True(t, changed)
	assert.Equal(t, window.State{Surah: 1, Start: 1, End: 7}, s)

	// whole surah visible, edges are fixed
	s, changed = m.Focus(1, 7)
	assert.False(t, changed)
	assert.Equal(t, 1, s.Start)
}

func TestManagerReset(t *testing.T) {
	m := window.NewManager(testCounts)
	m.Focus(2, 5)
	m.Reset()

	_, ok := m.State()
	assert.False(t, ok)

	s, changed := m.Focus(2, 5)
	assert.True(t, changed)
	assert.Equal(t, 3, s.Start)
}

func TestManagerRefocusFromScratch(t *testing.T) {
	m := window.NewManager(testCounts)

	s, _ := m.Focus(2, 1)
	assert.Equal(t, window.State{Surah: 2, Start: 1, End: 10}, s)
}
