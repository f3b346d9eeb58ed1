package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/knowledge-engine/ayahfinder/internal/translation"
	"github.com/knowledge-engine/ayahfinder/internal/window"
)

var (
	ErrVerseNotFound      = errors.New("verse not found")
	ErrInvalidDisplayMode = errors.New("invalid display mode")
	ErrNoFocus            = errors.New("no verse is focused")
)

// DisplayMode selects which texts a view carries for the window verses.
type DisplayMode string

const (
	ModeOriginal    DisplayMode = "original"
	ModeTranslation DisplayMode = "translation"
	ModeBoth        DisplayMode = "both"
)

// ParseDisplayMode accepts the mode names and the short forms "ar" and "en".
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch s {
	case "", string(ModeOriginal), "ar":
		return ModeOriginal, nil
	case string(ModeTranslation), "en":
		return ModeTranslation, nil
	case string(ModeBoth):
		return ModeBoth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDisplayMode, s)
}

// FocusSelection is the verse a session currently looks at.
type FocusSelection struct {
	Surah int `json:"surah"`
	Ayah  int `json:"ayah"`
}

// VerseView is one verse of the context window.
type VerseView struct {
	Ayah        int     `json:"ayah"`
	Text        string  `json:"text"`
	Translation *string `json:"translation,omitempty"`
	Primary     bool    `json:"primary"`
}

// View is everything a host needs to render a focused verse.
type View struct {
	Surah         int          `json:"surah"`
	SurahName     string       `json:"surah_name"`
	Ayah          int          `json:"ayah"`
	Window        window.State `json:"window"`
	WindowChanged bool         `json:"window_changed"`
	Mode          DisplayMode  `json:"mode"`
	Verses        []VerseView  `json:"verses"`
	Source        string       `json:"source,omitempty"`
	SourceLabel   string       `json:"source_label,omitempty"`
	Commentary    *string      `json:"commentary"`
	Translation   *string      `json:"translation"`
}

// Session holds the focus, window, commentary source and display mode of a
// single reader. It is not safe for concurrent use.
type Session struct {
	ID string

	engine  *Engine
	windows *window.Manager
	focus   *FocusSelection
	source  string
	mode    DisplayMode
}

// NewSession starts a session with no focus. The first available commentary
// source is selected.
func (e *Engine) NewSession() *Session {
	s := &Session{
		ID:      uuid.NewString(),
		engine:  e,
		windows: window.NewManager(e.Index),
		mode:    ModeOriginal,
	}
	if ids := e.Commentary.Available(); len(ids) > 0 {
		s.source = ids[0]
	}
	return s
}

// Selection returns the focused verse, if any.
func (s *Session) Selection() (FocusSelection, bool) {
	if s.focus == nil {
		return FocusSelection{}, false
	}
	return *s.focus, true
}

// Source returns the selected commentary source id.
func (s *Session) Source() string {
	return s.source
}

// Mode returns the display mode.
func (s *Session) Mode() DisplayMode {
	return s.mode
}

// Focus selects (surah, ayah) and returns its view.
func (s *Session) Focus(surah, ayah int) (*View, error) {
	if _, ok := s.engine.Index.Verse(surah, ayah); !ok {
		return nil, fmt.Errorf("%w: %d:%d", ErrVerseNotFound, surah, ayah)
	}

	state, changed := s.windows.Focus(surah, ayah)
	s.focus = &FocusSelection{Surah: surah, Ayah: ayah}
	return s.view(state, changed), nil
}

// Refresh rebuilds the view of the current focus without moving the window.
func (s *Session) Refresh() (*View, error) {
	state, ok := s.windows.State()
	if s.focus == nil || !ok {
		return nil, ErrNoFocus
	}
	return s.view(state, false), nil
}

// SelectCommentarySource switches the commentary shown for the focus. An id
// that was never loaded is accepted; lookups then yield no commentary.
func (s *Session) SelectCommentarySource(id string) {
	s.source = id
}

// SelectDisplayMode switches between original, translation and both.
func (s *Session) SelectDisplayMode(mode string) error {
	m, err := ParseDisplayMode(mode)
	if err != nil {
		return err
	}
	s.mode = m
	return nil
}

// Reset clears the focus and the window. Source and mode are kept.
func (s *Session) Reset() {
	s.focus = nil
	s.windows.Reset()
}

func (s *Session) view(state window.State, changed bool) *View {
	e := s.engine
	f := *s.focus
	tr := e.Translation()

	v := &View{
		Surah:         f.Surah,
		SurahName:     e.Catalog().Name(f.Surah),
		Ayah:          f.Ayah,
		Window:        state,
		WindowChanged: changed,
		Mode:          s.mode,
		Source:        s.source,
	}

	for _, rec := range e.Index.Range(state.Surah, state.Start, state.End) {
		vv := VerseView{
			Ayah:    rec.Ayah,
			Text:    rec.Text,
			Primary: rec.Ayah == f.Ayah,
		}
		if s.mode != ModeOriginal {
			vv.Translation = translationOf(tr, rec.Surah, rec.Ayah)
		}
		v.Verses = append(v.Verses, vv)
	}

	if src, ok := e.Commentary.Get(s.source); ok {
		v.SourceLabel = src.Label
		if text, ok := src.Set.Lookup(f.Surah, f.Ayah); ok {
			v.Commentary = &text
		}
	}
	v.Translation = translationOf(tr, f.Surah, f.Ayah)

	return v
}

// translationOf returns nil when no translation is loaded or the entry is
// empty.
func translationOf(m *translation.Map, surah, ayah int) *string {
	text, ok := m.Lookup(surah, ayah)
	if !ok || text == "" {
		return nil
	}
	return &text
}
