// Package translation aligns a positional translation dataset onto the
// canonical verse order.
//
// The dataset carries no verse ids: element i belongs to the i-th verse of
// the index. Correctness therefore depends on the dataset being published in
// the same surah-then-ayah order as the corpus. Shorter datasets leave the
// trailing verses empty, longer ones are truncated.
package translation

import (
	"strconv"
	"strings"

	"github.com/knowledge-engine/ayahfinder/internal/corpus"
)

// Map is a dense surah -> ayah -> text mapping covering every verse of the
// index it was aligned to. An empty string means no translation.
type Map struct {
	entries map[string]map[string]string
	verses  int
	filled  int
}

// Align walks idx in canonical order and assigns raw[i] to the i-th verse.
// raw must be a JSON array of strings or of records with a "text" field;
// anything else reports false and the translation is treated as absent.
func Align(raw any, idx *corpus.Index) (*Map, bool) {
	rows, ok := raw.([]any)
	if !ok || idx == nil {
		return nil, false
	}

	m := &Map{entries: make(map[string]map[string]string)}
	for i, rec := range idx.Records() {
		text := ""
		if i < len(rows) {
			text = coerce(rows[i])
		}

		sk := strconv.Itoa(rec.Surah)
		inner, ok := m.entries[sk]
		if !ok {
			inner = make(map[string]string)
			m.entries[sk] = inner
		}
		inner[strconv.Itoa(rec.Ayah)] = text

		m.verses++
		if text != "" {
			m.filled++
		}
	}
	return m, true
}

func coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		return coerce(t["text"])
	}
	return ""
}

// Lookup returns the translation of a verse. ok is false only for verses
// outside the aligned index; a covered verse may have an empty text.
func (m *Map) Lookup(surah, ayah int) (string, bool) {
	if m == nil {
		return "", false
	}
	text, ok := m.entries[strconv.Itoa(surah)][strconv.Itoa(ayah)]
	return text, ok
}

// Len returns the number of covered verses, which equals the index length.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.verses
}

// Filled returns the number of verses with a non-empty translation.
func (m *Map) Filled() int {
	if m == nil {
		return 0
	}
	return m.filled
}
