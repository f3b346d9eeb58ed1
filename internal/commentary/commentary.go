// Package commentary ingests tafsir datasets published in several
// incompatible JSON layouts and normalizes each into a sparse
// surah -> ayah -> text map.
package commentary

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Shape names the raw layout a dataset was recognized as.
type Shape string

const (
	ShapeUnknown         Shape = ""
	ShapeTuples          Shape = "tuples"
	ShapeRecords         Shape = "records"
	ShapeCompositeText   Shape = "composite_text"
	ShapeNested          Shape = "nested"
	ShapeCompositeRecord Shape = "composite_record"
)

var (
	surahAliases     = []string{"surah", "sura", "chapter", "s", "surahNo", "surah_number"}
	ayahAliases      = []string{"ayah", "aya", "verse", "a", "ayahNo", "ayah_number"}
	textAliases      = []string{"text", "tafsir", "content", "value", "explain", "meaning", "commentary"}
	containerAliases = []string{"data", "tafsir", "result", "results"}
)

// Options tune ingestion of one dataset.
type Options struct {
	// StripMarkup removes HTML tags and entities from entry text.
	StripMarkup bool
}

// Set is the normalized form of one commentary dataset. It is never
// modified after Normalize returns.
type Set struct {
	entries map[string]map[string]string
	count   int
}

// Lookup returns the text for a verse, if the dataset has one.
func (s *Set) Lookup(surah, ayah int) (string, bool) {
	return s.LookupKey(strconv.Itoa(surah), strconv.Itoa(ayah))
}

// LookupKey is Lookup with already normalized keys.
func (s *Set) LookupKey(surahKey, ayahKey string) (string, bool) {
	if s == nil {
		return "", false
	}
	text, ok := s.entries[surahKey][ayahKey]
	return text, ok
}

// Len returns the number of annotated verses.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.count
}

// Surahs returns the number of surahs with at least one entry.
func (s *Set) Surahs() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

func (s *Set) put(surah, ayah, text any, opts Options) {
	sk, ok := normalizeKey(surah)
	if !ok {
		return
	}
	ak, ok := normalizeKey(ayah)
	if !ok {
		return
	}
	t, ok := stringify(text)
	if !ok {
		return
	}
	if opts.StripMarkup {
		t = StripMarkup(t)
	}
	t = strings.TrimSpace(t)
	if t == "" {
		return
	}

	inner, ok := s.entries[sk]
	if !ok {
		inner = make(map[string]string)
		s.entries[sk] = inner
	}
	if _, exists := inner[ak]; !exists {
		s.count++
	}
	inner[ak] = t
}

// Normalize ingests raw, a value produced by encoding/json, with default options.
func Normalize(raw any) *Set {
	set, _ := NormalizeWith(raw, Options{})
	return set
}

// NormalizeWith ingests raw and reports the recognized shape. Unrecognized
// input yields an empty set and ShapeUnknown; it is never an error.
func NormalizeWith(raw any, opts Options) (*Set, Shape) {
	set := &Set{entries: make(map[string]map[string]string)}

	switch v := raw.(type) {
	case []any:
		return set, normalizeRows(set, v, opts)
	case map[string]any:
		for _, p := range mappingParsers {
			if !p.match(v) {
				continue
			}
			p.extract(set, v, opts)
			if set.Len() > 0 {
				return set, p.shape
			}
		}
	}
	return set, ShapeUnknown
}

// rowParser recognizes one element of a top-level sequence.
type rowParser struct {
	shape   Shape
	extract func(row any) (surah, ayah, text any, ok bool)
}

var rowParsers = []rowParser{
	{shape: ShapeTuples, extract: tupleRow},
	{shape: ShapeRecords, extract: recordRow},
}

func normalizeRows(set *Set, rows []any, opts Options) Shape {
	shape := ShapeUnknown
	for _, row := range rows {
		for _, p := range rowParsers {
			s, a, t, ok := p.extract(row)
			if !ok {
				continue
			}
			set.put(s, a, t, opts)
			if shape == ShapeUnknown {
				shape = p.shape
			}
			break
		}
	}
	if set.Len() == 0 {
		return ShapeUnknown
	}
	return shape
}

func tupleRow(row any) (any, any, any, bool) {
	tuple, ok := row.([]any)
	if !ok || len(tuple) < 3 {
		return nil, nil, nil, false
	}
	return tuple[0], tuple[1], tuple[2], true
}

func recordRow(row any) (any, any, any, bool) {
	rec, ok := row.(map[string]any)
	if !ok {
		return nil, nil, nil, false
	}
	return field(rec, surahAliases), field(rec, ayahAliases), field(rec, textAliases), true
}

// mappingParser recognizes a top-level object layout.
type mappingParser struct {
	shape   Shape
	match   func(m map[string]any) bool
	extract func(set *Set, m map[string]any, opts Options)
}

var mappingParsers = []mappingParser{
	{shape: ShapeCompositeText, match: isCompositeText, extract: extractComposite},
	{shape: ShapeNested, match: isNested, extract: extractNested},
	{shape: ShapeCompositeRecord, match: isCompositeRecord, extract: extractComposite},
}

// isCompositeText matches {"2:255": "text", ...}.
func isCompositeText(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k, v := range m {
		if !strings.Contains(k, ":") || isComposite(v) {
			return false
		}
	}
	return true
}

// isCompositeRecord matches {"2:255": {"text": "..."}, ...}.
func isCompositeRecord(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	records := 0
	for k, v := range m {
		if !strings.Contains(k, ":") {
			return false
		}
		if _, ok := v.(map[string]any); ok {
			records++
		}
	}
	return records > 0
}

func extractComposite(set *Set, m map[string]any, opts Options) {
	for _, k := range sortedKeys(m) {
		parts := strings.Split(k, ":")
		if len(parts) < 2 {
			continue
		}
		v := m[k]
		if rec, ok := v.(map[string]any); ok {
			v = field(rec, textAliases)
		}
		set.put(parts[0], parts[1], v, opts)
	}
}

// unwrap descends through the first present container field.
func unwrap(m map[string]any) (map[string]any, bool) {
	for _, alias := range containerAliases {
		v, ok := m[alias]
		if !ok || v == nil {
			continue
		}
		inner, ok := v.(map[string]any)
		return inner, ok
	}
	return m, true
}

// isNested matches {"2": {"255": "text"}}, optionally under a container field.
func isNested(m map[string]any) bool {
	candidate, ok := unwrap(m)
	if !ok {
		return false
	}
	for k, v := range candidate {
		if strings.Contains(k, ":") {
			continue
		}
		if _, ok := v.(map[string]any); ok {
			return true
		}
	}
	return false
}

func extractNested(set *Set, m map[string]any, opts Options) {
	candidate, _ := unwrap(m)
	for _, sk := range sortedKeys(candidate) {
		if strings.Contains(sk, ":") {
			continue
		}
		inner, ok := candidate[sk].(map[string]any)
		if !ok {
			continue
		}
		for _, ak := range sortedKeys(inner) {
			set.put(sk, ak, inner[ak], opts)
		}
	}
}

func field(rec map[string]any, aliases []string) any {
	for _, alias := range aliases {
		if v, ok := rec[alias]; ok && v != nil {
			return v
		}
	}
	return nil
}

func isComposite(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// normalizeKey renders a surah or ayah id as a decimal string without
// leading zeros. Null ids are rejected.
func normalizeKey(v any) (string, bool) {
	s, ok := stringify(v)
	if !ok {
		return "", false
	}
	s = strings.TrimLeft(strings.TrimSpace(s), "0")
	if s == "" {
		s = "0"
	}
	return s, true
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}
