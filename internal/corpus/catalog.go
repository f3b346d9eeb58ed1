package corpus

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/hbollon/go-edlib"

	"github.com/knowledge-engine/ayahfinder/internal/textnorm"
)

// DefaultResolveThreshold is the minimum Jaro-Winkler similarity accepted by
// Catalog.Resolve.
const DefaultResolveThreshold = 0.8

const surahWord = "سوره"

type rawSurahMeta struct {
	Number      Number `json:"number"`
	NameAr      string `json:"name_ar"`
	Name        string `json:"name"`
	EnglishName string `json:"englishName"`
}

// DecodeSurahMeta parses surah reference data given either as a top-level
// array or wrapped under "data".
func DecodeSurahMeta(data []byte) ([]SurahMeta, error) {
	var rows []rawSurahMeta
	if err := json.Unmarshal(data, &rows); err != nil {
		var wrapped struct {
			Data []rawSurahMeta `json:"data"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil {
			return nil, fmt.Errorf("failed to decode surah metadata: %w", err)
		}
		rows = wrapped.Data
	}

	out := make([]SurahMeta, 0, len(rows))
	for _, r := range rows {
		if r.Number <= 0 {
			continue
		}
		name := r.NameAr
		if name == "" {
			name = r.Name
		}
		out = append(out, SurahMeta{Number: int(r.Number), Name: name, EnglishName: r.EnglishName})
	}
	return out, nil
}

// Catalog resolves surah display names.
type Catalog struct {
	byNumber map[int]SurahMeta
	ordered  []SurahMeta
}

// NewCatalog merges the names found in the corpus with external reference
// data. Non-empty external fields win.
func NewCatalog(base []SurahMeta, external []SurahMeta) *Catalog {
	c := &Catalog{byNumber: make(map[int]SurahMeta, len(base))}
	for _, m := range base {
		c.byNumber[m.Number] = m
		c.ordered = append(c.ordered, m)
	}

	for _, m := range external {
		cur, ok := c.byNumber[m.Number]
		if !ok {
			continue
		}
		if m.Name != "" {
			cur.Name = m.Name
		}
		if m.EnglishName != "" {
			cur.EnglishName = m.EnglishName
		}
		c.byNumber[m.Number] = cur
	}
	for i, m := range c.ordered {
		c.ordered[i] = c.byNumber[m.Number]
	}
	return c
}

// Get returns the metadata of surah n.
func (c *Catalog) Get(n int) (SurahMeta, bool) {
	m, ok := c.byNumber[n]
	return m, ok
}

// Name returns the display name of surah n, falling back to "سورة n".
func (c *Catalog) Name(n int) string {
	if m, ok := c.byNumber[n]; ok && m.Name != "" {
		return m.Name
	}
	return "سورة " + strconv.Itoa(n)
}

// All returns every surah in ascending order.
func (c *Catalog) All() []SurahMeta {
	out := make([]SurahMeta, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Resolve finds the surah best matching query, which may be a number, an
// Arabic name with or without diacritics, or an English transliteration.
func (c *Catalog) Resolve(query string) (SurahMeta, float32, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SurahMeta{}, 0, false
	}
	if n, err := strconv.Atoi(query); err == nil {
		m, ok := c.byNumber[n]
		if !ok {
			return SurahMeta{}, 0, false
		}
		return m, 1, true
	}

	arabic := arabicKey(query)
	latin := latinKey(query)

	var (
		best      SurahMeta
		bestScore float32
	)
	for _, m := range c.ordered {
		score := float32(0)
		if arabic != "" {
			score = max(score, similarity(arabic, arabicKey(m.Name)))
		}
		if latin != "" && m.EnglishName != "" {
			score = max(score, similarity(latin, latinKey(m.EnglishName)))
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}

	if bestScore < DefaultResolveThreshold {
		return SurahMeta{}, bestScore, false
	}
	return best, bestScore, true
}

func similarity(a, b string) float32 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return score
}

func arabicKey(s string) string {
	n := textnorm.Normalize(s)
	n = strings.TrimPrefix(n, surahWord)
	return strings.TrimSpace(n)
}

func latinKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
