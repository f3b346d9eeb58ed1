package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/knowledge-engine/ayahfinder/internal/textnorm"
)

// ErrCorpusMalformed is returned when the corpus is absent or structurally
// empty. Nothing else in the core is fatal.
var ErrCorpusMalformed = errors.New("corpus malformed")

// Corpus is the hierarchical verse corpus as handed over by a loader.
type Corpus struct {
	Surahs []Surah `json:"surahs"`
}

// Surah is one top-level division with its verses in order.
type Surah struct {
	Number      Number `json:"number"`
	Name        string `json:"name_ar"`
	AltName     string `json:"name"`
	EnglishName string `json:"englishName"`
	Ayahs       []Ayah `json:"ayahs"`
}

// DisplayName prefers the Arabic name field and falls back to "name".
func (s Surah) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.AltName
}

// Ayah is a single verse as found in the raw corpus.
type Ayah struct {
	NumberInSurah Number `json:"numberInSurah"`
	Text          string `json:"text"`
}

// Number decodes either a JSON number or a numeric string.
type Number int

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*n = Number(v)
	return nil
}

// Decode parses a corpus JSON document. The surah list may sit at the top
// level, under "surahs", or under "data.surahs".
func Decode(data []byte) (*Corpus, error) {
	var probe struct {
		Data *struct {
			Surahs []Surah `json:"surahs"`
		} `json:"data"`
		Surahs []Surah `json:"surahs"`
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var surahs []Surah
		if err := json.Unmarshal(data, &surahs); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorpusMalformed, err)
		}
		return &Corpus{Surahs: surahs}, nil
	}

	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusMalformed, err)
	}
	if probe.Data != nil && len(probe.Data.Surahs) > 0 {
		return &Corpus{Surahs: probe.Data.Surahs}, nil
	}
	return &Corpus{Surahs: probe.Surahs}, nil
}

// VerseRecord is one flattened verse. Records are immutable once built.
type VerseRecord struct {
	Surah      int    `json:"surah"`
	Ayah       int    `json:"ayah"`
	Text       string `json:"text"`
	Normalized string `json:"-"`
}

// Build flattens c into an Index in canonical order.
func Build(c *Corpus) (*Index, error) {
	if c == nil || len(c.Surahs) == 0 {
		return nil, fmt.Errorf("%w: no surahs", ErrCorpusMalformed)
	}

	surahs := make([]Surah, len(c.Surahs))
	copy(surahs, c.Surahs)
	sort.SliceStable(surahs, func(i, j int) bool {
		return surahs[i].Number < surahs[j].Number
	})

	idx := &Index{
		bySurah: make(map[int]span, len(surahs)),
	}

	for _, s := range surahs {
		if len(s.Ayahs) == 0 {
			return nil, fmt.Errorf("%w: surah %d has no ayahs", ErrCorpusMalformed, s.Number)
		}
		number := int(s.Number)
		if _, dup := idx.bySurah[number]; dup {
			return nil, fmt.Errorf("%w: surah %d listed twice", ErrCorpusMalformed, number)
		}

		ayahs := make([]VerseRecord, len(s.Ayahs))
		for i, a := range s.Ayahs {
			n := int(a.NumberInSurah)
			if n <= 0 {
				n = i + 1
			}
			ayahs[i] = VerseRecord{
				Surah:      number,
				Ayah:       n,
				Text:       a.Text,
				Normalized: textnorm.Normalize(a.Text),
			}
		}
		sort.SliceStable(ayahs, func(i, j int) bool {
			return ayahs[i].Ayah < ayahs[j].Ayah
		})

		idx.bySurah[number] = span{offset: len(idx.records), count: len(ayahs)}
		idx.records = append(idx.records, ayahs...)
		idx.surahs = append(idx.surahs, SurahMeta{
			Number:      number,
			Name:        s.DisplayName(),
			EnglishName: s.EnglishName,
		})
	}

	return idx, nil
}
