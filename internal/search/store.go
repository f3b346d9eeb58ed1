package search

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/knowledge-engine/ayahfinder/internal/corpus"
	"github.com/knowledge-engine/ayahfinder/internal/textnorm"
)

// SearchResult holds a matching verse and its score. Short-tier results
// always score 0.
type SearchResult struct {
	Record corpus.VerseRecord
	Score  float64
}

// Searcher scans a built index. It is safe for concurrent use.
type Searcher struct {
	records []corpus.VerseRecord
	compact []string
	opts    Options
	cache   *lru.Cache[string, []SearchResult]
}

// NewSearcher prepares a searcher over idx.
func NewSearcher(idx *corpus.Index, opts Options) (*Searcher, error) {
	records := idx.Records()
	s := &Searcher{
		records: records,
		compact: make([]string, len(records)),
		opts:    opts,
	}
	for i, rec := range records {
		s.compact[i] = textnorm.Compact(rec.Normalized)
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []SearchResult](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Options returns the thresholds in use.
func (s *Searcher) Options() Options {
	return s.opts
}

// Search ranks the index against query. Queries shorter than
// MinQueryLength after normalization return nothing.
func (s *Searcher) Search(query string) []SearchResult {
	nq := textnorm.Normalize(query)
	length := utf8.RuneCountInString(nq)
	if length < s.opts.MinQueryLength {
		return nil
	}

	if s.cache != nil {
		if hit, ok := s.cache.Get(nq); ok {
			return clone(hit)
		}
	}

	var results []SearchResult
	if length <= s.opts.ShortQueryMaxLength {
		results = s.scanShort(nq)
	} else {
		results = s.rank(nq)
	}

	if s.cache != nil {
		s.cache.Add(nq, results)
	}
	return clone(results)
}

func (s *Searcher) scanShort(nq string) []SearchResult {
	var out []SearchResult
	for _, rec := range s.records {
		if strings.Contains(rec.Normalized, nq) {
			out = append(out, SearchResult{Record: rec})
			if len(out) >= s.opts.ShortLimit {
				break
			}
		}
	}
	return out
}

func (s *Searcher) rank(nq string) []SearchResult {
	terms := Terms(nq, s.opts.MinTermLength)
	if len(terms) == 0 {
		return nil
	}
	anchor := Anchor(terms)
	compactQuery := textnorm.Compact(nq)

	var results []SearchResult
	for i, rec := range s.records {
		text := rec.Normalized

		hits := 0
		for _, t := range terms {
			if strings.Contains(text, t) {
				hits++
			}
		}
		ratio := float64(hits) / float64(len(terms))
		hasAnchor := strings.Contains(text, anchor)

		if len(terms) >= s.opts.ManyTerms {
			if hits < s.opts.MinHits || !hasAnchor {
				continue
			}
		} else if ratio < s.opts.MinRatio {
			continue
		}

		score := ratio
		if strings.Contains(text, nq) {
			score += s.opts.PhraseBonus
		}
		if strings.Contains(s.compact[i], compactQuery) {
			score += s.opts.CompactBonus
		}
		if hasAnchor {
			score += s.opts.AnchorBonus
		}

		results = append(results, SearchResult{Record: rec, Score: score})
	}

	// Sort by descending score, ties keep corpus order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > s.opts.LongLimit {
		return results[:s.opts.LongLimit]
	}
	return results
}

// Terms splits a normalized query on whitespace, drops terms shorter than
// minLength runes and removes duplicates, keeping first-occurrence order.
func Terms(nq string, minLength int) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range strings.Fields(nq) {
		if utf8.RuneCountInString(t) < minLength || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	return terms
}

// Anchor returns the longest term; the first one wins on a tie.
func Anchor(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	anchor := terms[0]
	for _, t := range terms[1:] {
		if utf8.RuneCountInString(t) > utf8.RuneCountInString(anchor) {
			anchor = t
		}
	}
	return anchor
}

func clone(in []SearchResult) []SearchResult {
	if in == nil {
		return nil
	}
	out := make([]SearchResult, len(in))
	copy(out, in)
	return out
}
