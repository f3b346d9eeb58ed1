package search

// Options holds the ranking thresholds. The defaults were tuned by hand against
// partial queries typed with a soft keyboard; keep them unless there is data
// showing a better set.
type Options struct {
	// MinQueryLength is the shortest normalized query that is searched at all.
	MinQueryLength int
	// ShortQueryMaxLength is the longest query served by plain substring scan.
	ShortQueryMaxLength int
	// ShortLimit caps the short tier; results stay in corpus order.
	ShortLimit int
	// LongLimit caps the ranked tier.
	LongLimit int

	// MinTermLength drops shorter terms from ranked queries.
	MinTermLength int
	// ManyTerms is the term count from which MinHits and the anchor are required.
	ManyTerms int
	MinHits   int
	// MinRatio applies to queries with fewer than ManyTerms terms.
	MinRatio float64

	PhraseBonus  float64
	CompactBonus float64
	AnchorBonus  float64

	// CacheSize is the number of normalized queries kept in the result
	// cache. Zero disables caching.
	CacheSize int
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		MinQueryLength:      2,
		ShortQueryMaxLength: 3,
		ShortLimit:          25,
		LongLimit:           60,
		MinTermLength:       2,
		ManyTerms:           3,
		MinHits:             2,
		MinRatio:            0.5,
		PhraseBonus:         2.5,
		CompactBonus:        1.5,
		AnchorBonus:         0.3,
		CacheSize:           512,
	}
}
