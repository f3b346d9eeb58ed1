package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/knowledge-engine/ayahfinder/internal/commentary"
	"github.com/knowledge-engine/ayahfinder/internal/config"
	"github.com/knowledge-engine/ayahfinder/internal/corpus"
	"github.com/knowledge-engine/ayahfinder/internal/search"
	"github.com/knowledge-engine/ayahfinder/internal/translation"
)

// Engine is the queryable core: the verse index, the searcher and every
// auxiliary dataset. After loading it is read-only and safe for concurrent
// readers; per-user state lives in Session.
type Engine struct {
	Config     *config.Config
	Logger     *logrus.Entry
	Index      *corpus.Index
	Searcher   *search.Searcher
	Commentary *commentary.Registry

	mu          sync.RWMutex
	catalog     *corpus.Catalog
	translation *translation.Map
	datasets    []DatasetInfo

	// Stats
	Stats EngineStats
}

type EngineStats struct {
	Surahs   int
	Verses   int
	LoadedAt time.Time
}

// DatasetInfo records a dataset read during bootstrap.
type DatasetInfo struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Bytes    int    `json:"bytes"`
	Checksum string `json:"checksum,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SearchOptions converts the configured thresholds.
func SearchOptions(cfg config.SearchConfig) search.Options {
	return search.Options{
		MinQueryLength:      cfg.MinQueryLength,
		ShortQueryMaxLength: cfg.ShortQueryMaxLength,
		ShortLimit:          cfg.ShortLimit,
		LongLimit:           cfg.LongLimit,
		MinTermLength:       cfg.MinTermLength,
		ManyTerms:           cfg.ManyTerms,
		MinHits:             cfg.MinHits,
		MinRatio:            cfg.MinRatio,
		PhraseBonus:         cfg.PhraseBonus,
		CompactBonus:        cfg.CompactBonus,
		AnchorBonus:         cfg.AnchorBonus,
		CacheSize:           cfg.CacheSize,
	}
}

// NewEngine builds the index from c. A malformed corpus is the only fatal
// condition; it is returned wrapping corpus.ErrCorpusMalformed.
func NewEngine(cfg *config.Config, logger *logrus.Entry, c *corpus.Corpus) (*Engine, error) {
	idx, err := corpus.Build(c)
	if err != nil {
		return nil, err
	}

	searcher, err := search.NewSearcher(idx, SearchOptions(cfg.Search))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize searcher: %w", err)
	}

	e := &Engine{
		Config:     cfg,
		Logger:     logger.WithField("component", "engine"),
		Index:      idx,
		Searcher:   searcher,
		Commentary: commentary.NewRegistry(),
		catalog:    corpus.NewCatalog(idx.Surahs(), nil),
		Stats: EngineStats{
			Surahs:   len(idx.Surahs()),
			Verses:   idx.Len(),
			LoadedAt: time.Now(),
		},
	}

	e.Logger.WithFields(logrus.Fields{
		"surahs": e.Stats.Surahs,
		"verses": e.Stats.Verses,
	}).Info("Corpus index built")

	return e, nil
}

// LoadSurahMeta merges external surah reference data into the catalog.
func (e *Engine) LoadSurahMeta(metas []corpus.SurahMeta) {
	catalog := corpus.NewCatalog(e.Index.Surahs(), metas)

	e.mu.Lock()
	e.catalog = catalog
	e.mu.Unlock()
}

// Catalog returns the surah name catalog.
func (e *Engine) Catalog() *corpus.Catalog {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.catalog
}

// LoadCommentary registers one commentary dataset. It reports whether the
// dataset produced any entries; false is not an error.
func (e *Engine) LoadCommentary(id, label string, raw any, opts commentary.Options) bool {
	ok := e.Commentary.Load(id, label, raw, opts)

	log := e.Logger.WithFields(logrus.Fields{"source": id})
	if !ok {
		log.Warn("Commentary source has no usable entries")
		return false
	}
	src, _ := e.Commentary.Get(id)
	log.WithFields(logrus.Fields{
		"shape":   src.Shape,
		"entries": src.Set.Len(),
	}).Info("Commentary source loaded")
	return true
}

// LoadTranslation aligns a positional translation onto the index. On
// failure the engine keeps running without a translation.
func (e *Engine) LoadTranslation(raw any) bool {
	m, ok := translation.Align(raw, e.Index)
	if !ok {
		e.Logger.Warn("Translation dataset is not a sequence; translation disabled")
		return false
	}

	if filled := m.Filled(); filled != e.Index.Len() {
		e.Logger.WithFields(logrus.Fields{
			"verses":     e.Index.Len(),
			"translated": filled,
		}).Warn("Translation does not cover every verse")
	}

	e.mu.Lock()
	e.translation = m
	e.mu.Unlock()
	return true
}

// Translation returns the aligned translation, or nil when absent.
func (e *Engine) Translation() *translation.Map {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.translation
}

// Search runs query against the index.
func (e *Engine) Search(query string) []search.SearchResult {
	return e.Searcher.Search(query)
}

// Sources reports every commentary source that was attempted.
func (e *Engine) Sources() []commentary.SourceStatus {
	return e.Commentary.Status()
}

// ResolveSurah finds a surah by number or fuzzy name.
func (e *Engine) ResolveSurah(name string) (corpus.SurahMeta, bool) {
	m, _, ok := e.Catalog().Resolve(name)
	return m, ok
}

// Datasets lists the datasets read during bootstrap.
func (e *Engine) Datasets() []DatasetInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]DatasetInfo, len(e.datasets))
	copy(out, e.datasets)
	return out
}

func (e *Engine) recordDataset(info DatasetInfo) {
	e.mu.Lock()
	e.datasets = append(e.datasets, info)
	e.mu.Unlock()
}
