package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/knowledge-engine/ayahfinder/internal/commentary"
	"github.com/knowledge-engine/ayahfinder/internal/config"
	"github.com/knowledge-engine/ayahfinder/internal/corpus"
	"github.com/knowledge-engine/ayahfinder/internal/storage"
)

// dataset is the outcome of reading one manifest entry.
type dataset struct {
	info DatasetInfo
	raw  any
	data []byte
	err  error
}

// Bootstrap reads every dataset listed in the manifest and builds the engine.
// Only the corpus is required. Surah names, the translation and each
// commentary source are optional and a failure only disables that dataset.
// Auxiliary datasets are read concurrently, bounded by
// cfg.Data.LoadConcurrency, and registered in manifest order.
func Bootstrap(ctx context.Context, cfg *config.Config, m *config.Manifest, store storage.DatasetStorage, logger *logrus.Entry) (*Engine, error) {
	log := logger.WithField("component", "bootstrap")

	primary := read(ctx, store, "corpus", m.Corpus, false)
	if primary.err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", primary.err)
	}
	c, err := corpus.Decode(primary.data)
	if err != nil {
		return nil, err
	}

	eng, err := NewEngine(cfg, logger, c)
	if err != nil {
		return nil, err
	}
	eng.recordDataset(primary.info)
	log.WithFields(infoFields(primary.info)).Info("Corpus loaded")

	var (
		surahs      *dataset
		translation *dataset
		sources     = make([]*dataset, len(m.Commentary))
	)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Data.LoadConcurrency > 0 {
		g.SetLimit(cfg.Data.LoadConcurrency)
	}

	if m.Surahs != "" {
		g.Go(func() error {
			surahs = read(gctx, store, "surahs", m.Surahs, false)
			return nil
		})
	}
	if m.Translation != "" {
		g.Go(func() error {
			translation = read(gctx, store, "translation", m.Translation, true)
			return nil
		})
	}
	for i, src := range m.Commentary {
		g.Go(func() error {
			sources[i] = read(gctx, store, src.ID, src.Location, true)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bootstrap cancelled: %w", err)
	}

	if surahs != nil {
		eng.recordDataset(surahs.info)
		metas, err := decodeSurahs(surahs)
		if err != nil {
			log.WithError(err).Warn("Surah names unavailable; using corpus names")
		} else {
			eng.LoadSurahMeta(metas)
			log.WithFields(infoFields(surahs.info)).Info("Surah names loaded")
		}
	}

	if translation != nil {
		eng.recordDataset(translation.info)
		if translation.err != nil {
			log.WithError(translation.err).Warn("Translation unavailable")
		} else if eng.LoadTranslation(translation.raw) {
			log.WithFields(infoFields(translation.info)).Info("Translation loaded")
		}
	}

	for i, src := range m.Commentary {
		ds := sources[i]
		eng.recordDataset(ds.info)
		if ds.err != nil {
			eng.Commentary.MarkUnavailable(src.ID, src.Label, ds.err.Error())
			log.WithError(ds.err).WithField("source", src.ID).Warn("Commentary source unavailable")
			continue
		}
		eng.LoadCommentary(src.ID, src.Label, ds.raw, commentary.Options{StripMarkup: src.StripMarkup})
	}

	log.WithFields(logrus.Fields{
		"commentary": len(eng.Commentary.Available()),
		"attempted":  len(m.Commentary),
		"translated": eng.Translation() != nil,
	}).Info("Bootstrap complete")

	return eng, nil
}

// read fetches one dataset. When decode is set the body is parsed as
// generic JSON into raw.
func read(ctx context.Context, store storage.DatasetStorage, name, location string, decode bool) *dataset {
	ds := &dataset{info: DatasetInfo{Name: name, Location: location}}

	data, err := store.Get(ctx, location)
	if err != nil {
		ds.fail(err)
		return ds
	}
	ds.data = data
	ds.info.Bytes = len(data)
	ds.info.Checksum = fmt.Sprintf("%016x", xxhash.Sum64(data))

	if decode {
		if err := json.Unmarshal(data, &ds.raw); err != nil {
			ds.fail(fmt.Errorf("invalid JSON: %w", err))
		}
	}
	return ds
}

func (ds *dataset) fail(err error) {
	ds.err = err
	ds.info.Error = err.Error()
}

func decodeSurahs(ds *dataset) ([]corpus.SurahMeta, error) {
	if ds.err != nil {
		return nil, ds.err
	}
	metas, err := corpus.DecodeSurahMeta(ds.data)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("no surah entries in %s", ds.info.Location)
	}
	return metas, nil
}

func infoFields(info DatasetInfo) logrus.Fields {
	return logrus.Fields{
		"location": info.Location,
		"bytes":    info.Bytes,
		"checksum": info.Checksum,
	}
}
