package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/knowledge-engine/ayahfinder/internal/config"
	"github.com/knowledge-engine/ayahfinder/internal/fetcher"
	"github.com/knowledge-engine/ayahfinder/internal/storage"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the remote datasets listed in the manifest into the data directory",
	Long: `fetch downloads every http(s) location in the manifest and saves it in the
data directory under the last path segment of its URL. Point the manifest at
those file names to serve offline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := config.LoadManifest(manifestPath())
		if err != nil {
			return err
		}

		store, err := storage.NewFileStorage(cfg.Data.Dir, fetcher.NewFetcher(cfg.Data.FetchTimeout))
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()

		var fetched, failed int
		for _, loc := range manifest.Locations() {
			if !fetcher.IsRemote(loc) {
				continue
			}
			log := logger.WithField("url", loc)

			// Get decompresses .xz and Save compresses it again
			data, err := store.Get(cmd.Context(), loc)
			if err != nil {
				log.WithError(err).Warn("Download failed")
				failed++
				continue
			}

			name := storage.LocalName(loc)
			if err := store.Save(name, data); err != nil {
				log.WithError(err).Warn("Save failed")
				failed++
				continue
			}
			log.WithFields(logrus.Fields{"file": name, "bytes": len(data)}).Info("Dataset saved")
			fetched++
		}

		logger.WithFields(logrus.Fields{"fetched": fetched, "failed": failed}).Info("Fetch complete")
		if failed > 0 {
			return fmt.Errorf("%d datasets failed to download", failed)
		}
		return nil
	},
}
