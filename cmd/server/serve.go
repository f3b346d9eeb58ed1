package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/knowledge-engine/ayahfinder/internal/api"
	"github.com/knowledge-engine/ayahfinder/internal/config"
	"github.com/knowledge-engine/ayahfinder/internal/engine"
	"github.com/knowledge-engine/ayahfinder/internal/fetcher"
	"github.com/knowledge-engine/ayahfinder/internal/storage"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the datasets and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		return serve(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides SERVER_ADDR)")
}

func serve(ctx context.Context) error {
	logger.Info("Starting ayahfinder API service")

	eng, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	// 4. API Server
	server, err := api.NewServer(eng, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize API server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadEngine runs the shared startup steps of serve and search.
func loadEngine(ctx context.Context) (*engine.Engine, error) {
	// 1. Manifest
	manifest, err := config.LoadManifest(manifestPath())
	if err != nil {
		return nil, err
	}

	// 2. Storage
	store, err := storage.NewFileStorage(cfg.Data.Dir, fetcher.NewFetcher(cfg.Data.FetchTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	// 3. Engine
	eng, err := engine.Bootstrap(ctx, cfg, manifest, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load datasets: %w", err)
	}
	return eng, nil
}

// manifestPath resolves a relative manifest against the data directory.
func manifestPath() string {
	if filepath.IsAbs(cfg.Data.ManifestFile) {
		return cfg.Data.ManifestFile
	}
	return filepath.Join(cfg.Data.Dir, cfg.Data.ManifestFile)
}
