package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/knowledge-engine/ayahfinder/internal/config"
)

var (
	cfg    *config.Config
	logger *logrus.Entry

	dataDir      string
	manifestFile string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "ayahfinder",
	Short: "Verse search with commentary and translation lookup",
	Long: `ayahfinder indexes a verse corpus, answers fuzzy searches over it and
resolves commentary and translation for a focused verse and its neighbors.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if dataDir != "" {
			cfg.Data.Dir = dataDir
		}
		if manifestFile != "" {
			cfg.Data.ManifestFile = manifestFile
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		logger = newLogger(cfg.Log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "dataset directory (overrides DATA_DIR)")
	rootCmd.PersistentFlags().StringVarP(&manifestFile, "manifest", "m", "", "dataset manifest (overrides DATA_MANIFEST)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd, searchCmd, fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(lc config.LogConfig) *logrus.Entry {
	l := logrus.New()
	if lc.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(lc.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	return l.WithField("service", "ayahfinder")
}
