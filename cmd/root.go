package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/mfocus/internal/classify"
	"github.com/theirongolddev/mfocus/internal/config"
	"github.com/theirongolddev/mfocus/internal/ollama"
	"github.com/theirongolddev/mfocus/internal/pipeline"
	"github.com/theirongolddev/mfocus/internal/source"
	"github.com/theirongolddev/mfocus/internal/store"
)

var (
	flagVerbose    bool
	flagQuiet      bool
	flagNoLLM      bool
	flagEventsFile string
)

var rootCmd = &cobra.Command{
	Use:   "mfocus",
	Short: "Meeting focus analyzer",
	Long: "Classify ActivityWatch window events and report how engaged you were\n" +
		"during a meeting or any other time window.",
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Load .env if present; MFOCUS_* overrides may live there.
		_ = godotenv.Load()
		slog.SetDefault(newLogger(flagVerbose))
	},
}

// Process exit codes. exitNoData marks an analysis window with no activity.
const (
	exitFailure = 1
	exitNoData  = 2
)

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, pipeline.ErrNoData) {
		return exitNoData
	}
	return exitFailure
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoLLM, "no-llm", false, "Skip the Ollama fallback; unmatched windows become other")
	rootCmd.PersistentFlags().StringVar(&flagEventsFile, "events-file", "", "Read window events from an ActivityWatch JSON export instead of the server")
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// dataDir holds the store, pid file and daemon log.
func dataDir() string {
	return filepath.Dir(store.DefaultPath())
}

func storePath(cfg config.Config) string {
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return store.DefaultPath()
}

func displayLocation(cfg config.Config) (*time.Location, error) {
	loc, err := pipeline.ParseOffset(cfg.Display.UTCOffset)
	if err != nil {
		return nil, fmt.Errorf("display.utc_offset: %w", err)
	}
	return loc, nil
}

// buildAnalyzer wires the event source, oracle and sink selected by cfg and
// the global flags. The returned close func releases the sink.
func buildAnalyzer(cfg config.Config, logger *slog.Logger) (*pipeline.Analyzer, func() error, error) {
	display, err := displayLocation(cfg)
	if err != nil {
		return nil, nil, err
	}

	var src pipeline.Source
	if flagEventsFile != "" {
		src = source.File{Path: flagEventsFile}
	} else {
		src = source.NewActivityWatch(config.GetActivityWatchURL(cfg), cfg.ActivityWatch.Bucket, cfg.ActivityWatch.Limit)
	}

	var oracle classify.Oracle
	if cfg.Ollama.Enabled && !flagNoLLM {
		oracle = ollama.NewClient(config.GetOllamaURL(cfg), config.GetOllamaModel(cfg))
	}

	closeFn := func() error { return nil }
	var sink pipeline.Sink
	if cfg.Store.Enabled {
		st, err := store.Open(storePath(cfg))
		if err != nil {
			return nil, nil, err
		}
		sink = st
		closeFn = st.Close
	}

	excluded := cfg.ActivityWatch.ExcludedApps
	if excluded == nil {
		excluded = pipeline.DefaultExcludedApps
	}

	a := &pipeline.Analyzer{
		Source: src,
		Oracle: oracle,
		Sink:   sink,
		Rules: classify.DefaultRules().WithExtra(
			cfg.Classifier.ExtraMeetingKeywords,
			cfg.Classifier.ExtraBrowsers,
			cfg.Classifier.ExtraDevTools,
		),
		OracleTimeout: time.Duration(cfg.Ollama.TimeoutSec) * time.Second,
		ExcludedApps:  excluded,
		Display:       display,
		Logger:        logger,
	}
	return a, closeFn, nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", config.ConfigPath(), err)
	}
	return cfg, nil
}
