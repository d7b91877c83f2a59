// Package cmd implements the mfocus CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mfocus/internal/config"
	"github.com/theirongolddev/mfocus/internal/source"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  Problems: %s\n", strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	fmt.Println()

	bucket := cfg.ActivityWatch.Bucket
	if bucket == "" {
		bucket = source.DefaultBucket() + " (auto)"
	}
	fmt.Println("  [ActivityWatch]")
	fmt.Printf("    URL:           %s\n", config.GetActivityWatchURL(cfg))
	fmt.Printf("    Bucket:        %s\n", bucket)
	fmt.Printf("    Event limit:   %d\n", cfg.ActivityWatch.Limit)
	fmt.Printf("    Excluded apps: %s\n", listOrNone(cfg.ActivityWatch.ExcludedApps))
	fmt.Println()

	fmt.Println("  [Ollama]")
	if cfg.Ollama.Enabled {
		fmt.Printf("    URL:     %s\n", config.GetOllamaURL(cfg))
		fmt.Printf("    Model:   %s\n", config.GetOllamaModel(cfg))
		fmt.Printf("    Timeout: %ds\n", cfg.Ollama.TimeoutSec)
	} else {
		fmt.Println("    Disabled (unmatched windows become other)")
	}
	fmt.Println()

	fmt.Println("  [Classifier]")
	fmt.Printf("    Extra meeting keywords: %s\n", listOrNone(cfg.Classifier.ExtraMeetingKeywords))
	fmt.Printf("    Extra browsers:         %s\n", listOrNone(cfg.Classifier.ExtraBrowsers))
	fmt.Printf("    Extra dev tools:        %s\n", listOrNone(cfg.Classifier.ExtraDevTools))
	fmt.Println()

	fmt.Println("  [Store]")
	if cfg.Store.Enabled {
		fmt.Printf("    Path:    %s\n", storePath(cfg))
		fmt.Printf("    User ID: %s\n", cfg.Store.UserID)
	} else {
		fmt.Println("    Disabled")
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address: %s\n", cfg.Daemon.Addr)
	fmt.Printf("    History: %d events\n", cfg.Daemon.HistorySize)
	fmt.Println()

	fmt.Println("  [Display]")
	fmt.Printf("    UTC offset: %s\n", cfg.Display.UTCOffset)
	fmt.Printf("    Theme:      %s\n", cfg.Display.Theme)
	fmt.Println()

	fmt.Println("  Run `mfocus setup` to reconfigure.")
	return nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
