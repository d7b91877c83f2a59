package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/mfocus/internal/config"
	"github.com/theirongolddev/mfocus/internal/source"
	"github.com/theirongolddev/mfocus/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled. Nothing was saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := vals.Apply(&cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	aw := source.NewActivityWatch(config.GetActivityWatchURL(cfg), cfg.ActivityWatch.Bucket, cfg.ActivityWatch.Limit)
	if err := aw.Ping(ctx); err != nil {
		fmt.Printf("  ActivityWatch: unreachable (%v)\n", err)
	} else {
		fmt.Printf("  ActivityWatch: ok, reading bucket %s\n", aw.Bucket())
	}

	fmt.Println("  Run `mfocus setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
