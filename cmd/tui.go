package cmd

import (
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/mfocus/internal/config"
	"github.com/theirongolddev/mfocus/internal/tui"
	"github.com/theirongolddev/mfocus/internal/tui/theme"
)

var (
	flagTUIStart   string
	flagTUIEnd     string
	flagTUILast    time.Duration
	flagTUISession string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive engagement dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagTUIStart, "start", "", "Fixed window start (ISO-8601)")
	tuiCmd.Flags().StringVar(&flagTUIEnd, "end", "", "Fixed window end (ISO-8601)")
	tuiCmd.Flags().DurationVar(&flagTUILast, "last", 30*time.Minute, "Trailing window, re-evaluated on every refresh")
	tuiCmd.Flags().StringVar(&flagTUISession, "session", "", "Session ID recorded with stored events")
	rootCmd.AddCommand(tuiCmd)
}

// tuiWindow returns a fixed window when --start/--end are given, otherwise
// a trailing window that slides with now.
func tuiWindow(start, end string, last time.Duration) (tui.WindowFunc, error) {
	if start != "" || end != "" {
		s, e, err := resolveWindow(time.Now(), start, end, 0)
		if err != nil {
			return nil, err
		}
		return func(time.Time) (time.Time, time.Time) { return s, e }, nil
	}
	if last <= 0 {
		return nil, fmt.Errorf("--last must be positive, got %s", last)
	}
	return func(now time.Time) (time.Time, time.Time) {
		return now.Add(-last).UTC(), now.UTC()
	}, nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	window, err := tuiWindow(flagTUIStart, flagTUIEnd, flagTUILast)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	theme.SetActive(cfg.Display.Theme)

	// Force TrueColor so background styling always emits ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	// The TUI owns the screen, so quiet the logger unless asked.
	logger := slog.New(slog.DiscardHandler)
	if flagVerbose {
		logger = slog.Default()
	}

	analyzer, closeFn, err := buildAnalyzer(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	app := tui.NewApp(tui.Options{
		Analyzer:  analyzer,
		Window:    window,
		UserID:    cfg.Store.UserID,
		SessionID: flagTUISession,
		Display:   analyzer.Display,
		NeedSetup: !config.Exists(),
		Rebuild: func(next config.Config) (tui.Analyzer, error) {
			a, c, err := buildAnalyzer(next, logger)
			if err != nil {
				return nil, err
			}
			_ = closeFn()
			closeFn = c
			return a, nil
		},
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
