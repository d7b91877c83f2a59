package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mfocus/internal/cli"
	"github.com/theirongolddev/mfocus/internal/daemon"
	"github.com/theirongolddev/mfocus/internal/model"
	"github.com/theirongolddev/mfocus/internal/pipeline"
)

var (
	flagStart   string
	flagEnd     string
	flagLast    time.Duration
	flagJSON    bool
	flagSession string
	flagUser    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze engagement for a time window",
	Example: "  mfocus analyze --last 30m\n" +
		"  mfocus analyze --start 2025-06-01T18:00:00+08:00 --end 2025-06-01T18:30:00+08:00 --json",
	RunE: runAnalyze,
}

func init() {
	addWindowFlags(analyzeCmd, 0)
	analyzeCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the analysis as JSON")
	analyzeCmd.Flags().StringVar(&flagSession, "session", "", "Session ID recorded with stored events")
	analyzeCmd.Flags().StringVar(&flagUser, "user", "", "User ID recorded with stored events (default from config)")
	rootCmd.AddCommand(analyzeCmd)
}

func addWindowFlags(c *cobra.Command, defaultLast time.Duration) {
	c.Flags().StringVar(&flagStart, "start", "", "Window start (ISO-8601; local time when no offset)")
	c.Flags().StringVar(&flagEnd, "end", "", "Window end (ISO-8601; local time when no offset)")
	c.Flags().DurationVar(&flagLast, "last", defaultLast, "Analyze the trailing window ending now, e.g. 30m")
}

// resolveWindow turns --start/--end or --last into a UTC window.
func resolveWindow(now time.Time, start, end string, last time.Duration) (time.Time, time.Time, error) {
	if start == "" && end == "" {
		if last <= 0 {
			return time.Time{}, time.Time{}, errors.New("specify --start and --end, or --last")
		}
		return now.Add(-last).UTC(), now.UTC(), nil
	}
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, errors.New("--start and --end must be given together")
	}

	s, err := pipeline.ParseTimestamp(start, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	e, err := pipeline.ParseTimestamp(end, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, errors.New("--end must be after --start")
	}
	return s, e, nil
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	start, end, err := resolveWindow(time.Now(), flagStart, flagEnd, flagLast)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	analyzer, closeFn, err := buildAnalyzer(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	user := flagUser
	if user == "" {
		user = cfg.Store.UserID
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if !flagQuiet && !flagJSON {
		fmt.Fprintf(os.Stderr, "  Classifying %s...\n", cli.FormatWindow(start, end, analyzer.Display))
	}

	req := pipeline.Request{Start: start, End: end, UserID: user, SessionID: flagSession}
	return reportAnalysis(ctx, os.Stdout, analyzer, req, flagJSON)
}

// reportAnalysis runs one analysis and writes it to w. An empty window still
// returns pipeline.ErrNoData so the process exits non-zero; with asJSON the
// same detail body as the HTTP 404 is written first.
func reportAnalysis(ctx context.Context, w io.Writer, analyzer *pipeline.Analyzer, req pipeline.Request, asJSON bool) error {
	result, err := analyzer.Analyze(ctx, req)
	if errors.Is(err, pipeline.ErrNoData) {
		if asJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			_ = enc.Encode(map[string]string{"detail": daemon.NoDataDetail})
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if asJSON {
		return writeAnalysisJSON(w, result)
	}
	renderAnalysis(w, result, analyzer.Display)
	return nil
}

func writeAnalysisJSON(w io.Writer, a *model.Analysis) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(daemon.NewAnalyzeResponse(a))
}

func renderAnalysis(w io.Writer, a *model.Analysis, loc *time.Location) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.RenderTitle("MEETING FOCUS  "+cli.FormatWindow(a.Start, a.End, loc)))
	fmt.Fprintln(w)

	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title: "Summary",
		Rows: [][]string{
			{"Window", cli.FormatDuration(a.TotalDurationSec)},
			{"Engagement", cli.FormatPercent(a.EngagementPct)},
			{"Engaged time", cli.FormatDuration(a.EngagedSec())},
			{"---"},
			{"Focus streaks", cli.FormatNumber(int64(a.FocusStreaks))},
			{"Avg focus", cli.FormatDuration(a.AvgFocusSec)},
			{"Events", cli.FormatNumber(int64(len(a.Events)))},
		},
	}))
	fmt.Fprintln(w)

	catRows := make([][]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		secs, ok := a.CategoryDurations[c]
		if !ok {
			continue
		}
		catRows = append(catRows, []string{c.Label(), cli.FormatDuration(secs), cli.FormatShare(secs, a.TotalDurationSec)})
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   "Categories",
		Headers: []string{"Category", "Time", "Share"},
		Rows:    catRows,
	}))
	fmt.Fprintln(w)

	pcts := make([]float64, len(a.Intervals))
	binRows := make([][]string, 0, len(a.Intervals))
	for i, b := range a.Intervals {
		pcts[i] = b.EngagedPct
		binRows = append(binRows, []string{
			b.Label,
			cli.RenderCategory(b.Category),
			cli.FormatPercent(b.EngagedPct),
			cli.Truncate(b.App+" · "+b.Title, 48),
		})
	}
	fmt.Fprint(w, cli.RenderTable(cli.Table{
		Title:   "Timeline  " + cli.RenderEngagementSparkline(pcts),
		Headers: []string{"Time", "Category", "Engaged", "Dominant window"},
		Rows:    binRows,
	}))
	fmt.Fprintln(w)
}
