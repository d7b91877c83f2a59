package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/mfocus/internal/cli"
	"github.com/theirongolddev/mfocus/internal/model"
	"github.com/theirongolddev/mfocus/internal/store"
)

var (
	flagHistorySession string
	flagHistoryLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show categorized events saved in the local store",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&flagHistorySession, "session", "", "Only show this session")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Max events to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := storePath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Printf("\n  No store at %s.\n", path)
		fmt.Println("  Set [store] enabled = true in the config to record analyses.")
		return nil
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx := context.Background()
	totals, err := st.CategoryTotals(ctx, flagHistorySession)
	if err != nil {
		return fmt.Errorf("reading totals: %w", err)
	}
	events, err := st.ListEvents(ctx, flagHistorySession, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("\n  No stored events.")
		return nil
	}

	fmt.Println()
	title := "STORED EVENTS"
	if flagHistorySession != "" {
		title += "  " + flagHistorySession
	}
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	var grand int64
	for _, secs := range totals {
		grand += secs
	}
	totalRows := make([][]string, 0, len(totals)+2)
	for _, c := range model.Categories {
		secs, ok := totals[c]
		if !ok {
			continue
		}
		totalRows = append(totalRows, []string{c.Label(), cli.FormatDuration(float64(secs)), cli.FormatShare(float64(secs), float64(grand))})
	}
	totalRows = append(totalRows, []string{"---"}, []string{"Total", cli.FormatDuration(float64(grand)), ""})
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Totals",
		Headers: []string{"Category", "Time", "Share"},
		Rows:    totalRows,
	}))
	fmt.Println()

	if flagHistorySession == "" {
		sessions, err := st.Sessions(ctx)
		if err == nil && len(sessions) > 1 {
			ids := make([]string, 0, len(sessions))
			for id := range sessions {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				label := id
				if label == "" {
					label = "(none)"
				}
				rows = append(rows, []string{label, cli.FormatNumber(int64(sessions[id]))})
			}
			fmt.Print(cli.RenderTable(cli.Table{Title: "Sessions", Headers: []string{"Session", "Events"}, Rows: rows}))
			fmt.Println()
		}
	}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
			cli.RenderCategory(ev.Category),
			cli.FormatDuration(float64(ev.DurationSeconds)),
			cli.Truncate(ev.App+" · "+ev.Title, 48),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Latest %d events", len(events)),
		Headers: []string{"Time", "Category", "Duration", "Window"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
