// Package tui provides the interactive Bubble Tea viewer for meeting focus analyses.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mfocus/internal/cli"
	"github.com/theirongolddev/mfocus/internal/config"
	"github.com/theirongolddev/mfocus/internal/model"
	"github.com/theirongolddev/mfocus/internal/pipeline"
	"github.com/theirongolddev/mfocus/internal/tui/components"
	"github.com/theirongolddev/mfocus/internal/tui/theme"
)

// Analyzer runs one analysis. *pipeline.Analyzer satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req pipeline.Request) (*model.Analysis, error)
}

// WindowFunc returns the analysis window relative to now. Relative windows
// slide forward on every re-run.
type WindowFunc func(now time.Time) (start, end time.Time)

// Options configures the TUI.
type Options struct {
	Analyzer  Analyzer
	Window    WindowFunc
	UserID    string
	SessionID string
	Display   *time.Location // label zone; UTC when nil
	Timeout   time.Duration  // per-analysis deadline; 2m when zero

	// NeedSetup shows the setup form before the first analysis. Rebuild,
	// when set, replaces the analyzer from the saved config.
	NeedSetup bool
	Rebuild   func(cfg config.Config) (Analyzer, error)
}

// AnalysisMsg is sent when an analysis finishes.
type AnalysisMsg struct {
	Result  *model.Analysis
	Err     error
	Elapsed time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	result  *model.Analysis
	err     error
	elapsed time.Duration
	loading bool
	runs    int

	// UI state
	width     int
	height    int
	activeTab int
	spinner   spinner.Model
	viewport  viewport.Model

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals SetupValues
	setupErr  error
}

const (
	minTerminalWidth = 60
	maxContentWidth  = 140
	minContentHeight = 5
	defaultTimeout   = 2 * time.Minute
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Display == nil {
		opts.Display = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	a := App{
		opts:     opts,
		spinner:  sp,
		viewport: viewport.New(0, 0),
	}
	if opts.NeedSetup {
		cfg, _ := config.Load()
		a.setupVals = SetupValuesFrom(cfg)
		a.setupForm = NewSetupForm(&a.setupVals)
	} else {
		a.loading = true
		a.runs = 1
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.setupForm != nil {
		return a.setupForm.Init()
	}
	return tea.Batch(a.analyzeCmd(), a.spinner.Tick)
}

func (a App) request() pipeline.Request {
	start, end := a.opts.Window(time.Now())
	return pipeline.Request{Start: start, End: end, UserID: a.opts.UserID, SessionID: a.opts.SessionID}
}

// startAnalysis marks the app as loading and starts a run.
func (a *App) startAnalysis() tea.Cmd {
	a.loading = true
	a.runs++
	return tea.Batch(a.analyzeCmd(), a.spinner.Tick)
}

// analyzeCmd returns the command that runs one analysis.
func (a App) analyzeCmd() tea.Cmd {
	analyzer, req, timeout := a.opts.Analyzer, a.request(), a.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		began := time.Now()
		res, err := analyzer.Analyze(ctx, req)
		return AnalysisMsg{Result: res, Err: err, Elapsed: time.Since(began)}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		a.resizeViewport()
		return a, nil

	case AnalysisMsg:
		a.loading = false
		a.result = msg.Result
		a.err = msg.Err
		a.elapsed = msg.Elapsed
		a.refreshViewport()
		a.viewport.GotoTop()
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return a.updateKey(msg)
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q":
		return a, tea.Quit
	case "r":
		if a.loading {
			return a, nil
		}
		return a, a.startAnalysis()
	case "t":
		theme.SetActive(theme.Next(theme.Active.Name))
		a.spinner.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)
		a.refreshViewport()
		return a, nil
	case "tab", "right":
		a.setTab((a.activeTab + 1) % len(components.Tabs))
		return a, nil
	case "shift+tab", "left":
		a.setTab((a.activeTab + len(components.Tabs) - 1) % len(components.Tabs))
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.setTab(idx)
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) setTab(idx int) {
	if idx == a.activeTab {
		return
	}
	a.activeTab = idx
	a.refreshViewport()
	a.viewport.GotoTop()
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupErr = a.saveSetup()
		a.setupForm = nil
		return a, a.startAnalysis()
	case huh.StateAborted:
		a.setupForm = nil
		return a, a.startAnalysis()
	}
	return a, cmd
}

func (a *App) saveSetup() error {
	cfg, _ := config.Load()
	if err := a.setupVals.Apply(&cfg); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	theme.SetActive(cfg.Display.Theme)
	if loc, err := pipeline.ParseOffset(cfg.Display.UTCOffset); err == nil {
		a.opts.Display = loc
	}
	if a.opts.Rebuild != nil {
		analyzer, err := a.opts.Rebuild(cfg)
		if err != nil {
			return err
		}
		a.opts.Analyzer = analyzer
	}
	return nil
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// chrome is the header + tab bar + status bar height around the viewport.
const chrome = 4

func (a *App) resizeViewport() {
	a.viewport.Width = a.contentWidth()
	a.viewport.Height = max(a.height-chrome, minContentHeight)
	a.refreshViewport()
}

func (a *App) refreshViewport() {
	if a.width == 0 {
		return
	}
	a.viewport.SetContent(a.renderTab(a.contentWidth()))
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  mfocus needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.loading && a.result == nil {
		return a.viewLoading()
	}
	return a.viewMain()
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	req := a.request()
	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ mfocus"))
	b.WriteString(subtitleStyle.Render(" · Meeting Focus"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Classifying " + cli.FormatWindow(req.Start, req.End, a.opts.Display)))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()))
}

func (a App) viewMain() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	title := titleStyle.Render(" ◈ mfocus")
	if a.result != nil {
		title += mutedStyle.Render("  " + cli.FormatWindow(a.result.Start, a.result.End, a.opts.Display))
	}
	if a.loading {
		title += "  " + a.spinner.View()
	}

	info := ""
	if a.result != nil || a.err != nil {
		info = fmt.Sprintf("%s · %.1fs", theme.Active.Name, a.elapsed.Seconds())
	}
	if a.setupErr != nil {
		info = "setup not saved: " + a.setupErr.Error()
	}
	status := components.RenderStatusBar(a.width, info)

	content := lipgloss.Place(a.width, a.viewport.Height, lipgloss.Center, lipgloss.Top, a.viewport.View())
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		components.RenderTabBar(a.activeTab),
		"",
		content,
		status,
	)
}

func (a App) renderTab(cw int) string {
	if a.err != nil {
		return a.renderError(cw)
	}
	if a.result == nil {
		return ""
	}
	switch a.activeTab {
	case 1:
		return a.renderTimelineTab(cw)
	case 2:
		return a.renderEventsTab(cw)
	default:
		return a.renderOverviewTab(cw)
	}
}

func (a App) renderError(cw int) string {
	t := theme.Active
	msg := a.err.Error()
	if errors.Is(a.err, pipeline.ErrNoData) {
		msg = "No window events found in this window."
	}
	body := lipgloss.NewStyle().Foreground(t.Bad).Render(msg) + "\n\n" +
		lipgloss.NewStyle().Foreground(t.TextMuted).Render("Press r to retry.")
	return components.ContentCard("Analysis failed", body, cw)
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	res := a.result

	metrics := []components.Metric{
		{Label: "Engagement", Value: cli.FormatPercent(res.EngagementPct), Color: t.Engagement(res.EngagementPct)},
		{Label: "Avg focus", Value: cli.FormatDuration(res.AvgFocusSec), Note: fmt.Sprintf("%d streaks", res.FocusStreaks)},
		{Label: "Window", Value: cli.FormatDuration(res.TotalDurationSec), Note: fmt.Sprintf("%d bins", len(res.Intervals))},
		{Label: "Events", Value: cli.FormatNumber(int64(len(res.Events)))},
	}

	inner := components.CardInnerWidth(cw)
	chart := components.EngagementChart(res.Intervals, inner, 6)

	var cats strings.Builder
	for i, c := range model.Categories {
		if i > 0 {
			cats.WriteString("\n")
		}
		secs := res.CategoryDurations[c]
		line := components.ShareBar(c.Label(), secs, res.TotalDurationSec, t.Category(c), 14, max(inner-40, 10))
		cats.WriteString(line + "  " + lipgloss.NewStyle().Foreground(t.TextDim).Render(cli.FormatDuration(secs)))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		components.MetricCardRow(metrics, cw),
		components.ContentCard("Engagement per 5 minutes", chart, cw),
		components.ContentCard("Time by category", cats.String(), cw),
	)
}

func (a App) renderTimelineTab(cw int) string {
	t := theme.Active
	inner := components.CardInnerWidth(cw)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	for i, bin := range a.result.Intervals {
		if i > 0 {
			b.WriteString("\n")
		}
		cat := lipgloss.NewStyle().Foreground(t.Category(bin.Category)).Render(fmt.Sprintf("%-12s", bin.Category))
		head := dim.Render(bin.Label) + "  " + cat + " " + components.EngagementBar(bin.EngagedPct, 12) + "  "
		rest := max(inner-lipgloss.Width(head), 10)
		b.WriteString(head + text.Render(cli.Truncate(bin.App+" · "+bin.Title, rest)))
	}
	return components.ContentCard("Timeline", b.String(), cw)
}

func (a App) renderEventsTab(cw int) string {
	t := theme.Active
	inner := components.CardInnerWidth(cw)
	dim := lipgloss.NewStyle().Foreground(t.TextDim)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	for i, ev := range a.result.Events {
		if i > 0 {
			b.WriteString("\n")
		}
		cat := lipgloss.NewStyle().Foreground(t.Category(ev.Category)).Render(fmt.Sprintf("%-12s", ev.Category))
		head := cat + " " + dim.Render(fmt.Sprintf("%8s", cli.FormatDuration(ev.DurationSec))) + "  "
		rest := max(inner-lipgloss.Width(head), 10)
		b.WriteString(head + text.Render(cli.Truncate(ev.App+" · "+ev.Title, rest)))
	}
	title := fmt.Sprintf("Events (%d)", len(a.result.Events))
	return components.ContentCard(title, b.String(), cw)
}
