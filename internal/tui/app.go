// Package tui provides the interactive Bubble Tea dashboard for gagyelog.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
	"github.com/gagyelog/gagyelog/internal/tui/components"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Writer is the subset of the backend the dashboard mutates through.
// *backend.Client satisfies it.
type Writer interface {
	CreateReceipt(ctx context.Context, sess model.Session, in model.EntryInput) error
	DeleteReceipt(ctx context.Context, sess model.Session, id int64) error
	SaveBudget(ctx context.Context, sess model.Session, b model.Budget) error
}

// Options configures a dashboard.
type Options struct {
	Config  config.Config
	Session model.Session
	API     pipeline.DashboardAPI
	Writer  Writer
	// Location is the calendar-day zone; defaults to time.Local.
	Location *time.Location
	// Now is the dashboard clock; defaults to time.Now.
	Now func() time.Time
	// ConfigSaver persists settings changes; defaults to config.Save.
	ConfigSaver func(config.Config) error
	// NeedSetup shows the first-run form before the dashboard.
	NeedSetup bool
}

// DashboardLoadedMsg is sent when the first dashboard load finishes.
type DashboardLoadedMsg struct {
	Dashboard *pipeline.Dashboard
	LoadTime  time.Duration
}

// ProgressMsg reports how many dashboard fetches have finished.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshMsg is sent when a background reload completes.
type RefreshMsg struct {
	Dashboard *pipeline.Dashboard
	LoadTime  time.Duration
}

// actionDoneMsg reports the outcome of a write made from the dashboard.
type actionDoneMsg struct {
	message string
	err     error
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	dash     *pipeline.Dashboard
	loaded   bool
	loadTime time.Duration

	// Backend and identity
	cfg      config.Config
	sess     model.Session
	api      pipeline.DashboardAPI
	writer   Writer
	loc      *time.Location
	now      func() time.Time
	saveConf func(config.Config) error

	// Month being shown
	year  int
	month time.Month

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// Pre-computed for the shown month
	records    []model.Transaction
	summary    model.PeriodSummary
	budget     model.BudgetStats
	days       []model.DailyStats // whole month, most recent first
	categories []model.CategoryStats
	challenges []model.Challenge

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	message   string

	// Per-tab state
	ledger   ledgerState
	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	// Manual entry (huh form)
	addForm *huh.Form
	addVals *EntryValues

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	minContentHeight = 5
	minRefreshPeriod = 10 * time.Second
	loadTimeout      = 30 * time.Second
	writeTimeout     = 15 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	saver := opts.ConfigSaver
	if saver == nil {
		saver = config.Save
	}

	refreshInterval := time.Duration(opts.Config.TUI.RefreshIntervalSec) * time.Second
	if refreshInterval < minRefreshPeriod {
		refreshInterval = 60 * time.Second
	}

	today := now().In(loc)
	return App{
		cfg:             opts.Config,
		sess:            opts.Session,
		api:             opts.API,
		writer:          opts.Writer,
		loc:             loc,
		now:             now,
		saveConf:        saver,
		year:            today.Year(),
		month:           today.Month(),
		needSetup:       opts.NeedSetup,
		autoRefresh:     opts.Config.TUI.AutoRefresh,
		refreshInterval: refreshInterval,
		spinner:         sp,
		loadSub:         make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDashboardCmd(a.api, a.sess, a.year, a.month, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// today returns the dashboard clock in the calendar zone.
func (a App) today() time.Time {
	return a.now().In(a.loc)
}

// asOf is the reference day for the shown month: today for the current
// month, otherwise the month's last day.
func (a App) asOf() time.Time {
	today := a.today()
	if today.Year() == a.year && today.Month() == a.month {
		return today
	}
	first := time.Date(a.year, a.month, 1, 12, 0, 0, 0, a.loc)
	return first.AddDate(0, 1, -1)
}

func (a App) period() string {
	return fmt.Sprintf("%04d-%02d", a.year, int(a.month))
}

func (a *App) recompute() {
	if a.dash == nil {
		return
	}
	asOf := a.asOf()

	a.records = pipeline.FilterByMonth(a.dash.Ledger, a.year, a.month, a.loc)
	a.summary = pipeline.Summarize(a.dash.Ledger, asOf)
	a.budget = pipeline.ComputeBudgetStats(a.dash.Budget, a.summary.MonthExpenses, asOf)

	start, end := pipeline.MonthBounds(asOf)
	a.days = pipeline.AggregateDays(a.records, start, end)
	a.categories = pipeline.AggregateCategories(a.records)
	a.challenges = pipeline.FilterChallengesByMonth(a.dash.Challenges, a.year, a.month)

	visible := a.visibleLedger()
	if a.ledger.cursor >= len(visible) {
		a.ledger.cursor = len(visible) - 1
	}
	if a.ledger.cursor < 0 {
		a.ledger.cursor = 0
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
		if a.addForm != nil {
			a.addForm = a.addForm.WithWidth(min(msg.Width, 80))
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil || a.addForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == components.TabLedger && !a.ledger.searching {
				a.ledgerMove(-1)
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == components.TabLedger && !a.ledger.searching {
				a.ledgerMove(1)
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DashboardLoadedMsg:
		a.applyDashboard(msg.Dashboard, msg.LoadTime)
		a.loaded = true

		if a.needSetup {
			a.setupVals = NewSetupValues(a.cfg)
			a.setupForm = NewSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshMsg:
		a.refreshing = false
		if msg.Dashboard != nil {
			a.applyDashboard(msg.Dashboard, msg.LoadTime)
		}
		return a, nil

	case actionDoneMsg:
		if msg.err != nil {
			a.message = "failed: " + msg.err.Error()
			return a, nil
		}
		a.message = msg.message
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, refreshCmd(a.api, a.sess, a.year, a.month)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && a.setupForm == nil {
			if a.now().Sub(a.lastRefresh) >= a.refreshInterval {
				a.refreshing = true
				cmds = append(cmds, refreshCmd(a.api, a.sess, a.year, a.month))
			}
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages (cursor blinks etc.) to an open form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.addForm != nil {
		return a.updateAddForm(msg)
	}
	return a, nil
}

func (a *App) applyDashboard(d *pipeline.Dashboard, loadTime time.Duration) {
	a.dash = d
	a.loadTime = loadTime
	a.lastRefresh = a.now()
	a.recompute()
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// Open forms and text inputs take every key.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.addForm != nil {
		if key == "esc" {
			a.addForm, a.addVals = nil, nil
			return a, nil
		}
		return a.updateAddForm(msg)
	}
	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == components.TabLedger && a.ledger.searching {
		return a.updateLedgerSearch(msg)
	}
	if a.activeTab == components.TabLedger && a.ledger.confirmDelete {
		return a.updateLedgerConfirm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	a.message = ""

	switch a.activeTab {
	case components.TabLedger:
		if m, cmd, handled := a.updateLedgerKey(key); handled {
			return m, cmd
		}
	case components.TabSettings:
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshCmd(a.api, a.sess, a.year, a.month)
		}
		return a, nil
	case "R":
		a.autoRefresh = !a.autoRefresh
		a.cfg.TUI.AutoRefresh = a.autoRefresh
		_ = a.saveConf(a.cfg)
		return a, nil
	case "a":
		return a.openAddForm()
	case "[":
		return a.shiftMonth(-1)
	case "]":
		return a.shiftMonth(1)
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(key) == 1 {
		if tab := components.TabIdxByKey(rune(key[0])); tab >= 0 {
			a.activeTab = tab
		}
	}
	return a, nil
}

// shiftMonth moves the shown month and reloads. The dashboard never moves
// past the current month.
func (a App) shiftMonth(delta int) (tea.Model, tea.Cmd) {
	target := time.Date(a.year, a.month, 1, 0, 0, 0, 0, a.loc).AddDate(0, delta, 0)
	today := a.today()
	if target.Year() > today.Year() || (target.Year() == today.Year() && target.Month() > today.Month()) {
		return a, nil
	}
	a.year, a.month = target.Year(), target.Month()
	a.ledger = ledgerState{}
	if a.refreshing {
		return a, nil
	}
	a.refreshing = true
	return a, refreshCmd(a.api, a.sess, a.year, a.month)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.setupVals.Apply(&a.cfg)
		theme.SetActive(a.cfg.Appearance.Theme)
		if err := a.saveConf(a.cfg); err != nil {
			a.message = "config not saved: " + err.Error()
		}
		a.needSetup = false
		a.setupForm, a.setupVals = nil, nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm, a.setupVals = nil, nil
		return a, nil
	}
	return a, cmd
}

func (a App) openAddForm() (tea.Model, tea.Cmd) {
	if a.writer == nil {
		a.message = "read-only session"
		return a, nil
	}
	a.addVals = NewEntryValues(a.today())
	a.addForm = NewEntryForm(a.addVals)
	if a.width > 0 {
		a.addForm = a.addForm.WithWidth(min(a.width, 80))
	}
	return a, a.addForm.Init()
}

func (a App) updateAddForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.addForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.addForm = f
	}

	switch a.addForm.State {
	case huh.StateCompleted:
		in, err := a.addVals.Entry()
		a.addForm, a.addVals = nil, nil
		if err != nil {
			a.message = err.Error()
			return a, nil
		}
		return a, createEntryCmd(a.writer, a.sess, in)
	case huh.StateAborted:
		a.addForm, a.addVals = nil, nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	if a.addForm != nil {
		return a.viewAddForm()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  gagyelog needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active
	w := a.width
	h := a.height

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ gagyelog"))
	b.WriteString(subtitleStyle.Render(" · 가계부"))
	b.WriteString("\n\n")

	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	if a.progressMax > 0 {
		barW := min(max(w-30, 20), 40)
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Loading %s\n\n", a.period())))
		b.WriteString(components.ProgressBar(pct, barW))
	} else {
		b.WriteString(subtitleStyle.Render(" Connecting to " + a.sess.BaseURL))
	}

	card := cardStyle.Render(b.String())

	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"h l c g x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"[ ]", "Previous / Next month"},
			{"j k", "Navigate lists"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"a", "Add an entry"},
			{"/", "Search the ledger"},
			{"d", "Delete selected entry"},
			{"Enter", "Edit setting"},
			{"Esc", "Back / Cancel"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewAddForm() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(a.addForm.View()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	info := components.StatusInfo{
		UserName:    a.sess.UserName,
		Period:      a.period(),
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Message:     a.message,
	}
	if a.dash != nil {
		info.DataAge = cli.FormatAgo(a.dash.FetchedAt)
		info.Failed = a.dash.Failed()
		info.Offline = info.Failed == 4
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case components.TabHome:
		content = a.renderHomeTab(cw)
	case components.TabLedger:
		content = a.renderLedgerTab(cw, contentH)
	case components.TabCategories:
		content = a.renderCategoriesTab(cw)
	case components.TabChallenges:
		content = a.renderChallengesTab(cw)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDashboardCmd starts the dashboard load in a background goroutine.
// It streams ProgressMsg updates and a final DashboardLoadedMsg through sub.
func loadDashboardCmd(api pipeline.DashboardAPI, sess model.Session, year int, month time.Month, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send: a dropped update is superseded by the next one.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
			defer cancel()
			d := pipeline.LoadDashboard(ctx, api, sess, year, month, progressFn)
			sub <- DashboardLoadedMsg{Dashboard: d, LoadTime: time.Since(start)}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshCmd reloads the dashboard in the background (no progress UI).
func refreshCmd(api pipeline.DashboardAPI, sess model.Session, year int, month time.Month) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		d := pipeline.LoadDashboard(ctx, api, sess, year, month, nil)
		return RefreshMsg{Dashboard: d, LoadTime: time.Since(start)}
	}
}

func createEntryCmd(w Writer, sess model.Session, in model.EntryInput) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := w.CreateReceipt(ctx, sess, in); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{message: fmt.Sprintf("added %s %s", in.ShopOrDefault(), cli.FormatWon(in.Amount))}
	}
}

func deleteEntryCmd(w Writer, sess model.Session, tx model.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := w.DeleteReceipt(ctx, sess, tx.ID); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{message: fmt.Sprintf("deleted #%d", tx.ID)}
	}
}

func saveBudgetCmd(w Writer, sess model.Session, b model.Budget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := w.SaveBudget(ctx, sess, b); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{message: "budget set to " + cli.FormatWon(b.Amount)}
	}
}

// ─── Layout helpers ─────────────────────────────────────────────

// chartDateLabels builds X-axis labels for a chronological day series:
// the month on the first day, otherwise the day number.
func chartDateLabels(days []model.DailyStats) []string {
	labels := make([]string, len(days))
	for i, d := range days {
		if i == 0 || d.Date.Day() == 1 {
			labels[i] = d.Date.Format("1/2")
			continue
		}
		labels[i] = fmt.Sprintf("%d", d.Date.Day())
	}
	return labels
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
