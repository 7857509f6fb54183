package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
	"github.com/gagyelog/gagyelog/internal/source"

	tea "github.com/charmbracelet/bubbletea"
)

var kst = time.FixedZone("KST", 9*60*60)

type fakeAPI struct {
	ledger []model.Transaction
	budget int64
}

func (f *fakeAPI) Budget(context.Context, model.Session, int, time.Month) (int64, error) {
	return f.budget, nil
}

func (f *fakeAPI) Ledger(context.Context, model.Session, int, time.Month) (source.DecodeResult, error) {
	return source.DecodeResult{Transactions: f.ledger}, nil
}

func (f *fakeAPI) Challenges(context.Context, model.Session) ([]model.Challenge, error) {
	return nil, errors.New("boom")
}

func (f *fakeAPI) Badges(context.Context, model.Session) ([]model.BadgeGrant, error) {
	return []model.BadgeGrant{{BadgeID: 1, GrantedDate: "2024-03-01"}}, nil
}

type fakeWriter struct {
	created []model.EntryInput
	deleted []int64
	budgets []model.Budget
}

func (w *fakeWriter) CreateReceipt(_ context.Context, _ model.Session, in model.EntryInput) error {
	w.created = append(w.created, in)
	return nil
}

func (w *fakeWriter) DeleteReceipt(_ context.Context, _ model.Session, id int64) error {
	w.deleted = append(w.deleted, id)
	return nil
}

func (w *fakeWriter) SaveBudget(_ context.Context, _ model.Session, b model.Budget) error {
	w.budgets = append(w.budgets, b)
	return nil
}

func testLedger() []model.Transaction {
	return []model.Transaction{
		model.NewTransaction(1, "2024-03-04", model.CategoryDining, "김밥천국", 8000),
		model.NewTransaction(2, "2024-03-12", model.CategoryTransport, "Subway", 1450),
		model.NewTransaction(3, "2024-03-12", model.CategoryIncome, "Salary", 2000000),
		model.NewTransaction(4, "2024-03-13", model.CategoryShopping, "Coupang", 32000),
		model.NewTransaction(5, "2024-02-28", model.CategoryDining, "February", 9999),
	}
}

// loadedApp returns an app that has received its first dashboard.
func loadedApp(t *testing.T, w *fakeWriter) (App, *[]config.Config) {
	t.Helper()
	var saved []config.Config
	api := &fakeAPI{ledger: testLedger(), budget: 300000}
	opts := Options{
		Config:      config.DefaultConfig(),
		Session:     model.Session{BaseURL: "http://test", Token: "tok", UserID: 7, UserName: "민지"},
		API:         api,
		Location:    kst,
		Now:         func() time.Time { return time.Date(2024, time.March, 13, 15, 0, 0, 0, kst) },
		ConfigSaver: func(c config.Config) error { saved = append(saved, c); return nil },
	}
	if w != nil {
		opts.Writer = w
	}
	a := NewApp(opts)

	d := pipeline.LoadDashboard(context.Background(), api, opts.Session, 2024, time.March, nil)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	m, _ = m.(App).Update(DashboardLoadedMsg{Dashboard: d})
	return m.(App), &saved
}

func press(t *testing.T, a App, keys ...string) (App, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var m tea.Model
		m, cmd = a.Update(msg)
		a = m.(App)
	}
	return a, cmd
}

func TestDashboardLoadedComputesMonth(t *testing.T) {
	a, _ := loadedApp(t, nil)

	if !a.loaded {
		t.Fatal("app should be loaded")
	}
	if len(a.records) != 4 {
		t.Errorf("records = %d, want 4 (February excluded)", len(a.records))
	}
	// Week of Mar 11-17: 1450 + 32000
	if a.summary.WeekExpenses != 33450 {
		t.Errorf("WeekExpenses = %d, want 33450", a.summary.WeekExpenses)
	}
	if a.summary.MonthExpenses != 41450 || a.summary.MonthIncome != 2000000 {
		t.Errorf("month totals = %d / %d", a.summary.MonthExpenses, a.summary.MonthIncome)
	}
	if a.budget.Budget != 300000 || a.budget.OverBudget {
		t.Errorf("budget stats = %+v", a.budget)
	}
	if len(a.days) != 31 {
		t.Errorf("days = %d, want 31", len(a.days))
	}
	if a.dash.ChallengeErr == nil || a.dash.Failed() != 1 {
		t.Error("challenge failure should be recorded without blocking the rest")
	}

	view := a.View()
	for _, want := range []string{"This month", "41,450원", "Recent"} {
		if !strings.Contains(view, want) {
			t.Errorf("home view missing %q", want)
		}
	}
}

func TestTabKeys(t *testing.T) {
	a, _ := loadedApp(t, nil)
	for key, want := range map[string]int{"l": 1, "c": 2, "g": 3, "x": 4, "h": 0} {
		a, _ = press(t, a, key)
		if a.activeTab != want {
			t.Errorf("key %q -> tab %d, want %d", key, a.activeTab, want)
		}
	}
}

func TestShiftMonth(t *testing.T) {
	a, _ := loadedApp(t, nil)

	a, cmd := press(t, a, "]")
	if a.month != time.March || cmd != nil {
		t.Fatal("must not move past the current month")
	}

	a, cmd = press(t, a, "[")
	if a.year != 2024 || a.month != time.February {
		t.Fatalf("shown month = %d-%d, want 2024-2", a.year, a.month)
	}
	if cmd == nil || !a.refreshing {
		t.Fatal("changing month should start a reload")
	}
}

func TestLedgerSearchAndDelete(t *testing.T) {
	w := &fakeWriter{}
	a, _ := loadedApp(t, w)
	a, _ = press(t, a, "l", "/")
	if !a.ledger.searching {
		t.Fatal("/ should open the search input")
	}
	a.ledger.searchInput.SetValue("coupang")
	a, _ = press(t, a, "enter")

	visible := a.visibleLedger()
	if len(visible) != 1 || visible[0].ID != 4 {
		t.Fatalf("search result = %+v", visible)
	}

	a, _ = press(t, a, "d")
	if !a.ledger.confirmDelete {
		t.Fatal("d should ask for confirmation")
	}
	a, cmd := press(t, a, "y")
	if cmd == nil {
		t.Fatal("confirming should issue a delete")
	}
	msg := cmd()
	if done, ok := msg.(actionDoneMsg); !ok || done.err != nil {
		t.Fatalf("delete result = %#v", msg)
	}
	if len(w.deleted) != 1 || w.deleted[0] != 4 {
		t.Errorf("deleted = %v, want [4]", w.deleted)
	}
}

func TestLedgerDeleteCancelled(t *testing.T) {
	w := &fakeWriter{}
	a, _ := loadedApp(t, w)
	a, _ = press(t, a, "l", "d")
	a, cmd := press(t, a, "n")
	if cmd != nil || a.ledger.confirmDelete || len(w.deleted) != 0 {
		t.Fatal("anything but y must cancel the delete")
	}
}

func TestSettingsSaveBudget(t *testing.T) {
	w := &fakeWriter{}
	a, _ := loadedApp(t, w)
	a, _ = press(t, a, "x", "enter")
	if !a.settings.editing {
		t.Fatal("enter should start editing")
	}
	a.settings.input.SetValue("450,000")
	a, cmd := press(t, a, "enter")
	if cmd == nil {
		t.Fatal("budget save should call the backend")
	}
	cmd()
	if len(w.budgets) != 1 {
		t.Fatalf("budgets = %v", w.budgets)
	}
	b := w.budgets[0]
	if b.Amount != 450000 || b.Year != 2024 || b.Month != time.March || b.UserID != 7 {
		t.Errorf("saved budget = %+v", b)
	}
	if a.settings.editing {
		t.Error("editing should end after enter")
	}
}

func TestSettingsRejectsBadInterval(t *testing.T) {
	a, saved := loadedApp(t, nil)
	a, _ = press(t, a, "x", "j", "j", "j", "enter")
	if a.settings.cursor != settingsFieldRefreshInterval {
		t.Fatalf("cursor = %d", a.settings.cursor)
	}
	a.settings.input.SetValue("3")
	a, _ = press(t, a, "enter")
	if a.settings.saveErr == nil {
		t.Fatal("an interval under 10s must be rejected")
	}
	if len(*saved) != 0 {
		t.Error("nothing should be written on a rejected value")
	}
}

func TestToggleAutoRefreshPersists(t *testing.T) {
	a, saved := loadedApp(t, nil)
	before := a.autoRefresh
	a, _ = press(t, a, "R")
	if a.autoRefresh == before {
		t.Fatal("R should toggle auto-refresh")
	}
	if len(*saved) != 1 || (*saved)[0].TUI.AutoRefresh != a.autoRefresh {
		t.Errorf("saved configs = %+v", *saved)
	}
}

func TestAddFormReadOnly(t *testing.T) {
	a, _ := loadedApp(t, nil)
	a, _ = press(t, a, "a")
	if a.addForm != nil {
		t.Fatal("no writer means no add form")
	}
	if a.message == "" {
		t.Error("expected a read-only message")
	}
}

func TestFilterLedger(t *testing.T) {
	records := testLedger()
	tests := []struct {
		query string
		want  int
	}{
		{"", 5},
		{"SUBWAY", 1},
		{"외식", 2},
		{"dining", 2},
		{"2024-03-12", 2},
		{"nothing", 0},
	}
	for _, tt := range tests {
		if got := len(filterLedger(records, tt.query)); got != tt.want {
			t.Errorf("filterLedger(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestLedgerOrderNewestFirst(t *testing.T) {
	got := ledgerOrder(testLedger())
	ids := make([]int64, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	want := []int64{4, 2, 3, 1, 5}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("order = %v, want %v", ids, want)
		}
	}
}

func TestEntryValues(t *testing.T) {
	v := NewEntryValues(time.Date(2024, time.March, 13, 9, 0, 0, 0, kst))
	if v.Date != "2024-03-13" {
		t.Fatalf("default date = %q", v.Date)
	}
	v.CategoryID = model.CategoryTransport
	v.Amount = "1,450원"
	in, err := v.Entry()
	if err != nil {
		t.Fatal(err)
	}
	if in.Amount != 1450 || in.Shop != "교통" {
		t.Errorf("entry = %+v", in)
	}

	v.Amount = "0"
	var ve *model.ValidationError
	if _, err := v.Entry(); !errors.As(err, &ve) {
		t.Errorf("zero amount err = %v, want ValidationError", err)
	}
}
