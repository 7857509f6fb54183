package tui

import (
	"fmt"
	"strings"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
	"github.com/gagyelog/gagyelog/internal/tui/components"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ledgerState holds the ledger tab state.
type ledgerState struct {
	cursor        int
	offset        int // first visible row
	searching     bool
	searchInput   textinput.Model
	query         string
	confirmDelete bool
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "shop, category, or date"
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

// filterLedger keeps records whose shop, category, or date contains query.
// Matching is case-insensitive; an empty query keeps everything.
func filterLedger(records []model.Transaction, query string) []model.Transaction {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}
	var out []model.Transaction
	for _, r := range records {
		c := r.Category()
		if strings.Contains(strings.ToLower(r.ShopName), query) ||
			strings.Contains(strings.ToLower(c.Label), query) ||
			strings.Contains(c.Display, query) ||
			strings.Contains(r.Date, query) {
			out = append(out, r)
		}
	}
	return out
}

// ledgerOrder returns records newest date first, keeping the backend order
// within a day.
func ledgerOrder(records []model.Transaction) []model.Transaction {
	groups := pipeline.GroupByDate(records)
	out := make([]model.Transaction, 0, len(records))
	for _, d := range pipeline.SortedDates(groups) {
		out = append(out, groups[d]...)
	}
	return out
}

// visibleLedger is the month's ledger after the search filter, in display order.
func (a App) visibleLedger() []model.Transaction {
	return ledgerOrder(filterLedger(a.records, a.ledger.query))
}

func (a *App) ledgerMove(delta int) {
	n := len(a.visibleLedger())
	a.ledger.cursor = min(max(a.ledger.cursor+delta, 0), max(n-1, 0))
}

func (a App) updateLedgerKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "/":
		a.ledger.searching = true
		a.ledger.searchInput = newSearchInput()
		a.ledger.searchInput.SetValue(a.ledger.query)
		a.ledger.searchInput.Focus()
		return a, a.ledger.searchInput.Cursor.BlinkCmd(), true
	case "esc":
		if a.ledger.query != "" {
			a.ledger.query = ""
			a.ledger.cursor, a.ledger.offset = 0, 0
		}
		return a, nil, true
	case "j", "down":
		a.ledgerMove(1)
		return a, nil, true
	case "k", "up":
		a.ledgerMove(-1)
		return a, nil, true
	case "G":
		a.ledgerMove(len(a.records))
		return a, nil, true
	case "d":
		if a.writer == nil || len(a.visibleLedger()) == 0 {
			return a, nil, true
		}
		a.ledger.confirmDelete = true
		return a, nil, true
	}
	return a, nil, false
}

// updateLedgerSearch handles key events while in search mode.
func (a App) updateLedgerSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.ledger.query = strings.TrimSpace(a.ledger.searchInput.Value())
		a.ledger.searching = false
		a.ledger.cursor, a.ledger.offset = 0, 0
		return a, nil
	case "esc":
		a.ledger.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.ledger.searchInput, cmd = a.ledger.searchInput.Update(msg)
	return a, cmd
}

func (a App) updateLedgerConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.ledger.confirmDelete = false
	if msg.String() != "y" {
		return a, nil
	}
	visible := a.visibleLedger()
	if a.ledger.cursor >= len(visible) {
		return a, nil
	}
	return a, deleteEntryCmd(a.writer, a.sess, visible[a.ledger.cursor])
}

func (a App) renderLedgerTab(cw, h int) string {
	t := theme.Active
	visible := a.visibleLedger()

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dateStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)

	title := fmt.Sprintf("Ledger %s", a.period())
	if a.ledger.query != "" {
		title += fmt.Sprintf("  /%s  %d of %d", a.ledger.query, len(visible), len(a.records))
	}

	var body strings.Builder
	if a.ledger.searching {
		body.WriteString(headerStyle.Render("/ "))
		body.WriteString(a.ledger.searchInput.View())
		body.WriteString("\n\n")
	}

	if len(visible) == 0 {
		msg := "No entries this month. Press [a] to add one."
		if a.dash != nil && a.dash.LedgerErr != nil {
			msg = "Ledger unavailable: " + a.dash.LedgerErr.Error()
		} else if a.ledger.query != "" {
			msg = "No entries match the search."
		}
		body.WriteString(mutedStyle.Render(msg))
		return components.ContentCard(title, body.String(), cw)
	}

	innerW := components.CardInnerWidth(cw)
	const dateW, catW, amountW = 11, 10, 14
	shopW := max(innerW-dateW-catW-amountW-4, 10)

	header := padCell("Date", dateW) + " " + padCell("Category", catW) + " " +
		padCell("Shop", shopW) + " " + fmt.Sprintf("%*s", amountW, "Amount")
	body.WriteString(headerStyle.Render(header))
	body.WriteString("\n")

	// card border (2) + title (1) + header (1) + footer (2)
	rows := max(h-6, 3)
	if a.ledger.searching {
		rows = max(rows-2, 1)
	}
	offset := a.ledger.offset
	if a.ledger.cursor < offset {
		offset = a.ledger.cursor
	}
	if a.ledger.cursor >= offset+rows {
		offset = a.ledger.cursor - rows + 1
	}
	end := min(offset+rows, len(visible))

	prevDate := ""
	if offset > 0 {
		prevDate = visible[offset-1].Date
	}
	for i := offset; i < end; i++ {
		r := visible[i]
		c := r.Category()

		date := ""
		if r.Date != prevDate {
			date = r.Date
		}
		prevDate = r.Date

		amount := cli.FormatWon(r.Amount)
		if r.IsIncome {
			amount = "+" + amount
		}

		style := rowStyle
		if i == a.ledger.cursor {
			style = selectedStyle
		}
		catStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Background(style.GetBackground())
		amountStyle := style
		if r.IsIncome {
			amountStyle = amountStyle.Foreground(t.Income())
		}

		line := dateStyle.Background(style.GetBackground()).Render(padCell(date, dateW)) +
			style.Render(" ") +
			catStyle.Render(padCell(c.Display, catW)) +
			style.Render(" "+padCell(r.ShopName, shopW)+" ") +
			amountStyle.Render(fmt.Sprintf("%*s", amountW, amount))
		if i == a.ledger.cursor {
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				line += selectedStyle.Render(strings.Repeat(" ", pad))
			}
		}
		body.WriteString(line)
		body.WriteString("\n")
	}

	body.WriteString("\n")
	switch {
	case a.ledger.confirmDelete && a.ledger.cursor < len(visible):
		r := visible[a.ledger.cursor]
		body.WriteString(warnStyle.Render(fmt.Sprintf("Delete %s %s on %s? [y/N]",
			r.ShopName, cli.FormatWon(r.Amount), r.Date)))
	default:
		hint := fmt.Sprintf("%d entries  expenses %s  income %s   [j/k] move  [/] search  [d] delete",
			len(visible),
			cli.FormatWon(pipeline.SumExpenses(visible)),
			cli.FormatWon(pipeline.SumIncome(visible)))
		body.WriteString(mutedStyle.Render(hint))
	}

	return components.ContentCard(title, body.String(), cw)
}

// padCell pads or truncates s to w terminal cells.
func padCell(s string, w int) string {
	if lipgloss.Width(s) > w {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes)+"…") > w {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	return s + strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
}
