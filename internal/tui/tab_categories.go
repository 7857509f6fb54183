package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/tui/components"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderCategoriesTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder

	month := time.Date(a.year, a.month, 1, 0, 0, 0, 0, a.loc)
	calendar := components.MonthCalendar(a.days, month, a.today())

	var breakdown string
	if len(a.categories) == 0 {
		breakdown = mutedStyle.Render("No spending this month")
	} else {
		breakdown = components.CategoryBars(a.categories, components.CardInnerWidth(cw/2))
	}

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("By category", breakdown, cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Calendar "+a.period(), calendar, cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		if len(a.categories) > 0 {
			breakdown = components.CategoryBars(a.categories, components.CardInnerWidth(halves[0]))
		}
		b.WriteString(components.CardRow([]string{
			components.ContentCard("By category", breakdown, halves[0]),
			components.ContentCard("Calendar "+a.period(), calendar, halves[1]),
		}))
	}
	b.WriteString("\n")

	// Category table with counts and the busiest day
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var table strings.Builder
	table.WriteString(headerStyle.Render(padCell("Category", 12) + fmt.Sprintf("%8s %14s %8s", "Count", "Total", "Share")))
	for _, c := range a.categories {
		table.WriteString("\n")
		catStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Background(t.Surface)
		table.WriteString(catStyle.Render(padCell(c.Display, 12)))
		table.WriteString(rowStyle.Render(fmt.Sprintf("%8d %14s %8s",
			c.Count, cli.FormatWon(c.Total), cli.FormatPercent(c.SharePercent))))
	}
	if top, ok := busiestDay(a); ok {
		table.WriteString("\n\n")
		table.WriteString(mutedStyle.Render("Busiest day: " + top))
	}
	b.WriteString(components.ContentCard("Totals", table.String(), cw))

	return b.String()
}

// busiestDay describes the day with the highest spend in the shown month.
func busiestDay(a App) (string, bool) {
	var best int
	found := false
	for i, d := range a.days {
		if d.Expenses > 0 && (!found || d.Expenses > a.days[best].Expenses) {
			best, found = i, true
		}
	}
	if !found {
		return "", false
	}
	d := a.days[best]
	return fmt.Sprintf("%s  %s", cli.FormatDate(d.Date), cli.FormatWon(d.Expenses)), true
}
