package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
	"github.com/gagyelog/gagyelog/internal/tui/components"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const recentEntries = 6

func (a App) renderHomeTab(cw int) string {
	t := theme.Active
	s := a.summary
	bs := a.budget

	var b strings.Builder

	// Row 1: period totals and the budget picture
	weekLabel := fmt.Sprintf("This week %s~%s", s.WeekStart.Format("1/2"), s.WeekEnd.Format("1/2"))
	metrics := []components.Metric{
		{
			Label: weekLabel,
			Value: cli.FormatWon(s.WeekExpenses),
			Delta: fmt.Sprintf("%d entries  +%s", s.WeekCount, cli.FormatWonShort(s.WeekIncome)),
		},
		{
			Label: "This month",
			Value: cli.FormatWon(s.MonthExpenses),
			Delta: fmt.Sprintf("%d entries  +%s", s.MonthCount, cli.FormatWonShort(s.MonthIncome)),
		},
	}
	if bs.Budget > 0 {
		metrics = append(metrics,
			components.Metric{
				Label: "Savings rate",
				Value: cli.FormatPercent(bs.SavingsRate),
				Delta: "budget " + cli.FormatWon(bs.Budget),
				Color: t.ForBudget(bs.BudgetUsedPercent),
			},
			components.Metric{
				Label: "Available today",
				Value: cli.FormatWon(bs.AvailableToday),
				Delta: "runs out " + bs.Exhaustion.String(),
				Color: t.ForBudget(bs.BudgetUsedPercent),
			},
		)
	} else {
		metrics = append(metrics, components.Metric{
			Label: "Budget",
			Value: "not set",
			Delta: "set it in Settings [x]",
			Color: t.TextMuted,
		})
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Row 2: budget bar
	if bs.Budget > 0 {
		barW := max(components.CardInnerWidth(cw)-22, 10)
		var body strings.Builder
		body.WriteString(components.BudgetBar("Used", bs.BudgetUsedPercent, 12, barW))
		body.WriteString("\n")
		mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		body.WriteString(mutedStyle.Render(fmt.Sprintf("%s of %s  ·  %s left incl. today  ·  pace %s/day, projected %s",
			cli.FormatWon(bs.MonthlySpend),
			cli.FormatWon(bs.Budget),
			cli.FormatDays(bs.DaysRemaining),
			cli.FormatWonShort(int64(bs.DailyBurnRate)),
			cli.FormatWon(bs.ProjectedMonthly))))
		title := "Budget " + a.period()
		if bs.OverBudget {
			title += "  OVER BUDGET"
		}
		b.WriteString(components.ContentCard(title, body.String(), cw))
		b.WriteString("\n")
	}

	// Row 3: daily spend chart
	chrono := chronological(a.days, a.asOf())
	if len(chrono) > 0 {
		values := make([]int64, len(chrono))
		for i, d := range chrono {
			values[i] = d.Expenses
		}
		chartW := components.CardInnerWidth(cw)
		chart := components.BarChart(values, chartDateLabels(chrono), t.Accent, chartW, 8)
		b.WriteString(components.ContentCard("Daily spending", chart, cw))
		b.WriteString("\n")
	}

	// Row 4: recent entries + challenges side by side
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Recent", a.renderRecent(cw), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Challenges", a.renderChallengeSummary(cw), cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Recent", a.renderRecent(halves[0]), halves[0]),
			components.ContentCard("Challenges", a.renderChallengeSummary(halves[1]), halves[1]),
		}))
	}

	if a.dash != nil && a.dash.Malformed+s.Malformed > 0 {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Background)
		b.WriteString("\n")
		b.WriteString(warn.Render(fmt.Sprintf(" %d ledger records had malformed fields and were skipped or zeroed",
			a.dash.Malformed+s.Malformed)))
	}

	return b.String()
}

// chronological returns the days up to asOf, oldest first.
func chronological(days []model.DailyStats, asOf time.Time) []model.DailyStats {
	cut := asOf.Unix()
	out := make([]model.DailyStats, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		if days[i].Date.Unix() > cut {
			continue
		}
		out = append(out, days[i])
	}
	return out
}

func (a App) renderRecent(w int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	incomeStyle := lipgloss.NewStyle().Foreground(t.Income()).Background(t.Surface)

	ordered := ledgerOrder(a.records)
	if len(ordered) == 0 {
		if a.dash != nil && a.dash.LedgerErr != nil {
			return mutedStyle.Render("Ledger unavailable")
		}
		return mutedStyle.Render("No entries yet")
	}

	innerW := components.CardInnerWidth(w)
	const dateW, amountW = 6, 12
	shopW := max(innerW-dateW-amountW-2, 6)

	var b strings.Builder
	for i, r := range ordered {
		if i == recentEntries {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		date := r.Date
		if d, ok := pipeline.ParseDate(r.Date, a.loc); ok {
			date = d.Format("01/02")
		}
		amount := rowStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatWon(r.Amount)))
		if r.IsIncome {
			amount = incomeStyle.Render(fmt.Sprintf("%*s", amountW, "+"+cli.FormatWon(r.Amount)))
		}
		b.WriteString(mutedStyle.Render(padCell(date, dateW)))
		b.WriteString(rowStyle.Render(" " + padCell(r.ShopName, shopW) + " "))
		b.WriteString(amount)
	}
	return b.String()
}

func (a App) renderChallengeSummary(w int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	if a.dash != nil && a.dash.ChallengeErr != nil {
		b.WriteString(mutedStyle.Render("Challenges unavailable"))
	} else if len(a.challenges) == 0 {
		b.WriteString(mutedStyle.Render("No challenges started this month"))
	}

	innerW := components.CardInnerWidth(w)
	now := a.today()
	for i, c := range a.challenges {
		if i == 4 {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		p := pipeline.ChallengeProgressAt(c, now)
		b.WriteString(components.ChallengeBar(c.Type.Describe(), p.Percent, 16, max(innerW-26, 6)))
	}

	if a.dash != nil && len(a.dash.Badges) > 0 {
		names := make([]string, len(a.dash.Badges))
		for i, g := range a.dash.Badges {
			names[i] = g.Name()
		}
		accent := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface)
		b.WriteString("\n")
		b.WriteString(accent.Render("★ " + strings.Join(names, ", ")))
	}
	return b.String()
}
