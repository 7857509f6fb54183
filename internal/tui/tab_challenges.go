package tui

import (
	"fmt"
	"strings"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
	"github.com/gagyelog/gagyelog/internal/tui/components"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderChallengesTab(cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	badStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	now := a.today()

	var body strings.Builder
	switch {
	case a.dash != nil && a.dash.ChallengeErr != nil:
		body.WriteString(mutedStyle.Render("Challenges unavailable: " + a.dash.ChallengeErr.Error()))
	case len(a.challenges) == 0:
		body.WriteString(mutedStyle.Render("No challenges started in " + a.period() + ". Create one with `gagyelog challenges create`."))
	}

	for i, c := range a.challenges {
		if i > 0 {
			body.WriteString("\n\n")
		}
		p := pipeline.ChallengeProgressAt(c, now)
		status := cli.ChallengeStatus(c, p)

		statusStyle := mutedStyle
		switch status {
		case cli.StatusSucceeded:
			statusStyle = okStyle
		case cli.StatusFailed:
			statusStyle = badStyle
		}

		body.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", c.ID, c.Type.Describe())))
		body.WriteString(mutedStyle.Render(fmt.Sprintf("  %s ~ %s  ", c.StartDate, c.EndDate)))
		body.WriteString(statusStyle.Render(status))
		body.WriteString("\n")
		body.WriteString(components.ChallengeBar("Elapsed", p.Percent, 10, max(innerW-20, 6)))

		spend := pipeline.ChallengeSpendFor(a.dash.Ledger, c, a.loc)
		if spend.HasCap {
			body.WriteString("\n")
			target := spend.Target
			used := 0.0
			if target > 0 {
				used = float64(spend.Spent) * 100 / float64(target)
			} else if spend.Spent > 0 {
				used = 100
			}
			label := "Spent"
			if c.Type == model.ChallengeCategoryLimit && c.TargetCategory != "" {
				if cat, ok := model.LookupCategory(c.TargetCategory); ok {
					label = cat.Display
				} else {
					label = c.TargetCategory
				}
			}
			body.WriteString(components.BudgetBar(label, used, 10, max(innerW-20, 6)))
			body.WriteString("\n")
			body.WriteString(mutedStyle.Render(fmt.Sprintf("%s of %s this month (estimate)",
				cli.FormatWon(spend.Spent), cli.FormatWon(target))))
		}
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Challenges "+a.period(), body.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Badges", a.renderBadges(), cw))
	return b.String()
}

func (a App) renderBadges() string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	starStyle := lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	if a.dash == nil {
		return ""
	}
	if a.dash.BadgeErr != nil {
		return mutedStyle.Render("Badges unavailable: " + a.dash.BadgeErr.Error())
	}
	if len(a.dash.Badges) == 0 {
		return mutedStyle.Render("No badges yet. Finish a challenge to earn one.")
	}

	var b strings.Builder
	for i, g := range a.dash.Badges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(starStyle.Render("★ "))
		b.WriteString(rowStyle.Render(padCell(g.Name(), 20)))
		b.WriteString(mutedStyle.Render(g.GrantedDate))
	}
	return b.String()
}
