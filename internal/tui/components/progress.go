package components

import (
	"fmt"
	"strings"

	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders the loading bar with a percentage.
// pct is a 0-1 fraction.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))

	var barColor lipgloss.Color
	switch {
	case pct >= 0.8:
		barColor = t.AccentBright
	case pct >= 0.5:
		barColor = t.Accent
	default:
		barColor = t.Cyan
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%.0f%%", pct*100))
}

// BudgetBar renders how much of the monthly budget is used. usedPercent is
// 0-100 and may exceed 100; the bar saturates while the label keeps the
// real figure.
func BudgetBar(label string, usedPercent float64, labelW, barWidth int) string {
	t := theme.Active
	color := t.ForBudget(usedPercent)
	return labeledBar(label, usedPercent/100, fmt.Sprintf("%5.1f%%", usedPercent), color, labelW, barWidth)
}

// ChallengeBar renders elapsed progress through a challenge window.
// percent is 0-100.
func ChallengeBar(label string, percent float64, labelW, barWidth int) string {
	t := theme.Active
	color := t.Accent
	if percent >= 100 {
		color = t.GreenBright
	}
	return labeledBar(label, percent/100, fmt.Sprintf("%5.1f%%", percent), color, labelW, barWidth)
}

func labeledBar(label string, frac float64, pctStr string, color lipgloss.Color, labelW, barWidth int) string {
	t := theme.Active

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(barWidth, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(padCells(label, labelW)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(clamp01(frac)) +
		spaceStyle.Render(" ") +
		pctStyle.Render(pctStr)
}

func clamp01(f float64) float64 {
	return min(max(f, 0), 1)
}

// padCells pads or truncates s to exactly w terminal cells.
func padCells(s string, w int) string {
	if w <= 0 {
		return s
	}
	if lipgloss.Width(s) > w {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes)+"…") > w {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	return s + strings.Repeat(" ", max(0, w-lipgloss.Width(s)))
}
