package components

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline of daily amounts.
func Sparkline(values []int64, color lipgloss.Color) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	return style.Render(cli.RenderSparkline(values))
}

// BarChart renders daily spending as vertical bars with a won-scaled Y axis.
// values and labels are oldest first.
func BarChart(values []int64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}

	t := theme.Active

	var peak int64
	for _, v := range values {
		peak = max(peak, v)
	}
	maxVal := float64(max(peak, 1))

	// Y-axis: pick a round tick step so at most height/2 intervals fit.
	tickStep := chartTickStep(maxVal)
	maxIntervals := max(height/2, 2)
	for int(math.Ceil(maxVal/tickStep)) > maxIntervals {
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := max(int(math.Round(ceiling/tickStep)), 1)

	rowsPerTick := max(height/numIntervals, 2)
	chartH := rowsPerTick * numIntervals

	yLabelW := max(lipgloss.Width(cli.FormatWonShort(int64(ceiling)))+1, 4)
	tickLabels := make(map[int]string, numIntervals)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = cli.FormatWonShort(int64(tickStep * float64(i)))
	}

	chartW := max(width-yLabelW-1, 5)
	n := len(values)

	// One column gap between bars; bars between 1 and 4 cells wide. When
	// there are more days than columns, sample evenly.
	gap := 1
	if n == 1 {
		gap = 0
	}
	barW := max((chartW-(n-1)*gap)/n, 1)
	if barW == 1 && n*2-1 > chartW {
		keep := max((chartW+1)/2, 2)
		sampled := make([]int64, keep)
		var sampledLabels []string
		if len(labels) == n {
			sampledLabels = make([]string, keep)
		}
		for i := range sampled {
			src := i * (n - 1) / (keep - 1)
			sampled[i] = values[src]
			if sampledLabels != nil {
				sampledLabels[i] = labels[src]
			}
		}
		values, labels, n = sampled, sampledLabels, keep
	}
	barW = min(barW, 4)
	axisLen := n*barW + max(0, n-1)*gap

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, raw := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blank.Render(" "))
			}
			v := float64(raw)
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * 8)
				idx = min(max(idx, 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blank.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		buf := []rune(strings.Repeat(" ", axisLen))
		lastEnd := -1
		step := max(1, (n*6)/(axisLen+1))
		for i := 0; i < n; i += step {
			pos := i * (barW + gap)
			lbl := []rune(labels[i])
			if pos <= lastEnd || pos+len(lbl) > axisLen {
				continue
			}
			copy(buf[pos:], lbl)
			lastEnd = pos + len(lbl)
		}
		b.WriteString("\n")
		b.WriteString(blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(strings.TrimRight(string(buf), " ")))
	}

	return b.String()
}

// chartTickStep computes a round tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// CategoryBars renders one horizontal bar per category, scaled to the
// largest total and drawn in the category color.
func CategoryBars(stats []model.CategoryStats, width int) string {
	if len(stats) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	for _, s := range stats {
		labelW = max(labelW, lipgloss.Width(s.Display))
	}
	const amountW = 12
	barMax := max(width-labelW-amountW-10, 5)
	top := stats[0].Total
	for _, s := range stats {
		top = max(top, s.Total)
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	shareStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, s := range stats {
		if i > 0 {
			b.WriteString("\n")
		}
		barLen := 0
		if top > 0 {
			barLen = max(int(float64(s.Total)/float64(top)*float64(barMax)), 1)
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Background(t.Surface).
			Render(strings.Repeat("█", barLen))

		b.WriteString(labelStyle.Render(padCells(s.Display, labelW)))
		b.WriteString(blank.Render(" "))
		b.WriteString(amountStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatWon(s.Total))))
		b.WriteString(shareStyle.Render(fmt.Sprintf(" %5.1f%% ", s.SharePercent)))
		b.WriteString(bar)
	}
	return b.String()
}

// MonthCalendar renders a Monday-first calendar grid with each day's
// spending. days may be in any order; days outside month are ignored.
func MonthCalendar(days []model.DailyStats, month time.Time, today time.Time) string {
	t := theme.Active

	byDay := make(map[int]model.DailyStats, len(days))
	for _, d := range days {
		if d.Date.Year() == month.Year() && d.Date.Month() == month.Month() {
			byDay[d.Date.Day()] = d
		}
	}

	const cellW = 7
	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	dayStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	todayStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	spendStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	incomeStyle := lipgloss.NewStyle().Foreground(t.Income()).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for _, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		b.WriteString(headStyle.Render(fmt.Sprintf("%-*s", cellW, name)))
	}
	b.WriteString("\n")

	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	lead := (int(first.Weekday()) + 6) % 7
	dim := first.AddDate(0, 1, -1).Day()

	var numbers, amounts strings.Builder
	col := 0
	flush := func() {
		b.WriteString(numbers.String())
		b.WriteString("\n")
		b.WriteString(amounts.String())
		b.WriteString("\n")
		numbers.Reset()
		amounts.Reset()
		col = 0
	}
	for ; col < lead; col++ {
		numbers.WriteString(blank.Render(strings.Repeat(" ", cellW)))
		amounts.WriteString(blank.Render(strings.Repeat(" ", cellW)))
	}
	for day := 1; day <= dim; day++ {
		style := dayStyle
		if today.Year() == month.Year() && today.Month() == month.Month() && today.Day() == day {
			style = todayStyle
		}
		numbers.WriteString(style.Render(fmt.Sprintf("%-*d", cellW, day)))

		d := byDay[day]
		switch {
		case d.Expenses > 0:
			amounts.WriteString(spendStyle.Render(padCells(cli.FormatWonShort(d.Expenses), cellW)))
		case d.Income > 0:
			amounts.WriteString(incomeStyle.Render(padCells("+"+cli.FormatWonShort(d.Income), cellW)))
		default:
			amounts.WriteString(blank.Render(strings.Repeat(" ", cellW)))
		}

		col++
		if col == 7 {
			flush()
		}
	}
	if col > 0 {
		flush()
	}

	return strings.TrimRight(b.String(), "\n")
}
