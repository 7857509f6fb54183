package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/tui/theme"
	"github.com/muesli/termenv"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("passbook")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	if shortLines >= tallLines {
		t.Fatal("test setup error: short card should be shorter than tall card")
	}

	joined := CardRow([]string{tallCard, shortCard})
	lines := strings.Split(joined, "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("padding line %d has no ANSI codes: %q", i, lines[i])
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("passbook")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	want := lipgloss.Width(tallCard) + lipgloss.Width(shortCard)
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
	}
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, total := range []int{80, 81, 119, 180} {
		for n := 1; n <= 5; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			if sum != total {
				t.Errorf("LayoutRow(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
	if LayoutRow(80, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("passbook")
	row := MetricCardRow([]Metric{
		{Label: "This week", Value: "45,000원"},
		{Label: "This month", Value: "180,000원", Delta: "62% of budget"},
		{Label: "Savings rate", Value: "38.0%"},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestTabVisualWidthMatchesRender(t *testing.T) {
	theme.SetActive("passbook")
	for active := range Tabs {
		want := 0
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += len(Tabs) - 1 // separators

		bar := RenderTabBar(active, 0)
		if got := lipgloss.Width(bar); got != want {
			t.Errorf("active=%d: rendered width %d, want %d", active, got, want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('g') != TabChallenges || TabIdxByKey('x') != TabSettings || TabIdxByKey('z') != -1 {
		t.Error("TabIdxByKey mapping")
	}
}

func TestMonthCalendar(t *testing.T) {
	theme.SetActive("passbook")
	loc := time.FixedZone("KST", 9*60*60)
	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, loc)
	days := []model.DailyStats{
		{Date: time.Date(2024, time.March, 10, 0, 0, 0, 0, loc), Expenses: 125000},
		{Date: time.Date(2024, time.April, 1, 0, 0, 0, 0, loc), Expenses: 999},
	}

	cal := MonthCalendar(days, march, time.Date(2024, time.March, 13, 9, 0, 0, 0, loc))
	lines := strings.Split(cal, "\n")
	// Header + 5 weeks (Mar 1 2024 is a Friday) x 2 lines.
	if len(lines) != 11 {
		t.Fatalf("calendar has %d lines, want 11:\n%s", len(lines), cal)
	}
	if !strings.Contains(cal, "12.5만") {
		t.Error("calendar should show the Mar 10 spend")
	}
	if strings.Contains(cal, "999") {
		t.Error("days outside the month must be ignored")
	}
}

func TestCategoryBars(t *testing.T) {
	theme.SetActive("passbook")
	out := CategoryBars([]model.CategoryStats{
		{Display: "외식", Color: "#D14D41", Total: 5000, SharePercent: 77.5},
		{Display: "교통", Color: "#4385BE", Total: 1450, SharePercent: 22.5},
	}, 60)
	if lines := strings.Split(out, "\n"); len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if !strings.Contains(out, "77.5%") || !strings.Contains(out, "5,000원") {
		t.Errorf("bars missing figures: %q", out)
	}
	if CategoryBars(nil, 60) != "" {
		t.Error("no categories should render nothing")
	}
}
