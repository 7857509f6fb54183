package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gagyelog/gagyelog/internal/model"
)

func TestFormatWon(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0원"},
		{950, "950원"},
		{1450, "1,450원"},
		{1234567, "1,234,567원"},
		{-20000, "-20,000원"},
	}
	for _, tt := range tests {
		if got := FormatWon(tt.in); got != tt.want {
			t.Errorf("FormatWon(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatWonShort(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{9800, "9,800"},
		{10000, "1.0만"},
		{125000, "12.5만"},
		{320000000, "3.2억"},
		{-50000, "-5.0만"},
	}
	for _, tt := range tests {
		if got := FormatWonShort(tt.in); got != tt.want {
			t.Errorf("FormatWonShort(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDelta(t *testing.T) {
	if got := FormatDelta(12000, 10000); got != "+2,000원" {
		t.Errorf("FormatDelta up = %q", got)
	}
	if got := FormatDelta(10000, 12000); got != "-2,000원" {
		t.Errorf("FormatDelta down = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2024-03-10 Sun" {
		t.Errorf("FormatDate = %q", got)
	}
	if FormatDays(1) != "1 day" || FormatDays(0) != "0 days" {
		t.Errorf("FormatDays = %q, %q", FormatDays(1), FormatDays(0))
	}
	if FormatAgo(time.Time{}) != "never" {
		t.Error("zero time should render as never")
	}
}

func TestRenderTable_AlignsWideCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Total"},
		Rows: [][]string{
			{"외식", "5,000원"},
			{SeparatorRow},
			{"transport", "1,450원"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), out)
	}
	want := lipgloss.Width(lines[0])
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d: %q", i, w, want, line)
		}
	}
	if !strings.Contains(out, "외식") {
		t.Error("table lost the Hangul label")
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("empty table = %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	got := []rune(RenderSparkline([]int64{0, 50, 100}))
	if len(got) != 3 || got[0] != '▁' || got[2] != '█' {
		t.Errorf("sparkline = %q", string(got))
	}
	if RenderSparkline(nil) != "" {
		t.Error("empty sparkline should be empty")
	}
}

func TestBudgetColor(t *testing.T) {
	if BudgetColor(50) != ColorGreen || BudgetColor(85) != ColorOrange || BudgetColor(120) != ColorRed {
		t.Error("BudgetColor thresholds")
	}
}

func TestParseWon(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12000", 12000, false},
		{"12,000", 12000, false},
		{" 12,000원 ", 12000, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"12.5", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseWon(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWon(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWon(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestChallengeStatus(t *testing.T) {
	tests := []struct {
		c    model.Challenge
		p    model.ChallengeProgress
		want string
	}{
		{model.Challenge{Evaluated: true, Success: true}, model.ChallengeProgress{Percent: 100}, StatusSucceeded},
		{model.Challenge{Evaluated: true}, model.ChallengeProgress{Percent: 100}, StatusFailed},
		{model.Challenge{}, model.ChallengeProgress{Percent: 100}, StatusAwaitingResult},
		{model.Challenge{}, model.ChallengeProgress{DaysRemaining: 7, TotalDays: 7}, StatusNotStarted},
		{model.Challenge{}, model.ChallengeProgress{Percent: 42.9, DaysRemaining: 4, TotalDays: 7}, "4 days left"},
	}
	for _, tt := range tests {
		if got := ChallengeStatus(tt.c, tt.p); got != tt.want {
			t.Errorf("ChallengeStatus(%+v, %+v) = %q, want %q", tt.c, tt.p, got, tt.want)
		}
	}
}
