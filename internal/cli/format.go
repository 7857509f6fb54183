// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gagyelog/gagyelog/internal/model"
)

// FormatWon formats a whole-won amount with comma separators.
// e.g., 1234567 -> "1,234,567원"
func FormatWon(n int64) string {
	return humanize.Comma(n) + "원"
}

// FormatWonShort formats an amount with Korean unit suffixes for narrow
// columns and chart axes.
// e.g., 9800 -> "9,800", 125000 -> "12.5만", 320000000 -> "3.2억"
func FormatWonShort(n int64) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}

	switch {
	case abs >= 100_000_000:
		return trimFloat(float64(n)/100_000_000) + "억"
	case abs >= 10_000:
		return trimFloat(float64(n)/10_000) + "만"
	default:
		return humanize.Comma(n)
	}
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// FormatNumber adds comma separators to an integer.
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatPercent formats a 0-100 percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatDelta formats a spending delta with an explicit sign.
func FormatDelta(current, previous int64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatWon(delta)
	}
	return "-" + FormatWon(-delta)
}

// FormatDayOfWeek returns a 3-letter day abbreviation.
func FormatDayOfWeek(weekday time.Weekday) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && int(weekday) < len(days) {
		return days[weekday]
	}
	return "???"
}

// FormatDate renders a calendar day with its weekday, e.g. "2024-03-10 Sun".
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02") + " " + FormatDayOfWeek(t.Weekday())
}

// FormatDays formats a day count, e.g. "1 day", "4 days".
func FormatDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// FormatAgo renders how long ago t was, or "never" for the zero time.
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// ParseWon reads a positive whole-won amount. Thousands separators and a
// trailing 원 are accepted.
func ParseWon(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "원")
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("enter a positive whole number")
	}
	return n, nil
}

// Challenge status labels.
const (
	StatusSucceeded      = "succeeded"
	StatusFailed         = "failed"
	StatusAwaitingResult = "awaiting result"
	StatusNotStarted     = "not started"
)

// ChallengeStatus is the label shown next to a challenge. The result is
// owned by the backend; the client only reports it.
func ChallengeStatus(c model.Challenge, p model.ChallengeProgress) string {
	switch {
	case c.Evaluated && c.Success:
		return StatusSucceeded
	case c.Evaluated:
		return StatusFailed
	case p.Percent >= 100:
		return StatusAwaitingResult
	case p.Percent == 0 && p.DaysRemaining > 0:
		return StatusNotStarted
	}
	return FormatDays(p.DaysRemaining) + " left"
}
