// Package pipeline orchestrates ledger loading, caching, and period aggregation.
package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/gagyelog/gagyelog/internal/model"
)

const endOfDay = 24*time.Hour - time.Millisecond

// ParseDate parses a YYYY-MM-DD string as a calendar day in loc.
// The result is midnight local time, never a UTC instant shifted into loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	if len(s) != len(model.DateLayout) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(model.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekBounds returns Monday 00:00:00.000 and the following Sunday
// 23:59:59.999 of the week containing now. Weeks always start on Monday.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	dow := int(now.Weekday())
	offset := 1 - dow
	if dow == 0 {
		offset = -6
	}
	day := StartOfDay(now)
	monday := time.Date(day.Year(), day.Month(), day.Day()+offset, 0, 0, 0, 0, now.Location())
	sunday := time.Date(monday.Year(), monday.Month(), monday.Day()+6, 0, 0, 0, 0, now.Location())
	return monday, sunday.Add(endOfDay)
}

// MonthBounds returns the first instant and the last millisecond of now's month.
func MonthBounds(now time.Time) (time.Time, time.Time) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
	return first, last.Add(endOfDay)
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// FilterByRange returns records whose date falls within [start, end], both
// inclusive. Dates are parsed in start's location; unparseable dates are dropped.
func FilterByRange(records []model.Transaction, start, end time.Time) []model.Transaction {
	loc := start.Location()
	var result []model.Transaction
	for _, r := range records {
		d, ok := ParseDate(r.Date, loc)
		if !ok {
			continue
		}
		if d.Before(start) || d.After(end) {
			continue
		}
		result = append(result, r)
	}
	return result
}

// FilterByMonth returns records in the given calendar month.
func FilterByMonth(records []model.Transaction, year int, month time.Month, loc *time.Location) []model.Transaction {
	if loc == nil {
		loc = time.Local
	}
	start, end := MonthBounds(time.Date(year, month, 1, 0, 0, 0, 0, loc))
	return FilterByRange(records, start, end)
}

// FilterByCategory returns records whose category label matches label.
func FilterByCategory(records []model.Transaction, label string) []model.Transaction {
	if label == "" {
		return records
	}
	var result []model.Transaction
	for _, r := range records {
		c := r.Category()
		if c.Label == label || c.Display == label {
			result = append(result, r)
		}
	}
	return result
}

// ActiveRecords drops soft-deleted records.
func ActiveRecords(records []model.Transaction) []model.Transaction {
	result := make([]model.Transaction, 0, len(records))
	for _, r := range records {
		if !r.Deleted {
			result = append(result, r)
		}
	}
	return result
}

// SumExpenses sums the absolute amount of every non-income record.
func SumExpenses(records []model.Transaction) int64 {
	var total int64
	for _, r := range records {
		if r.IsIncome {
			continue
		}
		total += abs(r.Amount)
	}
	return total
}

// SumIncome sums the amount of every income record.
func SumIncome(records []model.Transaction) int64 {
	var total int64
	for _, r := range records {
		if r.IsIncome {
			total += r.Amount
		}
	}
	return total
}

// GroupByDate buckets records by their raw date string. Every record lands
// in exactly one bucket, including records with malformed dates.
func GroupByDate(records []model.Transaction) map[string][]model.Transaction {
	groups := make(map[string][]model.Transaction)
	for _, r := range records {
		groups[r.Date] = append(groups[r.Date], r)
	}
	return groups
}

// SortedDates returns the keys of a date grouping, most recent first.
func SortedDates(groups map[string][]model.Transaction) []string {
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// GroupByCategory sums records per category label. Expenses contribute their
// absolute amount; unknown category IDs are summed under "other".
func GroupByCategory(records []model.Transaction) map[string]int64 {
	totals := make(map[string]int64)
	for _, r := range records {
		label := model.CategoryLabel(r.CategoryID)
		if r.IsIncome {
			totals[label] += r.Amount
		} else {
			totals[label] += abs(r.Amount)
		}
	}
	return totals
}

// Summarize computes weekly and monthly totals relative to now.
func Summarize(records []model.Transaction, now time.Time) model.PeriodSummary {
	records = ActiveRecords(records)

	s := model.PeriodSummary{AsOf: now}
	s.WeekStart, s.WeekEnd = WeekBounds(now)
	s.MonthStart, s.MonthEnd = MonthBounds(now)

	for _, r := range records {
		if _, ok := ParseDate(r.Date, now.Location()); !ok {
			s.Malformed++
		}
	}

	week := FilterByRange(records, s.WeekStart, s.WeekEnd)
	s.WeekExpenses = SumExpenses(week)
	s.WeekIncome = SumIncome(week)
	s.WeekCount = len(week)

	month := FilterByRange(records, s.MonthStart, s.MonthEnd)
	s.MonthExpenses = SumExpenses(month)
	s.MonthIncome = SumIncome(month)
	s.MonthCount = len(month)

	return s
}

// AggregateDays computes per-day totals for [start, end], filling days with
// no records as zeros. Results are most recent first.
func AggregateDays(records []model.Transaction, start, end time.Time) []model.DailyStats {
	inRange := FilterByRange(ActiveRecords(records), start, end)
	loc := start.Location()

	dayMap := make(map[string]*model.DailyStats)
	for _, r := range inRange {
		ds, ok := dayMap[r.Date]
		if !ok {
			d, _ := ParseDate(r.Date, loc)
			ds = &model.DailyStats{Date: d}
			dayMap[r.Date] = ds
		}
		ds.Count++
		if r.IsIncome {
			ds.Income += r.Amount
		} else {
			ds.Expenses += abs(r.Amount)
		}
	}

	// Fill in every day in the range so the chart shows gaps as zeros
	last := StartOfDay(end)
	for day := StartOfDay(start); !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(model.DateLayout)
		if _, ok := dayMap[key]; !ok {
			dayMap[key] = &model.DailyStats{Date: day}
		}
	}

	days := make([]model.DailyStats, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// AggregateCategories computes the expense breakdown by category, sorted by
// total descending. Income is left out of the breakdown.
func AggregateCategories(records []model.Transaction) []model.CategoryStats {
	byLabel := make(map[string]*model.CategoryStats)
	var total int64

	for _, r := range ActiveRecords(records) {
		if r.IsIncome {
			continue
		}
		c := r.Category()
		cs, ok := byLabel[c.Label]
		if !ok {
			cs = &model.CategoryStats{Label: c.Label, Display: c.Display, Color: c.Color}
			byLabel[c.Label] = cs
		}
		cs.Total += abs(r.Amount)
		cs.Count++
		total += abs(r.Amount)
	}

	stats := make([]model.CategoryStats, 0, len(byLabel))
	for _, cs := range byLabel {
		if total > 0 {
			cs.SharePercent = float64(cs.Total) * 100 / float64(total)
		}
		stats = append(stats, *cs)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Label < stats[j].Label
	})
	return stats
}

func abs(n int64) int64 {
	if n == math.MinInt64 {
		return math.MaxInt64
	}
	if n < 0 {
		return -n
	}
	return n
}
