package model

import "time"

// PeriodSummary holds the weekly and monthly totals shown on summary cards.
type PeriodSummary struct {
	AsOf       time.Time
	WeekStart  time.Time
	WeekEnd    time.Time
	MonthStart time.Time
	MonthEnd   time.Time

	WeekExpenses  int64
	WeekIncome    int64
	WeekCount     int
	MonthExpenses int64
	MonthIncome   int64
	MonthCount    int

	// Records whose date could not be parsed; they are left out of every range.
	Malformed int
}

// DailyStats holds totals for a single calendar day.
type DailyStats struct {
	Date     time.Time
	Expenses int64
	Income   int64
	Count    int
}

// CategoryStats holds the total for one category within a period.
type CategoryStats struct {
	Label        string
	Display      string
	Color        string
	Total        int64
	Count        int
	SharePercent float64
}

// Recommendation is the backend's overspending feedback for the month.
type Recommendation struct {
	OverspentCategory string
	Reason            string
}

// MonthlyStats is the backend's server-side monthly statistics.
type MonthlyStats struct {
	CategoryStats map[string]int64
	TotalSpending int64
	Budget        *int64
}
