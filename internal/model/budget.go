package model

import "time"

// Budget is a user's spending budget for one calendar month.
type Budget struct {
	UserID int64
	Year   int
	Month  time.Month
	Amount int64
}

// BudgetStats holds budget tracking and forecast data for the current month.
type BudgetStats struct {
	Budget            int64
	MonthlySpend      int64
	SavingsRate       float64 // percent, 0-100, one decimal
	AvailableToday    int64
	Exhaustion        Exhaustion
	DaysInMonth       int
	DaysRemaining     int // including today
	DailyBurnRate     float64
	ProjectedMonthly  int64
	BudgetUsedPercent float64
	OverBudget        bool
}

// Exhaustion is the projected day the budget runs out at the recommended
// daily pace. AlreadyExceeded replaces Date when no projection is possible.
type Exhaustion struct {
	Date            time.Time
	AlreadyExceeded bool
}

// AlreadyExceededLabel is what an exhausted projection renders as.
const AlreadyExceededLabel = "already exceeded"

func (e Exhaustion) String() string {
	if e.AlreadyExceeded {
		return AlreadyExceededLabel
	}
	return e.Date.Format(DateLayout)
}
