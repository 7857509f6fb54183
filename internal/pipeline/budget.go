package pipeline

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gagyelog/gagyelog/internal/model"
)

var hundred = decimal.NewFromInt(100)

// SavingsRate returns the share of budget not yet spent, as a percentage
// rounded to one decimal and clamped to [0, 100]. A budget of zero or less
// always yields 0.
func SavingsRate(budget, spend int64) float64 {
	if budget <= 0 {
		return 0
	}
	used := decimal.NewFromInt(spend).Div(decimal.NewFromInt(budget))
	rate := decimal.NewFromInt(1).Sub(used).Mul(hundred).Round(1)
	if rate.IsNegative() {
		return 0
	}
	if rate.GreaterThan(hundred) {
		return 100
	}
	return rate.InexactFloat64()
}

// RemainingDays returns the days left in the month counting today, never less than 1.
func RemainingDays(today time.Time, daysInMonth int) int {
	n := daysInMonth - today.Day() + 1
	if n < 1 {
		return 1
	}
	return n
}

// AvailableToday returns how much can be spent per day for the rest of the
// month without exceeding the budget. Never negative.
func AvailableToday(budget, spend int64, today time.Time, daysInMonth int) int64 {
	left := budget - spend
	if left <= 0 {
		return 0
	}
	return left / int64(RemainingDays(today, daysInMonth))
}

// ExhaustionDate projects the day spending would first exceed the budget if
// AvailableToday were spent every day from today on. When spend has already
// reached the budget, or there is nothing left to spend per day, the result
// is the already-exceeded sentinel.
func ExhaustionDate(budget, spend int64, today time.Time, daysInMonth int) model.Exhaustion {
	if spend >= budget {
		return model.Exhaustion{AlreadyExceeded: true}
	}
	daily := AvailableToday(budget, spend, today, daysInMonth)
	if daily <= 0 {
		return model.Exhaustion{AlreadyExceeded: true}
	}

	// First k with spend + k*daily > budget, computed without summing so
	// amounts near the int64 limit cannot overflow.
	steps := (budget-spend)/daily + 1
	return model.Exhaustion{Date: StartOfDay(today).AddDate(0, 0, int(steps-1))}
}

// ComputeBudgetStats derives the full budget picture for today's month.
func ComputeBudgetStats(budget, spend int64, today time.Time) model.BudgetStats {
	dim := DaysInMonth(today)
	stats := model.BudgetStats{
		Budget:         budget,
		MonthlySpend:   spend,
		SavingsRate:    SavingsRate(budget, spend),
		AvailableToday: AvailableToday(budget, spend, today, dim),
		Exhaustion:     ExhaustionDate(budget, spend, today, dim),
		DaysInMonth:    dim,
		DaysRemaining:  RemainingDays(today, dim),
		OverBudget:     budget > 0 && spend > budget,
	}

	if elapsed := today.Day(); elapsed > 0 {
		stats.DailyBurnRate = float64(spend) / float64(elapsed)
		stats.ProjectedMonthly = int64(math.Round(stats.DailyBurnRate * float64(dim)))
	}
	if budget > 0 {
		stats.BudgetUsedPercent = decimal.NewFromInt(spend).
			Div(decimal.NewFromInt(budget)).
			Mul(hundred).
			Round(1).
			InexactFloat64()
	}
	return stats
}
