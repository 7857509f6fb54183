package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/gagyelog/gagyelog/internal/model"
)

func TestSavingsRate_NonPositiveBudget(t *testing.T) {
	for _, budget := range []int64{0, -1, -500000} {
		for _, spend := range []int64{0, 1, 100000, -50} {
			if got := SavingsRate(budget, spend); got != 0 {
				t.Errorf("SavingsRate(%d, %d) = %v, want 0", budget, spend, got)
			}
		}
	}
}

func TestSavingsRate_SpendAtOrOverBudget(t *testing.T) {
	for _, budget := range []int64{1, 1000, 100000} {
		for _, extra := range []int64{0, 1, budget, 10 * budget} {
			if got := SavingsRate(budget, budget+extra); got != 0 {
				t.Errorf("SavingsRate(%d, %d) = %v, want 0", budget, budget+extra, got)
			}
		}
	}
}

func TestSavingsRate_Values(t *testing.T) {
	tests := []struct {
		budget, spend int64
		want          float64
	}{
		{100000, 25000, 75},
		{300000, 100001, 66.7},
		{300000, 0, 100},
		{3, 1, 66.7},
		{100000, 99999, 0}, // 0.001% rounds to 0.0
		{100000, -20000, 100},
	}
	for _, tt := range tests {
		if got := SavingsRate(tt.budget, tt.spend); got != tt.want {
			t.Errorf("SavingsRate(%d, %d) = %v, want %v", tt.budget, tt.spend, got, tt.want)
		}
	}
}

func TestAvailableToday(t *testing.T) {
	tests := []struct {
		name          string
		budget, spend int64
		today         time.Time
		want          int64
	}{
		{"first of month", 310000, 0, at(2024, time.March, 1, 9, 0), 10000},
		{"last day gets the rest", 310000, 300000, at(2024, time.March, 31, 9, 0), 10000},
		{"floor", 100000, 0, at(2024, time.March, 1, 9, 0), 3225},
		{"over budget clamps", 100000, 120000, at(2024, time.March, 15, 9, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableToday(tt.budget, tt.spend, tt.today, DaysInMonth(tt.today))
			if got != tt.want {
				t.Errorf("AvailableToday = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRemainingDays_NeverBelowOne(t *testing.T) {
	if got := RemainingDays(at(2024, time.March, 31, 0, 0), 30); got != 1 {
		t.Errorf("RemainingDays = %d, want 1", got)
	}
}

func TestOverBudgetScenario(t *testing.T) {
	today := at(2024, time.March, 15, 12, 0)
	dim := DaysInMonth(today)

	if got := SavingsRate(100000, 120000); got != 0 {
		t.Errorf("SavingsRate = %v, want 0", got)
	}
	if got := AvailableToday(100000, 120000, today, dim); got != 0 {
		t.Errorf("AvailableToday = %d, want 0", got)
	}
	ex := ExhaustionDate(100000, 120000, today, dim)
	if !ex.AlreadyExceeded || !ex.Date.IsZero() {
		t.Errorf("ExhaustionDate = %+v, want already-exceeded sentinel", ex)
	}
	if ex.String() != model.AlreadyExceededLabel {
		t.Errorf("String() = %q", ex.String())
	}
}

func TestExhaustionDate_ZeroDailyIsSentinel(t *testing.T) {
	today := at(2024, time.March, 1, 12, 0)
	// 10 won left over 31 days floors to 0 per day.
	ex := ExhaustionDate(100000, 99990, today, DaysInMonth(today))
	if !ex.AlreadyExceeded {
		t.Errorf("ExhaustionDate = %+v, want sentinel", ex)
	}
}

func TestExhaustionDate_Projection(t *testing.T) {
	today := at(2024, time.March, 20, 18, 0)
	// 60000 left over 12 days is 5000/day; the 13th day pushes past budget.
	ex := ExhaustionDate(100000, 40000, today, DaysInMonth(today))
	if ex.AlreadyExceeded {
		t.Fatal("unexpected sentinel")
	}
	if got := ex.String(); got != "2024-04-01" {
		t.Errorf("ExhaustionDate = %s, want 2024-04-01", got)
	}
	if ex.Date.Hour() != 0 {
		t.Errorf("exhaustion date should be a calendar day, got %v", ex.Date)
	}
}

func TestExhaustionDate_HugeBudgetTerminates(t *testing.T) {
	today := at(2024, time.March, 1, 12, 0)
	done := make(chan model.Exhaustion, 1)
	go func() { done <- ExhaustionDate(math.MaxInt64, 0, today, DaysInMonth(today)) }()

	select {
	case ex := <-done:
		if ex.AlreadyExceeded {
			t.Fatal("unexpected sentinel")
		}
		// MaxInt64/31 per day runs out on the 32nd step.
		if got := ex.String(); got != "2024-04-01" {
			t.Errorf("ExhaustionDate = %s, want 2024-04-01", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("ExhaustionDate did not return for a MaxInt64 budget")
	}
}

func TestComputeBudgetStats(t *testing.T) {
	stats := ComputeBudgetStats(300000, 150000, at(2024, time.March, 15, 12, 0))

	if stats.DaysInMonth != 31 || stats.DaysRemaining != 17 {
		t.Errorf("days = %d/%d, want 31/17", stats.DaysInMonth, stats.DaysRemaining)
	}
	if stats.DailyBurnRate != 10000 {
		t.Errorf("DailyBurnRate = %v, want 10000", stats.DailyBurnRate)
	}
	if stats.ProjectedMonthly != 310000 {
		t.Errorf("ProjectedMonthly = %d, want 310000", stats.ProjectedMonthly)
	}
	if stats.BudgetUsedPercent != 50 || stats.SavingsRate != 50 {
		t.Errorf("used/savings = %v/%v, want 50/50", stats.BudgetUsedPercent, stats.SavingsRate)
	}
	if stats.AvailableToday != 8823 {
		t.Errorf("AvailableToday = %d, want 8823", stats.AvailableToday)
	}
	if stats.OverBudget {
		t.Error("should not be over budget")
	}
}

func TestComputeBudgetStats_NoBudget(t *testing.T) {
	stats := ComputeBudgetStats(0, 50000, at(2024, time.March, 15, 12, 0))
	if stats.SavingsRate != 0 || stats.BudgetUsedPercent != 0 || stats.OverBudget {
		t.Errorf("stats = %+v", stats)
	}
	if !stats.Exhaustion.AlreadyExceeded {
		t.Error("no budget means nothing is left to spend")
	}
}
