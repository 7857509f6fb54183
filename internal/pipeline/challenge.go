package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gagyelog/gagyelog/internal/model"
)

const oneDay = 24 * time.Hour

// ceilDays returns ceil(d / 24h). Negative durations round toward zero.
func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(oneDay)))
}

// ChallengeProgressAt estimates how far through its window a challenge is.
// It is a display estimate only and never decides success.
//
// Before the start date progress is 0 with every day remaining. After the
// end date it is 100 with none remaining. In between it is the share of
// elapsed days, rounded to one decimal.
func ChallengeProgressAt(c model.Challenge, now time.Time) model.ChallengeProgress {
	start, okStart := ParseDate(c.StartDate, now.Location())
	end, okEnd := ParseDate(c.EndDate, now.Location())
	if !okStart || !okEnd {
		return model.ChallengeProgress{}
	}

	total := ceilDays(end.Sub(start)) + 1
	p := model.ChallengeProgress{TotalDays: total}

	switch {
	case now.Before(start):
		p.DaysRemaining = max(0, total)
	case now.After(end):
		p.Percent = 100
	default:
		elapsed := ceilDays(now.Sub(start)) + 1
		pct := decimal.NewFromInt(int64(elapsed)).
			Div(decimal.NewFromInt(int64(total))).
			Mul(hundred).
			Round(1)
		if pct.GreaterThan(hundred) {
			pct = hundred
		}
		p.Percent = pct.InexactFloat64()
		p.DaysRemaining = max(0, ceilDays(end.Sub(now)))
	}
	return p
}

// ChallengeSpendFor sums the expenses inside a challenge's window. For a
// category-limit challenge only the target category counts.
func ChallengeSpendFor(records []model.Transaction, c model.Challenge, loc *time.Location) model.ChallengeSpend {
	start, okStart := ParseDate(c.StartDate, loc)
	end, okEnd := ParseDate(c.EndDate, loc)
	if !okStart || !okEnd {
		return model.ChallengeSpend{}
	}

	inWindow := FilterByRange(ActiveRecords(records), start, end.Add(endOfDay))
	if c.Type == model.ChallengeCategoryLimit {
		label := c.TargetCategory
		if cat, ok := model.LookupCategory(label); ok {
			label = cat.Label
		}
		inWindow = FilterByCategory(inWindow, label)
	}

	s := model.ChallengeSpend{Spent: SumExpenses(inWindow)}
	if c.TargetAmount != nil {
		s.Target = *c.TargetAmount
		s.HasCap = true
	}
	return s
}

// FilterChallengesByMonth returns challenges whose start date falls in the
// given month, ordered by start date.
func FilterChallengesByMonth(challenges []model.Challenge, year int, month time.Month) []model.Challenge {
	prefix := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
	var result []model.Challenge
	for _, c := range challenges {
		if len(c.StartDate) >= len(prefix) && c.StartDate[:len(prefix)] == prefix {
			result = append(result, c)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartDate < result[j].StartDate
	})
	return result
}
