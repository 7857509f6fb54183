package cmd

import (
	"testing"
	"time"

	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
)

func TestTrendRows(t *testing.T) {
	results := []pipeline.MonthResult{
		{
			YearMonth: pipeline.YearMonth{Year: 2026, Month: time.February},
			Transactions: []model.Transaction{
				{ID: 1, Date: "2026-02-03", CategoryID: model.CategoryDining, Amount: 10000},
				{ID: 2, Date: "2026-02-25", CategoryID: model.CategoryIncome, Amount: 300000, IsIncome: true},
			},
			FromCache: true,
		},
		{
			YearMonth: pipeline.YearMonth{Year: 2026, Month: time.March},
			Transactions: []model.Transaction{
				{ID: 3, Date: "2026-03-03", CategoryID: model.CategoryDining, Amount: 4000},
				{ID: 4, Date: "2026-03-04", CategoryID: model.CategoryDining, Amount: 9000, Deleted: true},
			},
		},
	}
	rows := trendRows(results, time.UTC)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	want := [][]string{
		{"2026-02 (cached)", "10,000원", "-", "300,000원"},
		{"2026-03", "4,000원", "-6,000원", "0원"},
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("rows[%d][%d] = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestReportCategoryRows(t *testing.T) {
	cats := []model.CategoryStats{
		{Label: "dining", Display: "외식", Total: 12000, Count: 3, SharePercent: 80},
		{Label: "transport", Display: "교통", Total: 3000, Count: 2, SharePercent: 20},
	}
	stats := &model.MonthlyStats{CategoryStats: map[string]int64{"외식": 12500}}

	rows := reportCategoryRows(cats, stats)
	if got := rows[0][4]; got != "12,500원" {
		t.Errorf("dining backend cell = %q, want 12,500원", got)
	}
	if got := rows[1][4]; got != "-" {
		t.Errorf("transport backend cell = %q, want -", got)
	}

	rows = reportCategoryRows(cats, nil)
	if rows[0][4] != "-" {
		t.Errorf("nil stats backend cell = %q, want -", rows[0][4])
	}
}
