package cmd

import (
	"testing"
	"time"
)

func TestBudgetStatusRows(t *testing.T) {
	now := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)

	rows := budgetStatusRows(0, 5000, true, now)
	if len(rows) != 1 || rows[0][1] != "not set" {
		t.Errorf("no budget rows = %v", rows)
	}

	rows = budgetStatusRows(300000, 0, false, now)
	if len(rows) != 1 || rows[0][1] != "300,000원" {
		t.Errorf("spend unknown rows = %v", rows)
	}

	rows = budgetStatusRows(300000, 120000, true, now)
	if len(rows) != 3 {
		t.Fatalf("rows = %v, want budget, used and left today", rows)
	}
	if rows[1][0] != "Used" || rows[2][0] != "Left today" {
		t.Errorf("row labels = %q, %q", rows[1][0], rows[2][0])
	}
}
