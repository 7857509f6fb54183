package cmd

import (
	"testing"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
)

func TestLedgerRows(t *testing.T) {
	records := []model.Transaction{
		{ID: 1, Date: "2026-03-01", CategoryID: model.CategoryDining, ShopName: "Kimbap", Amount: 4500},
		{ID: 2, Date: "2026-03-02", CategoryID: model.CategoryTransport, ShopName: "Bus", Amount: 1500},
		{ID: 3, Date: "2026-03-02", CategoryID: model.CategoryDining, ShopName: "Cafe", Amount: 5200},
	}
	rows := ledgerRows(records, time.UTC)

	// Two days, newest first, one separator between them.
	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4: %v", len(rows), rows)
	}
	if rows[0][0] != "2026-03-02 Mon" {
		t.Errorf("first label = %q, want 2026-03-02 Mon", rows[0][0])
	}
	if rows[1][0] != "" {
		t.Errorf("second row of same day should have blank date, got %q", rows[1][0])
	}
	if len(rows[2]) != 1 || rows[2][0] != cli.SeparatorRow {
		t.Errorf("rows[2] = %v, want separator", rows[2])
	}
	if rows[3][1] != "1" || rows[3][2] != "외식" || rows[3][3] != "Kimbap" {
		t.Errorf("rows[3] = %v", rows[3])
	}
}

func TestLedgerRowsKeepsUnreadableDate(t *testing.T) {
	rows := ledgerRows([]model.Transaction{{ID: 9, Date: "03/02", Amount: 100}}, time.UTC)
	if len(rows) != 1 || rows[0][0] != "03/02" {
		t.Errorf("rows = %v, want raw date label", rows)
	}
}

func TestCountBadDates(t *testing.T) {
	records := []model.Transaction{
		{Date: "2026-03-01"},
		{Date: ""},
		{Date: "2026-3-1"},
	}
	if got := countBadDates(records, time.UTC); got != 2 {
		t.Errorf("countBadDates = %d, want 2", got)
	}
}
