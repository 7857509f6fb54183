package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagyelog/gagyelog/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "sub", "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestReplaceAndLoadMonth(t *testing.T) {
	c := openTestCache(t)

	txs := []model.Transaction{
		model.NewTransaction(1, "2024-03-10", model.CategoryDining, "Kimbap", 5000),
		model.NewTransaction(2, "2024-03-11", model.CategoryIncome, "Payroll", 3_000_000),
	}
	txs[0].ImagePath = "/img/1.png"

	if err := c.ReplaceMonth(7, 2024, time.March, txs, 1); err != nil {
		t.Fatalf("ReplaceMonth: %v", err)
	}

	got, state, err := c.LoadMonth(7, 2024, time.March)
	if err != nil {
		t.Fatalf("LoadMonth: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d receipts, want 2", len(got))
	}
	// Most recent first.
	if got[0].ID != 2 || !got[0].IsIncome {
		t.Errorf("first = %+v, want income receipt 2", got[0])
	}
	if got[1].ImagePath != "/img/1.png" {
		t.Errorf("ImagePath = %q", got[1].ImagePath)
	}
	if state.ReceiptCount != 2 || state.Malformed != 1 || state.SyncedAt.IsZero() {
		t.Errorf("state = %+v", state)
	}

	// Replacing drops rows that are no longer returned.
	if err := c.ReplaceMonth(7, 2024, time.March, txs[:1], 0); err != nil {
		t.Fatalf("ReplaceMonth: %v", err)
	}
	got, _, _ = c.LoadMonth(7, 2024, time.March)
	if len(got) != 1 {
		t.Errorf("after replace got %d receipts, want 1", len(got))
	}
}

func TestLoadMonth_NotCached(t *testing.T) {
	c := openTestCache(t)
	if _, _, err := c.LoadMonth(7, 2024, time.April); !errors.Is(err, ErrNotCached) {
		t.Errorf("err = %v, want ErrNotCached", err)
	}
	if _, err := c.LoadBudget(7, 2024, time.April); !errors.Is(err, ErrNotCached) {
		t.Errorf("budget err = %v, want ErrNotCached", err)
	}
}

func TestMonthsAndUsersAreIsolated(t *testing.T) {
	c := openTestCache(t)
	mar := []model.Transaction{model.NewTransaction(1, "2024-03-10", 1, "a", 100)}
	apr := []model.Transaction{model.NewTransaction(2, "2024-04-10", 1, "b", 200)}

	_ = c.ReplaceMonth(7, 2024, time.March, mar, 0)
	_ = c.ReplaceMonth(7, 2024, time.April, apr, 0)
	_ = c.ReplaceMonth(8, 2024, time.March, apr, 0)

	got, _, _ := c.LoadMonth(7, 2024, time.March)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("user 7 March = %+v", got)
	}

	if err := c.ClearUser(7); err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	if n, _ := c.ReceiptCount(7); n != 0 {
		t.Errorf("user 7 count = %d after clear", n)
	}
	if n, _ := c.ReceiptCount(8); n != 1 {
		t.Errorf("user 8 count = %d, want untouched", n)
	}
}

func TestMarkDeletedAndBudget(t *testing.T) {
	c := openTestCache(t)
	_ = c.ReplaceMonth(7, 2024, time.March, []model.Transaction{
		model.NewTransaction(5, "2024-03-01", 4, "mall", 45000),
	}, 0)

	if err := c.MarkDeleted(7, 5); err != nil {
		t.Fatalf("MarkDeleted: %v", err)
	}
	got, _, _ := c.LoadMonth(7, 2024, time.March)
	if !got[0].Deleted {
		t.Error("receipt should be marked deleted")
	}

	if err := c.SaveBudget(7, 2024, time.March, 500000); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}
	if b, err := c.LoadBudget(7, 2024, time.March); err != nil || b != 500000 {
		t.Errorf("LoadBudget = %d, %v", b, err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = c.SaveBudget(1, 2024, time.May, 10)
	_ = c.Close()

	// Migrations are idempotent on an existing database.
	c, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = c.Close() }()
	if b, _ := c.LoadBudget(1, 2024, time.May); b != 10 {
		t.Errorf("budget after reopen = %d, want 10", b)
	}
}

func TestPeriod(t *testing.T) {
	if got := Period(2024, time.March); got != "2024-03" {
		t.Errorf("Period = %q", got)
	}
}
