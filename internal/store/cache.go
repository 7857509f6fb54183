// Package store provides a SQLite-backed cache of the user's ledger.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gagyelog/gagyelog/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotCached is returned when a month has never been synced.
var ErrNotCached = errors.New("store: month not cached")

// Cache provides SQLite-backed ledger caching, keyed by user and month.
type Cache struct {
	db *sql.DB
}

// SyncState describes the last successful sync of one month.
type SyncState struct {
	SyncedAt     time.Time
	ReceiptCount int
	Malformed    int
}

// Period formats a year and month as the cache key "YYYY-MM".
func Period(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// Open opens or creates the cache database at the given path and applies
// any pending migrations.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ReplaceMonth stores the receipts fetched for one month, replacing whatever
// was cached for that month before.
func (c *Cache) ReplaceMonth(userID int64, year int, month time.Month, txs []model.Transaction, malformed int) error {
	period := Period(year, month)

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM receipts WHERE user_id = ? AND period = ?", userID, period); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO receipts
		(user_id, period, receipt_id, date, category_id, shop, amount, image_path, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range txs {
		deleted := 0
		if r.Deleted {
			deleted = 1
		}
		if _, err := stmt.Exec(userID, period, r.ID, r.Date, r.CategoryID, r.ShopName, r.Amount, r.ImagePath, deleted); err != nil {
			return err
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO sync_state (user_id, period, synced_at, receipt_count, malformed)
		VALUES (?, ?, ?, ?, ?)`, userID, period, now, len(txs), malformed)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadMonth reads the cached receipts for one month. It returns
// ErrNotCached when the month has never been synced.
func (c *Cache) LoadMonth(userID int64, year int, month time.Month) ([]model.Transaction, SyncState, error) {
	state, err := c.SyncState(userID, year, month)
	if err != nil {
		return nil, SyncState{}, err
	}

	rows, err := c.db.Query(`SELECT receipt_id, date, category_id, shop, amount, image_path, deleted
		FROM receipts WHERE user_id = ? AND period = ? ORDER BY date DESC, receipt_id DESC`,
		userID, Period(year, month))
	if err != nil {
		return nil, state, err
	}
	defer func() { _ = rows.Close() }()

	txs := make([]model.Transaction, 0, state.ReceiptCount)
	for rows.Next() {
		var (
			id, amount int64
			date, shop string
			category   int
			image      sql.NullString
			deleted    int
		)
		if err := rows.Scan(&id, &date, &category, &shop, &amount, &image, &deleted); err != nil {
			return nil, state, err
		}
		r := model.NewTransaction(id, date, category, shop, amount)
		r.ImagePath = image.String
		r.Deleted = deleted != 0
		txs = append(txs, r)
	}
	return txs, state, rows.Err()
}

// SyncState returns when a month was last synced.
func (c *Cache) SyncState(userID int64, year int, month time.Month) (SyncState, error) {
	var (
		state    SyncState
		syncedAt string
	)
	err := c.db.QueryRow(`SELECT synced_at, receipt_count, malformed FROM sync_state
		WHERE user_id = ? AND period = ?`, userID, Period(year, month)).
		Scan(&syncedAt, &state.ReceiptCount, &state.Malformed)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncState{}, ErrNotCached
	}
	if err != nil {
		return SyncState{}, err
	}
	state.SyncedAt, _ = time.Parse(time.RFC3339, syncedAt)
	return state, nil
}

// MarkDeleted flags a cached receipt as soft-deleted.
func (c *Cache) MarkDeleted(userID, receiptID int64) error {
	_, err := c.db.Exec("UPDATE receipts SET deleted = 1 WHERE user_id = ? AND receipt_id = ?", userID, receiptID)
	return err
}

// SaveBudget caches a month's budget.
func (c *Cache) SaveBudget(userID int64, year int, month time.Month, amount int64) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO budgets (user_id, period, amount, synced_at)
		VALUES (?, ?, ?, ?)`, userID, Period(year, month), amount, time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadBudget reads a cached budget. It returns ErrNotCached when absent.
func (c *Cache) LoadBudget(userID int64, year int, month time.Month) (int64, error) {
	var amount int64
	err := c.db.QueryRow("SELECT amount FROM budgets WHERE user_id = ? AND period = ?",
		userID, Period(year, month)).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotCached
	}
	return amount, err
}

// ClearUser removes everything cached for a user. Used on logout.
func (c *Cache) ClearUser(userID int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"receipts", "sync_state", "budgets"} {
		//nolint:gosec // table names are constants
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReceiptCount returns the number of cached receipts for a user.
func (c *Cache) ReceiptCount(userID int64) (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM receipts WHERE user_id = ?", userID).Scan(&count)
	return count, err
}
