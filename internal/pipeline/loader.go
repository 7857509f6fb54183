package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/source"
)

// DashboardAPI is the subset of the backend the dashboard reads from.
// *backend.Client and *Syncer both satisfy it.
type DashboardAPI interface {
	Budget(ctx context.Context, sess model.Session, year int, month time.Month) (int64, error)
	Ledger(ctx context.Context, sess model.Session, year int, month time.Month) (source.DecodeResult, error)
	Challenges(ctx context.Context, sess model.Session) ([]model.Challenge, error)
	Badges(ctx context.Context, sess model.Session) ([]model.BadgeGrant, error)
}

// Dashboard is everything the home screen needs for one month.
// Each part is fetched independently; a failed fetch keeps its default
// (zero budget, empty lists) and records its error.
type Dashboard struct {
	Year       int
	Month      time.Month
	Budget     int64
	Ledger     []model.Transaction
	Malformed  int
	Challenges []model.Challenge
	Badges     []model.BadgeGrant
	FetchedAt  time.Time

	BudgetErr    error
	LedgerErr    error
	ChallengeErr error
	BadgeErr     error
}

// Err returns the first fetch error, for status display.
func (d *Dashboard) Err() error {
	for _, err := range []error{d.LedgerErr, d.BudgetErr, d.ChallengeErr, d.BadgeErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Failed counts the fetches that returned an error.
func (d *Dashboard) Failed() int {
	n := 0
	for _, err := range []error{d.LedgerErr, d.BudgetErr, d.ChallengeErr, d.BadgeErr} {
		if err != nil {
			n++
		}
	}
	return n
}

// ProgressFunc is called as fetches complete.
// current is the number of fetches finished so far, total is the total count.
type ProgressFunc func(current, total int)

const dashboardFetches = 4

// LoadDashboard fetches budget, ledger, challenges and badges for a month
// concurrently. It always returns a Dashboard; one fetch failing never
// blocks or blanks the others.
func LoadDashboard(ctx context.Context, api DashboardAPI, sess model.Session, year int, month time.Month, progressFn ProgressFunc) *Dashboard {
	d := &Dashboard{Year: year, Month: month}

	var wg sync.WaitGroup
	var done atomic.Int64
	finish := func() {
		n := done.Add(1)
		if progressFn != nil {
			progressFn(int(n), dashboardFetches)
		}
	}

	// Each goroutine owns exactly one group of fields, so no locking is needed.
	wg.Add(dashboardFetches)
	go func() {
		defer wg.Done()
		defer finish()
		d.Budget, d.BudgetErr = api.Budget(ctx, sess, year, month)
		if d.BudgetErr != nil {
			d.Budget = 0
		}
	}()
	go func() {
		defer wg.Done()
		defer finish()
		res, err := api.Ledger(ctx, sess, year, month)
		if err != nil {
			d.LedgerErr = err
			return
		}
		d.Ledger = ActiveRecords(res.Transactions)
		d.Malformed = res.Malformed
	}()
	go func() {
		defer wg.Done()
		defer finish()
		d.Challenges, d.ChallengeErr = api.Challenges(ctx, sess)
		if d.ChallengeErr != nil {
			d.Challenges = nil
		}
	}()
	go func() {
		defer wg.Done()
		defer finish()
		d.Badges, d.BadgeErr = api.Badges(ctx, sess)
		if d.BadgeErr != nil {
			d.Badges = nil
		}
	}()

	wg.Wait()
	d.FetchedAt = time.Now()
	return d
}
