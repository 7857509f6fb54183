package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gagyelog/gagyelog/internal/backend"
	logx "github.com/gagyelog/gagyelog/internal/log"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/source"
	"github.com/gagyelog/gagyelog/internal/store"
)

// DefaultSyncLimit bounds concurrent month fetches.
const DefaultSyncLimit = 4

// YearMonth names one calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) String() string {
	return store.Period(ym.Year, ym.Month)
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil || len(s) != 7 {
		return YearMonth{}, fmt.Errorf("invalid month %q (want YYYY-MM)", s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// MonthsBack returns the n months ending with now's month, oldest first.
func MonthsBack(now time.Time, n int) []YearMonth {
	if n < 1 {
		n = 1
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]YearMonth, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, i-n+1, 0)
		months[i] = YearMonth{Year: m.Year(), Month: m.Month()}
	}
	return months
}

// MonthResult is the outcome of loading one month's ledger.
type MonthResult struct {
	YearMonth
	Transactions []model.Transaction
	Malformed    int
	FromCache    bool
	SyncedAt     time.Time
	FetchErr     error // set when the backend failed and the cache was used
}

// Syncer reads the ledger through a SQLite cache. Fresh fetches overwrite
// the cached month; when the backend is unreachable the cached copy is
// served instead. Calls it does not override go straight to the API.
type Syncer struct {
	DashboardAPI

	Cache  *store.Cache // nil disables caching
	Logger *slog.Logger
	Limit  int
}

// NewSyncer wraps api with cache. A nil cache makes the syncer a pass-through.
func NewSyncer(api DashboardAPI, cache *store.Cache, logger *slog.Logger) *Syncer {
	return &Syncer{
		DashboardAPI: api,
		Cache:        cache,
		Logger:       logx.WithComponent(logger, logx.ComponentSync),
		Limit:        DefaultSyncLimit,
	}
}

// Month loads one month, preferring the backend and falling back to cache.
func (s *Syncer) Month(ctx context.Context, sess model.Session, ym YearMonth) (MonthResult, error) {
	result := MonthResult{YearMonth: ym}
	start := time.Now()

	res, err := s.DashboardAPI.Ledger(ctx, sess, ym.Year, ym.Month)
	if err == nil {
		result.Transactions = res.Transactions
		result.Malformed = res.Malformed
		result.SyncedAt = time.Now()
		if s.Cache != nil {
			if cerr := s.Cache.ReplaceMonth(sess.UserID, ym.Year, ym.Month, res.Transactions, res.Malformed); cerr != nil {
				s.logger().Warn("cache write failed", logx.FieldPeriod, ym.String(), logx.FieldError, cerr)
			}
		}
		s.logger().Debug("month fetched",
			logx.FieldPeriod, ym.String(),
			logx.FieldCount, len(res.Transactions),
			logx.FieldDuration, time.Since(start).Milliseconds(),
		)
		return result, nil
	}

	if !canFallBack(err) || s.Cache == nil {
		return result, err
	}

	cached, state, cerr := s.Cache.LoadMonth(sess.UserID, ym.Year, ym.Month)
	if cerr != nil {
		if errors.Is(cerr, store.ErrNotCached) {
			return result, err
		}
		return result, fmt.Errorf("%w (cache: %v)", err, cerr)
	}

	s.logger().Warn("backend unavailable, serving cached month",
		logx.FieldPeriod, ym.String(),
		logx.FieldError, err,
	)
	result.Transactions = cached
	result.Malformed = state.Malformed
	result.SyncedAt = state.SyncedAt
	result.FromCache = true
	result.FetchErr = err
	return result, nil
}

// Ledger satisfies DashboardAPI with cache fallback.
func (s *Syncer) Ledger(ctx context.Context, sess model.Session, year int, month time.Month) (source.DecodeResult, error) {
	r, err := s.Month(ctx, sess, YearMonth{Year: year, Month: month})
	if err != nil {
		return source.DecodeResult{}, err
	}
	return source.DecodeResult{Transactions: r.Transactions, Malformed: r.Malformed}, nil
}

// Budget satisfies DashboardAPI with cache fallback.
func (s *Syncer) Budget(ctx context.Context, sess model.Session, year int, month time.Month) (int64, error) {
	amount, err := s.DashboardAPI.Budget(ctx, sess, year, month)
	if err == nil {
		if s.Cache != nil {
			_ = s.Cache.SaveBudget(sess.UserID, year, month, amount)
		}
		return amount, nil
	}
	if !canFallBack(err) || s.Cache == nil {
		return 0, err
	}
	if cached, cerr := s.Cache.LoadBudget(sess.UserID, year, month); cerr == nil {
		return cached, nil
	}
	return 0, err
}

// SyncMonths loads several months concurrently, at most Limit at a time.
// Results are in the order requested. The first month that can neither be
// fetched nor served from cache cancels the rest.
func (s *Syncer) SyncMonths(ctx context.Context, sess model.Session, months []YearMonth) ([]MonthResult, error) {
	results := make([]MonthResult, len(months))

	g, gctx := errgroup.WithContext(ctx)
	limit := s.Limit
	if limit < 1 {
		limit = DefaultSyncLimit
	}
	g.SetLimit(limit)

	for i, ym := range months {
		i, ym := i, ym
		g.Go(func() error {
			r, err := s.Month(gctx, sess, ym)
			if err != nil {
				return fmt.Errorf("syncing %s: %w", ym, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	cached := 0
	for _, r := range results {
		if r.FromCache {
			cached++
		}
	}
	s.logger().Info("sync complete",
		logx.FieldUserID, sess.UserID,
		logx.FieldCount, len(months),
		logx.FieldCached, cached,
	)
	return results, nil
}

// Flatten concatenates month results into one ledger.
func Flatten(results []MonthResult) ([]model.Transaction, int) {
	var all []model.Transaction
	malformed := 0
	for _, r := range results {
		all = append(all, r.Transactions...)
		malformed += r.Malformed
	}
	return all, malformed
}

func (s *Syncer) logger() *slog.Logger {
	if s.Logger == nil {
		return logx.Discard()
	}
	return s.Logger
}

// canFallBack reports whether a fetch error is an availability problem the
// cache can cover. Authentication and not-logged-in errors are not.
func canFallBack(err error) bool {
	switch {
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, backend.ErrNotLoggedIn):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "gagyelog")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "gagyelog")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "ledger.db")
}
