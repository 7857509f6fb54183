package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gagyelog/gagyelog/internal/backend"
	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/config"
	logx "github.com/gagyelog/gagyelog/internal/log"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
	"github.com/gagyelog/gagyelog/internal/store"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	flagAsOf    string
	flagNoCache bool
	flagQuiet   bool
	flagAPIURL  string
)

// requestTimeout bounds a single CLI invocation's backend work.
const requestTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:           "gagyelog",
	Short:         "Household ledger in your terminal",
	Long:          "Track spending, budgets and savings challenges against the gagyelog backend.",
	RunE:          runSummary,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %s\n", describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAsOf, "as-of", "", "Compute as of this date (YYYY-MM-DD) instead of today")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip the offline ledger cache")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api", "", "Backend base URL (overrides config)")
}

// describeError turns a command error into the one-line message printed
// on exit.
func describeError(err error) string {
	var ve *model.ValidationError
	var apiErr *backend.APIError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, backend.ErrNotLoggedIn):
		return "not logged in: run `gagyelog login` first"
	case errors.Is(err, backend.ErrWrongPassword):
		return "current password is incorrect: nothing was changed"
	case errors.Is(err, backend.ErrNoAccount):
		return "no account matches: check the name used at signup"
	case errors.Is(err, backend.ErrUnauthorized):
		return "session rejected by the backend: run `gagyelog login` again"
	case errors.Is(err, context.DeadlineExceeded):
		return "request failed: backend did not answer in time"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	case errors.As(err, &apiErr):
		return "request failed: " + apiErr.Error()
	}
	return "error: " + err.Error()
}

// env is the per-invocation state shared by commands.
type env struct {
	cfg    config.Config
	sess   model.Session
	client *backend.Client
	loc    *time.Location
	log    *slog.Logger
}

// loadEnv reads config and builds the session and backend client.
func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	loc, err := config.Location(cfg)
	if err != nil {
		return nil, err
	}

	sess := config.Session(cfg)
	if u := strings.TrimRight(strings.TrimSpace(flagAPIURL), "/"); u != "" {
		sess.BaseURL = u
	}

	logger := logx.Discard()
	if !flagQuiet {
		logger = logx.New(logx.Config{Level: slog.LevelWarn, Writer: os.Stderr})
	}

	return &env{
		cfg:    cfg,
		sess:   sess,
		client: backend.NewClient(&http.Client{Timeout: requestTimeout}),
		loc:    loc,
		log:    logger,
	}, nil
}

func (e *env) requireLogin() error {
	if !e.sess.LoggedIn() {
		return backend.ErrNotLoggedIn
	}
	return nil
}

// now returns the as-of instant: --as-of at the current wall-clock time,
// or the present.
func (e *env) now() (time.Time, error) {
	return parseAsOf(flagAsOf, time.Now().In(e.loc))
}

func parseAsOf(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now, nil
	}
	if !model.IsDate(s) {
		return time.Time{}, &model.ValidationError{Fields: []string{"as-of"}, Reason: fmt.Sprintf("--as-of %q is not YYYY-MM-DD", s)}
	}
	d, _ := time.ParseInLocation(model.DateLayout, s, now.Location())
	h, m, sec := now.Clock()
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, sec, 0, now.Location()), nil
}

// openSyncer returns a ledger reader backed by the SQLite cache, or a
// pass-through when the cache is disabled or cannot be opened.
func (e *env) openSyncer() (*pipeline.Syncer, func()) {
	noop := func() {}
	if flagNoCache || e.cfg.General.NoCache {
		return pipeline.NewSyncer(e.client, nil, e.log), noop
	}
	if err := os.MkdirAll(pipeline.CacheDir(), 0o755); err != nil {
		progressf("  Cache unavailable, reading from the backend only\n")
		return pipeline.NewSyncer(e.client, nil, e.log), noop
	}
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		progressf("  Cache unavailable, reading from the backend only\n")
		return pipeline.NewSyncer(e.client, nil, e.log), noop
	}
	return pipeline.NewSyncer(e.client, cache, e.log), func() { _ = cache.Close() }
}

// openExistingCache opens the cache only if one was already created and
// caching is enabled. It returns nil otherwise.
func (e *env) openExistingCache() *store.Cache {
	if flagNoCache || e.cfg.General.NoCache {
		return nil
	}
	if _, err := os.Stat(pipeline.CachePath()); err != nil {
		return nil
	}
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return nil
	}
	return cache
}

// commandContext bounds a command's backend work.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, requestTimeout)
}

// progressf writes progress output to stderr unless --quiet is set.
func progressf(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// loadMonths syncs months through the cache and reports how they were served.
func loadMonths(ctx context.Context, syncer *pipeline.Syncer, sess model.Session, months []pipeline.YearMonth) ([]model.Transaction, int, error) {
	progressf("  Syncing %d month(s)...\n", len(months))
	results, err := syncer.SyncMonths(ctx, sess, months)
	if err != nil {
		return nil, 0, err
	}

	cached := 0
	for _, r := range results {
		if r.FromCache {
			cached++
			progressf("  %s: backend unavailable, showing copy synced %s\n",
				r.YearMonth, cli.FormatAgo(r.SyncedAt))
		}
	}
	records, malformed := pipeline.Flatten(results)
	if cached == 0 {
		progressf("  Loaded %s records\n", cli.FormatNumber(int64(len(records))))
	} else {
		progressf("  Loaded %s records (%d month(s) from cache)\n", cli.FormatNumber(int64(len(records))), cached)
	}
	return records, malformed, nil
}

// monthFlag parses an optional YYYY-MM flag, defaulting to now's month.
func monthFlag(s string, now time.Time) (pipeline.YearMonth, error) {
	if strings.TrimSpace(s) == "" {
		return pipeline.YearMonth{Year: now.Year(), Month: now.Month()}, nil
	}
	return pipeline.ParseYearMonth(strings.TrimSpace(s))
}

// monthAsOf is the as-of instant used for a month: now inside the
// current month, otherwise the month's last day.
func monthAsOf(ym pipeline.YearMonth, now time.Time) time.Time {
	if ym.Year == now.Year() && ym.Month == now.Month() {
		return now
	}
	_, end := pipeline.MonthBounds(time.Date(ym.Year, ym.Month, 1, 12, 0, 0, 0, now.Location()))
	return pipeline.StartOfDay(end).Add(12 * time.Hour)
}

// warnMalformed notes records with unreadable dates and records the
// backend sent with malformed fields.
func warnMalformed(badDates, badFields int) {
	if badDates > 0 {
		fmt.Printf("\n  %s\n", cli.RenderMuted(fmt.Sprintf("%d record(s) had an unreadable date and were left out.", badDates)))
	}
	if badFields > 0 {
		fmt.Printf("\n  %s\n", cli.RenderMuted(fmt.Sprintf("%d record(s) arrived malformed and were skipped or zero-filled.", badFields)))
	}
}

// interactive reports whether stdin is a terminal a form can run on.
func interactive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
