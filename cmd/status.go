package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account, backend, cache and daemon status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if !e.sess.LoggedIn() {
		fmt.Println()
		fmt.Println("  Not logged in.")
		fmt.Println()
		fmt.Println("  Log in with one of:")
		fmt.Println("    gagyelog login                  (email and password)")
		fmt.Println("    gagyelog login oauth kakao      (browser)")
		fmt.Println("    GAGYELOG_TOKEN=... gagyelog     (one-shot)")
		fmt.Println()
		return nil
	}

	now := time.Now().In(e.loc)
	progressf("  Checking %s ...\n", e.sess.BaseURL)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	// Both calls are independent; a failure in one still lets the other render.
	var (
		total, budget       int64
		totalErr, budgetErr error
	)
	syncer, closeCache := e.openSyncer()
	defer closeCache()
	var g errgroup.Group
	g.Go(func() error {
		total, totalErr = e.client.MonthlyTotal(ctx, e.sess)
		return nil
	})
	g.Go(func() error {
		budget, budgetErr = syncer.Budget(ctx, e.sess, now.Year(), now.Month())
		return nil
	})
	_ = g.Wait()

	if totalErr != nil && budgetErr != nil {
		return totalErr
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("GAGYELOG STATUS"))
	fmt.Println()

	name := e.sess.UserName
	if name == "" {
		name = e.sess.Email
	}
	fmt.Printf("  Account:  %s (user %d)\n", orDash(name), e.sess.UserID)
	fmt.Printf("  Backend:  %s\n", e.sess.BaseURL)
	fmt.Println()

	period := pipeline.YearMonth{Year: now.Year(), Month: now.Month()}
	rows := [][]string{}
	if totalErr == nil {
		rows = append(rows, []string{"Spent (server)", cli.FormatWon(total)})
	}
	if budgetErr == nil {
		rows = append(rows, budgetStatusRows(budget, total, totalErr == nil, now)...)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "This Month · " + period.String(),
		Headers: []string{"Item", "Value"},
		Rows:    rows,
	}))

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Local",
		Headers: []string{"Item", "Value"},
		Rows: [][]string{
			{"Cache", cacheStatus(e.cfg)},
			{"Cached entries", cachedEntries(e)},
			{"Synced " + period.String(), lastSynced(e, period)},
			{"Daemon", daemonState(flagDaemonPIDFile)},
		},
	}))

	if err := errors.Join(totalErr, budgetErr); err != nil {
		warnStyle := lipgloss.NewStyle().Foreground(cli.ColorOrange)
		fmt.Printf("  %s\n\n", warnStyle.Render("Partial data: "+err.Error()))
	}

	fmt.Printf("  Fetched at %s\n\n", now.Format("3:04:05 PM"))
	return nil
}

// budgetStatusRows renders the budget line and, when the month's spend is
// known, its usage bar.
func budgetStatusRows(budget, spend int64, haveSpend bool, now time.Time) [][]string {
	if budget <= 0 {
		return [][]string{{"Budget", "not set"}}
	}
	rows := [][]string{{"Budget", cli.FormatWon(budget)}}
	if !haveSpend {
		return rows
	}
	stats := pipeline.ComputeBudgetStats(budget, spend, now)
	rows = append(rows,
		[]string{"Used", cli.RenderBudgetBar(stats.BudgetUsedPercent, 20)},
		[]string{"Left today", cli.FormatWon(stats.AvailableToday)},
	)
	return rows
}

func cachedEntries(e *env) string {
	cache := e.openExistingCache()
	if cache == nil {
		return "-"
	}
	defer func() { _ = cache.Close() }()
	n, err := cache.ReceiptCount(e.sess.UserID)
	if err != nil {
		return "-"
	}
	return cli.FormatNumber(int64(n))
}

func lastSynced(e *env, ym pipeline.YearMonth) string {
	cache := e.openExistingCache()
	if cache == nil {
		return "never"
	}
	defer func() { _ = cache.Close() }()
	st, err := cache.SyncState(e.sess.UserID, ym.Year, ym.Month)
	if err != nil {
		return "never"
	}
	s := fmt.Sprintf("%s (%d entries)", cli.FormatAgo(st.SyncedAt), st.ReceiptCount)
	if st.Malformed > 0 {
		s += fmt.Sprintf(", %d malformed", st.Malformed)
	}
	return s
}

func daemonState(pidFile string) string {
	pid, err := readPID(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return "not running"
		}
		return "unknown"
	}
	if !processAlive(pid) {
		return "stale pid file"
	}
	st, err := readState(statePath(pidFile))
	if err != nil || strings.TrimSpace(st.Addr) == "" {
		return fmt.Sprintf("running (pid %d)", pid)
	}
	return fmt.Sprintf("running (pid %d, %s)", pid, st.Addr)
}
