package cmd

import (
	"fmt"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagReportMonth  string
	flagReportMonths int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Monthly report with category breakdown and trend",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&flagReportMonth, "month", "", "Report month (YYYY-MM, default current)")
	reportCmd.Flags().IntVarP(&flagReportMonths, "trend", "n", 0, "Months in the trend (default: config sync_months)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}
	now, err := e.now()
	if err != nil {
		return err
	}
	ym, err := monthFlag(flagReportMonth, now)
	if err != nil {
		return err
	}
	current := ym.Year == now.Year() && ym.Month == now.Month()

	trendLen := flagReportMonths
	if trendLen < 1 {
		trendLen = e.cfg.General.SyncMonths
	}
	months := pipeline.MonthsBack(monthAsOf(ym, now), max(trendLen, 1))

	ctx, cancel := commandContext(cmd)
	defer cancel()
	syncer, closeCache := e.openSyncer()
	defer closeCache()

	results, err := syncer.SyncMonths(ctx, e.sess, months)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.FromCache {
			progressf("  %s: backend unavailable, showing copy synced %s\n", r.YearMonth, cli.FormatAgo(r.SyncedAt))
		}
	}
	last := results[len(results)-1]
	records := pipeline.ActiveRecords(pipeline.FilterByMonth(last.Transactions, ym.Year, ym.Month, e.loc))

	stats, statsErr := e.client.MonthlyStats(ctx, e.sess, ym.Year, ym.Month)
	var rec *model.Recommendation
	if current {
		rec, _ = e.client.Recommendation(ctx, e.sess)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("REPORT  " + ym.String()))
	fmt.Println()

	spent := pipeline.SumExpenses(records)
	income := pipeline.SumIncome(records)
	rows := [][]string{
		{"Spent", cli.FormatWon(spent)},
		{"Income", cli.FormatWon(income)},
		{"Net", cli.FormatDelta(income, spent)},
		{"Entries", cli.FormatNumber(int64(len(records)))},
	}
	if statsErr == nil && stats.Budget != nil && *stats.Budget > 0 {
		used := float64(spent) * 100 / float64(*stats.Budget)
		rows = append(rows,
			[]string{cli.SeparatorRow},
			[]string{"Budget", cli.FormatWon(*stats.Budget)},
			[]string{"Used", cli.RenderBudgetBar(used, 20)},
			[]string{"Savings rate", cli.FormatPercent(pipeline.SavingsRate(*stats.Budget, spent))},
		)
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	cats := pipeline.AggregateCategories(records)
	if len(cats) > 0 {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By category",
			Headers: []string{"Category", "Entries", "Spent", "Share", "Backend"},
			Rows:    reportCategoryRows(cats, stats),
		}))
	}
	if statsErr != nil {
		fmt.Printf("  %s\n", cli.RenderMuted("Backend statistics unavailable: "+describeError(statsErr)))
	} else if stats.TotalSpending != spent {
		fmt.Printf("  %s\n", cli.RenderMuted(fmt.Sprintf("Backend total %s differs from the ledger; the backend may count entries differently.",
			cli.FormatWon(stats.TotalSpending))))
	}

	if len(results) > 1 {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Trend",
			Headers: []string{"Month", "Spent", "Change", "Income"},
			Rows:    trendRows(results, e.loc),
		}))
		spend := make([]int64, len(results))
		for i, r := range results {
			spend[i] = pipeline.SumExpenses(pipeline.ActiveRecords(pipeline.FilterByMonth(r.Transactions, r.Year, r.Month, e.loc)))
		}
		fmt.Printf("  Spending  %s\n", cli.RenderSparkline(spend))
	}

	if rec != nil && rec.OverspentCategory != "" {
		fmt.Println()
		name := rec.OverspentCategory
		if c, ok := model.LookupCategory(name); ok {
			name = c.Display
		}
		fmt.Printf("  Watch %s: %s\n", name, rec.Reason)
	}

	warnMalformed(countBadDates(last.Transactions, e.loc), last.Malformed)
	fmt.Println()
	return nil
}

// reportCategoryRows joins the client breakdown with the backend's per
// category totals, which are keyed by label or 한글 name.
func reportCategoryRows(cats []model.CategoryStats, stats *model.MonthlyStats) [][]string {
	server := make(map[string]int64)
	if stats != nil {
		for key, v := range stats.CategoryStats {
			label := key
			if c, ok := model.LookupCategory(key); ok {
				label = c.Label
			}
			server[label] += v
		}
	}

	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		backendCell := "-"
		if v, ok := server[c.Label]; ok {
			backendCell = cli.FormatWon(v)
		}
		rows = append(rows, []string{
			c.Display,
			cli.FormatNumber(int64(c.Count)),
			cli.FormatWon(c.Total),
			cli.FormatPercent(c.SharePercent),
			backendCell,
		})
	}
	return rows
}

func trendRows(results []pipeline.MonthResult, loc *time.Location) [][]string {
	rows := make([][]string, 0, len(results))
	var prev int64
	for i, r := range results {
		records := pipeline.ActiveRecords(pipeline.FilterByMonth(r.Transactions, r.Year, r.Month, loc))
		spent := pipeline.SumExpenses(records)
		change := "-"
		if i > 0 {
			change = cli.FormatDelta(spent, prev)
		}
		label := r.YearMonth.String()
		if r.FromCache {
			label += " (cached)"
		}
		rows = append(rows, []string{label, cli.FormatWon(spent), change, cli.FormatWon(pipeline.SumIncome(records))})
		prev = spent
	}
	return rows
}
