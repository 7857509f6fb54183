package cmd

import (
	"fmt"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Weekly and monthly spending with budget status",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
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

	ctx, cancel := commandContext(cmd)
	defer cancel()
	syncer, closeCache := e.openSyncer()
	defer closeCache()

	progressf("  Loading %s...\n", now.Format("2006-01"))
	d := pipeline.LoadDashboard(ctx, syncer, e.sess, now.Year(), now.Month(), nil)
	if d.LedgerErr != nil {
		return d.LedgerErr
	}

	// The week can start in the previous month, and the previous month is
	// also the comparison baseline.
	prevMonth := time.Date(now.Year(), now.Month()-1, 1, 12, 0, 0, 0, e.loc)
	records := d.Ledger
	malformed := d.Malformed
	var prevExpenses int64
	prevLoaded := false
	if prev, err := syncer.Ledger(ctx, e.sess, prevMonth.Year(), prevMonth.Month()); err == nil {
		records = append(append(records[:0:0], records...), prev.Transactions...)
		prevExpenses = pipeline.SumExpenses(pipeline.FilterByMonth(prev.Transactions, prevMonth.Year(), prevMonth.Month(), e.loc))
		prevLoaded = true
	} else {
		progressf("  Previous month unavailable: %v\n", err)
	}

	summary := pipeline.Summarize(records, now)
	budget := pipeline.ComputeBudgetStats(d.Budget, summary.MonthExpenses, now)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("GAGYELOG  %s", cli.FormatDate(now))))
	fmt.Println()

	monthSpend := cli.FormatWon(summary.MonthExpenses)
	if prevLoaded && prevExpenses > 0 {
		monthSpend += fmt.Sprintf("  (%s vs last month)", cli.FormatDelta(summary.MonthExpenses, prevExpenses))
	}

	rows := [][]string{
		{"Week", fmt.Sprintf("%s ~ %s", summary.WeekStart.Format("01-02"), summary.WeekEnd.Format("01-02"))},
		{"Week spending", cli.FormatWon(summary.WeekExpenses)},
		{"Week income", cli.FormatWon(summary.WeekIncome)},
		{"Week entries", cli.FormatNumber(int64(summary.WeekCount))},
		{cli.SeparatorRow},
		{"Month spending", monthSpend},
		{"Month income", cli.FormatWon(summary.MonthIncome)},
		{"Month entries", cli.FormatNumber(int64(summary.MonthCount))},
		{cli.SeparatorRow},
	}

	if d.BudgetErr != nil {
		rows = append(rows, []string{"Budget", "unavailable"})
	} else if budget.Budget == 0 {
		rows = append(rows, []string{"Budget", "not set (gagyelog budget set AMOUNT)"})
	} else {
		rows = append(rows,
			[]string{"Budget", cli.FormatWon(budget.Budget)},
			[]string{"Used", cli.RenderBudgetBar(budget.BudgetUsedPercent, 20)},
			[]string{"Savings rate", cli.FormatPercent(budget.SavingsRate)},
			[]string{"Available today", cli.FormatWon(budget.AvailableToday)},
			[]string{"Budget runs out", budget.Exhaustion.String()},
			[]string{"Days remaining", cli.FormatDays(budget.DaysRemaining)},
			[]string{"Projected month", cli.FormatWon(budget.ProjectedMonthly)},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Summary",
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	monthRecords := pipeline.FilterByMonth(records, now.Year(), now.Month(), e.loc)
	cats := pipeline.AggregateCategories(monthRecords)
	if len(cats) > 0 {
		catRows := make([][]string, 0, 3)
		for _, c := range cats[:min(3, len(cats))] {
			catRows = append(catRows, []string{c.Display, cli.FormatWon(c.Total), cli.FormatPercent(c.SharePercent)})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Top categories",
			Headers: []string{"Category", "Spent", "Share"},
			Rows:    catRows,
		}))
	}

	start, _ := pipeline.MonthBounds(now)
	days := pipeline.AggregateDays(monthRecords, start, now)
	if len(days) > 1 {
		spend := make([]int64, len(days))
		for i, day := range days {
			spend[len(days)-1-i] = day.Expenses
		}
		fmt.Println()
		fmt.Printf("  Daily spending  %s\n", cli.RenderSparkline(spend))
	}

	active := pipeline.FilterChallengesByMonth(d.Challenges, now.Year(), now.Month())
	if len(active) > 0 {
		fmt.Printf("\n  %d challenge(s) this month; see `gagyelog challenges`\n", len(active))
	}

	warnMalformed(summary.Malformed, malformed)
	fmt.Println()
	return nil
}
