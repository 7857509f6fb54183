package cmd

import (
	"fmt"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagBudgetMonth string

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Monthly budget and forecast",
	RunE:  runBudget,
}

var budgetSetCmd = &cobra.Command{
	Use:     "set AMOUNT",
	Short:   "Set the monthly budget",
	Example: "  gagyelog budget set 500,000\n  gagyelog budget set 450000 --month 2024-04",
	Args:    cobra.ExactArgs(1),
	RunE:    runBudgetSet,
}

func init() {
	budgetCmd.PersistentFlags().StringVar(&flagBudgetMonth, "month", "", "Budget month (YYYY-MM, default current)")
	budgetCmd.AddCommand(budgetSetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(cmd *cobra.Command, _ []string) error {
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
	ym, err := monthFlag(flagBudgetMonth, now)
	if err != nil {
		return err
	}
	asOf := monthAsOf(ym, now)

	ctx, cancel := commandContext(cmd)
	defer cancel()
	syncer, closeCache := e.openSyncer()
	defer closeCache()

	amount, err := syncer.Budget(ctx, e.sess, ym.Year, ym.Month)
	if err != nil {
		return err
	}
	all, malformed, err := loadMonths(ctx, syncer, e.sess, []pipeline.YearMonth{ym})
	if err != nil {
		return err
	}
	spend := pipeline.SumExpenses(pipeline.ActiveRecords(pipeline.FilterByMonth(all, ym.Year, ym.Month, e.loc)))
	stats := pipeline.ComputeBudgetStats(amount, spend, asOf)

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET  " + ym.String()))
	fmt.Println()

	if amount == 0 {
		fmt.Printf("  No budget set for %s. Spent so far: %s\n", ym, cli.FormatWon(spend))
		fmt.Println("  Set one with `gagyelog budget set AMOUNT`.")
		fmt.Println()
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    budgetRows(stats),
	}))
	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderBudgetBar(stats.BudgetUsedPercent, 40))
	if stats.OverBudget {
		fmt.Printf("  Over budget by %s\n", cli.FormatWon(stats.MonthlySpend-stats.Budget))
	}
	warnMalformed(0, malformed)
	fmt.Println()
	return nil
}

func budgetRows(s model.BudgetStats) [][]string {
	return [][]string{
		{"Budget", cli.FormatWon(s.Budget)},
		{"Spent", cli.FormatWon(s.MonthlySpend)},
		{"Remaining", cli.FormatWon(max(s.Budget-s.MonthlySpend, 0))},
		{cli.SeparatorRow},
		{"Savings rate", cli.FormatPercent(s.SavingsRate)},
		{"Available today", cli.FormatWon(s.AvailableToday)},
		{"Days remaining", cli.FormatDays(s.DaysRemaining)},
		{"Budget runs out", s.Exhaustion.String()},
		{cli.SeparatorRow},
		{"Daily average", cli.FormatWon(int64(s.DailyBurnRate))},
		{"Projected month", cli.FormatWon(s.ProjectedMonthly)},
	}
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	amount, err := cli.ParseWon(args[0])
	if err != nil {
		return &model.ValidationError{Fields: []string{"budget"}, Reason: fmt.Sprintf("budget %q: %v", args[0], err)}
	}
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
	ym, err := monthFlag(flagBudgetMonth, now)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	b := model.Budget{UserID: e.sess.UserID, Year: ym.Year, Month: ym.Month, Amount: amount}
	if err := e.client.SaveBudget(ctx, e.sess, b); err != nil {
		return err
	}

	syncer, closeCache := e.openSyncer()
	defer closeCache()
	if syncer.Cache != nil {
		_ = syncer.Cache.SaveBudget(e.sess.UserID, ym.Year, ym.Month, amount)
	}

	fmt.Printf("  Budget for %s set to %s\n", ym, cli.FormatWon(amount))
	return nil
}
