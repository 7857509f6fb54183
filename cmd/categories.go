package cmd

import (
	"fmt"
	"strconv"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var flagCategoriesMonth string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending by category",
	Long: "List the categories and, when logged in, the month's spending in each.\n" +
		"Category ids, labels and 한글 names are all accepted by --category flags.",
	RunE: runCategories,
}

func init() {
	categoriesCmd.Flags().StringVar(&flagCategoriesMonth, "month", "", "Month to break down (YYYY-MM, default current)")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	// The table alone is useful without a login.
	if !e.sess.LoggedIn() {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Categories",
			Headers: []string{"Name", "ID", "Label"},
			Rows:    categoryRows(nil),
		}))
		fmt.Println()
		return nil
	}

	now, err := e.now()
	if err != nil {
		return err
	}
	ym, err := monthFlag(flagCategoriesMonth, now)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	syncer, closeCache := e.openSyncer()
	defer closeCache()

	all, malformed, err := loadMonths(ctx, syncer, e.sess, []pipeline.YearMonth{ym})
	if err != nil {
		return err
	}
	records := pipeline.FilterByMonth(all, ym.Year, ym.Month, e.loc)
	stats := pipeline.AggregateCategories(records)

	fmt.Println()
	fmt.Println(cli.RenderTitle("CATEGORIES  " + ym.String()))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Name", "ID", "Label", "Entries", "Spent", "Share", ""},
		Rows:    categoryRows(stats),
	}))

	if income := pipeline.SumIncome(records); income > 0 {
		fmt.Printf("\n  Income this month: %s\n", cli.RenderAmount(income, true))
	}
	warnMalformed(0, malformed)
	fmt.Println()
	return nil
}

// categoryRows lists every known category in id order, joined with the
// month's totals when stats is non-nil. Unknown ids appear last as 기타.
func categoryRows(stats []model.CategoryStats) [][]string {
	byLabel := make(map[string]model.CategoryStats, len(stats))
	var top int64
	for _, s := range stats {
		byLabel[s.Label] = s
		top = max(top, s.Total)
	}

	rows := make([][]string, 0, len(model.Categories)+1)
	for _, c := range model.Categories {
		row := []string{c.Display, strconv.Itoa(c.ID), c.Label}
		if stats != nil && c.ID != model.CategoryIncome {
			s := byLabel[c.Label]
			row = append(row,
				cli.FormatNumber(int64(s.Count)),
				cli.FormatWon(s.Total),
				cli.FormatPercent(s.SharePercent),
				cli.RenderHorizontalBar(s.Total, top, 16, lipgloss.Color(c.Color)),
			)
		}
		rows = append(rows, row)
	}
	if s, ok := byLabel[model.OtherLabel]; ok {
		rows = append(rows, []string{
			s.Display, "-", s.Label,
			cli.FormatNumber(int64(s.Count)),
			cli.FormatWon(s.Total),
			cli.FormatPercent(s.SharePercent),
			cli.RenderHorizontalBar(s.Total, top, 16, lipgloss.Color(s.Color)),
		})
	}
	return rows
}
