package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagLedgerDate     string
	flagLedgerMonth    string
	flagLedgerCategory string
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Ledger entries grouped by day",
	RunE:  runLedger,
}

func init() {
	ledgerCmd.Flags().StringVar(&flagLedgerDate, "date", "", "Show a single day (YYYY-MM-DD)")
	ledgerCmd.Flags().StringVar(&flagLedgerMonth, "month", "", "Month to show (YYYY-MM, default current)")
	ledgerCmd.Flags().StringVarP(&flagLedgerCategory, "category", "c", "", "Filter to a category (label or 한글 name)")
	rootCmd.AddCommand(ledgerCmd)
}

func runLedger(cmd *cobra.Command, _ []string) error {
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

	var ym pipeline.YearMonth
	date := strings.TrimSpace(flagLedgerDate)
	if date != "" {
		d, ok := pipeline.ParseDate(date, e.loc)
		if !ok {
			return &model.ValidationError{Fields: []string{"date"}, Reason: fmt.Sprintf("--date %q is not YYYY-MM-DD", date)}
		}
		ym = pipeline.YearMonth{Year: d.Year(), Month: d.Month()}
	} else if ym, err = monthFlag(flagLedgerMonth, now); err != nil {
		return err
	}

	var category model.Category
	if raw := strings.TrimSpace(flagLedgerCategory); raw != "" {
		c, ok := model.LookupCategory(raw)
		if !ok {
			return &model.ValidationError{Fields: []string{"category"}, Reason: fmt.Sprintf("unknown category %q", raw)}
		}
		category = c
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	syncer, closeCache := e.openSyncer()
	defer closeCache()

	all, malformed, err := loadMonths(ctx, syncer, e.sess, []pipeline.YearMonth{ym})
	if err != nil {
		return err
	}
	all = pipeline.ActiveRecords(all)
	badDates := countBadDates(all, e.loc)

	records := pipeline.FilterByMonth(all, ym.Year, ym.Month, e.loc)
	records = pipeline.FilterByCategory(records, category.Label)
	if date != "" {
		records = pipeline.GroupByDate(records)[date]
	}

	title := "LEDGER  " + ym.String()
	if date != "" {
		title = "LEDGER  " + date
	}
	if category.Label != "" {
		title += "  " + category.Display
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	if len(records) == 0 {
		fmt.Println("  No entries for the selected period.")
		warnMalformed(badDates, malformed)
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "ID", "Category", "Shop", "Amount"},
		Rows:    ledgerRows(records, e.loc),
	}))

	fmt.Println()
	fmt.Printf("  %d entries  spent %s  income %s\n",
		len(records),
		cli.FormatWon(pipeline.SumExpenses(records)),
		cli.FormatWon(pipeline.SumIncome(records)),
	)
	warnMalformed(badDates, malformed)
	fmt.Println()
	return nil
}

// ledgerRows lays out records newest day first, with a rule between days
// and the date shown once per day.
func ledgerRows(records []model.Transaction, loc *time.Location) [][]string {
	groups := pipeline.GroupByDate(records)
	dates := pipeline.SortedDates(groups)

	rows := make([][]string, 0, len(records)+len(dates))
	for i, date := range dates {
		if i > 0 {
			rows = append(rows, []string{cli.SeparatorRow})
		}
		label := date
		if d, ok := pipeline.ParseDate(date, loc); ok {
			label = cli.FormatDate(d)
		}
		for j, r := range groups[date] {
			if j > 0 {
				label = ""
			}
			rows = append(rows, []string{
				label,
				strconv.FormatInt(r.ID, 10),
				r.Category().Display,
				r.ShopName,
				cli.RenderAmount(r.Amount, r.IsIncome),
			})
		}
	}
	return rows
}

func countBadDates(records []model.Transaction, loc *time.Location) int {
	n := 0
	for _, r := range records {
		if _, ok := pipeline.ParseDate(r.Date, loc); !ok {
			n++
		}
	}
	return n
}
