package cmd

import (
	"fmt"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/source"

	"github.com/spf13/cobra"
)

var flagImportDryRun bool

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Add entries from a JSON-lines file",
	Long: "Add one entry per line. Each line is a JSON object such as\n" +
		`  {"date":"2024-03-12","category":"교통","shop":"Subway","amount":1450}` + "\n" +
		"Invalid lines are reported and skipped; nothing is retried.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Validate the file without submitting")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	result, err := source.ParseEntriesFile(args[0])
	if err != nil {
		return err
	}

	for _, le := range result.Errors {
		fmt.Printf("  %s\n", cli.RenderMuted("skip "+le.Error()))
	}
	if len(result.Entries) == 0 {
		fmt.Println("  No valid entries to import.")
		return nil
	}

	if flagImportDryRun {
		var total int64
		for _, in := range result.Entries {
			total += in.Amount
		}
		fmt.Printf("  %d valid entries (%s), %d rejected\n",
			len(result.Entries), cli.FormatWon(total), len(result.Errors))
		return nil
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	added, failed := 0, 0
	for i, in := range result.Entries {
		progressf("\r  Submitting [%d/%d]", i+1, len(result.Entries))
		if err := e.client.CreateReceipt(ctx, e.sess, in); err != nil {
			if ctx.Err() != nil {
				progressf("\n")
				return err
			}
			failed++
			progressf("\n")
			fmt.Printf("  %s\n", cli.RenderMuted(fmt.Sprintf("failed %s %s %s: %s",
				in.Date, model.CategoryByID(in.CategoryID).Display, cli.FormatWon(in.Amount), describeError(err))))
			continue
		}
		added++
	}
	progressf("\n")

	fmt.Printf("  Imported %d entries, %d failed, %d rejected\n", added, failed, len(result.Errors))
	return nil
}
