package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagAddDate     string
	flagAddCategory string
	flagAddShop     string
	flagAddAmount   string
	flagAddImage    string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a manual ledger entry",
	Long: "Add a manual ledger entry. Missing values are asked for in a form\n" +
		"when run from a terminal.",
	Example: "  gagyelog add --category 교통 --amount 1450 --shop Subway",
	RunE:    runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddDate, "date", "", "Entry date (YYYY-MM-DD, default today)")
	addCmd.Flags().StringVarP(&flagAddCategory, "category", "c", "", "Category id, label or 한글 name")
	addCmd.Flags().StringVarP(&flagAddShop, "shop", "s", "", "Shop name (default: category name)")
	addCmd.Flags().StringVarP(&flagAddAmount, "amount", "a", "", "Amount in won")
	addCmd.Flags().StringVar(&flagAddImage, "image", "", "Receipt image path already uploaded to the backend")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, _ []string) error {
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

	v := tui.NewEntryValues(now)
	if d := strings.TrimSpace(flagAddDate); d != "" {
		v.Date = d
	}
	v.Shop = flagAddShop
	v.Amount = flagAddAmount
	haveCategory := false
	if raw := strings.TrimSpace(flagAddCategory); raw != "" {
		c, ok := model.LookupCategory(raw)
		if !ok {
			return &model.ValidationError{Fields: []string{"category"}, Reason: fmt.Sprintf("unknown category %q", raw)}
		}
		v.CategoryID = c.ID
		haveCategory = true
	}

	if (!haveCategory || strings.TrimSpace(v.Amount) == "") && interactive() {
		if err := tui.NewEntryForm(v).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Cancelled.")
				return nil
			}
			return err
		}
	}

	in, err := v.Entry()
	if err != nil {
		return err
	}
	in.ImagePath = strings.TrimSpace(flagAddImage)

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := e.client.CreateReceipt(ctx, e.sess, in); err != nil {
		return err
	}

	fmt.Printf("  Added %s  %s  %s  %s\n",
		in.Date, model.CategoryByID(in.CategoryID).Display, in.Shop, cli.FormatWon(in.Amount))
	return nil
}
