package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gagyelog/gagyelog/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagDeleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a ledger entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}

	if !flagDeleteYes && interactive() {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete entry #%d?", id)).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return err
		}
		if !confirmed {
			fmt.Println("  Kept.")
			return nil
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := e.client.DeleteReceipt(ctx, e.sess, id); err != nil {
		return err
	}

	// Keep the offline copy in step until the next sync replaces it.
	if cache := e.openExistingCache(); cache != nil {
		_ = cache.MarkDeleted(e.sess.UserID, id)
		_ = cache.Close()
	}

	fmt.Printf("  Deleted entry #%d\n", id)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &model.ValidationError{Fields: []string{"id"}, Reason: fmt.Sprintf("%q is not a valid id", s)}
	}
	return id, nil
}
