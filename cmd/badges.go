package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/gagyelog/gagyelog/internal/cli"

	"github.com/spf13/cobra"
)

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "Badges earned from challenges",
	RunE:  runBadges,
}

func init() {
	rootCmd.AddCommand(badgesCmd)
}

func runBadges(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	badges, err := e.client.Badges(ctx, e.sess)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BADGES"))
	fmt.Println()

	if len(badges) == 0 {
		fmt.Println("  No badges yet. Finish a challenge to earn one.")
		fmt.Println()
		return nil
	}

	sort.SliceStable(badges, func(i, j int) bool {
		return badges[i].GrantedDate < badges[j].GrantedDate
	})
	rows := make([][]string, 0, len(badges))
	for _, b := range badges {
		rows = append(rows, []string{"★ " + b.Name(), strconv.Itoa(b.BadgeID), b.GrantedDate})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Badge", "ID", "Granted"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
