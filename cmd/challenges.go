package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagChallengesMonth string

	flagChallengeType     string
	flagChallengeStart    string
	flagChallengeEnd      string
	flagChallengeTarget   string
	flagChallengeCategory string
	flagChallengeYes      bool
)

var challengesCmd = &cobra.Command{
	Use:     "challenges",
	Aliases: []string{"challenge"},
	Short:   "Savings challenges",
	RunE:    runChallenges,
}

var challengesShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Progress and spend for one challenge",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesShow,
}

var challengesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Start a challenge",
	Long: "Start a challenge. Types: no-spending, category-limit, saving.\n" +
		"Missing values are asked for in a form when run from a terminal.",
	Example: "  gagyelog challenges create --type category-limit --category 외식 --target 100000 \\\n" +
		"      --start 2024-03-11 --end 2024-03-17",
	RunE: runChallengesCreate,
}

var challengesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a challenge",
	Args:  cobra.ExactArgs(1),
	RunE:  runChallengesDelete,
}

func init() {
	challengesCmd.Flags().StringVar(&flagChallengesMonth, "month", "", "Only challenges starting in this month (YYYY-MM)")

	challengesCreateCmd.Flags().StringVarP(&flagChallengeType, "type", "t", "", "Challenge type")
	challengesCreateCmd.Flags().StringVar(&flagChallengeStart, "start", "", "Start date (YYYY-MM-DD, default today)")
	challengesCreateCmd.Flags().StringVar(&flagChallengeEnd, "end", "", "End date (YYYY-MM-DD)")
	challengesCreateCmd.Flags().StringVar(&flagChallengeTarget, "target", "", "Spending cap in won")
	challengesCreateCmd.Flags().StringVarP(&flagChallengeCategory, "category", "c", "", "Target category for category-limit")

	challengesDeleteCmd.Flags().BoolVarP(&flagChallengeYes, "yes", "y", false, "Skip the confirmation prompt")

	challengesCmd.AddCommand(challengesShowCmd, challengesCreateCmd, challengesDeleteCmd)
	rootCmd.AddCommand(challengesCmd)
}

func runChallenges(cmd *cobra.Command, _ []string) error {
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
	challenges, err := e.client.Challenges(ctx, e.sess)
	if err != nil {
		return err
	}

	title := "CHALLENGES"
	if strings.TrimSpace(flagChallengesMonth) != "" {
		ym, err := pipeline.ParseYearMonth(strings.TrimSpace(flagChallengesMonth))
		if err != nil {
			return err
		}
		challenges = pipeline.FilterChallengesByMonth(challenges, ym.Year, ym.Month)
		title += "  " + ym.String()
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	if len(challenges) == 0 {
		fmt.Println("  No challenges. Start one with `gagyelog challenges create`.")
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(challenges))
	for _, c := range challenges {
		p := pipeline.ChallengeProgressAt(c, now)
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			challengeGoal(c),
			c.StartDate + " ~ " + c.EndDate,
			cli.FormatPercent(p.Percent),
			cli.ChallengeStatus(c, p),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Goal", "Window", "Elapsed", "Status"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

// challengeGoal describes a challenge with its target, e.g.
// "Category limit 외식 ≤ 100,000원".
func challengeGoal(c model.Challenge) string {
	goal := c.Type.Describe()
	if c.Type == model.ChallengeCategoryLimit && c.TargetCategory != "" {
		if cat, ok := model.LookupCategory(c.TargetCategory); ok {
			goal += " " + cat.Display
		} else {
			goal += " " + c.TargetCategory
		}
	}
	if c.TargetAmount != nil {
		goal += " ≤ " + cli.FormatWon(*c.TargetAmount)
	}
	return goal
}

func runChallengesShow(cmd *cobra.Command, args []string) error {
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
	now, err := e.now()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	c, err := e.client.Challenge(ctx, e.sess, id)
	if err != nil {
		return err
	}
	p := pipeline.ChallengeProgressAt(*c, now)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CHALLENGE #%d", c.ID)))
	fmt.Println()

	rows := [][]string{
		{"Goal", challengeGoal(*c)},
		{"Window", c.StartDate + " ~ " + c.EndDate},
		{"Length", cli.FormatDays(p.TotalDays)},
		{"Elapsed", cli.RenderBudgetBar(p.Percent, 20)},
		{"Days remaining", cli.FormatDays(p.DaysRemaining)},
		{"Status", cli.ChallengeStatus(*c, p)},
	}

	months := challengeMonths(*c, now, e.loc)
	if len(months) > 0 {
		syncer, closeCache := e.openSyncer()
		defer closeCache()
		records, _, err := loadMonths(ctx, syncer, e.sess, months)
		if err != nil {
			progressf("  Ledger unavailable: %v\n", err)
		} else {
			spend := pipeline.ChallengeSpendFor(records, *c, e.loc)
			rows = append(rows, []string{cli.SeparatorRow}, []string{"Spent in window", cli.FormatWon(spend.Spent)})
			if spend.HasCap {
				used := 0.0
				if spend.Target > 0 {
					used = float64(spend.Spent) * 100 / float64(spend.Target)
				} else if spend.Spent > 0 {
					used = 100
				}
				rows = append(rows,
					[]string{"Cap", cli.FormatWon(spend.Target)},
					[]string{"Cap used", cli.RenderBudgetBar(used, 20)},
				)
			}
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Println("  " + cli.RenderMuted("Progress and spend are estimates; the backend decides the result."))
	fmt.Println()
	return nil
}

// challengeMonths lists the months a challenge window covers, up to now's
// month. A window that has not started or has unreadable dates gives none.
func challengeMonths(c model.Challenge, now time.Time, loc *time.Location) []pipeline.YearMonth {
	start, ok1 := pipeline.ParseDate(c.StartDate, loc)
	end, ok2 := pipeline.ParseDate(c.EndDate, loc)
	if !ok1 || !ok2 || end.Before(start) || start.After(now) {
		return nil
	}
	if end.After(now) {
		end = now
	}

	var months []pipeline.YearMonth
	for m := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc); !m.After(end); m = m.AddDate(0, 1, 0) {
		months = append(months, pipeline.YearMonth{Year: m.Year(), Month: m.Month()})
	}
	return months
}

// parseChallengeType accepts "category-limit", "category_limit" or
// "CATEGORY_LIMIT".
func parseChallengeType(s string) (model.ChallengeType, error) {
	t := model.ChallengeType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !t.Valid() {
		return "", &model.ValidationError{Fields: []string{"type"}, Reason: fmt.Sprintf("unknown challenge type %q (want no-spending, category-limit or saving)", s)}
	}
	return t, nil
}

// challengeValues holds the create form answers as text.
type challengeValues struct {
	Type     model.ChallengeType
	Start    string
	End      string
	Target   string
	Category string
}

func (v *challengeValues) challenge() (model.NewChallenge, error) {
	nc := model.NewChallenge{
		Type:      v.Type,
		StartDate: strings.TrimSpace(v.Start),
		EndDate:   strings.TrimSpace(v.End),
	}
	if raw := strings.TrimSpace(v.Target); raw != "" {
		amount, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSuffix(raw, "원"), ",", ""), 10, 64)
		if err != nil || amount < 0 {
			return nc, &model.ValidationError{Fields: []string{"target amount"}, Reason: fmt.Sprintf("target %q is not a whole won amount", raw)}
		}
		nc.TargetAmount = &amount
	}
	if raw := strings.TrimSpace(v.Category); raw != "" {
		cat, ok := model.LookupCategory(raw)
		if !ok {
			return nc, &model.ValidationError{Fields: []string{"target category"}, Reason: fmt.Sprintf("unknown category %q", raw)}
		}
		nc.TargetCategory = cat.Label
	}
	if nc.Type != model.ChallengeCategoryLimit {
		nc.TargetCategory = ""
	}
	return nc, nc.Validate()
}

func newChallengeForm(v *challengeValues) *huh.Form {
	cats := make([]huh.Option[string], 0, len(model.Categories))
	for _, c := range model.Categories {
		if c.ID == model.CategoryIncome {
			continue
		}
		cats = append(cats, huh.NewOption(c.Display, c.Label))
	}
	dateCheck := func(s string) error {
		if !model.IsDate(strings.TrimSpace(s)) {
			return errors.New("use YYYY-MM-DD")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.ChallengeType]().
				Title("Challenge").
				Options(
					huh.NewOption(model.ChallengeNoSpending.Describe(), model.ChallengeNoSpending),
					huh.NewOption(model.ChallengeCategoryLimit.Describe(), model.ChallengeCategoryLimit),
					huh.NewOption(model.ChallengeSaving.Describe(), model.ChallengeSaving),
				).
				Value(&v.Type),
			huh.NewInput().Title("Start date").Value(&v.Start).Validate(dateCheck),
			huh.NewInput().Title("End date").Value(&v.End).Validate(dateCheck),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Category").
				Options(cats...).
				Value(&v.Category),
		).WithHideFunc(func() bool { return v.Type != model.ChallengeCategoryLimit }),
		huh.NewGroup(
			huh.NewInput().
				Title("Spending cap (won)").
				Value(&v.Target),
		).WithHideFunc(func() bool { return v.Type == model.ChallengeSaving }),
	)
}

func runChallengesCreate(cmd *cobra.Command, _ []string) error {
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

	v := &challengeValues{
		Type:     model.ChallengeNoSpending,
		Start:    now.Format(model.DateLayout),
		End:      flagChallengeEnd,
		Target:   flagChallengeTarget,
		Category: flagChallengeCategory,
	}
	if s := strings.TrimSpace(flagChallengeStart); s != "" {
		v.Start = s
	}
	haveType := strings.TrimSpace(flagChallengeType) != ""
	if haveType {
		if v.Type, err = parseChallengeType(flagChallengeType); err != nil {
			return err
		}
	}

	if (!haveType || strings.TrimSpace(v.End) == "") && interactive() {
		if v.End == "" {
			v.End = now.AddDate(0, 0, 6).Format(model.DateLayout)
		}
		if err := newChallengeForm(v).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Cancelled.")
				return nil
			}
			return err
		}
	}

	nc, err := v.challenge()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := e.client.CreateChallenge(ctx, e.sess, nc); err != nil {
		return err
	}
	fmt.Printf("  Started %s challenge %s ~ %s\n", strings.ToLower(nc.Type.Describe()), nc.StartDate, nc.EndDate)
	return nil
}

func runChallengesDelete(cmd *cobra.Command, args []string) error {
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

	if !flagChallengeYes && interactive() {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete challenge #%d?", id)).
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
	if err := e.client.DeleteChallenge(ctx, e.sess, id); err != nil {
		return err
	}
	fmt.Printf("  Deleted challenge #%d\n", id)
	return nil
}
