package tui

import (
	"errors"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the first-run form.
type SetupValues struct {
	APIURL      string
	Theme       string
	SyncMonths  int
	AutoRefresh bool
	Timezone    string
}

// NewSetupValues seeds the form from the current config.
func NewSetupValues(cfg config.Config) *SetupValues {
	return &SetupValues{
		APIURL:      config.GetAPIURL(cfg),
		Theme:       cfg.Appearance.Theme,
		SyncMonths:  cfg.General.SyncMonths,
		AutoRefresh: cfg.TUI.AutoRefresh,
		Timezone:    cfg.General.Timezone,
	}
}

// Apply copies the answers into cfg.
func (v *SetupValues) Apply(cfg *config.Config) {
	if u := strings.TrimRight(strings.TrimSpace(v.APIURL), "/"); u != "" {
		cfg.API.BaseURL = u
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	if v.SyncMonths > 0 {
		cfg.General.SyncMonths = v.SyncMonths
	}
	cfg.TUI.AutoRefresh = v.AutoRefresh
	cfg.General.Timezone = strings.TrimSpace(v.Timezone)
}

// NewSetupForm builds the first-run form used by the dashboard and by
// `gagyelog setup`.
func NewSetupForm(v *SetupValues) *huh.Form {
	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Label, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to gagyelog").
				Description("A terminal client for your household ledger.\nA few settings first; run `gagyelog setup` to change them later."),
			huh.NewInput().
				Title("Backend URL").
				Value(&v.APIURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Timezone").
				Description("IANA name such as Asia/Seoul. Empty uses the local zone.").
				Value(&v.Timezone).
				Validate(validateTimezone),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
			huh.NewSelect[int]().
				Title("Months to keep in the offline cache").
				Options(
					huh.NewOption("3 months", 3),
					huh.NewOption("6 months", 6),
					huh.NewOption("12 months", 12),
				).
				Value(&v.SyncMonths),
			huh.NewConfirm().
				Title("Refresh the dashboard automatically?").
				Value(&v.AutoRefresh),
		),
	).WithShowHelp(true)
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return errors.New("must start with http:// or https://")
	}
	return nil
}

func validateTimezone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return errors.New("unknown timezone")
	}
	return nil
}

// EntryValues holds the answers of the manual entry form. Amount is kept
// as text so the form can validate it.
type EntryValues struct {
	Date       string
	CategoryID int
	Shop       string
	Amount     string
}

// NewEntryValues starts an entry dated today.
func NewEntryValues(today time.Time) *EntryValues {
	return &EntryValues{
		Date:       today.Format(model.DateLayout),
		CategoryID: model.CategoryDining,
	}
}

// Entry converts the answers and validates them.
func (v *EntryValues) Entry() (model.EntryInput, error) {
	amount, _ := cli.ParseWon(v.Amount)
	in := model.EntryInput{
		Date:       strings.TrimSpace(v.Date),
		CategoryID: v.CategoryID,
		Shop:       strings.TrimSpace(v.Shop),
		Amount:     amount,
	}
	in.Shop = in.ShopOrDefault()
	if err := in.Validate(); err != nil {
		return model.EntryInput{}, err
	}
	return in, nil
}

// NewEntryForm builds the manual entry form.
func NewEntryForm(v *EntryValues) *huh.Form {
	cats := make([]huh.Option[int], 0, len(model.Categories))
	for _, c := range model.Categories {
		cats = append(cats, huh.NewOption(c.Display+" ("+c.Label+")", c.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Placeholder(model.DateLayout).
				Value(&v.Date).
				Validate(func(s string) error {
					if !model.IsDate(strings.TrimSpace(s)) {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewSelect[int]().
				Title("Category").
				Options(cats...).
				Value(&v.CategoryID),
			huh.NewInput().
				Title("Shop").
				Placeholder("blank uses the category name").
				Value(&v.Shop),
			huh.NewInput().
				Title("Amount (won)").
				Value(&v.Amount).
				Validate(func(s string) error {
					if _, err := cli.ParseWon(s); err != nil {
						return err
					}
					return nil
				}),
		),
	)
}
