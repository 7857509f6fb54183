package cmd

import (
	"errors"
	"fmt"

	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/tui"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	if !interactive() {
		return errors.New("setup needs a terminal; edit " + config.ConfigPath() + " instead")
	}

	// Load existing config or defaults
	cfg, _ := config.Load()
	theme.SetActive(cfg.Appearance.Theme)

	v := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled; nothing was saved.")
			return nil
		}
		return err
	}
	v.Apply(&cfg)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	if !config.Session(cfg).LoggedIn() {
		fmt.Println("  Next: `gagyelog login` or `gagyelog login oauth kakao`")
	} else {
		fmt.Println("  Run `gagyelog` for a summary or `gagyelog tui` for the dashboard.")
	}
	fmt.Println()
	return nil
}
