package cmd

import (
	"fmt"
	"time"

	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/tui"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}
	theme.SetActive(e.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	syncer, closeCache := e.openSyncer()
	defer closeCache()

	now := time.Now
	if flagAsOf != "" {
		asOf, err := e.now()
		if err != nil {
			return err
		}
		offset := time.Since(asOf)
		now = func() time.Time { return time.Now().Add(-offset) }
	}

	app := tui.NewApp(tui.Options{
		Config:      e.cfg,
		Session:     e.sess,
		API:         syncer,
		Writer:      e.client,
		Location:    e.loc,
		Now:         now,
		ConfigSaver: config.Save,
		NeedSetup:   !config.Exists(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
