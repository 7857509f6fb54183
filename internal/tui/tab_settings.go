package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/cli"
	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/pipeline"
	"github.com/gagyelog/gagyelog/internal/tui/components"
	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldBudget = iota
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldSyncMonths
	settingsFieldTimezone
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldBudget:
		ti.Placeholder = "monthly budget in won"
		if a.dash != nil && a.dash.Budget > 0 {
			ti.SetValue(strconv.FormatInt(a.dash.Budget, 10))
		}
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(a.cfg.Appearance.Theme)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "60 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	case settingsFieldSyncMonths:
		ti.Placeholder = "6"
		ti.SetValue(strconv.Itoa(a.cfg.General.SyncMonths))
	case settingsFieldTimezone:
		ti.Placeholder = "Asia/Seoul (empty for local)"
		ti.SetValue(a.cfg.General.Timezone)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil && cmd == nil
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

var errInvalidSetting = errors.New("invalid value")

// settingsSave applies the edited field. The budget is stored by the
// backend, so it returns a command; everything else is written to config.
func (a *App) settingsSave() tea.Cmd {
	val := strings.TrimSpace(a.settings.input.Value())
	cfg := a.cfg

	switch a.settings.cursor {
	case settingsFieldBudget:
		amount, err := strconv.ParseInt(strings.ReplaceAll(val, ",", ""), 10, 64)
		if err != nil || amount < 0 {
			a.settings.saveErr = fmt.Errorf("budget %q: %w", val, errInvalidSetting)
			return nil
		}
		if a.writer == nil {
			a.settings.saveErr = errors.New("read-only session")
			return nil
		}
		return saveBudgetCmd(a.writer, a.sess, model.Budget{
			UserID: a.sess.UserID,
			Year:   a.year,
			Month:  a.month,
			Amount: amount,
		})
	case settingsFieldTheme:
		found := false
		for _, name := range theme.Names() {
			if name == val {
				found = true
				break
			}
		}
		if !found {
			a.settings.saveErr = fmt.Errorf("theme %q: %w", val, errInvalidSetting)
			return nil
		}
		cfg.Appearance.Theme = val
		theme.SetActive(val)
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("auto refresh %q: %w", val, errInvalidSetting)
			return nil
		}
		cfg.TUI.AutoRefresh = b
		a.autoRefresh = b
	case settingsFieldRefreshInterval:
		sec, err := strconv.Atoi(val)
		if err != nil || time.Duration(sec)*time.Second < minRefreshPeriod {
			a.settings.saveErr = fmt.Errorf("interval %q: %w", val, errInvalidSetting)
			return nil
		}
		cfg.TUI.RefreshIntervalSec = sec
		a.refreshInterval = time.Duration(sec) * time.Second
	case settingsFieldSyncMonths:
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 || n > 36 {
			a.settings.saveErr = fmt.Errorf("sync months %q: %w", val, errInvalidSetting)
			return nil
		}
		cfg.General.SyncMonths = n
	case settingsFieldTimezone:
		cfg.General.Timezone = val
		loc, err := config.Location(cfg)
		if err != nil {
			a.settings.saveErr = err
			return nil
		}
		a.loc = loc
		a.recompute()
	}

	a.cfg = cfg
	a.settings.saveErr = a.saveConf(cfg)
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	budget := "(not set)"
	if a.dash != nil && a.dash.Budget > 0 {
		budget = cli.FormatWon(a.dash.Budget)
	}
	tz := a.cfg.General.Timezone
	if tz == "" {
		tz = "local (" + a.loc.String() + ")"
	}

	fields := []struct{ label, value string }{
		{"Budget " + a.period(), budget},
		{"Theme", a.cfg.Appearance.Theme},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
		{"Sync Months", strconv.Itoa(a.cfg.General.SyncMonths)},
		{"Timezone", tz},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		label := padCell(f.label+":", 20)
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(label))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") + selectedLabelStyle.Render(label) + selectedStyle.Render(f.value)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				line += lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad))
			}
			form.WriteString(line)
		default:
			form.WriteString(labelStyle.Render("  " + label))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		form.WriteString("\n")
		form.WriteString(warnStyle.Render("Save failed: " + a.settings.saveErr.Error()))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	user := a.sess.Email
	if a.sess.UserName != "" {
		user = a.sess.UserName + " <" + a.sess.Email + ">"
	}
	var info strings.Builder
	rows := [][2]string{
		{"Account:", fmt.Sprintf("%s (#%d)", user, a.sess.UserID)},
		{"Backend:", a.sess.BaseURL},
		{"Config file:", config.ConfigPath()},
		{"Cache:", pipeline.CachePath()},
		{"Last load:", fmt.Sprintf("%.1fs", a.loadTime.Seconds())},
	}
	for i, r := range rows {
		if i > 0 {
			info.WriteString("\n")
		}
		info.WriteString(labelStyle.Render(padCell(r[0], 14)))
		info.WriteString(valueStyle.Render(r[1]))
	}

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", info.String(), cw))
	return b.String()
}
