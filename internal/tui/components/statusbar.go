package components

import (
	"fmt"
	"strings"

	"github.com/gagyelog/gagyelog/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom status bar reports.
type StatusInfo struct {
	UserName    string
	Period      string // YYYY-MM being shown
	DataAge     string // e.g. "2 minutes ago"
	Failed      int    // dashboard fetches that failed
	Offline     bool   // served from the local cache
	Refreshing  bool
	AutoRefresh bool
	Message     string // transient action feedback
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" [?]help  [a]dd  [[ ]]month  [r]efresh  [q]uit")
	if info.Message != "" {
		left += base.Render("  ") + accent.Render(info.Message)
	}

	var right []string
	if info.UserName != "" {
		right = append(right, accent.Render(info.UserName))
	}
	if info.Period != "" {
		right = append(right, base.Render(info.Period))
	}
	if info.Failed > 0 {
		right = append(right, warn.Render(fmt.Sprintf("%d failed", info.Failed)))
	}
	if info.Offline {
		right = append(right, warn.Render("offline"))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("syncing…"))
	case info.DataAge != "":
		age := "synced " + info.DataAge
		if info.AutoRefresh {
			age += " ↻"
		}
		right = append(right, base.Render(age))
	}
	rightStr := strings.Join(right, base.Render(" · ")) + base.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(rightStr)
	if padding < 0 {
		padding = 0
	}

	return left + base.Render(strings.Repeat(" ", padding)) + rightStr
}
