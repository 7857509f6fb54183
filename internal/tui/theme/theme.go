// Package theme holds the dashboard palettes and the ledger color rules
// built on them.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps dashboard roles to colors.
type Theme struct {
	Name  string
	Label string // shown in the setup form

	Background    lipgloss.Color
	Surface       lipgloss.Color // cards and panels
	SurfaceHover  lipgloss.Color // selected row
	SurfaceBright lipgloss.Color // active tab
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // focused card
	TextDim       lipgloss.Color // hints
	TextMuted     lipgloss.Color // labels
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color

	Green       lipgloss.Color // budget on track
	GreenBright lipgloss.Color // income
	Orange      lipgloss.Color // budget nearly spent
	Red         lipgloss.Color // over budget
	Yellow      lipgloss.Color // badges
	Cyan        lipgloss.Color // challenges
}

// Passbook is the default dark palette, ink on a green bankbook cover.
var Passbook = Theme{
	Name:          "passbook",
	Label:         "Passbook (dark)",
	Background:    lipgloss.Color("#0F1412"),
	Surface:       lipgloss.Color("#17201C"),
	SurfaceHover:  lipgloss.Color("#1F2B26"),
	SurfaceBright: lipgloss.Color("#283630"),
	Border:        lipgloss.Color("#33443C"),
	BorderAccent:  lipgloss.Color("#4FB286"),
	TextDim:       lipgloss.Color("#4A5F55"),
	TextMuted:     lipgloss.Color("#8A9C93"),
	TextPrimary:   lipgloss.Color("#EEF3EF"),
	Accent:        lipgloss.Color("#4FB286"),
	AccentBright:  lipgloss.Color("#7DD3A8"),
	Green:         lipgloss.Color("#6DBE45"),
	GreenBright:   lipgloss.Color("#95D96B"),
	Orange:        lipgloss.Color("#E39B3A"),
	Red:           lipgloss.Color("#E0574F"),
	Yellow:        lipgloss.Color("#E6C449"),
	Cyan:          lipgloss.Color("#4DB6AC"),
}

// Receipt is a light palette for bright terminals.
var Receipt = Theme{
	Name:          "receipt",
	Label:         "Receipt (light)",
	Background:    lipgloss.Color("#FAF8F2"),
	Surface:       lipgloss.Color("#F1EEE4"),
	SurfaceHover:  lipgloss.Color("#E6E2D5"),
	SurfaceBright: lipgloss.Color("#DAD5C5"),
	Border:        lipgloss.Color("#C9C3B2"),
	BorderAccent:  lipgloss.Color("#2E7D5B"),
	TextDim:       lipgloss.Color("#A39D8C"),
	TextMuted:     lipgloss.Color("#6B6657"),
	TextPrimary:   lipgloss.Color("#23211C"),
	Accent:        lipgloss.Color("#2E7D5B"),
	AccentBright:  lipgloss.Color("#1F6246"),
	Green:         lipgloss.Color("#3F8A2E"),
	GreenBright:   lipgloss.Color("#2F7420"),
	Orange:        lipgloss.Color("#C2651A"),
	Red:           lipgloss.Color("#B8322A"),
	Yellow:        lipgloss.Color("#A67C00"),
	Cyan:          lipgloss.Color("#1F7F78"),
}

// ANSI sticks to the 16 base colors so the terminal's own scheme applies.
var ANSI = Theme{
	Name:          "ansi",
	Label:         "Terminal colors",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("2"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("2"),
	AccentBright:  lipgloss.Color("10"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Yellow:        lipgloss.Color("11"),
	Cyan:          lipgloss.Color("6"),
}

// Default is used for unknown or empty theme names.
var Default = Passbook

// All lists the selectable themes in display order.
var All = []Theme{Passbook, Receipt, ANSI}

// Active is the theme the dashboard renders with.
var Active = Default

// ByName looks a theme up by name, falling back to Default.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Default
}

// SetActive switches Active to the named theme.
func SetActive(name string) {
	Active = ByName(name)
}

// Names lists the selectable theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// Income is the color for money coming in.
func (t Theme) Income() lipgloss.Color { return t.GreenBright }

// Expense is the color for spending amounts.
func (t Theme) Expense() lipgloss.Color { return t.TextPrimary }

// ForBudget picks a color for a budget-used percentage: green while under
// 80%, orange up to the limit, red once the budget is exceeded.
func (t Theme) ForBudget(usedPercent float64) lipgloss.Color {
	switch {
	case usedPercent >= 100:
		return t.Red
	case usedPercent >= 80:
		return t.Orange
	default:
		return t.Green
	}
}
