// Package theme defines color themes for the mfocus TUI.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mfocus/internal/model"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	Border       lipgloss.Color // Subtle borders
	BorderAccent lipgloss.Color // Accent-colored borders for focus states
	TextDim      lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted    lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary  lipgloss.Color // Primary content text
	Accent       lipgloss.Color // Primary accent (active tab, spinner)
	AccentBright lipgloss.Color // Brighter accent for emphasis
	Good         lipgloss.Color // High engagement
	Warn         lipgloss.Color // Middling engagement
	Bad          lipgloss.Color // Low engagement, errors

	Meeting     lipgloss.Color
	WorkRelated lipgloss.Color
	Distraction lipgloss.Color
	Browser     lipgloss.Color
	Other       lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Good:         lipgloss.Color("#879A39"),
	Warn:         lipgloss.Color("#DA702C"),
	Bad:          lipgloss.Color("#D14D41"),

	Meeting:     lipgloss.Color("#4385BE"),
	WorkRelated: lipgloss.Color("#879A39"),
	Distraction: lipgloss.Color("#D14D41"),
	Browser:     lipgloss.Color("#D0A215"),
	Other:       lipgloss.Color("#878580"),
}

// CatppuccinMocha is a warm pastel theme with soft, soothing colors.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	Border:       lipgloss.Color("#585B70"),
	BorderAccent: lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Good:         lipgloss.Color("#A6E3A1"),
	Warn:         lipgloss.Color("#FAB387"),
	Bad:          lipgloss.Color("#F38BA8"),

	Meeting:     lipgloss.Color("#89B4FA"),
	WorkRelated: lipgloss.Color("#A6E3A1"),
	Distraction: lipgloss.Color("#F38BA8"),
	Browser:     lipgloss.Color("#F9E2AF"),
	Other:       lipgloss.Color("#A6ADC8"),
}

// TokyoNight is a cool blue/purple theme inspired by Tokyo city lights.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	Border:       lipgloss.Color("#565F89"),
	BorderAccent: lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Good:         lipgloss.Color("#9ECE6A"),
	Warn:         lipgloss.Color("#FF9E64"),
	Bad:          lipgloss.Color("#F7768E"),

	Meeting:     lipgloss.Color("#7AA2F7"),
	WorkRelated: lipgloss.Color("#9ECE6A"),
	Distraction: lipgloss.Color("#F7768E"),
	Browser:     lipgloss.Color("#E0AF68"),
	Other:       lipgloss.Color("#BB9AF7"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Good:         lipgloss.Color("2"),
	Warn:         lipgloss.Color("3"),
	Bad:          lipgloss.Color("1"),

	Meeting:     lipgloss.Color("4"),
	WorkRelated: lipgloss.Color("2"),
	Distraction: lipgloss.Color("1"),
	Browser:     lipgloss.Color("3"),
	Other:       lipgloss.Color("7"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Next returns the name of the theme after name in All, wrapping around.
func Next(name string) string {
	for i, t := range All {
		if t.Name == name {
			return All[(i+1)%len(All)].Name
		}
	}
	return All[0].Name
}

// Category returns the theme color for a category.
func (t Theme) Category(c model.Category) lipgloss.Color {
	switch c {
	case model.CategoryMeeting:
		return t.Meeting
	case model.CategoryWorkRelated:
		return t.WorkRelated
	case model.CategoryDistraction:
		return t.Distraction
	case model.CategoryBrowser:
		return t.Browser
	default:
		return t.Other
	}
}

// Engagement grades an engaged percentage: Good from 70, Warn from 40, Bad below.
func (t Theme) Engagement(pct float64) lipgloss.Color {
	switch {
	case pct >= 70:
		return t.Good
	case pct >= 40:
		return t.Warn
	default:
		return t.Bad
	}
}
