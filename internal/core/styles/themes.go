package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Mode is a concrete color mode.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == ModeDark {
		return ModeLight
	}
	return ModeDark
}

// Appearance is the user's theme preference. AppearanceAuto follows the
// terminal background.
type Appearance string

const (
	AppearanceAuto  Appearance = "auto"
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

// ParseAppearance converts a string into an Appearance.
func ParseAppearance(s string) (Appearance, error) {
	switch a := Appearance(s); a {
	case AppearanceAuto, AppearanceLight, AppearanceDark:
		return a, nil
	default:
		return "", fmt.Errorf("unknown appearance %q", s)
	}
}

// Resolve maps an appearance to a concrete mode. hasDark reports the
// terminal background and is only consulted for AppearanceAuto.
func (a Appearance) Resolve(hasDark func() bool) Mode {
	switch a {
	case AppearanceLight:
		return ModeLight
	case AppearanceDark:
		return ModeDark
	default:
		if hasDark == nil || hasDark() {
			return ModeDark
		}
		return ModeLight
	}
}

// DetectMode resolves a using the terminal's background color.
func DetectMode(a Appearance) Mode {
	return a.Resolve(lipgloss.HasDarkBackground)
}

var palettes = map[Mode]Palette{
	ModeDark: {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	ModeLight: {
		Primary:    lipgloss.Color("#2e7de9"),
		Secondary:  lipgloss.Color("#007197"),
		Foreground: lipgloss.Color("#3760bf"),
		Muted:      lipgloss.Color("#848cb5"),
		Background: lipgloss.Color("#e1e2e7"),
		Surface:    lipgloss.Color("#c4c8da"),
		Success:    lipgloss.Color("#587539"),
		Warning:    lipgloss.Color("#8c6c3e"),
		Error:      lipgloss.Color("#f52a65"),
	},
}

// GetPalette returns the palette for the given mode.
func GetPalette(m Mode) (Palette, bool) {
	p, ok := palettes[m]
	return p, ok
}
