// Package styles holds the lipgloss styles shared by the CLI output and the
// TUI. All styles are rebuilt from the active Palette by SetTheme.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette is a semantic color set. Colors are hex strings.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

var (
	CurrentPalette Palette
	CurrentMode    Mode
)

// Colors read by the glamour renderer and tests. ColorDone sits halfway
// between foreground and background.
var (
	ColorPrimary    lipgloss.Color
	ColorSecondary  lipgloss.Color
	ColorForeground lipgloss.Color
	ColorMuted      lipgloss.Color
	ColorDone       lipgloss.Color
)

var (
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style

	TabActiveStyle   lipgloss.Style
	TabInactiveStyle lipgloss.Style
	TabCountStyle    lipgloss.Style

	TaskCursorStyle  lipgloss.Style
	TaskTextStyle    lipgloss.Style
	TaskDoneStyle    lipgloss.Style
	TaskEditingStyle lipgloss.Style
	CategoryStyle    lipgloss.Style
	DueStyle         lipgloss.Style
	DueOverdueStyle  lipgloss.Style
	EmptyStateStyle  lipgloss.Style

	ModalStyle               lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style

	FormTitleStyle        lipgloss.Style
	FormFieldStyle        lipgloss.Style
	FormFieldFocusedStyle lipgloss.Style
	FormErrorStyle        lipgloss.Style
	FormHelpStyle         lipgloss.Style

	TextMutedStyle   lipgloss.Style
	TextWarningStyle lipgloss.Style
	TextErrorStyle   lipgloss.Style

	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style
	ToastActionStyle  lipgloss.Style
)

// SetTheme activates the palette for mode and rebuilds every style.
func SetTheme(mode Mode) {
	p := palettes[mode]
	CurrentMode, CurrentPalette = mode, p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorDone = Blend(p.Foreground, p.Background, 0.5)

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	buildChrome(p, fg)
	buildRows(p, fg)
	buildModals(p, fg)
	buildForms(p, fg)
	buildToasts(p, fg)
}

func buildChrome(p Palette, fg func(lipgloss.Color) lipgloss.Style) {
	CommandHeaderStyle = fg(p.Primary).Bold(true)
	DividerStyle = fg(p.Muted)

	TabActiveStyle = fg(p.Background).Background(p.Primary).Bold(true).Padding(0, 1)
	TabInactiveStyle = fg(p.Muted).Padding(0, 1)
	TabCountStyle = fg(p.Secondary)

	TextMutedStyle = fg(p.Muted)
	TextWarningStyle = fg(p.Warning)
	TextErrorStyle = fg(p.Error)
}

func buildRows(p Palette, fg func(lipgloss.Color) lipgloss.Style) {
	TaskCursorStyle = fg(p.Primary).Bold(true)
	TaskTextStyle = fg(p.Foreground)
	TaskDoneStyle = fg(ColorDone).Strikethrough(true)
	TaskEditingStyle = fg(p.Primary)
	CategoryStyle = fg(p.Secondary)
	DueStyle = fg(p.Muted)
	DueOverdueStyle = fg(p.Error)
	EmptyStateStyle = fg(p.Muted).Italic(true).Padding(1, 2)
}

func buildModals(p Palette, fg func(lipgloss.Color) lipgloss.Style) {
	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = fg(p.Foreground).Bold(true)
	ModalHelpStyle = fg(p.Muted).MarginTop(1)

	button := lipgloss.NewStyle().Padding(0, 1)
	ModalButtonStyle = button.Background(p.Surface).Foreground(p.Muted)
	ModalButtonSelectedStyle = button.Background(p.Primary).Foreground(p.Background).Bold(true)
}

func buildForms(p Palette, fg func(lipgloss.Color) lipgloss.Style) {
	FormTitleStyle = fg(p.Primary).Bold(true)

	// Fields get a thick left rule that lights up on focus.
	field := lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		PaddingLeft(1)
	FormFieldStyle = field.BorderForeground(p.Muted)
	FormFieldFocusedStyle = field.BorderForeground(p.Primary)

	FormErrorStyle = fg(p.Error)
	FormHelpStyle = fg(p.Muted)
}

func buildToasts(p Palette, fg func(lipgloss.Color) lipgloss.Style) {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	ToastInfoStyle = box.BorderForeground(p.Primary).Foreground(p.Foreground)
	ToastWarningStyle = box.BorderForeground(p.Warning).Foreground(p.Warning)
	ToastErrorStyle = box.BorderForeground(p.Error).Foreground(p.Error)
	ToastActionStyle = fg(p.Primary).Bold(true).Underline(true)
}

// Blend mixes two hex colors in CIE-L*a*b* space; t=0 yields a and t=1
// yields b. Input that fails to parse returns a.
func Blend(a, b lipgloss.Color, t float64) lipgloss.Color {
	ca, errA := colorful.Hex(string(a))
	cb, errB := colorful.Hex(string(b))
	if errA != nil || errB != nil {
		return a
	}
	return lipgloss.Color(ca.BlendLab(cb, t).Clamped().Hex())
}

// nolint:gochecknoinits // styles must be usable before the theme is chosen.
func init() {
	SetTheme(ModeDark)
}
