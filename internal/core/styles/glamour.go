package styles

import (
	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

func colorPtr(c string) *string {
	if c == "" {
		return nil
	}
	return &c
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	if CurrentMode == ModeLight {
		cfg = glamourstyles.LightStyleConfig
	}

	fg := colorPtr(string(ColorForeground))
	primary := colorPtr(string(ColorPrimary))
	secondary := colorPtr(string(ColorSecondary))
	muted := colorPtr(string(ColorMuted))

	cfg.Document.Color = fg
	cfg.Document.Margin = nil
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = primary
	cfg.H1.BackgroundColor = nil
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.Code.Color = secondary
	cfg.Code.BackgroundColor = nil
	cfg.HorizontalRule.Color = muted
	cfg.Table.Color = fg

	return cfg
}
