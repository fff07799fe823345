package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppearance_Resolve(t *testing.T) {
	dark := func() bool { return true }
	light := func() bool { return false }

	tests := []struct {
		appearance Appearance
		detect     func() bool
		want       Mode
	}{
		{AppearanceLight, dark, ModeLight},
		{AppearanceDark, light, ModeDark},
		{AppearanceAuto, dark, ModeDark},
		{AppearanceAuto, light, ModeLight},
		{AppearanceAuto, nil, ModeDark},
	}

	for _, tt := range tests {
		t.Run(string(tt.appearance), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appearance.Resolve(tt.detect))
		})
	}
}

func TestParseAppearance(t *testing.T) {
	a, err := ParseAppearance("light")
	require.NoError(t, err)
	assert.Equal(t, AppearanceLight, a)

	_, err = ParseAppearance("sepia")
	assert.Error(t, err)
}

func TestMode_Toggle(t *testing.T) {
	assert.Equal(t, ModeLight, ModeDark.Toggle())
	assert.Equal(t, ModeDark, ModeLight.Toggle())
}

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme(ModeDark) })

	SetTheme(ModeLight)
	p, ok := GetPalette(ModeLight)
	require.True(t, ok)
	assert.Equal(t, ModeLight, CurrentMode)
	assert.Equal(t, p, CurrentPalette)
	assert.Equal(t, p.Primary, ColorPrimary)
	assert.NotEqual(t, p.Foreground, ColorDone)
}

func TestBlend(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#000000"), Blend("#000000", "#ffffff", 0))
	assert.Equal(t, lipgloss.Color("#ffffff"), Blend("#000000", "#ffffff", 1))
	assert.Equal(t, lipgloss.Color("nope"), Blend("nope", "#ffffff", 0.5))
}
