package tick

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tick/internal/core/styles"
	"github.com/colonyops/tick/internal/store/memory"
)

func TestPrefsService_Theme(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	prefs := NewPrefsService(store, zerolog.Nop())

	assert.Equal(t, styles.AppearanceAuto, prefs.Theme(ctx, styles.AppearanceAuto))

	prefs.SetTheme(ctx, styles.ModeLight)
	assert.Equal(t, styles.AppearanceLight, prefs.Theme(ctx, styles.AppearanceAuto))

	var raw string
	require.NoError(t, store.Get(ctx, "prefs:theme", &raw))
	assert.Equal(t, "light", raw)

	require.NoError(t, store.Set(ctx, "prefs:theme", "sepia"))
	assert.Equal(t, styles.AppearanceDark, prefs.Theme(ctx, styles.AppearanceDark))
}
