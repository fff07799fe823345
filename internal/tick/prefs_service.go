package tick

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/colonyops/tick/internal/core/kv"
	"github.com/colonyops/tick/internal/core/styles"
)

// PrefsService stores UI preferences in the "prefs" KV namespace.
type PrefsService struct {
	prefs *kv.TypedKV[string]
	log   zerolog.Logger
}

// NewPrefsService creates a PrefsService over store.
func NewPrefsService(store kv.KV, log zerolog.Logger) *PrefsService {
	return &PrefsService{
		prefs: kv.Scoped[string](store, "prefs"),
		log:   log.With().Str("cmp", "prefs").Logger(),
	}
}

// Theme returns the saved appearance, or fallback when none is saved or the
// saved value is unreadable.
func (p *PrefsService) Theme(ctx context.Context, fallback styles.Appearance) styles.Appearance {
	raw, err := p.prefs.GetOr(ctx, "theme", string(fallback))
	if err != nil {
		p.log.Warn().Err(err).Msg("failed to read theme preference")
		return fallback
	}

	a, err := styles.ParseAppearance(raw)
	if err != nil {
		p.log.Warn().Err(err).Msg("ignoring invalid theme preference")
		return fallback
	}
	return a
}

// SetTheme saves an explicit light or dark choice.
func (p *PrefsService) SetTheme(ctx context.Context, mode styles.Mode) {
	if err := p.prefs.Set(ctx, "theme", string(mode)); err != nil {
		p.log.Error().Err(err).Msg("failed to save theme preference")
	}
}
