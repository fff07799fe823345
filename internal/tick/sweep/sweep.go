// Package sweep purges expired KV entries in the background.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/tick/internal/core/kv"
)

// Start launches a loop that periodically sweeps expired KV entries.
// It blocks until the context is cancelled.
func Start(ctx context.Context, store kv.Sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.SweepExpired(ctx); err != nil {
				log.Debug().Err(err).Msg("kv sweep failed")
			}
		}
	}
}
