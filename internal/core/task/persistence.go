package task

import (
	"context"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"

	"github.com/colonyops/tick/internal/core/kv"
)

// StorageKey is the key the task list is stored under.
const StorageKey = "tasks"

// Persistence mirrors the task list to a key-value store. It is best-effort:
// load failures produce an empty list and save failures never roll back the
// in-memory state.
type Persistence struct {
	store kv.KV
	log   zerolog.Logger
}

// NewPersistence creates a Persistence over store.
func NewPersistence(store kv.KV, log zerolog.Logger) *Persistence {
	return &Persistence{
		store: store,
		log:   log.With().Str("cmp", "task-persistence").Logger(),
	}
}

// Load reads the stored task list. A missing key, malformed content, or
// records that violate task invariants all yield an empty list. Errors are
// logged and never returned.
func (p *Persistence) Load(ctx context.Context) []Task {
	var tasks []Task
	if err := p.store.Get(ctx, StorageKey, &tasks); err != nil {
		if kv.IsNotFound(err) {
			p.log.Debug().Msg("no stored tasks")
		} else {
			p.log.Warn().Err(err).Msg("discarding unreadable task list")
		}
		return []Task{}
	}

	if err := validateStored(tasks); err != nil {
		p.log.Warn().Err(err).Msg("discarding invalid task list")
		return []Task{}
	}

	if tasks == nil {
		tasks = []Task{}
	}
	return tasks
}

// Save writes the full task list. The error is logged and returned wrapped
// with ErrStorage; callers may ignore it.
func (p *Persistence) Save(ctx context.Context, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	if err := p.store.Set(ctx, StorageKey, tasks); err != nil {
		err = fmt.Errorf("%w: save tasks: %w", ErrStorage, err)
		p.log.Error().Err(err).Int("count", len(tasks)).Msg("failed to save tasks")
		return err
	}
	return nil
}

// validateStored checks loaded records against the same rules Add enforces:
// unique non-empty ids, non-empty text of at most MaxTextLength characters,
// and storable categories.
func validateStored(tasks []Task) error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(tasks))

	for i, t := range tasks {
		field := fmt.Sprintf("tasks[%d]", i)

		switch {
		case t.ID == "":
			errs = errs.Append(field+".id", fmt.Errorf("id is required"))
		case seen[t.ID]:
			errs = errs.Append(field+".id", fmt.Errorf("duplicate id %q", t.ID))
		}
		seen[t.ID] = true

		if _, err := NormalizeText(t.Text); err != nil {
			errs = errs.Append(field+".text", err)
		}

		if !t.Category.IsStorable() {
			errs = errs.Append(field+".category", fmt.Errorf("invalid category %q", t.Category))
		}
	}

	return errs.ToError()
}
