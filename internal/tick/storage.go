package tick

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/tick/internal/core/config"
	"github.com/colonyops/tick/internal/core/kv"
	"github.com/colonyops/tick/internal/core/notify"
	"github.com/colonyops/tick/internal/data/db"
	"github.com/colonyops/tick/internal/data/stores"
	"github.com/colonyops/tick/internal/store/jsonfile"
	"github.com/colonyops/tick/internal/store/memory"
)

// Storage is the opened KV backend plus the notification history store.
type Storage struct {
	// Backend is the backend actually in use; it differs from the configured
	// one when Degraded is set.
	Backend       config.Backend
	KV            kv.KV
	Notifications notify.Store
	// DB is nil unless Backend is sqlite.
	DB *db.DB
	// Degraded is set when the configured backend could not be opened and
	// tasks are held in memory only.
	Degraded bool

	kvDir string
}

// OpenStorage opens the configured backend. It never fails: when the backend
// cannot be opened the error is logged and an in-memory store is returned
// with Degraded set.
func OpenStorage(cfg *config.Config, log zerolog.Logger) *Storage {
	log = log.With().Str("cmp", "storage").Logger()

	st, err := openBackend(cfg, log)
	if err != nil {
		log.Error().Err(err).Str("backend", string(cfg.Storage.Backend)).Msg("storage unavailable, keeping tasks in memory")
		st = newMemoryStorage(cfg)
		st.Degraded = true
	}
	return st
}

func openBackend(cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return newMemoryStorage(cfg), nil
	case config.BackendJSON:
		store, err := jsonfile.New(cfg.KVDir())
		if err != nil {
			return nil, err
		}
		return &Storage{
			Backend:       config.BackendJSON,
			KV:            store,
			Notifications: &notify.MemoryStore{Limit: cfg.Notifications.Limit},
			kvDir:         store.Dir(),
		}, nil
	case config.BackendSQLite:
		database, err := openDatabase(cfg, log)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Backend:       config.BackendSQLite,
			KV:            stores.NewKVStore(database),
			Notifications: stores.NewNotifyStore(database, cfg.Notifications.Limit),
			DB:            database,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// openDatabase opens the SQLite file, moving a corrupt file aside and
// retrying once.
func openDatabase(cfg *config.Config, log zerolog.Logger) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	backup, recErr := stores.RecoverFromCorruption(cfg.DataDir)
	if recErr != nil {
		return nil, errors.Join(err, recErr)
	}
	log.Warn().Err(err).Str("backup", backup).Msg("database was corrupt, starting fresh")

	return db.Open(cfg.DataDir, opts)
}

func newMemoryStorage(cfg *config.Config) *Storage {
	return &Storage{
		Backend:       config.BackendMemory,
		KV:            memory.New(),
		Notifications: &notify.MemoryStore{Limit: cfg.Notifications.Limit},
	}
}

// Sweeper returns the backend's TTL sweeper, if it has one.
func (s *Storage) Sweeper() (kv.Sweeper, bool) {
	sw, ok := s.KV.(kv.Sweeper)
	return sw, ok
}

// Watch starts a watcher for changes made by other processes. It returns
// nil when the backend cannot be watched.
func (s *Storage) Watch(log zerolog.Logger) (*jsonfile.Watcher, error) {
	if s.Backend != config.BackendJSON {
		return nil, nil
	}
	return jsonfile.NewWatcher(s.kvDir, log)
}

// Close releases the backend.
func (s *Storage) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
