// Package stores implements the core storage interfaces on top of SQLite.
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/colonyops/tick/internal/core/kv"
	"github.com/colonyops/tick/internal/data/db"
)

// KVStore implements kv.KV over the kv_store table. Values are stored as
// JSON; expired rows read as missing and are deleted on first access.
type KVStore struct {
	db  *db.DB
	now func() time.Time
}

var (
	_ kv.KV      = (*KVStore)(nil)
	_ kv.Sweeper = (*KVStore)(nil)
)

// NewKVStore creates a new SQLite-backed KV store.
func NewKVStore(database *db.DB) *KVStore {
	return &KVStore{db: database, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string, dest any) error {
	row, err := s.lookup(ctx, key)
	if err != nil {
		return fmt.Errorf("kv get %q: %w", key, err)
	}
	if err := json.Unmarshal(row.Value, dest); err != nil {
		return fmt.Errorf("kv get %q: decode: %w", key, err)
	}
	return nil
}

func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	return s.write(ctx, key, value, sql.NullInt64{})
}

func (s *KVStore) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	exp := s.now().Add(ttl).UnixNano()
	return s.write(ctx, key, value, sql.NullInt64{Int64: exp, Valid: true})
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.db.Queries().KVDelete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.lookup(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case kv.IsNotFound(err):
		return false, nil
	default:
		return false, fmt.Errorf("kv has %q: %w", key, err)
	}
}

// ListKeys returns the live keys in sorted order.
func (s *KVStore) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.db.Queries().KVListKeys(ctx, s.nowParam())
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (s *KVStore) GetRaw(ctx context.Context, key string) (kv.Entry, error) {
	row, err := s.lookup(ctx, key)
	if err != nil {
		return kv.Entry{}, fmt.Errorf("kv get raw %q: %w", key, err)
	}

	entry := kv.Entry{
		Key:       row.Key,
		Value:     json.RawMessage(row.Value),
		CreatedAt: time.Unix(0, row.CreatedAt),
		UpdatedAt: time.Unix(0, row.UpdatedAt),
	}
	if row.ExpiresAt.Valid {
		exp := time.Unix(0, row.ExpiresAt.Int64)
		entry.ExpiresAt = &exp
	}
	return entry, nil
}

// SweepExpired deletes every row whose TTL has passed. The TUI runs it on a
// ticker so the pending CLI undo record does not linger on disk.
func (s *KVStore) SweepExpired(ctx context.Context) error {
	if err := s.db.Queries().KVSweepExpired(ctx, s.nowParam()); err != nil {
		return fmt.Errorf("kv sweep expired: %w", err)
	}
	return nil
}

// lookup loads a live row. Missing and expired rows map to kv.ErrNotFound.
func (s *KVStore) lookup(ctx context.Context, key string) (db.KvStore, error) {
	row, err := s.db.Queries().KVGet(ctx, key)
	if IsNotFoundError(err) {
		return db.KvStore{}, kv.ErrNotFound
	}
	if err != nil {
		return db.KvStore{}, err
	}

	if row.ExpiresAt.Valid && row.ExpiresAt.Int64 < s.now().UnixNano() {
		_ = s.db.Queries().KVDelete(ctx, key)
		return db.KvStore{}, kv.ErrNotFound
	}
	return row, nil
}

func (s *KVStore) write(ctx context.Context, key string, value any, expiresAt sql.NullInt64) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q: encode: %w", key, err)
	}

	now := s.now().UnixNano()
	err = s.db.Queries().KVSet(ctx, db.KVSetParams{
		Key:       key,
		Value:     data,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) nowParam() sql.NullInt64 {
	return sql.NullInt64{Int64: s.now().UnixNano(), Valid: true}
}
