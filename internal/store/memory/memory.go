// Package memory provides a process-local kv.KV. It backs tests and the
// degraded mode used when the configured storage cannot be opened.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/colonyops/tick/internal/core/kv"
)

type entry struct {
	value     []byte
	expiresAt *time.Time
	createdAt time.Time
	updatedAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return e.expiresAt != nil && e.expiresAt.Before(now)
}

// Store is an in-memory kv.KV. Values are stored as JSON so reads return
// independent copies, matching the persistent backends.
type Store struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

var (
	_ kv.KV      = (*Store)(nil)
	_ kv.Sweeper = (*Store)(nil)
)

// New creates an empty Store.
func New() *Store {
	return &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
}

// Get deserializes the value for key into dest.
func (s *Store) Get(_ context.Context, key string, dest any) error {
	e, ok := s.lookup(key)
	if !ok {
		return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err := json.Unmarshal(e.value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

// Set stores a value with no expiry.
func (s *Store) Set(_ context.Context, key string, value any) error {
	return s.set(key, value, nil)
}

// SetTTL stores a value that expires after ttl.
func (s *Store) SetTTL(_ context.Context, key string, value any, ttl time.Duration) error {
	exp := s.now().Add(ttl)
	return s.set(key, value, &exp)
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Has reports whether a non-expired key exists.
func (s *Store) Has(_ context.Context, key string) (bool, error) {
	_, ok := s.lookup(key)
	return ok, nil
}

// ListKeys returns all non-expired keys in sorted order.
func (s *Store) ListKeys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	keys := make([]string, 0, len(s.data))
	for k, e := range s.data {
		if !e.expired(now) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// GetRaw returns the raw entry for key.
func (s *Store) GetRaw(_ context.Context, key string) (kv.Entry, error) {
	e, ok := s.lookup(key)
	if !ok {
		return kv.Entry{}, fmt.Errorf("kv get raw %q: %w", key, kv.ErrNotFound)
	}

	entry := kv.Entry{
		Key:       key,
		Value:     json.RawMessage(e.value),
		CreatedAt: e.createdAt,
		UpdatedAt: e.updatedAt,
	}
	if e.expiresAt != nil {
		t := *e.expiresAt
		entry.ExpiresAt = &t
	}
	return entry, nil
}

// SweepExpired deletes all entries whose TTL has passed.
func (s *Store) SweepExpired(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.data {
		if e.expired(now) {
			delete(s.data, k)
		}
	}
	return nil
}

func (s *Store) lookup(key string) (entry, bool) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return entry{}, false
	}

	if e.expired(s.now()) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return entry{}, false
	}
	return e, true
}

func (s *Store) set(key string, value any, expiresAt *time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	created := now
	if prev, ok := s.data[key]; ok {
		created = prev.createdAt
	}
	s.data[key] = entry{
		value:     data,
		expiresAt: expiresAt,
		createdAt: created,
		updatedAt: now,
	}
	return nil
}
