// Package jsonfile implements kv.KV as one JSON document per key in a
// directory, plus a watcher that reports keys changed by other processes.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/colonyops/tick/internal/core/kv"
)

const fileExt = ".json"

// document is the on-disk envelope for a single key.
type document struct {
	Value     json.RawMessage `json:"value"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (d document) expired(now time.Time) bool {
	return d.ExpiresAt != nil && d.ExpiresAt.Before(now)
}

// Store implements kv.KV on top of a directory of JSON files.
type Store struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

var (
	_ kv.KV      = (*Store)(nil)
	_ kv.Sweeper = (*Store)(nil)
)

// New creates a Store rooted at dir. The directory is created if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create kv dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the directory holding the key files.
func (s *Store) Dir() string { return s.dir }

// KeyFromFile maps a file name inside Dir back to its key.
func KeyFromFile(name string) (string, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, fileExt) {
		return "", false
	}
	key, err := url.QueryUnescape(strings.TrimSuffix(base, fileExt))
	if err != nil {
		return "", false
	}
	return key, true
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+fileExt)
}

func (s *Store) Get(_ context.Context, key string, dest any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(doc.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (s *Store) Set(_ context.Context, key string, value any) error {
	return s.write(key, value, nil)
}

func (s *Store) SetTTL(_ context.Context, key string, value any, ttl time.Duration) error {
	exp := s.now().Add(ttl)
	return s.write(key, value, &exp)
}

// Delete removes the file for key. Missing keys are not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.read(key)
	switch {
	case err == nil:
		return true, nil
	case kv.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// ListKeys returns all non-expired keys in sorted order.
func (s *Store) ListKeys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := s.keys()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(names))
	for _, key := range names {
		if _, err := s.read(key); err == nil {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *Store) GetRaw(_ context.Context, key string) (kv.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.read(key)
	if err != nil {
		return kv.Entry{}, err
	}
	return kv.Entry{
		Key:       key,
		Value:     doc.Value,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// SweepExpired removes files whose TTL has passed.
func (s *Store) SweepExpired(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.keys()
	if err != nil {
		return err
	}

	now := s.now()
	for _, key := range names {
		doc, err := s.load(key)
		if err != nil || !doc.expired(now) {
			continue
		}
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("kv sweep %q: %w", key, err)
		}
	}
	return nil
}

func (s *Store) keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("kv list keys: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if key, ok := KeyFromFile(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// read loads the document for key, treating expired documents as missing.
func (s *Store) read(key string) (document, error) {
	doc, err := s.load(key)
	if err != nil {
		return document{}, err
	}
	if doc.expired(s.now()) {
		return document{}, fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	return doc, nil
}

func (s *Store) load(key string) (document, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{}, fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
		}
		return document{}, fmt.Errorf("kv get %q: %w", key, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("kv get %q decode: %w", key, err)
	}
	return doc, nil
}

func (s *Store) write(key string, value any, expiresAt *time.Time) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	doc := document{
		Value:     raw,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, err := s.load(key); err == nil {
		doc.CreatedAt = prev.CreatedAt
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("kv set %q encode: %w", key, err)
	}

	// Write to a temp file and rename so watchers and readers never see a
	// partial document.
	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}
