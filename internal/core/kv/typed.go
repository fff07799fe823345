package kv

import (
	"context"
	"strings"
	"time"
)

// TypedKV is a view of a KV store holding values of one type under a
// "namespace:" key prefix. Preferences such as the theme live in the
// "prefs" namespace.
type TypedKV[T any] struct {
	store  KV
	prefix string
}

func Scoped[T any](store KV, namespace string) *TypedKV[T] {
	return &TypedKV[T]{store: store, prefix: namespace + ":"}
}

func (t *TypedKV[T]) key(k string) string { return t.prefix + k }

// Get decodes the value at key. The zero T is returned with any error.
func (t *TypedKV[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	err := t.store.Get(ctx, t.key(key), &v)
	return v, err
}

// GetOr is Get with a fallback for missing keys. Other errors still return
// the fallback alongside the error.
func (t *TypedKV[T]) GetOr(ctx context.Context, key string, fallback T) (T, error) {
	v, err := t.Get(ctx, key)
	switch {
	case err == nil:
		return v, nil
	case IsNotFound(err):
		return fallback, nil
	default:
		return fallback, err
	}
}

func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	return t.store.Set(ctx, t.key(key), value)
}

func (t *TypedKV[T]) SetTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	return t.store.SetTTL(ctx, t.key(key), value, ttl)
}

func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.key(key))
}

func (t *TypedKV[T]) Has(ctx context.Context, key string) (bool, error) {
	return t.store.Has(ctx, t.key(key))
}

// Keys lists this namespace's keys without the prefix.
func (t *TypedKV[T]) Keys(ctx context.Context) ([]string, error) {
	all, err := t.store.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, k := range all {
		if rest, ok := strings.CutPrefix(k, t.prefix); ok {
			keys = append(keys, rest)
		}
	}
	return keys, nil
}
