package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/popeskul/wa-inbox/internal/metrics"
)

// Table is one TTL cache over a Store. Keys are namespaced by the table name.
type Table[T any] struct {
	name   string
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewTable[T any](name string, store Store, ttl time.Duration, logger *zap.Logger) *Table[T] {
	return &Table[T]{
		name:   name,
		store:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// Name is also the key prefix of the table's entries.
func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) key(key string) string {
	return t.name + ":" + key
}

// GetOrFetch returns a fresh cached value or calls fetch and stores the result.
// When fetch fails and an older value exists, the old value is returned instead
// of the error.
func (t *Table[T]) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	fullKey := t.key(key)

	entry, found, err := t.store.Get(ctx, fullKey)
	if err != nil {
		t.logger.Warn("Cache read failed, treating as miss",
			zap.String("table", t.name),
			zap.String("key", key),
			zap.Error(err))
		found = false
	}

	var cached T
	if found {
		if err := json.Unmarshal(entry.Data, &cached); err != nil {
			t.logger.Warn("Discarding undecodable cache entry",
				zap.String("table", t.name),
				zap.String("key", key),
				zap.Error(err))
			found = false
		} else if t.now().Sub(entry.FetchedAt) < t.ttl {
			metrics.RecordCacheLookup(t.name, "hit")
			return cached, nil
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		if found {
			metrics.RecordCacheLookup(t.name, "stale")
			t.logger.Warn("Serving stale cache entry after fetch failure",
				zap.String("table", t.name),
				zap.String("key", key),
				zap.Duration("age", t.now().Sub(entry.FetchedAt)),
				zap.Error(err))
			return cached, nil
		}
		metrics.RecordCacheLookup(t.name, "error")
		var zero T
		return zero, err
	}
	metrics.RecordCacheLookup(t.name, "miss")

	t.Put(ctx, key, value)
	return value, nil
}

// Put overwrites an entry; store errors are logged, never returned.
func (t *Table[T]) Put(ctx context.Context, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		t.logger.Error("Failed to encode cache value", zap.String("table", t.name), zap.Error(err))
		return
	}

	if err := t.store.Set(ctx, t.key(key), Entry{Data: data, FetchedAt: t.now()}); err != nil {
		t.logger.Warn("Cache write failed",
			zap.String("table", t.name),
			zap.String("key", key),
			zap.Error(err))
	}
}

// Purge drops every entry of the table.
func (t *Table[T]) Purge(ctx context.Context) error {
	return t.store.DeletePrefix(ctx, t.name+":")
}
