// Package engine provides the storage engine that coordinates the in-memory
// record map and snapshot persistence. All write operations follow the
// pattern: apply -> rewrite snapshot -> respond.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cachekv/cachekv/internal/logging"
	"github.com/cachekv/cachekv/internal/snapshot"
	"github.com/cachekv/cachekv/internal/store"
)

// Default bounds for the simulated cold-read delay.
const (
	DefaultMinDelay = 500 * time.Millisecond
	DefaultMaxDelay = 2 * time.Second
)

// Engine is the store engine: it owns the record map, persists a full
// snapshot after every mutation, and injects the simulated cold-read delay
// on reads of non-cached records.
//
// Construction never fails: an unreadable or malformed snapshot is logged
// and the engine starts empty.
type Engine struct {
	store     *store.Store
	persister snapshot.Persister
	delay     DelayPolicy
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDelayPolicy overrides the cold-read delay policy.
func WithDelayPolicy(p DelayPolicy) Option {
	return func(e *Engine) { e.delay = p }
}

// WithLogger overrides the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine bound to the given persister and loads the
// existing snapshot, if any.
func New(p snapshot.Persister, opts ...Option) *Engine {
	e := &Engine{
		store:     store.New(),
		persister: p,
		delay:     UniformDelay{Min: DefaultMinDelay, Max: DefaultMaxDelay},
		logger:    logging.For("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	records, err := p.Load()
	if err != nil {
		e.logger.Warn("could not load snapshot, starting empty", "error", err)
		return e
	}
	e.store.Replace(records)
	return e
}

// Set creates or overwrites the record for key and persists the snapshot.
// A non-nil error means the mutation is in memory but not durable.
func (e *Engine) Set(key, value string, cached bool) error {
	e.store.Set(key, value, cached)
	return e.persist()
}

// Get returns the value for key, or ("", false, nil) if the key is absent.
//
// Reading a non-cached record simulates a cold-storage fetch: the call
// blocks for the delay chosen by the engine's DelayPolicy. The delay can
// be aborted through ctx, in which case the value is not returned.
func (e *Engine) Get(ctx context.Context, key string) (string, bool, error) {
	rec, ok := e.store.Get(key)
	if !ok {
		return "", false, nil
	}

	if rec.Cached {
		e.logger.Info("key is cached, instant retrieval", "key", key)
		return rec.Value, true, nil
	}

	e.logger.Info("key is not cached, retrieving from storage", "key", key)
	waited, err := e.delay.Wait(ctx)
	if err != nil {
		return "", false, fmt.Errorf("engine: get %s aborted: %w", key, err)
	}
	e.logger.Info("retrieved from storage", "key", key,
		"seconds", fmt.Sprintf("%.2f", waited.Seconds()))
	return rec.Value, true, nil
}

// GetSet swaps in a new record for key, persists the snapshot, and returns
// the previous value (existed reports whether the key was present before).
//
// Unlike Get, this never applies the simulated cold-read delay, even when
// it replaces a non-cached record. The swap is a pure write-path operation.
func (e *Engine) GetSet(key, value string, cached bool) (prev string, existed bool, err error) {
	prev, existed = e.store.GetSet(key, value, cached)
	return prev, existed, e.persist()
}

// SetCached updates only the cached flag of an existing key and persists.
// If the key is absent it returns (false, nil) and performs no write.
func (e *Engine) SetCached(key string, cached bool) (bool, error) {
	if !e.store.SetCached(key, cached) {
		return false, nil
	}
	return true, e.persist()
}

// CachedStatus returns the cached flag for key and whether the key exists.
// It does not mutate, persist, or delay.
func (e *Engine) CachedStatus(key string) (cached, ok bool) {
	return e.store.CachedStatus(key)
}

// Len returns the number of stored keys.
func (e *Engine) Len() int {
	return e.store.Len()
}

// Close releases the persistence backend.
func (e *Engine) Close() error {
	return e.persister.Close()
}

func (e *Engine) persist() error {
	if err := e.persister.Save(e.store.Snapshot()); err != nil {
		e.logger.Warn("snapshot save failed, in-memory state is ahead of disk", "error", err)
		return fmt.Errorf("engine: persist snapshot: %w", err)
	}
	return nil
}
