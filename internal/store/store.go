// Package store provides the in-memory record map backing the cachekv engine.
package store

import "sync"

// Record is a stored value together with its advisory cached flag.
// The flag is asserted by the caller when writing; it is not a derived
// cache-hit state.
type Record struct {
	Value  string
	Cached bool
}

// Store is an in-memory mapping of key to Record.
// It is safe for concurrent use by multiple goroutines.
type Store struct {
	mu   sync.RWMutex
	data map[string]Record
}

// New creates a new empty Store.
func New() *Store {
	return &Store{data: make(map[string]Record)}
}

// Set unconditionally creates or overwrites the record for key.
func (s *Store) Set(key, value string, cached bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = Record{Value: value, Cached: cached}
}

// Get returns the record for key and whether it exists.
func (s *Store) Get(key string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[key]
	return rec, ok
}

// GetSet installs a new record for key and returns the previously stored
// value, or ("", false) if the key was absent.
func (s *Store) GetSet(key, value string, cached bool) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.data[key]
	s.data[key] = Record{Value: value, Cached: cached}
	return prev.Value, existed
}

// SetCached updates only the cached flag of an existing key.
// Returns false (and changes nothing) if the key is absent.
func (s *Store) SetCached(key string, cached bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.data[key]
	if !ok {
		return false
	}
	rec.Cached = cached
	s.data[key] = rec
	return true
}

// CachedStatus returns the cached flag for key and whether the key exists.
func (s *Store) CachedStatus(key string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.data[key]
	return rec.Cached, ok
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns all keys in the store.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot returns a copy of the full key-to-record mapping.
func (s *Store) Snapshot() map[string]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Record, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Replace discards the current contents and installs the given mapping.
func (s *Store) Replace(records map[string]Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]Record, len(records))
	for k, v := range records {
		s.data[k] = v
	}
}
