// Package snapshot persists the store as a whole-file snapshot.
//
// The wire format is one JSON document mapping each key to a two-field
// record object {"value": ..., "cached": ...}. Legacy documents that hold
// a bare scalar under a key are still accepted (cached defaults to false)
// and are rewritten to the modern shape on the first save.
package snapshot

import (
	"encoding/json"

	"github.com/cachekv/cachekv/internal/store"
)

// Persister loads and saves the full key-to-record mapping.
// Implementations rewrite the entire snapshot on every Save; the engine
// treats this as the durability boundary for each mutation.
type Persister interface {
	// Load returns the persisted mapping. A missing snapshot yields an
	// empty map and no error; an unreadable or malformed one yields an
	// error and the caller decides how to degrade.
	Load() (map[string]store.Record, error)

	// Save rewrites the snapshot to hold exactly the given mapping.
	Save(records map[string]store.Record) error

	Close() error
}

// wireRecord is the on-disk shape of a single record.
type wireRecord struct {
	Value  string `json:"value"`
	Cached bool   `json:"cached"`
}

// decodeRecord parses one persisted entry. Entries already in the
// two-field record shape are kept as-is; anything else is treated as a
// legacy bare value with cached=false.
func decodeRecord(raw json.RawMessage) store.Record {
	var rec struct {
		Value  *string `json:"value"`
		Cached *bool   `json:"cached"`
	}
	if err := json.Unmarshal(raw, &rec); err == nil && rec.Value != nil && rec.Cached != nil {
		return store.Record{Value: *rec.Value, Cached: *rec.Cached}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return store.Record{Value: s}
	}
	// Non-string legacy scalar: keep its JSON text as the opaque payload.
	return store.Record{Value: string(raw)}
}

func encodeRecord(rec store.Record) ([]byte, error) {
	return json.Marshal(wireRecord{Value: rec.Value, Cached: rec.Cached})
}
