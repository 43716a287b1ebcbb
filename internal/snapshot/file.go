package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cachekv/cachekv/internal/store"
)

// FileStore persists the mapping as a single JSON document on disk.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by the given path.
// The file is not touched until the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

// Load reads and decodes the snapshot file.
func (f *FileStore) Load() (map[string]store.Record, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]store.Record{}, nil
		}
		return nil, fmt.Errorf("snapshot: read %s: %w", f.path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: parse %s: %w", f.path, err)
	}

	records := make(map[string]store.Record, len(doc))
	for key, raw := range doc {
		records[key] = decodeRecord(raw)
	}
	return records, nil
}

// Save rewrites the snapshot file with the given mapping.
func (f *FileStore) Save(records map[string]store.Record) error {
	doc := make(map[string]wireRecord, len(records))
	for key, rec := range records {
		doc[key] = wireRecord{Value: rec.Value, Cached: rec.Cached}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op; the file is opened per operation.
func (f *FileStore) Close() error { return nil }
