package bench

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/cachekv/cachekv/internal/logging"
)

// Log is the append-only benchmark results log, persisted as a JSON array
// that is rewritten in full on every append. It has no relationship to the
// key-value snapshot; the two files live independently.
type Log struct {
	path   string
	logger *slog.Logger
}

// NewLog creates a results log backed by the given path.
func NewLog(path string) *Log {
	return &Log{path: path, logger: logging.For("results")}
}

// All returns every recorded result in append order.
// A missing or corrupt file is treated as an empty log, not an error.
func (l *Log) All() ([]Result, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("bench: read results %s: %w", l.path, err)
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		l.logger.Warn("results log is malformed, treating as empty", "path", l.path, "error", err)
		return nil, nil
	}
	return results, nil
}

// Append adds a result to the log and rewrites the file.
func (l *Log) Append(r Result) error {
	results, err := l.All()
	if err != nil {
		return err
	}
	results = append(results, r)

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("bench: encode results: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("bench: write results %s: %w", l.path, err)
	}
	return nil
}
