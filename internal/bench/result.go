package bench

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Benchmark types.
const (
	TypeSet   = "set"
	TypeGet   = "get"
	TypeMixed = "mixed"
)

// Storage labels. These steer workload generation only ("db" forces every
// generated record to be non-cached); the store engine never sees them.
const (
	StorageRedis = "redis"
	StorageDB    = "db"
)

// Result is the aggregate outcome of one benchmark run.
// The field names and JSON tags are the wire format of the results log.
type Result struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Storage      string  `json:"storage"`
	Requests     int     `json:"requests"`
	Size         int     `json:"size,omitempty"`
	Ratio        string  `json:"ratio,omitempty"`
	CachedRatio  string  `json:"cachedRatio"`
	Duration     float64 `json:"duration"`
	OpsPerSecond float64 `json:"opsPerSecond"`
	Timestamp    string  `json:"timestamp"`
}

// newRunID returns a short random run identifier, e.g. "run-9f2c41ab".
func newRunID() string {
	id := uuid.New()
	return fmt.Sprintf("run-%x", id[:4])
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// throughput computes requests/duration with 2-decimal rounding on both
// the duration (seconds) and the resulting ops/sec.
func throughput(requests int, elapsed time.Duration) (seconds, opsPerSecond float64) {
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	secs := elapsed.Seconds()
	return round2(secs), round2(float64(requests) / secs)
}
