package bench

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cachekv/cachekv/internal/engine"
	"github.com/cachekv/cachekv/internal/snapshot"
)

// countingKV records every operation instead of storing anything.
type countingKV struct {
	sets   []string
	gets   []string
	values []string
	cached []bool
}

func (c *countingKV) Set(key, value string, cached bool) error {
	c.sets = append(c.sets, key)
	c.values = append(c.values, value)
	c.cached = append(c.cached, cached)
	return nil
}

func (c *countingKV) Get(ctx context.Context, key string) (string, bool, error) {
	c.gets = append(c.gets, key)
	return "", false, ctx.Err()
}

func newTestLog(t *testing.T) *Log {
	t.Helper()
	return NewLog(filepath.Join(t.TempDir(), "benchmark_results.json"))
}

func TestRunner_Set(t *testing.T) {
	kv := &countingKV{}
	log := newTestLog(t)
	r := NewRunner(kv, log)

	res, err := r.Set(Options{
		Requests:    10,
		Size:        5,
		CachedRatio: Ratio{1, 1},
		Storage:     StorageRedis,
		Quiet:       true,
	})
	require.NoError(t, err)

	assert.Len(t, kv.sets, 10)
	for i, key := range kv.sets {
		assert.Equal(t, fmt.Sprintf("benchmark:set:%d", i), key)
	}
	for _, v := range kv.values {
		assert.Len(t, v, 5)
	}

	assert.Equal(t, TypeSet, res.Type)
	assert.Equal(t, StorageRedis, res.Storage)
	assert.Equal(t, 10, res.Requests)
	assert.Equal(t, 5, res.Size)
	assert.Equal(t, "1:1", res.CachedRatio)
	assert.Equal(t, "REDIS SET Benchmark", res.Name)
	assert.True(t, strings.HasPrefix(res.ID, "run-"))
	assert.Len(t, res.ID, len("run-")+8)
	assert.Greater(t, res.OpsPerSecond, 0.0)

	// The result landed in the log.
	saved, err := log.All()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, res.ID, saved[0].ID)
}

func TestRunner_SetDBStorageForcesNonCached(t *testing.T) {
	kv := &countingKV{}
	r := NewRunner(kv, newTestLog(t))

	_, err := r.Set(Options{
		Requests:    50,
		Size:        3,
		CachedRatio: Ratio{1, 0}, // would be 100% cached for redis
		Storage:     StorageDB,
		Quiet:       true,
	})
	require.NoError(t, err)

	for _, cached := range kv.cached {
		assert.False(t, cached, "db storage must generate only non-cached records")
	}
}

func TestRunner_SetFullyCachedRatio(t *testing.T) {
	kv := &countingKV{}
	r := NewRunner(kv, newTestLog(t))

	_, err := r.Set(Options{
		Requests:    100,
		Size:        5,
		CachedRatio: Ratio{1, 0},
		Storage:     StorageRedis,
		Quiet:       true,
	})
	require.NoError(t, err)

	require.Len(t, kv.cached, 100)
	for _, cached := range kv.cached {
		assert.True(t, cached)
	}
}

func TestRunner_Get(t *testing.T) {
	kv := &countingKV{}
	r := NewRunner(kv, newTestLog(t))

	res, err := r.Get(context.Background(), Options{
		Requests:    10,
		CachedRatio: Ratio{0, 1},
		Storage:     StorageRedis,
		Quiet:       true,
	})
	require.NoError(t, err)

	assert.Len(t, kv.gets, 10)
	for i, key := range kv.gets {
		assert.Equal(t, fmt.Sprintf("benchmark:set:%d", i), key)
	}
	assert.Equal(t, TypeGet, res.Type)
	assert.Equal(t, "REDIS GET Benchmark", res.Name)
	assert.Zero(t, res.Size, "get results carry no payload size")
}

func TestRunner_MixedSplitsOperationsExactly(t *testing.T) {
	kv := &countingKV{}
	r := NewRunner(kv, newTestLog(t))

	res, err := r.Mixed(context.Background(), Options{
		Requests:    10,
		Size:        3,
		Ratio:       Ratio{3, 7},
		CachedRatio: Ratio{1, 1},
		Storage:     StorageRedis,
		Quiet:       true,
	})
	require.NoError(t, err)

	// Pre-population: min(getOps, requests/2) = min(7, 5) = 5 sets before
	// the timed phase, then exactly 3 SET and 7 GET during it.
	assert.Len(t, kv.sets, 5+3)
	assert.Len(t, kv.gets, 7)

	for _, key := range append(append([]string{}, kv.sets...), kv.gets...) {
		assert.True(t, strings.HasPrefix(key, "benchmark:mixed:"), key)
	}

	assert.Equal(t, TypeMixed, res.Type)
	assert.Equal(t, "3:7", res.Ratio)
	assert.Equal(t, "1:1", res.CachedRatio)
	assert.Equal(t, "REDIS Mixed Benchmark", res.Name)
}

func TestRunner_MixedZeroRatio(t *testing.T) {
	kv := &countingKV{}
	r := NewRunner(kv, newTestLog(t))

	// 0:0 must not crash; everything becomes a GET.
	_, err := r.Mixed(context.Background(), Options{
		Requests:    4,
		Size:        3,
		Ratio:       Ratio{0, 0},
		CachedRatio: Ratio{0, 0},
		Storage:     StorageRedis,
		Quiet:       true,
	})
	require.NoError(t, err)

	assert.Len(t, kv.gets, 4)
	// Pre-population is capped at requests/2.
	assert.Len(t, kv.sets, 2)
}

func TestRunner_NamedRun(t *testing.T) {
	kv := &countingKV{}
	r := NewRunner(kv, newTestLog(t))

	res, err := r.Set(Options{
		Requests:    1,
		Size:        1,
		CachedRatio: Ratio{0, 1},
		Storage:     StorageRedis,
		Name:        "nightly regression",
		Quiet:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "nightly regression", res.Name)
}

// TestRunner_CachedWorkloadSkipsDelay drives a real engine: a fully cached
// SET benchmark followed by a GET benchmark must never hit the delay path.
func TestRunner_CachedWorkloadSkipsDelay(t *testing.T) {
	delay := &recordingDelay{}
	e := engine.New(
		snapshot.NewFileStore(filepath.Join(t.TempDir(), "kv_store.json")),
		engine.WithDelayPolicy(delay),
	)
	defer e.Close()

	r := NewRunner(e, newTestLog(t))
	opts := Options{
		Requests:    100,
		Size:        5,
		CachedRatio: Ratio{1, 0},
		Storage:     StorageRedis,
		Quiet:       true,
	}

	_, err := r.Set(opts)
	require.NoError(t, err)
	_, err = r.Get(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, 0, delay.calls, "fully cached workload must not trigger the cold-read delay")

	// Every created key carries the cached flag.
	for i := 0; i < opts.Requests; i++ {
		cached, ok := e.CachedStatus(fmt.Sprintf("benchmark:set:%d", i))
		require.True(t, ok)
		assert.True(t, cached)
	}
}

// recordingDelay counts how often the engine asked for a cold-read wait.
type recordingDelay struct {
	calls int
}

func (d *recordingDelay) Wait(ctx context.Context) (duration time.Duration, err error) {
	d.calls++
	return 0, ctx.Err()
}
