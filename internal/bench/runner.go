// Package bench generates synthetic workloads against the store engine and
// measures wall-clock throughput. Each run produces a Result that is
// appended to the results log and returned to the caller.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cachekv/cachekv/internal/logging"
)

// KV is the subset of the store engine a benchmark drives.
type KV interface {
	Set(key, value string, cached bool) error
	Get(ctx context.Context, key string) (string, bool, error)
}

// benchChars is the alphabet for generated payloads: letters and digits.
const benchChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Options parameterize a benchmark run.
type Options struct {
	Requests    int
	Size        int    // payload bytes per generated value
	Ratio       Ratio  // SET:GET mix, mixed benchmark only
	CachedRatio Ratio  // cached:non-cached mix for generated records
	Storage     string // StorageRedis or StorageDB
	Name        string // optional run name; defaulted per type when empty
	Quiet       bool   // suppress progress logging
}

// cachedProbability is the chance a generated record is flagged cached.
// The "db" storage label models an always-cold backend, forcing it to 0.
func (o Options) cachedProbability() float64 {
	if o.Storage == StorageDB {
		return 0
	}
	return o.CachedRatio.Probability()
}

func (o Options) name(typeLabel string) string {
	if o.Name != "" {
		return o.Name
	}
	return fmt.Sprintf("%s %s Benchmark", strings.ToUpper(o.Storage), typeLabel)
}

// Runner executes benchmarks against a KV and records their results.
type Runner struct {
	kv     KV
	log    *Log
	rand   *rand.Rand
	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRand injects the random source used for payloads, coin flips, and
// key choice. Useful for deterministic tests.
func WithRand(r *rand.Rand) RunnerOption {
	return func(rn *Runner) { rn.rand = r }
}

// WithLogger overrides the progress logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(rn *Runner) { rn.logger = l }
}

// NewRunner creates a Runner that drives kv and appends results to log.
func NewRunner(kv KV, log *Log, opts ...RunnerOption) *Runner {
	r := &Runner{
		kv:     kv,
		log:    log,
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logging.For("bench"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Set benchmarks sequential SET operations: keys benchmark:set:<i> for i in
// [0, Requests), each with a fresh random payload of exactly Size bytes and
// a cached flag drawn per the cached ratio. Every SET persists the full
// snapshot, so the measured duration includes persistence overhead.
func (r *Runner) Set(opts Options) (Result, error) {
	if !opts.Quiet {
		r.logger.Info("benchmarking SET operations",
			"requests", opts.Requests, "size", opts.Size)
	}
	prob := opts.cachedProbability()

	start := time.Now()
	for i := 0; i < opts.Requests; i++ {
		key := fmt.Sprintf("benchmark:set:%d", i)
		if err := r.kv.Set(key, r.randomValue(opts.Size), r.rand.Float64() < prob); err != nil {
			return Result{}, fmt.Errorf("bench: set %s: %w", key, err)
		}
	}
	elapsed := time.Since(start)

	res := Result{
		ID:          newRunID(),
		Name:        opts.name("SET"),
		Type:        TypeSet,
		Storage:     opts.Storage,
		Requests:    opts.Requests,
		Size:        opts.Size,
		CachedRatio: opts.CachedRatio.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	res.Duration, res.OpsPerSecond = throughput(opts.Requests, elapsed)

	if !opts.Quiet {
		r.logger.Info("SET benchmark complete",
			"requests", opts.Requests, "seconds", res.Duration, "ops_per_second", res.OpsPerSecond)
	}
	r.record(res)
	return res, nil
}

// Get benchmarks sequential GET operations over the keys benchmark:set:0
// through benchmark:set:<Requests-1>, which callers must have populated
// beforehand (usually via Set). Non-cached records take the simulated
// cold-read delay, and that delay is part of the measured duration.
func (r *Runner) Get(ctx context.Context, opts Options) (Result, error) {
	if !opts.Quiet {
		r.logger.Info("benchmarking GET operations", "requests", opts.Requests)
	}

	start := time.Now()
	for i := 0; i < opts.Requests; i++ {
		key := fmt.Sprintf("benchmark:set:%d", i)
		if _, _, err := r.kv.Get(ctx, key); err != nil {
			return Result{}, fmt.Errorf("bench: get %s: %w", key, err)
		}
	}
	elapsed := time.Since(start)

	res := Result{
		ID:          newRunID(),
		Name:        opts.name("GET"),
		Type:        TypeGet,
		Storage:     opts.Storage,
		Requests:    opts.Requests,
		CachedRatio: opts.CachedRatio.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	res.Duration, res.OpsPerSecond = throughput(opts.Requests, elapsed)

	if !opts.Quiet {
		r.logger.Info("GET benchmark complete",
			"requests", opts.Requests, "seconds", res.Duration, "ops_per_second", res.OpsPerSecond)
	}
	r.record(res)
	return res, nil
}

// Mixed benchmarks an interleaved SET/GET workload over the candidate keys
// benchmark:mixed:<i> for i in [0, Requests). The SET:GET split follows
// opts.Ratio with GET absorbing the rounding remainder. Before timing
// starts, min(getOps, Requests/2) keys are pre-populated so GETs have
// something to hit; the remaining GETs may miss by design.
func (r *Runner) Mixed(ctx context.Context, opts Options) (Result, error) {
	setOps, getOps := opts.Ratio.Split(opts.Requests)
	prob := opts.cachedProbability()

	if !opts.Quiet {
		r.logger.Info("benchmarking mixed operations",
			"ratio", opts.Ratio.String(), "set_ops", setOps, "get_ops", getOps,
			"cached_ratio", opts.CachedRatio.String(),
			"cached_percent", fmt.Sprintf("%.1f", prob*100))
	}

	keys := make([]string, opts.Requests)
	for i := range keys {
		keys[i] = fmt.Sprintf("benchmark:mixed:%d", i)
	}

	prePopulate := min(getOps, opts.Requests/2)
	for i := 0; i < prePopulate; i++ {
		if err := r.kv.Set(keys[i], r.randomValue(opts.Size), r.rand.Float64() < prob); err != nil {
			return Result{}, fmt.Errorf("bench: pre-populate %s: %w", keys[i], err)
		}
	}

	start := time.Now()
	for i := 0; i < opts.Requests; i++ {
		key := keys[r.rand.IntN(len(keys))]
		if i < setOps {
			if err := r.kv.Set(key, r.randomValue(opts.Size), r.rand.Float64() < prob); err != nil {
				return Result{}, fmt.Errorf("bench: set %s: %w", key, err)
			}
		} else {
			if _, _, err := r.kv.Get(ctx, key); err != nil {
				return Result{}, fmt.Errorf("bench: get %s: %w", key, err)
			}
		}
	}
	elapsed := time.Since(start)

	res := Result{
		ID:          newRunID(),
		Name:        opts.name("Mixed"),
		Type:        TypeMixed,
		Storage:     opts.Storage,
		Requests:    opts.Requests,
		Size:        opts.Size,
		Ratio:       opts.Ratio.String(),
		CachedRatio: opts.CachedRatio.String(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	res.Duration, res.OpsPerSecond = throughput(opts.Requests, elapsed)

	if !opts.Quiet {
		r.logger.Info("mixed benchmark complete",
			"requests", opts.Requests, "seconds", res.Duration, "ops_per_second", res.OpsPerSecond)
	}
	r.record(res)
	return res, nil
}

// record appends the result to the log. A failed append is reported but
// does not fail the run: the measurement itself already succeeded.
func (r *Runner) record(res Result) {
	if r.log == nil {
		return
	}
	if err := r.log.Append(res); err != nil {
		r.logger.Warn("could not persist benchmark result", "id", res.ID, "error", err)
	}
}

func (r *Runner) randomValue(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = benchChars[r.rand.IntN(len(benchChars))]
	}
	return string(b)
}
