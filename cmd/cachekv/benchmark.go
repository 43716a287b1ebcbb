package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cachekv/cachekv/internal/bench"
	"github.com/cachekv/cachekv/internal/config"
)

func runBenchmark(cfg *config.Config, quiet bool, args []string) error {
	fs := flag.NewFlagSet("benchmark", flag.ExitOnError)
	storage := fs.String("storage", cfg.Benchmark.Storage, "Storage type: redis (cached) or db (always cold)")
	requests := fs.Int("requests", cfg.Benchmark.Requests, "Number of requests")
	size := fs.Int("size", cfg.Benchmark.Size, "Data size in bytes")
	ratioStr := fs.String("ratio", cfg.Benchmark.Ratio, "SET:GET ratio for the mixed benchmark")
	cachedRatioStr := fs.String("cached-ratio", cfg.Benchmark.CachedRatio, "Cached:non-cached ratio for generated values")
	name := fs.String("name", "", "Name for this benchmark run")
	pos := parseCommandArgs(fs, args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: cachekv benchmark <set|get|mixed> [flags]")
	}
	benchType := pos[0]

	if *storage != bench.StorageRedis && *storage != bench.StorageDB {
		return fmt.Errorf("invalid --storage %q (want redis or db)", *storage)
	}
	if *requests <= 0 {
		return fmt.Errorf("invalid --requests %d (want a positive count)", *requests)
	}

	ratio, err := bench.ParseRatio(*ratioStr)
	if err != nil {
		return fmt.Errorf("invalid --ratio: %w", err)
	}
	cachedRatio, err := bench.ParseRatio(*cachedRatioStr)
	if err != nil {
		return fmt.Errorf("invalid --cached-ratio: %w", err)
	}

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	runner := bench.NewRunner(e, bench.NewLog(cfg.ResultsFile))
	opts := bench.Options{
		Requests:    *requests,
		Size:        *size,
		Ratio:       ratio,
		CachedRatio: cachedRatio,
		Storage:     *storage,
		Name:        *name,
		Quiet:       quiet,
	}

	ctx := context.Background()
	var result bench.Result
	switch benchType {
	case "set":
		result, err = runner.Set(opts)
	case "get":
		// GET assumes benchmark:set:<i> keys exist; populate them quietly first.
		prePopulate := opts
		prePopulate.Name = ""
		prePopulate.Quiet = true
		if _, err := runner.Set(prePopulate); err != nil {
			return err
		}
		result, err = runner.Get(ctx, opts)
	case "mixed":
		result, err = runner.Mixed(ctx, opts)
	default:
		return fmt.Errorf("unknown benchmark type: %s (want set, get, or mixed)", benchType)
	}
	if err != nil {
		return err
	}

	// Final result as compact JSON on stdout for API consumption.
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runResults(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("results", flag.ExitOnError)
	format := fs.String("format", "json", "Output format: json or table")
	fs.Parse(args)

	log := bench.NewLog(cfg.ResultsFile)
	results, err := log.All()
	if err != nil {
		return err
	}

	switch *format {
	case "json":
		// An empty log must still print a JSON array, never null.
		if results == nil {
			results = []bench.Result{}
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "table":
		if len(results) == 0 {
			fmt.Fprintln(os.Stderr, "No benchmark results found.")
			return nil
		}
		printResultsTable(results)
	default:
		return fmt.Errorf("invalid --format %q (want json or table)", *format)
	}
	return nil
}

func printResultsTable(results []bench.Result) {
	fmt.Printf("%-12s %-25s %-8s %-8s %-10s %-10s %-20s\n",
		"ID", "Name", "Type", "Storage", "Ops/Sec", "Duration", "Date")
	for i := 0; i < 100; i++ {
		fmt.Print("-")
	}
	fmt.Println()
	for _, r := range results {
		name := r.Name
		if len(name) > 25 {
			name = name[:25]
		}
		date := r.Timestamp
		if len(date) > 19 {
			date = date[:19]
		}
		fmt.Printf("%-12s %-25s %-8s %-8s %-10.2f %-10.2f %-20s\n",
			r.ID, name, r.Type, r.Storage, r.OpsPerSecond, r.Duration, date)
	}
}
