// cachekv - a file-persisted key-value store with cache-aware benchmarking
//
// Usage:
//
//	cachekv [global flags] <command> [command flags]
//
// Global flags:
//
//	-file string      JSON file for key-value storage (default "kv_store.json")
//	-results string   JSON file for benchmark results (default "benchmark_results.json")
//	-backend string   Persistence backend: file or bolt (default "file")
//	-config string    TOML config file
//	-loglevel string  Log level: debug, info, warn, error (default "info")
//	-quiet            Suppress progress output (stdout results still print)
//	-version          Show version and exit
//
// Commands: set, get, getset, cache, status, results, benchmark
//
// Diagnostics and progress go to stderr; machine-readable output (values,
// JSON results) goes to stdout.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cachekv/cachekv/internal/config"
	"github.com/cachekv/cachekv/internal/logging"
	"github.com/cachekv/cachekv/internal/version"
)

func main() {
	globals := flag.NewFlagSet("cachekv", flag.ExitOnError)
	globals.Usage = printUsage
	storeFile := globals.String("file", "", "JSON file for key-value storage")
	resultsFile := globals.String("results", "", "JSON file for benchmark results")
	backend := globals.String("backend", "", "Persistence backend: file or bolt")
	configPath := globals.String("config", "", "TOML config file")
	logLevel := globals.String("loglevel", "", "Log level: debug, info, warn, error")
	quiet := globals.Bool("quiet", false, "Suppress progress output")
	showVersion := globals.Bool("version", false, "Show version and exit")
	globals.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("cachekv v%s (built %s)\n", version.Version, version.BuildTime)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Command-line flags override the config file.
	if *storeFile != "" {
		cfg.StoreFile = *storeFile
	}
	if *resultsFile != "" {
		cfg.ResultsFile = *resultsFile
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *quiet {
		cfg.LogLevel = "error"
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	args := globals.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if err := dispatchCommand(cfg, *quiet, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dispatchCommand(cfg *config.Config, quiet bool, args []string) error {
	switch args[0] {
	case "set":
		return runSet(cfg, quiet, args[1:])
	case "get":
		return runGet(cfg, args[1:])
	case "getset":
		return runGetSet(cfg, quiet, args[1:])
	case "cache":
		return runCache(cfg, quiet, args[1:])
	case "status":
		return runStatus(cfg, args[1:])
	case "results":
		return runResults(cfg, args[1:])
	case "benchmark":
		return runBenchmark(cfg, quiet, args[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: cachekv [global flags] <command> [command flags]

commands:
  set <key> <value> [--cached]        store a value
  get <key>                           fetch a value (non-cached keys are slow)
  getset <key> <value> [--cached]     swap in a new value, print the old one
  cache <key> [--status true|false]   update a key's cached flag
  status <key>                        show a key's cached flag
  results [--format json|table]       list benchmark results
  benchmark <set|get|mixed> [flags]   run a synthetic benchmark

run "cachekv <command> -h" for command flags.`)
}
