package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cachekv/cachekv/internal/config"
	"github.com/cachekv/cachekv/internal/engine"
	"github.com/cachekv/cachekv/internal/snapshot"
)

// parseCommandArgs parses a subcommand's arguments accepting flags on either
// side of the positionals (the stdlib flag package alone stops at the first
// non-flag argument, which would reject "set key value --cached"). Leading
// positionals are split off, the remainder is handed to fs, and whatever fs
// leaves over is appended back.
func parseCommandArgs(fs *flag.FlagSet, args []string) []string {
	i := 0
	for i < len(args) && !strings.HasPrefix(args[i], "-") {
		i++
	}
	positionals := append([]string{}, args[:i]...)
	fs.Parse(args[i:])
	return append(positionals, fs.Args()...)
}

// openEngine builds the store engine on the configured persistence backend.
func openEngine(cfg *config.Config) (*engine.Engine, error) {
	var persister snapshot.Persister
	switch cfg.Backend {
	case "bolt":
		bs, err := snapshot.OpenBolt(cfg.BoltFile)
		if err != nil {
			return nil, err
		}
		persister = bs
	default:
		persister = snapshot.NewFileStore(cfg.StoreFile)
	}

	delay := engine.UniformDelay{Min: cfg.Delay.Min(), Max: cfg.Delay.Max()}
	return engine.New(persister, engine.WithDelayPolicy(delay)), nil
}

func runSet(cfg *config.Config, quiet bool, args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	cached := fs.Bool("cached", false, "Mark the value as cached")
	pos := parseCommandArgs(fs, args)
	if len(pos) != 2 {
		return fmt.Errorf("usage: cachekv set <key> <value> [--cached]")
	}
	key, value := pos[0], pos[1]

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.Set(key, value, *cached); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "SET %s: true (%s)\n", key, cachedLabel(*cached))
	}
	return nil
}

func runGet(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: cachekv get <key>")
	}
	key := fs.Arg(0)

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	value, ok, err := e.Get(context.Background(), key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	fmt.Println(value)
	return nil
}

func runGetSet(cfg *config.Config, quiet bool, args []string) error {
	fs := flag.NewFlagSet("getset", flag.ExitOnError)
	cached := fs.Bool("cached", false, "Mark the new value as cached")
	pos := parseCommandArgs(fs, args)
	if len(pos) != 2 {
		return fmt.Errorf("usage: cachekv getset <key> <value> [--cached]")
	}
	key, value := pos[0], pos[1]

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	prev, existed, err := e.GetSet(key, value, *cached)
	if err != nil {
		return err
	}
	if !quiet {
		old := "(none)"
		if existed {
			old = prev
		}
		fmt.Fprintf(os.Stderr, "GETSET %s: old value = %s, new value = %s (%s)\n",
			key, old, value, cachedLabel(*cached))
	}
	if existed {
		fmt.Println(prev)
	}
	return nil
}

func runCache(cfg *config.Config, quiet bool, args []string) error {
	fs := flag.NewFlagSet("cache", flag.ExitOnError)
	status := fs.String("status", "true", "Cache status (true/false)")
	pos := parseCommandArgs(fs, args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: cachekv cache <key> [--status true|false]")
	}
	key := pos[0]

	cached, err := strconv.ParseBool(*status)
	if err != nil {
		return fmt.Errorf("invalid --status %q (want true or false)", *status)
	}

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	ok, err := e.SetCached(key, cached)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	if !quiet {
		fmt.Fprintf(os.Stderr, "Cache status for %s set to %v\n", key, cached)
	}
	return nil
}

func runStatus(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: cachekv status <key>")
	}
	key := fs.Arg(0)

	e, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	cached, ok := e.CachedStatus(key)
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	fmt.Println(cachedLabel(cached))
	return nil
}

func cachedLabel(cached bool) string {
	if cached {
		return "cached"
	}
	return "not cached"
}
