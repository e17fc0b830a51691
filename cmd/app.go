// Package cmd implements the CLI application consolidating holdings.
package cmd

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/etnz/holdings/config"
	"github.com/etnz/holdings/consolidate"
	"github.com/etnz/holdings/dedup"
	"github.com/etnz/holdings/logger"
	"github.com/etnz/holdings/version"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&consolidateCmd{}, "consolidation")
	c.Register(&readCmd{}, "consolidation")
	c.Register(&duplicatesCmd{}, "consolidation")
	c.Register(&summaryCmd{}, "consolidation")

	c.Register(&versionsCmd{}, "versions")
	c.Register(&compareCmd{}, "versions")
	c.Register(&reportCmd{}, "versions")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", config.DefaultFile, "Path to the configuration file (YAML)")
var envFile = flag.String("env", ".env", "Path to a .env file feeding the environment")
var baseDir = flag.String("base-dir", "", "Root of the version store, overrides the configuration")
var strategy = flag.String("strategy", "", "Deduplication strategy (aggregate, prioritize or latest), overrides the configuration")

// LoadConfig loads the application configuration.
func LoadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(*envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *baseDir != "" {
		cfg.BaseDir = *baseDir
	}
	if *strategy != "" {
		cfg.Strategy = *strategy
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// app gathers what a subcommand needs: the configuration and the components
// built from it.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

// newApp loads the configuration and sets up logging. Errors are reported on stderr.
func newApp() (*app, bool) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, false
	}
	l := logger.New(cfg.LogLevel, os.Stderr)
	slog.SetDefault(l)
	return &app{cfg: cfg, log: l}, true
}

// store opens the version store.
func (a *app) store() (*version.Store, error) {
	return version.Open(a.cfg.BaseDir, version.WithLogger(a.log))
}

// consolidator returns a consolidator applying the configured deduplication, saving
// in the version store when versioning is enabled.
func (a *app) consolidator() (*consolidate.Consolidator, error) {
	d, err := dedup.New(a.cfg.Dedup(), dedup.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	opts := []consolidate.Option{consolidate.WithLogger(a.log)}
	if a.cfg.VersioningEnabled() {
		s, err := a.store()
		if err != nil {
			return nil, err
		}
		opts = append(opts, consolidate.WithStore(s))
	}
	return consolidate.New(d, opts...), nil
}

// loadAll returns a consolidator loaded with the configured provider files, and
// the outcome of each load.
func (a *app) loadAll() (*consolidate.Consolidator, []consolidate.Outcome, error) {
	c, err := a.consolidator()
	if err != nil {
		return nil, nil, err
	}
	files, err := a.cfg.InputFiles()
	if err != nil {
		return nil, nil, err
	}
	return c, c.LoadAll(a.cfg.InputPath(), files), nil
}
