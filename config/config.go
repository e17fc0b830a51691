// Package config loads the settings of the command line.
//
// Settings come, by increasing precedence, from the defaults, a YAML file (with
// ${VAR} references expanded), and HCS_* environment variables. A .env file can
// feed the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/holdings"
	"github.com/etnz/holdings/dedup"
	"github.com/etnz/holdings/logger"
	"github.com/etnz/holdings/source"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "hcs.yaml"

// ErrInvalid is returned for a configuration that does not validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings of a consolidation run.
type Config struct {
	// BaseDir is the root of the version store.
	BaseDir string `yaml:"base_dir"`
	// InputDir holds the provider files, relative to BaseDir unless absolute.
	InputDir string `yaml:"input_dir"`
	// Files maps provider names to their file in InputDir.
	Files map[string]string `yaml:"files"`
	// Strategy is the deduplication strategy.
	Strategy string `yaml:"strategy"`
	// Priority ranks the sources for deduplication.
	Priority map[string]int `yaml:"priority"`
	// Versioning saves the consolidations in the version store. Defaults to true.
	Versioning  *bool  `yaml:"versioning"`
	LogLevel    string `yaml:"log_level"`
	TopHoldings int    `yaml:"top_holdings"`
}

// Default returns the default configuration.
func Default() *Config {
	cfg := new(Config)
	cfg.applyDefaults()
	return cfg
}

// DefaultFiles returns the usual file name of every provider export.
func DefaultFiles() map[string]string {
	return map[string]string{
		string(source.B3):       "b3_carrteira.xlsx",
		string(source.Kinvo):    "kinvo_carteira.xlsx",
		string(source.MyProfit): "myprofit_carteira.xls",
		string(source.XP):       "xp_carteira.xlsx",
	}
}

func (c *Config) applyDefaults() {
	if c.BaseDir == "" {
		c.BaseDir = "."
	}
	if c.InputDir == "" {
		c.InputDir = "planilhas"
	}
	if len(c.Files) == 0 {
		c.Files = DefaultFiles()
	}
	if c.Strategy == "" {
		c.Strategy = string(dedup.Aggregate)
	}
	if len(c.Priority) == 0 {
		c.Priority = dedup.DefaultPriority()
	}
	if c.Versioning == nil {
		enabled := true
		c.Versioning = &enabled
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.TopHoldings == 0 {
		c.TopHoldings = holdings.DefaultTopHoldings
	}
}

// applyEnv overrides settings with the HCS_* environment variables.
func (c *Config) applyEnv() error {
	for name, dst := range map[string]*string{
		"HCS_BASE_DIR":  &c.BaseDir,
		"HCS_INPUT_DIR": &c.InputDir,
		"HCS_STRATEGY":  &c.Strategy,
		"HCS_LOG_LEVEL": &c.LogLevel,
	} {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("HCS_VERSIONING"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: HCS_VERSIONING=%q: %w", ErrInvalid, v, err)
		}
		c.Versioning = &enabled
	}
	return nil
}

// LoadDotEnv loads the variables of a .env file into the environment, without
// overriding the variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read env file: %w", err)
	}
	return nil
}

// Load reads the YAML file at path, applies the environment overrides and the
// defaults, and validates the result. A missing file means defaults only.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		// Expand ${VAR} environment variables
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	var errs []error
	if _, err := dedup.ParseStrategy(c.Strategy); err != nil {
		errs = append(errs, err)
	}
	for name, p := range c.Priority {
		if p < 0 {
			errs = append(errs, fmt.Errorf("negative priority %d for %q", p, name))
		}
	}
	for name := range c.Files {
		if _, err := source.ParseProvider(name); err != nil {
			errs = append(errs, fmt.Errorf("files: %w", err))
		}
	}
	if _, ok := logger.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.TopHoldings < 0 {
		errs = append(errs, fmt.Errorf("negative top_holdings %d", c.TopHoldings))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// VersioningEnabled reports whether consolidations are saved.
func (c *Config) VersioningEnabled() bool { return c.Versioning == nil || *c.Versioning }

// InputPath returns the directory holding the provider files.
func (c *Config) InputPath() string {
	if filepath.IsAbs(c.InputDir) {
		return c.InputDir
	}
	return filepath.Join(c.BaseDir, c.InputDir)
}

// InputFiles returns the provider files to load.
func (c *Config) InputFiles() (map[source.Provider]string, error) {
	files := make(map[source.Provider]string, len(c.Files))
	for name, file := range c.Files {
		p, err := source.ParseProvider(name)
		if err != nil {
			return nil, err
		}
		files[p] = strings.TrimSpace(file)
	}
	return files, nil
}

// Dedup returns the deduplication policy.
func (c *Config) Dedup() dedup.Config {
	return dedup.Config{Strategy: dedup.Strategy(c.Strategy), Priority: dedup.Priority(c.Priority)}
}
