// Package config loads runtime settings for the pricer from a JSON or YAML
// file, a .env file and PRICER_* environment variables, in that order of
// increasing precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	VerbosityError = iota // 0
	VerbosityInfo         // 1
	VerbosityDebug        // 2
	VerbosityTrace        // 3
)

// Output formats understood by the report package.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// Config struct
type Config struct {
	RiskFreeRate   float64 `json:"risk_free_rate" yaml:"risk_free_rate"`                       // default rate for contracts that omit one
	Workers        int     `json:"workers,omitempty" yaml:"workers,omitempty"`                 // batch valuation concurrency
	ReportDir      string  `json:"report_dir,omitempty" yaml:"report_dir,omitempty"`           // report directory
	Format         string  `json:"format,omitempty" yaml:"format,omitempty"`                   // table, json or csv
	Listen         string  `json:"listen,omitempty" yaml:"listen,omitempty"`                   // REST listen address
	Verbosity      int     `json:"verbosity,omitempty" yaml:"verbosity,omitempty"`             // 0=errors,1=info,2=debug,3=trace
	Seed           int64   `json:"seed,omitempty" yaml:"seed,omitempty"`                       // random seed for generated scenarios, 0 = time based
	StrikeInterval float64 `json:"strike_interval,omitempty" yaml:"strike_interval,omitempty"` // strike grid, 0 = no rounding
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		RiskFreeRate: 0.05,
		Workers:      4,
		ReportDir:    "./out",
		Format:       FormatTable,
		Listen:       ":8080",
		Verbosity:    VerbosityInfo,
	}
}

// Load reads path (JSON or YAML by extension) over the defaults, then applies
// a .env file from the working directory if one exists, then PRICER_*
// environment variables. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	case ".json":
		err = json.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	floats := map[string]*float64{
		"PRICER_RISK_FREE_RATE":  &cfg.RiskFreeRate,
		"PRICER_STRIKE_INTERVAL": &cfg.StrikeInterval,
	}
	for key, dst := range floats {
		if v, ok := os.LookupEnv(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"PRICER_WORKERS":   &cfg.Workers,
		"PRICER_VERBOSITY": &cfg.Verbosity,
	}
	for key, dst := range ints {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := os.LookupEnv("PRICER_SEED"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("PRICER_SEED: %w", err)
		}
		cfg.Seed = n
	}

	strs := map[string]*string{
		"PRICER_REPORT_DIR": &cfg.ReportDir,
		"PRICER_FORMAT":     &cfg.Format,
		"PRICER_LISTEN":     &cfg.Listen,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	return nil
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.StrikeInterval < 0 {
		return fmt.Errorf("strike_interval must not be negative, got %g", c.StrikeInterval)
	}
	switch c.Format {
	case FormatTable, FormatJSON, FormatCSV:
	default:
		return fmt.Errorf("unknown format %q (want table, json or csv)", c.Format)
	}
	if c.Verbosity < VerbosityError || c.Verbosity > VerbosityTrace {
		c.Verbosity = VerbosityInfo
	}
	return nil
}
