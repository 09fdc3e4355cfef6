package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// DefaultConfigFile is looked up from the working directory upwards when
// --config is not given.
const DefaultConfigFile = "minrx.toml"

// Config holds defaults for global flags. A flag given on the command line
// always wins over the config file.
type Config struct {
	Format    string `toml:"format"`
	Verbose   bool   `toml:"verbose"`
	DB        string `toml:"db"`
	MaxSteps  int    `toml:"max_steps"`
	Normalize bool   `toml:"normalize"`

	// Path is the file the config was read from (set at load time).
	Path string `toml:"-"`
}

// LoadConfig parses a TOML config file. Unknown keys are an error so that
// typos do not silently fall back to defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown key(s) in %s: %s", path, strings.Join(keys, ", "))
	}

	if cfg.Format != "" && !isValidFormat(cfg.Format) {
		return nil, fmt.Errorf("invalid format %q in %s: must be one of %v", cfg.Format, path, ValidFormats)
	}
	if cfg.MaxSteps < 0 {
		return nil, fmt.Errorf("max_steps in %s must not be negative", path)
	}

	cfg.Path = path
	return &cfg, nil
}

// FindConfig walks up from startDir looking for DefaultConfigFile.
// Returns "" if none is found.
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		path := filepath.Join(dir, DefaultConfigFile)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// applyConfig copies config values into opts for every global flag that
// was not set explicitly on cmd.
func (opts *RootOptions) applyConfig(cfg *Config, cmd *cobra.Command) {
	flags := cmd.Flags()
	if cfg.Format != "" && !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if cfg.Verbose && !flags.Changed("verbose") {
		opts.Verbose = true
	}
	if cfg.DB != "" && !flags.Changed("db") {
		opts.DB = cfg.DB
	}
	if cfg.MaxSteps > 0 && !flags.Changed("max-steps") {
		opts.MaxSteps = cfg.MaxSteps
	}
	if cfg.Normalize && !flags.Changed("normalize") {
		opts.Normalize = true
	}
}
