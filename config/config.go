// Package config loads imgdedup settings from a YAML file, a .env file and
// IMGDEDUP_* environment variables, in that order of precedence (last wins).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/riadafridishibly/imgdedup/engine"
	"github.com/riadafridishibly/imgdedup/phash"
	"github.com/riadafridishibly/imgdedup/tui"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "IMGDEDUP_"

type Config struct {
	Processing engine.Config `yaml:"processing"`
	Loader     LoaderConfig  `yaml:"loader"`
	Hash       HashConfig    `yaml:"hash"`
	Output     OutputConfig  `yaml:"output"`
	UI         UIConfig      `yaml:"ui"`

	Recursive bool `yaml:"recursive"`
}

type LoaderConfig struct {
	// 0 keeps images at their native size
	MaxDimension uint32 `yaml:"max_dimension"`
}

type HashConfig struct {
	Algorithm string `yaml:"algorithm"`
	Size      int    `yaml:"size"`
}

type OutputConfig struct {
	JSONPath string `yaml:"json"`
	DBPath   string `yaml:"db"`
}

type UIConfig struct {
	TUI   bool       `yaml:"tui"`
	Quiet bool       `yaml:"quiet"`
	Theme tui.Config `yaml:"theme"`
}

func Default() *Config {
	return &Config{
		Processing: engine.DefaultConfig(),
		Hash:       HashConfig{Algorithm: "dct", Size: phash.DefaultSize},
		UI:         UIConfig{Theme: tui.DefaultConfig()},
		Recursive:  true,
	}
}

// Load builds the configuration. An empty path skips the YAML file; a path
// that does not exist is an error. The result is not validated: callers
// layer their own overrides on top and then call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv exports the variables of the given .env files (".env" when
// none are named) into the process environment. Missing files are ignored;
// variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error

	intVar := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	boolVar := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	stringVar := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	intVar("MAX_CONCURRENT_TASKS", &c.Processing.MaxConcurrentTasks)
	intVar("CHANNEL_BUFFER_SIZE", &c.Processing.ChannelBufferSize)
	intVar("BATCH_SIZE", &c.Processing.BatchSize)
	boolVar("PROGRESS", &c.Processing.EnableProgressReporting)

	if v, ok := lookup(EnvPrefix + "MAX_DIMENSION"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_DIMENSION: %w", EnvPrefix, err))
		} else {
			c.Loader.MaxDimension = uint32(n)
		}
	}

	stringVar("HASH_ALGORITHM", &c.Hash.Algorithm)
	intVar("HASH_SIZE", &c.Hash.Size)
	stringVar("OUTPUT", &c.Output.JSONPath)
	stringVar("DB", &c.Output.DBPath)
	boolVar("RECURSIVE", &c.Recursive)
	boolVar("TUI", &c.UI.TUI)
	boolVar("QUIET", &c.UI.Quiet)
	stringVar("THEME", &c.UI.Theme.Theme)

	return errors.Join(errs...)
}

// Validate checks everything that can be checked without touching disk.
func (c *Config) Validate() error {
	if err := c.Processing.Validate(); err != nil {
		return err
	}
	if _, err := phash.New(c.Hash.Algorithm, c.Hash.Size); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	return nil
}
