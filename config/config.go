package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/revelaction/absaset/adapter"
	"github.com/revelaction/absaset/resource"
)

const (
	defaultDataDir     = "data"
	defaultSeed        = 1234
	defaultDevFraction = 0.2
	defaultLogLevel    = "info"
)

// Config is passed explicitly to the dataset registry. Nothing in the
// module reads process wide settings.
type Config struct {
	// DataDir is the base of the relative dataset locators. It may be an
	// s3://bucket/prefix locator.
	DataDir string `yaml:"data_dir"`

	// Seed of every random split. Nil means the default seed; zero is a
	// valid seed.
	Seed *int64 `yaml:"seed"`

	// DevFraction of train held out as dev when a corpus has no dev
	// partition. Zero makes dev the test partition.
	DevFraction *float64 `yaml:"dev_fraction"`

	LogLevel string `yaml:"log_level"`

	S3 S3 `yaml:"s3"`

	// Datasets overrides the default locators of the named datasets.
	Datasets map[string]adapter.Locators `yaml:"datasets"`
}

// S3 configures the client used for s3:// locators.
type S3 struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var cfg Config
	cfg.applyDefaults("")
	return cfg
}

// Load loads a configuration from YAML, applies defaults and validates it.
// Relative data directories are relative to the file.
func Load(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config yaml: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults(configDir string) {
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if configDir != "" && !resource.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(configDir, cfg.DataDir)
	}
	if cfg.Seed == nil {
		seed := int64(defaultSeed)
		cfg.Seed = &seed
	}
	if cfg.DevFraction == nil {
		f := defaultDevFraction
		cfg.DevFraction = &f
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Datasets == nil {
		cfg.Datasets = map[string]adapter.Locators{}
	}
}

// Validate checks the values a file or the command line may get wrong.
func (cfg Config) Validate() error {
	if f := cfg.Fraction(); f < 0 || f >= 1 {
		return fmt.Errorf("dev_fraction must be in [0, 1): %v", f)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	for name := range cfg.Datasets {
		if name == "" {
			return fmt.Errorf("dataset name is required")
		}
	}
	return nil
}

// Fraction returns the dev fraction.
func (cfg Config) Fraction() float64 {
	if cfg.DevFraction == nil {
		return defaultDevFraction
	}
	return *cfg.DevFraction
}

// SplitSeed returns the seed of the random splits.
func (cfg Config) SplitSeed() int64 {
	if cfg.Seed == nil {
		return defaultSeed
	}
	return *cfg.Seed
}

// Level returns the parsed log level, info if invalid.
func (cfg Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
