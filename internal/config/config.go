package config

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/thalesfsp/stump"
	"github.com/thalesfsp/stump/haar"
)

// ErrInvalidConfig is returned for a configuration that cannot drive a learner.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the on-disk configuration of the stump command.
type Config struct {
	Learner LearnerConfig `yaml:"learner"`
	Haar    HaarConfig    `yaml:"haar"`
}

// LearnerConfig maps onto stump.Options.
type LearnerConfig struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Theta    float64        `yaml:"theta"`   // edge offset of the energy, in [0, 1)
	Votes    string         `yaml:"votes"`   // "discrete" or "real"
	Workers  int            `yaml:"workers"` // 0 = one per CPU
	Seed     int64          `yaml:"seed"`    // random sampling seed
}

// SamplingConfig is parsed with stump.ParseSamplingPolicy.
type SamplingConfig struct {
	Kind  string  `yaml:"kind"`  // "none", "num" or "time"
	Value float64 `yaml:"value"` // configurations (num) or seconds (time) per feature type
}

// HaarConfig selects the Haar catalog: image size and feature types.
type HaarConfig struct {
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	Types  []string `yaml:"types"` // empty = every type
}

// Default returns the configuration used when no file is found: exhaustive
// search, discrete votes, one worker, 24x24 images, every feature type.
func Default() *Config {
	return &Config{
		Learner: LearnerConfig{
			Sampling: SamplingConfig{Kind: "none"},
			Votes:    "discrete",
			Workers:  1,
		},
		Haar: HaarConfig{
			Width:  24,
			Height: 24,
		},
	}
}

// Load reads the YAML file at configPath over the defaults. With an empty
// path it tries configs/stump.yaml then stump.yaml and falls back to the
// defaults; an explicit path must exist.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		for _, p := range []string{"configs/stump.yaml", "stump.yaml"} {
			data, err := os.ReadFile(p)
			if err == nil {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return cfg, errors.Wrapf(err, "parsing %s", p)
				}
				applyDefaults(cfg)
				return cfg, nil
			}
		}
		applyDefaults(cfg)
		return cfg, nil // no file found: use defaults
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, errors.Wrapf(err, "reading %s", configPath)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing %s", configPath)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills the zero values left by a partial file.
func applyDefaults(cfg *Config) {
	if cfg.Learner.Sampling.Kind == "" {
		cfg.Learner.Sampling.Kind = "none"
	}
	if cfg.Learner.Votes == "" {
		cfg.Learner.Votes = "discrete"
	}
	if cfg.Learner.Workers <= 0 {
		cfg.Learner.Workers = runtime.NumCPU()
	}
	if cfg.Haar.Width <= 0 {
		cfg.Haar.Width = 24
	}
	if cfg.Haar.Height <= 0 {
		cfg.Haar.Height = 24
	}
}

// Options turns the learner section into stump options. Clock, Logger and
// ProgressChan keep their defaults.
func (c *Config) Options() (stump.Options, error) {
	opts := stump.DefaultOptions()

	policy, err := stump.ParseSamplingPolicy(c.Learner.Sampling.Kind, c.Learner.Sampling.Value)
	if err != nil {
		return opts, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	votes, err := stump.ParseVoteMode(c.Learner.Votes)
	if err != nil {
		return opts, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	if !(c.Learner.Theta >= 0 && c.Learner.Theta < 1) {
		return opts, errors.Wrapf(ErrInvalidConfig, "theta must be in [0, 1), got %v", c.Learner.Theta)
	}

	opts.Sampling = policy
	opts.Votes = votes
	opts.Theta = c.Learner.Theta
	opts.Workers = c.Learner.Workers

	return opts, nil
}

// Catalog builds the Haar feature types of the haar section.
func (c *Config) Catalog() (stump.Catalog[int, *haar.Dataset], error) {
	catalog, err := haar.Catalog(c.Haar.Width, c.Haar.Height, c.Learner.Seed, c.Haar.Types...)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}

	return catalog, nil
}
