// Package config resolves convert settings from defaults, an optional YAML
// file, the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/bbox"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/dataset"
	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/providers"
)

// Config holds all settings of a convert run.
type Config struct {
	InputPath       string        `mapstructure:"input_path"`
	OutputPath      string        `mapstructure:"output_path"`
	MinImageSize    int           `mapstructure:"min_image_size"`
	Provider        string        `mapstructure:"provider"`
	ReplayDir       string        `mapstructure:"replay_dir"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	Deadline        time.Duration `mapstructure:"deadline"`
	Workers         int           `mapstructure:"workers"`
	ContinueOnError bool          `mapstructure:"continue_on_error"`
	Exclude         []string      `mapstructure:"exclude"`
	Normalize       string        `mapstructure:"normalize"`
	MetricsFile     string        `mapstructure:"metrics_file"`
	Report          string        `mapstructure:"report"`
	Clova           ClovaConfig   `mapstructure:"clova"`
}

// ClovaConfig holds the CLOVA General OCR domain credentials.
type ClovaConfig struct {
	APIURL    string `mapstructure:"api_url"`
	SecretKey string `mapstructure:"secret_key"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		MinImageSize:   bbox.DefaultMinSize,
		Provider:       "clova",
		RequestTimeout: providers.DefaultTimeout,
		Deadline:       0,
		Workers:        1,
		Normalize:      string(dataset.NormalizeNone),
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.InputPath) == "" {
		errs = append(errs, errors.New("input_path is required"))
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		errs = append(errs, errors.New("output_path is required"))
	}
	if c.MinImageSize < 0 {
		errs = append(errs, fmt.Errorf("min_image_size must be >= 0, got %d", c.MinImageSize))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.Deadline < 0 {
		errs = append(errs, fmt.Errorf("deadline must be >= 0, got %s", c.Deadline))
	}
	switch strings.ToLower(c.Provider) {
	case "clova":
	case "replay":
		if c.ReplayDir == "" {
			errs = append(errs, errors.New("replay_dir is required with the replay provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}
	if _, err := dataset.ParseNormalization(c.Normalize); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
