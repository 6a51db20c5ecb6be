package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DaveLogs/CLOVAOCR2TDS/pkg/clova"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "clovaocr2tds"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "CLOVA2TDS"

	// Unprefixed variables accepted for the CLOVA credentials.
	EnvAPIURL    = clova.EnvAPIURL
	EnvSecretKey = clova.EnvSecretKey
)

// FlagKeys maps convert flag names to configuration keys.
var FlagKeys = map[string]string{
	"input_path":        "input_path",
	"output_path":       "output_path",
	"min_image_size":    "min_image_size",
	"provider":          "provider",
	"replay_dir":        "replay_dir",
	"request_timeout":   "request_timeout",
	"deadline":          "deadline",
	"workers":           "workers",
	"continue_on_error": "continue_on_error",
	"exclude":           "exclude",
	"normalize":         "normalize",
	"metrics_file":      "metrics_file",
	"report":            "report",
	"api_url":           "clova.api_url",
	"secret_key":        "clova.secret_key",
}

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader with its own viper instance.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// BindFlags binds every flag in FlagKeys that exists in flags.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := l.v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load resolves the configuration. When configFile is empty the standard
// search paths are tried and a missing file is not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	l.setDefaults()
	if err := l.setupEnvironmentVariables(); err != nil {
		return nil, err
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
		if err := l.v.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, ConfigFileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", ConfigFileName))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() error {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := l.v.BindEnv("clova.api_url", EnvPrefix+"_CLOVA_API_URL", EnvAPIURL); err != nil {
		return err
	}
	return l.v.BindEnv("clova.secret_key", EnvPrefix+"_CLOVA_SECRET_KEY", EnvSecretKey)
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("input_path", defaults.InputPath)
	l.v.SetDefault("output_path", defaults.OutputPath)
	l.v.SetDefault("min_image_size", defaults.MinImageSize)
	l.v.SetDefault("provider", defaults.Provider)
	l.v.SetDefault("replay_dir", defaults.ReplayDir)
	l.v.SetDefault("request_timeout", defaults.RequestTimeout)
	l.v.SetDefault("deadline", defaults.Deadline)
	l.v.SetDefault("workers", defaults.Workers)
	l.v.SetDefault("continue_on_error", defaults.ContinueOnError)
	l.v.SetDefault("exclude", []string{})
	l.v.SetDefault("normalize", defaults.Normalize)
	l.v.SetDefault("metrics_file", defaults.MetricsFile)
	l.v.SetDefault("report", defaults.Report)
	l.v.SetDefault("clova.api_url", "")
	l.v.SetDefault("clova.secret_key", "")
}
