package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the root configuration for ptt, stored in ~/.ptt/config.yaml.
type Config struct {
	Tracking TrackingConfig `mapstructure:"tracking" yaml:"tracking"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// TrackingConfig holds the session tracker settings.
type TrackingConfig struct {
	// DataFileName is the tracking file name inside the project.
	DataFileName string `mapstructure:"data_file_name" yaml:"data_file_name"`
	// Subpath is the project-relative directory of the tracking file.
	Subpath string `mapstructure:"subpath" yaml:"subpath"`
	// MaxIdleSeconds closes a session after this many idle seconds. 0 disables.
	MaxIdleSeconds int `mapstructure:"max_idle_seconds" yaml:"max_idle_seconds"`
	// TickInterval is how often idle time advances.
	TickInterval time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	// File receives JSON logs. Empty logs to stderr.
	File string `mapstructure:"file" yaml:"file"`
}

const (
	// DefaultDataFileName is the tracking file created in each project.
	DefaultDataFileName = ".timetracker"
	// DefaultMaxIdleSeconds matches two minutes without activity.
	DefaultMaxIdleSeconds = 120
	// DefaultTickInterval is one idle second per tick.
	DefaultTickInterval = time.Second
	// DefaultLogLevel is the zerolog level used when none is configured.
	DefaultLogLevel = "warn"
)

// Default returns a Config pre-filled with sensible defaults.
func Default() Config {
	return Config{
		Tracking: TrackingConfig{
			DataFileName:   DefaultDataFileName,
			MaxIdleSeconds: DefaultMaxIdleSeconds,
			TickInterval:   DefaultTickInterval,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# ptt configuration – ~/.ptt/config.yaml
#
# All settings are optional; the built-in defaults shown below work out of
# the box. Environment variables (PTT_*) override values from this file.

tracking:
  # Name of the tracking file created in the project root. (PTT_DATA_FILE_NAME)
  data_file_name: ".timetracker"

  # Project-relative directory for the tracking file, e.g. ".vscode".
  # Leave empty to store it in the project root. (PTT_SUBPATH)
  subpath: ""

  # Seconds without activity before the running session is closed.
  # 0 disables automatic pausing. (PTT_MAX_IDLE_SECONDS)
  max_idle_seconds: 120

  # How often idle time advances. Each tick counts as one idle second.
  tick_interval: 1s

log:
  # debug, info, warn, error (PTT_LOG_LEVEL)
  level: warn

  # Write JSON logs to this file instead of stderr. (PTT_LOG_FILE)
  file: ""
`

// DefaultPath returns the path to ~/.ptt/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ptt", "config.yaml"), nil
}

// Load reads the config file at path, creating it with annotated defaults
// on first run. Environment overrides are applied and the result validated.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
			cfg := Default()
			applyEnvOverrides(&cfg)
			return cfg, cfg.Validate()
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg, err := decode(v)
	if err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	return cfg, nil
}

// Watch reloads the config file at path whenever it changes and passes the
// result to onChange. It returns after the initial read; watching continues
// for the life of the process.
func Watch(path string, onChange func(Config, error)) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()
	return nil
}

func decode(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), err
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PTT_DATA_FILE_NAME"); v != "" {
		cfg.Tracking.DataFileName = v
	}
	if v, ok := os.LookupEnv("PTT_SUBPATH"); ok {
		cfg.Tracking.Subpath = v
	}
	if v := os.Getenv("PTT_MAX_IDLE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Tracking.MaxIdleSeconds = n
		}
	}
	if v := os.Getenv("PTT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PTT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
