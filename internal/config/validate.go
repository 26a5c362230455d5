package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

// Validate checks the configuration for values the tracker cannot use.
func (c Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("tracking.data_file_name", c.Tracking.DataFileName, isPlainFileName),
		criterio.Run("tracking.max_idle_seconds", c.Tracking.MaxIdleSeconds, isNonNegative),
		criterio.Run("tracking.tick_interval", c.Tracking.TickInterval, isPositiveDuration),
		criterio.Run("log.level", c.Log.Level, isLogLevel),
	)
}

// isPlainFileName rejects names with directory components. Blank is allowed
// and selects the default file name.
func isPlainFileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	if filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("must be a file name, not a path: %q", name)
	}
	return nil
}

func isNonNegative(n int) error {
	if n < 0 {
		return fmt.Errorf("must not be negative, got %d", n)
	}
	return nil
}

func isPositiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be greater than zero, got %s", d)
	}
	return nil
}

func isLogLevel(level string) error {
	if _, err := zerolog.ParseLevel(level); err != nil {
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
