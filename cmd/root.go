package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/project-time-tracker/internal/config"
	"github.com/Tiliavir/project-time-tracker/internal/logutils"
	"github.com/Tiliavir/project-time-tracker/internal/storage"
	"github.com/Tiliavir/project-time-tracker/internal/tracker"
)

var (
	rootDir    string
	configPath string
	logLevel   string
)

// Populated by the root command before any subcommand runs.
var (
	cfg        = config.Default()
	configFile string
	logger     = zerolog.Nop()
	logCloser  = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "ptt",
	Short: "Project Time Tracker – measure active working time per project",
	Long: `ptt records how long you actively work in a project.
Sessions are stored as JSON in a tracking file inside the project
(.timetracker by default) and close automatically after an idle period.`,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCloser()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root directory (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.ptt/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(configCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}

	l, closer, err := logutils.New(c.Log.Level, c.Log.File)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	cfg, configFile, logger, logCloser = c, path, l, closer
	return nil
}

// projectRoot resolves the project directory. A missing directory means
// there is no project to track.
func projectRoot() (string, bool) {
	dir := rootDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return abs, true
}

func newStore(path string) tracker.Store {
	return storage.New(path)
}

func newTracker(factory tracker.StoreFactory) *tracker.Tracker {
	l := logger.With().Str("component", "tracker").Logger()
	return tracker.New(projectRoot, factory, tracker.Options{
		DataFileName: cfg.Tracking.DataFileName,
		Subpath:      cfg.Tracking.Subpath,
		MaxIdle:      cfg.Tracking.MaxIdleSeconds,
		TickInterval: cfg.Tracking.TickInterval,
		Logger:       &l,
	})
}

// openTrackedData returns the store of the current project or exits when
// no project folder is available.
func openTrackedData() *storage.TrackedData {
	path, ok := newTracker(newStore).TrackingFilePath()
	if !ok {
		fmt.Fprintln(os.Stderr, "No project folder found; open a folder to track time.")
		os.Exit(1)
	}
	return storage.New(path)
}
