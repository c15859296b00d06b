// Package config loads gestify settings from a .env file, GESTIFY_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayusman/gestify/internal/gesture"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GESTIFY_"

// Config holds the application settings.
type Config struct {
	Addr          string
	DataDir       string
	DBPath        string
	PluginDir     string
	WebDir        string
	ModelPath     string
	LibraryPath   string
	CameraID      int
	FPS           int
	Mirror        bool
	Threshold     float64
	Dwell         time.Duration
	Classes       int
	Anchors       int
	Enabled       bool
	Tray          bool
	LogDetections bool
	PluginTimeout time.Duration
	// TriggerRetention is how long trigger history is kept. Zero keeps it forever.
	TriggerRetention time.Duration
}

// DefaultTriggerRetention keeps a week of trigger history.
const DefaultTriggerRetention = 7 * 24 * time.Hour

// Default returns the built-in settings with data under ~/.gestify.
func Default() Config {
	dataDir := ".gestify"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".gestify")
	}

	return Config{
		Addr:          ":8080",
		DataDir:       dataDir,
		FPS:           15,
		Mirror:        true,
		Threshold:     gesture.DefaultThreshold,
		Dwell:         gesture.DefaultDwell,
		Classes:       gesture.DefaultClasses,
		Anchors:       gesture.DefaultAnchors,
		Enabled:       true,
		Tray:          true,
		PluginTimeout: 5 * time.Second,

		TriggerRetention: DefaultTriggerRetention,
	}
}

// Load reads envFile (if it exists), then the environment, then args.
// An empty envFile means ".env". The result is validated. Paths left empty
// are placed under DataDir. "-h" prints usage and returns flag.ErrHelp.
func Load(envFile string, args []string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.parseFlags(args); err != nil {
		return Config{}, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "gestify.db")
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(cfg.DataDir, "plugins")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"ADDR":         &c.Addr,
		"DATA_DIR":     &c.DataDir,
		"DB_PATH":      &c.DBPath,
		"PLUGIN_DIR":   &c.PluginDir,
		"WEB_DIR":      &c.WebDir,
		"MODEL_PATH":   &c.ModelPath,
		"LIBRARY_PATH": &c.LibraryPath,
	}
	for key, dst := range strs {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"CAMERA_ID": &c.CameraID,
		"FPS":       &c.FPS,
		"CLASSES":   &c.Classes,
		"ANCHORS":   &c.Anchors,
	}
	for key, dst := range ints {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"MIRROR":         &c.Mirror,
		"ENABLED":        &c.Enabled,
		"TRAY":           &c.Tray,
		"LOG_DETECTIONS": &c.LogDetections,
	}
	for key, dst := range bools {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}

	durations := map[string]*time.Duration{
		"DWELL":             &c.Dwell,
		"PLUGIN_TIMEOUT":    &c.PluginTimeout,
		"TRIGGER_RETENTION": &c.TriggerRetention,
	}
	for key, dst := range durations {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv(EnvPrefix + "THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sTHRESHOLD: %w", EnvPrefix, err)
		}
		c.Threshold = f
	}

	return nil
}

func (c *Config) parseFlags(args []string) error {
	fset := flag.NewFlagSet("gestify", flag.ContinueOnError)

	fset.StringVar(&c.Addr, "addr", c.Addr, "HTTP listen address")
	fset.StringVar(&c.DataDir, "data-dir", c.DataDir, "data directory")
	fset.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database path (default <data-dir>/gestify.db)")
	fset.StringVar(&c.PluginDir, "plugins", c.PluginDir, "plugin directory (default <data-dir>/plugins)")
	fset.StringVar(&c.WebDir, "web", c.WebDir, "static web directory")
	fset.StringVar(&c.ModelPath, "model", c.ModelPath, "ONNX gesture model path")
	fset.StringVar(&c.LibraryPath, "onnxruntime", c.LibraryPath, "onnxruntime shared library path")
	fset.IntVar(&c.CameraID, "camera", c.CameraID, "camera device id")
	fset.IntVar(&c.FPS, "fps", c.FPS, "capture frame rate")
	fset.BoolVar(&c.Mirror, "mirror", c.Mirror, "mirror frames before inference")
	fset.Float64Var(&c.Threshold, "threshold", c.Threshold, "detection confidence threshold, in (0,1)")
	fset.DurationVar(&c.Dwell, "dwell", c.Dwell, "hold time before a gesture refires")
	fset.IntVar(&c.Classes, "classes", c.Classes, "number of model classes")
	fset.IntVar(&c.Anchors, "anchors", c.Anchors, "number of model anchors")
	fset.BoolVar(&c.Enabled, "enabled", c.Enabled, "start with detection enabled")
	fset.BoolVar(&c.Tray, "tray", c.Tray, "show the system tray icon")
	fset.BoolVar(&c.LogDetections, "log-detections", c.LogDetections, "log a per-class summary of every frame")
	fset.DurationVar(&c.PluginTimeout, "plugin-timeout", c.PluginTimeout, "timeout for a single plugin run")
	fset.DurationVar(&c.TriggerRetention, "trigger-retention", c.TriggerRetention, "how long trigger history is kept, 0 keeps it forever")

	return fset.Parse(args)
}

// Validate checks the settings the pipeline cannot start without.
func (c Config) Validate() error {
	switch {
	case c.Threshold <= 0 || c.Threshold >= 1:
		return fmt.Errorf("%w: threshold %v not in (0,1)", gesture.ErrInvalidConfiguration, c.Threshold)
	case c.Dwell <= 0:
		return fmt.Errorf("%w: dwell must be positive, got %v", gesture.ErrInvalidConfiguration, c.Dwell)
	case c.Classes <= 0:
		return fmt.Errorf("%w: classes must be positive, got %d", gesture.ErrInvalidConfiguration, c.Classes)
	case c.Anchors <= 0:
		return fmt.Errorf("%w: anchors must be positive, got %d", gesture.ErrInvalidConfiguration, c.Anchors)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps must be positive, got %d", gesture.ErrInvalidConfiguration, c.FPS)
	case c.TriggerRetention < 0:
		return fmt.Errorf("%w: negative trigger retention %v", gesture.ErrInvalidConfiguration, c.TriggerRetention)
	case c.Addr == "":
		return fmt.Errorf("%w: empty listen address", gesture.ErrInvalidConfiguration)
	}
	return nil
}
