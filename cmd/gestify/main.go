package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/ayusman/gestify/internal/action"
	"github.com/ayusman/gestify/internal/app"
	"github.com/ayusman/gestify/internal/capture"
	"github.com/ayusman/gestify/internal/config"
	"github.com/ayusman/gestify/internal/detector"
	"github.com/ayusman/gestify/internal/gesture"
	"github.com/ayusman/gestify/internal/plugin"
	"github.com/ayusman/gestify/internal/server"
	"github.com/ayusman/gestify/internal/store"
	"github.com/ayusman/gestify/internal/tray"
)

func main() {
	fmt.Println("Gestify - Hand Gesture Media Control")

	cfg, err := config.Load(os.Getenv(config.EnvPrefix+"ENV_FILE"), os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	labels, err := loadLabels(st, cfg.Classes)
	if err != nil {
		log.Fatalf("Failed to load labels: %v", err)
	}

	threshold, dwell, enabled := applySettings(st, cfg)

	// Plugins: the configured directory first, then the repository checkout
	pluginDir := cfg.PluginDir
	if _, err := os.Stat(pluginDir); err != nil {
		if dir := findDir("plugins"); dir != "" {
			pluginDir = dir
		}
	}
	pluginMgr := plugin.NewManager(pluginDir)
	if err := pluginMgr.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	var sink action.Sink
	pluginSink := action.NewPluginSink(pluginMgr, plugin.NewExecutor(cfg.PluginTimeout), action.DefaultPluginName)
	if pluginSink.Connected() {
		sink = pluginSink
		log.Printf("Using %s plugin from %s", action.DefaultPluginName, pluginDir)
	} else {
		log.Printf("%s plugin not found in %s, actions will only be logged", action.DefaultPluginName, pluginDir)
		sink = action.NewLogSink()
	}

	if _, err := st.Bindings().SeedIfEmpty(action.StringBindings(action.DefaultBindings()), action.DefaultPluginName); err != nil {
		log.Fatalf("Failed to seed bindings: %v", err)
	}
	dispatcher := action.NewDispatcher(sink, map[string]action.Action{})
	reloadBindings := func() {
		n, err := app.ReloadBindings(st.Bindings(), dispatcher)
		if err != nil {
			log.Printf("Keeping previous bindings: %v", err)
			return
		}
		log.Printf("Loaded %d bindings", n)
	}
	reloadBindings()

	// Try the ONNX model first, fall back to the mock engine
	engineCfg := detector.DefaultConfig()
	engineCfg.ModelPath = cfg.ModelPath
	engineCfg.LibraryPath = cfg.LibraryPath
	engineCfg.Classes = cfg.Classes
	engineCfg.Anchors = cfg.Anchors
	engineCfg.Mirror = cfg.Mirror
	engineCfg.LogTiming = cfg.LogDetections

	var engine detector.Engine
	if onnx, err := detector.NewONNXEngine(engineCfg); err == nil {
		engine = onnx
		log.Println("Using ONNX gesture detection")
	} else {
		log.Printf("ONNX runtime not available (%v), using mock engine", err)
		engine = detector.NewMockEngine()
	}

	pipeline, err := app.NewPipeline(app.PipelineConfig{
		Decoder: gesture.DecoderConfig{
			Classes:   cfg.Classes,
			Anchors:   cfg.Anchors,
			Threshold: float32(threshold),
		},
		Dwell:         dwell,
		Labels:        labels,
		LogDetections: cfg.LogDetections,
	}, engine, dispatcher)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}

	camCfg := capture.DefaultConfig()
	camCfg.DeviceID = cfg.CameraID
	camCfg.FPS = cfg.FPS

	a, err := app.New(app.Config{
		Camera:   capture.NewCamera(camCfg),
		Pipeline: pipeline,
		Enabled:  enabled,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	var tr *tray.Tray
	if cfg.Tray {
		tr = tray.New(enabled)
	}

	hub := server.NewEventHub()
	pipeline.OnTrigger(func(e app.TriggerEvent) {
		if err := st.Triggers().Record(&store.Trigger{
			ID:         e.ID,
			Label:      e.Label,
			Action:     string(e.Action),
			Confidence: float64(e.Confidence),
			FiredAt:    e.FiredAt,
		}); err != nil {
			log.Printf("Failed to record trigger: %v", err)
		}
		hub.Publish(e)
		if tr != nil {
			tr.SetLastTrigger(e.Label, string(e.Action))
		}
	})

	setEnabled := func(enabled bool) {
		if err := st.Settings().Set(store.SettingEnabled, strconv.FormatBool(enabled)); err != nil {
			log.Printf("Failed to save enabled setting: %v", err)
		}
		if tr != nil {
			tr.SetEnabled(enabled)
		}
	}

	webDir := cfg.WebDir
	if webDir == "" {
		webDir = findDir("web")
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:       webDir,
		Store:           st,
		Controller:      a,
		Frames:          a,
		Events:          hub,
		BindingsChanged: reloadBindings,
		EnabledChanged:  setEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.RunRetention(ctx, st.Triggers(), cfg.TriggerRetention, app.RetentionInterval)

	go func() {
		fmt.Printf("Starting server on %s\n", cfg.Addr)
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			log.Printf("Server failed: %v", err)
			stop()
		}
	}()

	if err := a.Start(ctx); err != nil {
		log.Printf("Camera unavailable, detection not started: %v", err)
	}

	if tr != nil {
		tr.OnToggle(func(enabled bool) {
			a.SetEnabled(enabled)
			setEnabled(enabled)
		})
		tr.OnDashboard(func() {
			if err := openBrowser(dashboardURL(cfg.Addr)); err != nil {
				log.Printf("Failed to open dashboard: %v", err)
			}
		})
		tr.OnQuit(stop)

		go func() {
			<-ctx.Done()
			tr.Quit()
		}()
		tr.Run()
	} else {
		<-ctx.Done()
	}

	log.Println("Shutting down")
	if err := a.Close(); err != nil {
		log.Printf("Error closing engine: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// loadLabels seeds the label table on first run and returns it. A table
// whose size differs from the model's class count is reported but used.
func loadLabels(st *store.Store, classes int) (*gesture.Labels, error) {
	if _, err := st.Labels().SeedIfEmpty(gesture.DefaultLabels().Names()); err != nil {
		return nil, err
	}

	names, err := st.Labels().Names()
	if err != nil {
		return nil, err
	}
	if len(names) != classes {
		log.Printf("Label table has %d entries but the model has %d classes", len(names), classes)
	}
	return gesture.NewLabels(names), nil
}

// applySettings returns threshold, dwell and enabled with stored settings
// taking precedence over cfg. Invalid stored values are ignored.
func applySettings(st *store.Store, cfg config.Config) (float64, time.Duration, bool) {
	settings := st.Settings()

	threshold, err := settings.Float(store.SettingThreshold, cfg.Threshold)
	if err != nil || threshold <= 0 || threshold >= 1 {
		if err != nil {
			log.Printf("Ignoring stored threshold: %v", err)
		}
		threshold = cfg.Threshold
	}

	dwell, err := settings.Duration(store.SettingDwell, cfg.Dwell)
	if err != nil || dwell <= 0 {
		if err != nil {
			log.Printf("Ignoring stored dwell: %v", err)
		}
		dwell = cfg.Dwell
	}

	enabled, err := settings.Bool(store.SettingEnabled, cfg.Enabled)
	if err != nil {
		log.Printf("Ignoring stored enabled flag: %v", err)
		enabled = cfg.Enabled
	}

	return threshold, dwell, enabled
}

// findDir searches for a directory named name in common locations.
// It checks name, ../name, ../../name and ~/.gestify/name.
// Returns the first existing directory or empty string if none found.
func findDir(name string) string {
	relativePaths := []string{name, filepath.Join("..", name), filepath.Join("..", "..", name)}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeDirPath := filepath.Join(homeDir, ".gestify", name)
	if info, err := os.Stat(homeDirPath); err == nil && info.IsDir() {
		return homeDirPath
	}

	return ""
}

func dashboardURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return errors.New("unsupported platform")
	}
	return cmd.Start()
}
