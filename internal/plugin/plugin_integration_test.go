package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPlugin_MediaControl_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pluginDir := findPluginDir("media-control")
	if pluginDir == "" {
		t.Skip("media-control plugin not found")
	}

	mgr := NewManager(filepath.Dir(pluginDir))
	if err := mgr.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	plug, err := mgr.Get("media-control")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	for _, action := range []string{"play", "pause", "skip", "rewind", "volume-up", "volume-down", "mute", "unmute"} {
		if !plug.Supports(action) {
			t.Errorf("media-control manifest missing action %q", action)
		}
	}

	if _, err := os.Stat(plug.Executable); err != nil {
		t.Skip("media-control executable not built")
	}

	// An unknown action has no side effects and must be rejected by the plugin.
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plug, &Request{Action: "invalid-action"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Success {
		t.Error("expected failure for invalid action")
	}
}

func findPluginDir(name string) string {
	candidates := []string{
		filepath.Join("../../plugins", name),
		filepath.Join("../../../plugins", name),
	}

	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, "plugin.json")); err == nil {
			return dir
		}
	}
	return ""
}
