package action

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayusman/gestify/internal/plugin"
)

// DefaultPluginName is the media plugin looked up by PluginSink.
const DefaultPluginName = "media-control"

// Route selects the plugin that runs a binding and the config sent with it.
type Route struct {
	Plugin string
	Config json.RawMessage
}

// PluginSink delivers actions by running plugins. Each action goes to the
// plugin named by its route, then the default plugin, then the first plugin
// that supports the action.
type PluginSink struct {
	manager  *plugin.Manager
	executor *plugin.Executor
	name     string
}

// NewPluginSink creates a PluginSink that runs the plugin called name.
func NewPluginSink(manager *plugin.Manager, executor *plugin.Executor, name string) *PluginSink {
	if name == "" {
		name = DefaultPluginName
	}
	return &PluginSink{manager: manager, executor: executor, name: name}
}

// Connected reports whether any plugin has been discovered.
func (s *PluginSink) Connected() bool {
	return len(s.manager.List()) > 0
}

func (s *PluginSink) Play(ctx context.Context) error       { return s.run(ctx, Play, nil) }
func (s *PluginSink) Pause(ctx context.Context) error      { return s.run(ctx, Pause, nil) }
func (s *PluginSink) Skip(ctx context.Context) error       { return s.run(ctx, Skip, nil) }
func (s *PluginSink) VolumeUp(ctx context.Context) error   { return s.run(ctx, VolumeUp, nil) }
func (s *PluginSink) VolumeDown(ctx context.Context) error { return s.run(ctx, VolumeDown, nil) }
func (s *PluginSink) Mute(ctx context.Context) error       { return s.run(ctx, Mute, nil) }

func (s *PluginSink) Seek(ctx context.Context, offset time.Duration) error {
	return s.run(ctx, Rewind, map[string]any{"offset_ms": offset.Milliseconds()})
}

func (s *PluginSink) Unmute(ctx context.Context, volumePercent int) error {
	return s.run(ctx, Unmute, map[string]any{"volume": volumePercent})
}

func (s *PluginSink) run(ctx context.Context, a Action, params map[string]any) error {
	route, _ := RouteFromContext(ctx)
	p, err := s.resolve(route.Plugin, a)
	if err != nil {
		return err
	}

	req := &plugin.Request{
		Action:  string(a),
		Gesture: GestureFromContext(ctx),
		Config:  route.Config,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("failed to marshal params: %w", err)
		}
		req.Params = raw
	}

	resp, err := s.executor.Execute(ctx, p, req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("plugin %s: %s", p.Manifest.Name, resp.Error)
	}
	return nil
}

// resolve picks the plugin for a: name (or the default plugin when empty)
// if it supports a, otherwise the first plugin that does.
func (s *PluginSink) resolve(name string, a Action) (*plugin.Plugin, error) {
	if name == "" {
		name = s.name
	}
	if p, err := s.manager.Get(name); err == nil && p.Supports(string(a)) {
		return p, nil
	}

	p, err := s.manager.ForAction(string(a))
	if err != nil {
		return nil, fmt.Errorf("no plugin for %s: %w", a, ErrNotConnected)
	}
	return p, nil
}

type gestureKey struct{}

// WithGesture attaches the fired gesture label to ctx for plugins.
func WithGesture(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, gestureKey{}, label)
}

type routeKey struct{}

// WithRoute attaches a binding route to ctx.
func WithRoute(ctx context.Context, r Route) context.Context {
	return context.WithValue(ctx, routeKey{}, r)
}

// RouteFromContext returns the route set by WithRoute.
func RouteFromContext(ctx context.Context) (Route, bool) {
	r, ok := ctx.Value(routeKey{}).(Route)
	return r, ok
}

// GestureFromContext returns the label set by WithGesture.
func GestureFromContext(ctx context.Context) string {
	label, _ := ctx.Value(gestureKey{}).(string)
	return label
}
