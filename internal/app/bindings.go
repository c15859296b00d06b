package app

import (
	"fmt"

	"github.com/ayusman/gestify/internal/action"
	"github.com/ayusman/gestify/internal/store"
)

// BindingSource lists the bindings that should be active.
type BindingSource interface {
	Enabled() ([]*store.Binding, error)
}

// ReloadBindings replaces the dispatcher's actions and plugin routes with the
// enabled bindings of src. On error the dispatcher keeps its current table.
// It returns the number of bindings loaded.
func ReloadBindings(src BindingSource, d *action.Dispatcher) (int, error) {
	bindings, err := src.Enabled()
	if err != nil {
		return 0, fmt.Errorf("failed to load bindings: %w", err)
	}

	actions := make(map[string]action.Action, len(bindings))
	routes := make(map[string]action.Route, len(bindings))
	for _, b := range bindings {
		a, err := action.Parse(b.Action)
		if err != nil {
			return 0, fmt.Errorf("binding %s: %w", b.Label, err)
		}
		actions[b.Label] = a
		if b.PluginName != "" || len(b.Config) > 0 {
			routes[b.Label] = action.Route{Plugin: b.PluginName, Config: b.Config}
		}
	}

	d.Replace(actions, routes)
	return len(actions), nil
}
