package action

import (
	"context"
	"fmt"
	"sync"
)

// Dispatcher looks up the action bound to a gesture label and sends it to a Sink.
type Dispatcher struct {
	mu       sync.RWMutex
	sink     Sink
	bindings map[string]Action
	routes   map[string]Route
}

// NewDispatcher creates a Dispatcher. A nil bindings map uses DefaultBindings.
func NewDispatcher(sink Sink, bindings map[string]Action) *Dispatcher {
	if bindings == nil {
		bindings = DefaultBindings()
	}
	d := &Dispatcher{sink: sink}
	d.SetBindings(bindings)
	return d
}

// SetBindings replaces the label to action table.
func (d *Dispatcher) SetBindings(bindings map[string]Action) {
	cp := make(map[string]Action, len(bindings))
	for k, v := range bindings {
		cp[k] = v
	}

	d.mu.Lock()
	d.bindings = cp
	d.mu.Unlock()
}

// SetRoutes replaces the per-label plugin routes. Labels without a route
// use the sink's default plugin.
func (d *Dispatcher) SetRoutes(routes map[string]Route) {
	cp := copyRoutes(routes)

	d.mu.Lock()
	d.routes = cp
	d.mu.Unlock()
}

// Replace swaps the binding table and the routes together.
func (d *Dispatcher) Replace(bindings map[string]Action, routes map[string]Route) {
	cp := make(map[string]Action, len(bindings))
	for k, v := range bindings {
		cp[k] = v
	}
	rcp := copyRoutes(routes)

	d.mu.Lock()
	d.bindings = cp
	d.routes = rcp
	d.mu.Unlock()
}

func copyRoutes(routes map[string]Route) map[string]Route {
	cp := make(map[string]Route, len(routes))
	for k, v := range routes {
		cp[k] = v
	}
	return cp
}

// RouteFor returns the plugin route of label.
func (d *Dispatcher) RouteFor(label string) (Route, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.routes[label]
	return r, ok
}

// Bindings returns a copy of the label to action table.
func (d *Dispatcher) Bindings() map[string]Action {
	d.mu.RLock()
	defer d.mu.RUnlock()

	cp := make(map[string]Action, len(d.bindings))
	for k, v := range d.bindings {
		cp[k] = v
	}
	return cp
}

// ActionFor returns the action bound to label.
func (d *Dispatcher) ActionFor(label string) (Action, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.bindings[label]
	return a, ok
}

// Dispatch sends the action bound to label. A label without a binding
// returns an empty action and no error. When the sink is disconnected the
// action is skipped and ErrNotConnected returned. The label's route, if any,
// travels in ctx.
func (d *Dispatcher) Dispatch(ctx context.Context, label string) (Action, error) {
	a, ok := d.ActionFor(label)
	if !ok {
		return "", nil
	}
	if r, ok := d.RouteFor(label); ok {
		ctx = WithRoute(ctx, r)
	}
	if !a.Valid() {
		return a, fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	if !d.sink.Connected() {
		return a, ErrNotConnected
	}

	if err := invoke(ctx, d.sink, a); err != nil {
		return a, fmt.Errorf("dispatch %s: %w", a, err)
	}
	return a, nil
}
