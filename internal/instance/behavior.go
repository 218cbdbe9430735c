package instance

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Behavior enriches an instance with interactive features. Attach may
// block while it loads resources; there is no detach.
type Behavior interface {
	Attach(ctx context.Context, inst *Instance, opts BehaviorOptions) error
}

// BehaviorFunc adapts a function to Behavior.
type BehaviorFunc func(ctx context.Context, inst *Instance, opts BehaviorOptions) error

// Attach calls f.
func (f BehaviorFunc) Attach(ctx context.Context, inst *Instance, opts BehaviorOptions) error {
	return f(ctx, inst, opts)
}

// BehaviorName names a built-in behavior.
type BehaviorName string

const (
	BehaviorEdit          BehaviorName = "edit"
	BehaviorMeasure       BehaviorName = "measure"
	BehaviorRememberLayer BehaviorName = "rememberLayer"
)

// BehaviorNames lists the built-in behaviors.
var BehaviorNames = []BehaviorName{BehaviorEdit, BehaviorMeasure, BehaviorRememberLayer}

// Known reports whether n is a built-in behavior name.
func (n BehaviorName) Known() bool {
	for _, known := range BehaviorNames {
		if n == known {
			return true
		}
	}
	return false
}

// Builtins maps built-in names to their implementations.
type Builtins map[BehaviorName]Behavior

// BehaviorOptions carries caller options to a behavior.
type BehaviorOptions map[string]any

// String returns a string option, or def if absent.
func (o BehaviorOptions) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Bool returns a bool option, or def if absent.
func (o BehaviorOptions) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// EditHandle is exposed by an instance once editing is attached.
type EditHandle interface {
	// Add draws a geometry given in map coordinates.
	Add(g orb.Geometry) *geojson.Feature
	Features() []*geojson.Feature
	// WKT returns all drawn features as EPSG:4326 WKT.
	WKT() string
	Clear()
}

// AddBehavior attaches the built-in behavior called name.
func (i *Instance) AddBehavior(ctx context.Context, name string, opts BehaviorOptions) error {
	n := BehaviorName(name)
	if !n.Known() {
		return &UnknownBehaviorError{Name: name}
	}
	b, ok := i.cfg.Builtins[n]
	if !ok {
		return &UnknownBehaviorError{Name: name}
	}
	return i.AttachBehavior(ctx, b, opts)
}

// AttachBehavior invokes b.Attach with this instance.
func (i *Instance) AttachBehavior(ctx context.Context, b Behavior, opts BehaviorOptions) error {
	if opts == nil {
		opts = BehaviorOptions{}
	}
	if err := b.Attach(ctx, i, opts); err != nil {
		return err
	}
	i.log.Debug("behavior attached", "behavior", behaviorLabel(b))
	return nil
}

func behaviorLabel(b Behavior) string {
	if named, ok := b.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "custom"
}

// SetEdit exposes h as the instance's edit handle.
func (i *Instance) SetEdit(h EditHandle) {
	i.mu.Lock()
	i.edit = h
	i.mu.Unlock()
}

// InitEdit installs the handle returned by build unless the instance
// already has one, and returns the installed handle. Concurrent callers
// wait for each other, so build runs at most once per instance.
func (i *Instance) InitEdit(build func() EditHandle) EditHandle {
	i.editInit.Lock()
	defer i.editInit.Unlock()
	if h := i.Edit(); h != nil {
		return h
	}
	h := build()
	i.SetEdit(h)
	return h
}

// Edit returns the edit handle, or nil before editing is attached.
func (i *Instance) Edit() EditHandle {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.edit
}
