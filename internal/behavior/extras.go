package behavior

import (
	"context"

	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/templates"
)

// Extras are behaviors attached by name that are not built-ins.
type Extras map[string]instance.Behavior

// DefaultExtras returns the extra behaviors shipped with plat-map.
func DefaultExtras(r *templates.Renderer) Extras {
	return Extras{
		LayerSwitcherInSidePanel{}.Name(): LayerSwitcherInSidePanel{Renderer: r},
	}
}

// Attach attaches the built-in or extra behavior called name.
func (x Extras) Attach(ctx context.Context, inst *instance.Instance, name string, opts instance.BehaviorOptions) error {
	if instance.BehaviorName(name).Known() {
		return inst.AddBehavior(ctx, name, opts)
	}
	if b, ok := x[name]; ok {
		return inst.AttachBehavior(ctx, b, opts)
	}
	return &instance.UnknownBehaviorError{Name: name}
}

// Has reports whether name is a built-in or extra behavior.
func (x Extras) Has(name string) bool {
	_, ok := x[name]
	return ok || instance.BehaviorName(name).Known()
}

// Names lists built-in names followed by extra names.
func (x Extras) Names() []string {
	var names []string
	for _, n := range instance.BehaviorNames {
		names = append(names, string(n))
	}
	for n := range x {
		names = append(names, n)
	}
	return names
}
