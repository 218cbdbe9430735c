// Package behavior holds the behaviors that can be attached to a map
// instance: the edit, measure and rememberLayer built-ins, plus extras
// such as LayerSwitcherInSidePanel.
package behavior

import (
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/store"
)

// Builtins returns the built-in behaviors. rememberLayer persists to s.
func Builtins(s store.LayerStore) instance.Builtins {
	return instance.Builtins{
		instance.BehaviorEdit:          Edit{},
		instance.BehaviorMeasure:       Measure{},
		instance.BehaviorRememberLayer: RememberLayer{Store: s},
	}
}
