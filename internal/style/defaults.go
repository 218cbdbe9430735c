package style

import "github.com/joeblew999/plat-map/internal/olmap"

// ControlOptions toggles default controls by name. Missing names are enabled.
type ControlOptions map[string]bool

// InteractionOptions toggles default interactions by name. Missing names are enabled.
type InteractionOptions map[string]bool

// Default control and interaction names, in the order they are created.
var (
	ControlNames = []string{
		"attribution", "zoom", "rotate", "scaleLine", "fullScreen",
		"layerSwitcher", "geolocate", "sidePanel",
	}
	InteractionNames = []string{
		"dragRotate", "doubleClickZoom", "dragPan", "pinchRotate",
		"pinchZoom", "keyboardPan", "keyboardZoom", "mouseWheelZoom", "dragZoom",
	}
)

func enabled(opts map[string]bool, name string) bool {
	on, ok := opts[name]
	return !ok || on
}

// Controls builds the default controls.
func Controls(opts ControlOptions) []olmap.Control {
	var out []olmap.Control
	for _, name := range ControlNames {
		if !enabled(opts, name) {
			continue
		}
		switch name {
		case "layerSwitcher":
			out = append(out, &olmap.LayerSwitcher{Reverse: true})
		case "sidePanel":
			out = append(out, &olmap.SidePanelControl{})
		default:
			out = append(out, olmap.NewControl(name))
		}
	}
	return out
}

// Interactions builds the default interactions.
func Interactions(opts InteractionOptions) []olmap.Interaction {
	var out []olmap.Interaction
	for _, name := range InteractionNames {
		if enabled(opts, name) {
			out = append(out, olmap.NewInteraction(name))
		}
	}
	return out
}

// OSMURL is the tile template of the default base layer.
const OSMURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// Layers builds the default layers: one OpenStreetMap base layer.
func Layers() []olmap.Layer {
	return []olmap.Layer{
		olmap.NewTileLayer(olmap.TileLayerOptions{
			Title:   "OpenStreetMap",
			Source:  olmap.NewXYZ(OSMURL),
			Visible: true,
			Role:    olmap.RoleBase,
		}),
	}
}
