package api

import (
	"github.com/paulmach/orb/project"

	"github.com/joeblew999/plat-map/internal/humastar"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/olmap"
)

// LayerBody describes one layer of a map.
type LayerBody struct {
	Title    string `json:"title" doc:"Layer title" example:"Fields"`
	Kind     string `json:"kind" enum:"vector,tile,group" doc:"Layer kind"`
	Role     string `json:"role,omitempty" enum:"base,normal" doc:"Tile layer role"`
	Visible  bool   `json:"visible" doc:"Whether the layer is shown"`
	Depth    int    `json:"depth" doc:"Nesting depth, 0 for top-level layers"`
	State    string `json:"state,omitempty" doc:"Vector source state" enum:"undefined,loading,ready,error"`
	URL      string `json:"url,omitempty" doc:"Source URL"`
	Features int    `json:"features,omitempty" doc:"Number of loaded features"`
	Error    string `json:"error,omitempty" doc:"Source error"`
}

// ViewBody is the view state of a map.
type ViewBody struct {
	Center     []float64 `json:"center" doc:"Center in map coordinates (EPSG:3857)"`
	LonLat     []float64 `json:"lonLat" doc:"Center in EPSG:4326"`
	Zoom       float64   `json:"zoom" doc:"Fractional zoom level"`
	Resolution float64   `json:"resolution" doc:"Map units per pixel"`
}

// OverlayBody describes a popup overlay.
type OverlayBody struct {
	ID         string    `json:"id" doc:"Overlay ID"`
	Visible    bool      `json:"visible" doc:"Whether the overlay is shown"`
	Coordinate []float64 `json:"coordinate,omitempty" doc:"Anchor in map coordinates"`
	Content    string    `json:"content,omitempty" doc:"Overlay HTML"`
}

// MapSummary is one row of the map list.
type MapSummary struct {
	Target  string `json:"target" doc:"Map target"`
	Layers  int    `json:"layers" doc:"Number of top-level layers"`
	Drawing bool   `json:"drawing" doc:"Whether drawing is enabled"`
}

// MapBody is the full state of a map instance.
type MapBody struct {
	Target       string        `json:"target" doc:"Map target"`
	Drawing      bool          `json:"drawing" doc:"Whether drawing is enabled"`
	Layers       []LayerBody   `json:"layers" doc:"Layer tree, depth-first"`
	View         ViewBody      `json:"view" doc:"View state"`
	Controls     []string      `json:"controls" doc:"Control names"`
	Interactions []string      `json:"interactions" doc:"Interaction names"`
	Overlays     []OverlayBody `json:"overlays" doc:"Popup overlays"`
}

var mapActions = []humastar.ActionDef{
	{Rel: "layers", Pattern: "/api/v1/maps/%s/layers", Method: "POST", Title: "Add layer"},
	{Rel: "behaviors", Pattern: "/api/v1/maps/%s/behaviors", Method: "POST", Title: "Attach behavior"},
	{Rel: "zoom", Pattern: "/api/v1/maps/%s/zoom", Method: "POST", Title: "Zoom to vectors"},
	{Rel: "popup", Pattern: "/api/v1/maps/%s/popup", Method: "POST", Title: "Add feature popup"},
	{Rel: "events", Pattern: "/api/v1/maps/%s/events", Method: "GET", Title: "Event stream"},
}

var drawingActions = []humastar.ActionDef{
	{Rel: "features", Pattern: "/api/v1/maps/%s/features", Method: "POST", Title: "Draw geometry"},
}

// Actions implements humastar.Actor.
func (b MapBody) Actions() []humastar.Action {
	actions := humastar.ActionsFor(b.Target, mapActions)
	if b.Drawing {
		actions = append(actions, humastar.ActionsFor(b.Target, drawingActions)...)
	}
	return actions
}

func layerBody(l olmap.Layer, depth int) LayerBody {
	b := LayerBody{Title: l.Title(), Visible: l.Visible(), Depth: depth}
	switch l := l.(type) {
	case *olmap.VectorLayer:
		b.Kind = "vector"
		if src := l.VectorSource(); src != nil {
			b.State = string(src.State())
			b.URL = src.URL()
			b.Features = len(src.Features())
			if err := src.Err(); err != nil {
				b.Error = err.Error()
			}
		}
	case *olmap.TileLayer:
		b.Kind = "tile"
		b.Role = l.Role()
		b.URL = l.TileSource().URL()
	case olmap.Container:
		b.Kind = "group"
	}
	return b
}

func layerBodies(c *olmap.Collection) []LayerBody {
	out := []LayerBody{}
	olmap.Walk(c, func(l olmap.Layer, depth int) {
		out = append(out, layerBody(l, depth))
	})
	return out
}

func viewBody(m *olmap.Map) ViewBody {
	v := m.View()
	c := v.Center()
	ll := project.Mercator.ToWGS84(c)
	return ViewBody{
		Center:     []float64{c[0], c[1]},
		LonLat:     []float64{ll[0], ll[1]},
		Zoom:       v.Zoom(),
		Resolution: v.Resolution(),
	}
}

func overlayBody(o *olmap.Overlay) OverlayBody {
	b := OverlayBody{ID: o.ID(), Content: o.Content()}
	if p, ok := o.Position(); ok {
		b.Visible = true
		b.Coordinate = []float64{p[0], p[1]}
	}
	return b
}

func mapBody(inst *instance.Instance) MapBody {
	m := inst.Map()
	b := MapBody{
		Target:       inst.Target(),
		Drawing:      inst.Edit() != nil,
		Layers:       layerBodies(m.Layers()),
		View:         viewBody(m),
		Controls:     []string{},
		Interactions: []string{},
		Overlays:     []OverlayBody{},
	}
	for _, c := range m.Controls() {
		b.Controls = append(b.Controls, c.Name())
	}
	for _, i := range m.Interactions() {
		b.Interactions = append(b.Interactions, i.Name())
	}
	for _, o := range m.Overlays() {
		b.Overlays = append(b.Overlays, overlayBody(o))
	}
	return b
}
