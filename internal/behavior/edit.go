package behavior

import (
	"context"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"

	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/style"
)

// DrawingLayerTitle is the title of the layer holding drawn features.
const DrawingLayerTitle = "Drawing"

// Edit adds drawing and editing tools and exposes the instance edit handle.
type Edit struct{}

// Name returns "edit".
func (Edit) Name() string { return string(instance.BehaviorEdit) }

// Attach is a no-op when the instance already has an edit handle.
// Option "color" styles the drawing layer.
func (Edit) Attach(_ context.Context, inst *instance.Instance, opts instance.BehaviorOptions) error {
	inst.InitEdit(func() instance.EditHandle {
		m := inst.Map()
		source := olmap.NewVectorSource(olmap.VectorSourceOptions{})
		drawing := olmap.NewVectorLayer(olmap.VectorLayerOptions{
			Title:   DrawingLayerTitle,
			Source:  source,
			Style:   style.ForColor(opts.String("color", "orange")),
			Visible: true,
		})
		m.AddLayer(drawing)

		ctl := &EditControl{}
		for _, name := range []string{"draw", "modify", "select", "translate", "snap"} {
			i := olmap.NewInteraction(name)
			i.SetActive(name == "select")
			ctl.interactions = append(ctl.interactions, i)
			m.AddInteraction(i)
		}
		m.AddControl(ctl)

		return &Editor{m: m, layer: drawing, source: source, control: ctl}
	})
	return nil
}

// EditControl is the toolbar control added by Edit.
type EditControl struct {
	interactions []*olmap.BasicInteraction
}

// Name returns "edit".
func (c *EditControl) Name() string { return "edit" }

// Interaction returns the interaction called name.
func (c *EditControl) Interaction(name string) (*olmap.BasicInteraction, bool) {
	for _, i := range c.interactions {
		if i.Name() == name {
			return i, true
		}
	}
	return nil, false
}

// Editor is the edit handle. Drawn features live in the drawing layer.
type Editor struct {
	mu      sync.Mutex
	m       *olmap.Map
	layer   *olmap.VectorLayer
	source  *olmap.VectorSource
	control *EditControl
}

// Layer returns the drawing layer.
func (e *Editor) Layer() *olmap.VectorLayer { return e.layer }

// Control returns the edit toolbar control.
func (e *Editor) Control() *EditControl { return e.control }

// Add draws g (map coordinates) and announces the change.
func (e *Editor) Add(g orb.Geometry) *geojson.Feature {
	f := geojson.NewFeature(g)
	e.mu.Lock()
	e.source.AddFeatures(f)
	e.mu.Unlock()
	e.changed()
	return f
}

// Features returns the drawn features.
func (e *Editor) Features() []*geojson.Feature {
	return e.source.Features()
}

// WKT returns the drawn features as EPSG:4326 WKT: one geometry as-is,
// several wrapped in a GEOMETRYCOLLECTION, none as "".
func (e *Editor) WKT() string {
	features := e.Features()
	switch len(features) {
	case 0:
		return ""
	case 1:
		return wkt.MarshalString(toWGS84(features[0].Geometry))
	}
	parts := make([]string, 0, len(features))
	for _, f := range features {
		parts = append(parts, wkt.MarshalString(toWGS84(f.Geometry)))
	}
	return "GEOMETRYCOLLECTION(" + strings.Join(parts, ",") + ")"
}

// Clear removes every drawn feature.
func (e *Editor) Clear() {
	e.mu.Lock()
	e.source.Clear()
	e.mu.Unlock()
	e.changed()
}

func (e *Editor) changed() {
	e.m.Emit(olmap.Event{
		Type:  olmap.EventFeatureChange,
		Layer: e.layer,
		Data: map[string]any{
			"wkt":   e.WKT(),
			"count": len(e.Features()),
		},
	})
}

func toWGS84(g orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(g), project.Mercator.ToWGS84)
}

// OnChange calls fn with the WKT of all drawn features after each change.
func (e *Editor) OnChange(fn func(wkt string)) func() {
	return e.m.On(olmap.EventFeatureChange, func(ev olmap.Event) {
		if ev.Layer != olmap.Layer(e.layer) {
			return
		}
		s, _ := ev.Data["wkt"].(string)
		fn(s)
	})
}
