package instance

import (
	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-map/internal/olmap"
)

// fitPadding is the padding in pixels kept around fitted extents.
var fitPadding = [4]float64{20, 20, 20, 20}

// ZoomToVectors fits the view to every ready, non-empty vector source in
// layers, descending into groups. A nil collection means the top-level layers.
func (i *Instance) ZoomToVectors(layers *olmap.Collection) {
	var (
		extent orb.Bound
		found  bool
	)
	i.zoomToVectors(layers, &extent, &found)
}

func (i *Instance) zoomToVectors(layers *olmap.Collection, extent *orb.Bound, found *bool) {
	if layers == nil {
		layers = i.m.Layers()
	}
	layers.ForEach(func(l olmap.Layer) {
		if c, ok := l.(olmap.Container); ok {
			i.zoomToVectors(c.Layers(), extent, found)
			return
		}
		b, ok := readyExtent(l)
		if !ok {
			return
		}
		if *found {
			*extent = extent.Union(b)
		} else {
			*extent = b
			*found = true
		}
		i.fit(*extent)
	})
}

// ZoomToLayer fits the view to one layer's source when it is ready and
// holds features.
func (i *Instance) ZoomToLayer(l olmap.Layer) {
	if b, ok := readyExtent(l); ok {
		i.fit(b)
	}
}

func readyExtent(l olmap.Layer) (orb.Bound, bool) {
	vl, ok := l.(*olmap.VectorLayer)
	if !ok || vl.VectorSource() == nil {
		return orb.Bound{}, false
	}
	src := vl.VectorSource()
	if src.State() != olmap.StateReady {
		return orb.Bound{}, false
	}
	return src.Extent()
}

func (i *Instance) fit(extent orb.Bound) {
	view := i.m.View()
	view.Fit(extent, olmap.FitOptions{
		Size:                i.m.Size(),
		Padding:             fitPadding,
		ConstrainResolution: false,
	})
	i.m.Emit(olmap.Event{
		Type: olmap.EventViewChange,
		Data: map[string]any{
			"center": []float64{view.Center()[0], view.Center()[1]},
			"zoom":   view.Zoom(),
		},
	})
}
