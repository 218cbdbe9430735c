package behavior

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/templates"
)

// HitTolerance is the click tolerance in pixels for points and lines.
const HitTolerance = 6

// FeatureInfo returns popup content listing the visible vector features
// under a click. Polygons hit when they contain the click; points and
// lines when they pass within HitTolerance pixels.
func FeatureInfo(inst *instance.Instance, r *templates.Renderer) instance.ContentFunc {
	if r == nil {
		r = templates.Default()
	}
	return func(e olmap.Event) string {
		m := inst.Map()
		tolerance := HitTolerance * m.View().Resolution()

		var hits []templates.FeatureInfo
		olmap.Walk(m.Layers(), func(l olmap.Layer, _ int) {
			vl, ok := l.(*olmap.VectorLayer)
			if !ok || !visibleInTree(m.Layers(), vl) || vl.VectorSource() == nil {
				return
			}
			for _, f := range vl.VectorSource().Features() {
				if Hit(f.Geometry, e.Coordinate, tolerance) {
					hits = append(hits, describe(vl.Title(), f))
				}
			}
		})

		html, err := r.FeaturePopup(hits)
		if err != nil {
			inst.Logger().Warn("rendering feature popup", "err", err)
			return ""
		}
		return html
	}
}

// Hit reports whether g lies under p within tolerance map units.
func Hit(g orb.Geometry, p orb.Point, tolerance float64) bool {
	switch g := g.(type) {
	case nil:
		return false
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Collection:
		for _, part := range g {
			if Hit(part, p, tolerance) {
				return true
			}
		}
		return false
	}
	return planar.DistanceFrom(g, p) <= tolerance
}

// visibleInTree reports whether l and every group above it are visible.
func visibleInTree(c *olmap.Collection, l olmap.Layer) bool {
	for _, item := range c.Array() {
		if item == l {
			return item.Visible()
		}
		if g, ok := item.(olmap.Container); ok && item.Visible() {
			if visibleInTree(g.Layers(), l) {
				return true
			}
		}
	}
	return false
}

func describe(layer string, f *geojson.Feature) templates.FeatureInfo {
	info := templates.FeatureInfo{Layer: layer, Properties: map[string]any{}}
	for k, v := range f.Properties {
		if k == "name" {
			info.Name = fmt.Sprint(v)
			continue
		}
		info.Properties[k] = v
	}
	return info
}
