package behavior

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/olmap"
)

// Units selects the measurement system.
type Units string

const (
	Metric Units = "metric"
	US     Units = "us"
)

// Measure reports the length or area of drawn geometries.
type Measure struct{}

// Name returns "measure".
func (Measure) Name() string { return string(instance.BehaviorMeasure) }

// Attach adds the measure control and measures the newest drawn feature
// on every feature change. Option "units" is "metric" (default) or "us".
func (Measure) Attach(_ context.Context, inst *instance.Instance, opts instance.BehaviorOptions) error {
	units := Units(opts.String("units", string(Metric)))
	if units != US {
		units = Metric
	}
	m := inst.Map()
	ctl := &MeasureControl{units: units}
	m.AddControl(ctl)

	inst.On(olmap.EventFeatureChange, func(olmap.Event) {
		edit := inst.Edit()
		if edit == nil {
			return
		}
		features := edit.Features()
		if len(features) == 0 {
			return
		}
		kind, value, ok := Measurement(features[len(features)-1].Geometry, units)
		if !ok {
			return
		}
		ctl.setLast(value)
		m.Emit(olmap.Event{
			Type: olmap.EventMeasure,
			Data: map[string]any{"kind": kind, "measurement": value},
		})
	})
	return nil
}

// MeasureControl shows the latest measurement.
type MeasureControl struct {
	units Units

	mu   sync.RWMutex
	last string
}

// Name returns "measure".
func (c *MeasureControl) Name() string { return "measure" }

// Units returns the configured units.
func (c *MeasureControl) Units() Units { return c.units }

// Last returns the latest formatted measurement.
func (c *MeasureControl) Last() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

func (c *MeasureControl) setLast(v string) {
	c.mu.Lock()
	c.last = v
	c.mu.Unlock()
}

// Measurement measures g (map coordinates) on the sphere. Lines yield a
// length, polygons an area; points are not measurable.
func Measurement(g orb.Geometry, units Units) (kind, value string, ok bool) {
	wgs := toWGS84(g)
	switch wgs.(type) {
	case orb.LineString, orb.MultiLineString:
		return "length", FormatLength(geo.Length(wgs), units), true
	case orb.Polygon, orb.MultiPolygon:
		return "area", FormatArea(math.Abs(geo.Area(wgs)), units), true
	}
	return "", "", false
}

// FormatLength formats meters.
func FormatLength(m float64, units Units) string {
	if units == US {
		ft := m * 3.28084
		if ft > 5280 {
			return fmt.Sprintf("%.2f mi", ft/5280)
		}
		return fmt.Sprintf("%.2f ft", ft)
	}
	if m > 1000 {
		return fmt.Sprintf("%.2f km", m/1000)
	}
	return fmt.Sprintf("%.2f m", m)
}

// FormatArea formats square meters.
func FormatArea(m2 float64, units Units) string {
	if units == US {
		ac := m2 * 0.000247105
		if ac > 0.25 {
			return fmt.Sprintf("%.2f ac", ac)
		}
		return fmt.Sprintf("%.2f sq ft", m2*10.7639)
	}
	if m2 > 10000 {
		return fmt.Sprintf("%.2f ha", m2/10000)
	}
	return fmt.Sprintf("%.2f sq m", m2)
}
