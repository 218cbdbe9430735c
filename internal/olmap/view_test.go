package olmap

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestNewViewZoom(t *testing.T) {
	v := NewView(orb.Point{0, 0}, 2)
	assert.InDelta(t, 2, v.Zoom(), 1e-9)
	assert.InDelta(t, MaxResolution/4, v.Resolution(), 1e-6)
}

func TestFitContainsExtentWithPadding(t *testing.T) {
	v := NewView(orb.Point{0, 0}, 2)
	size := Size{Width: 800, Height: 600}
	extent := orb.Bound{Min: orb.Point{1000, 2000}, Max: orb.Point{5000, 4000}}

	v.Fit(extent, FitOptions{Size: size, Padding: [4]float64{20, 20, 20, 20}})

	// width is the limiting dimension: 4000 units over 760 px
	assert.InDelta(t, 4000.0/760, v.Resolution(), 1e-9)
	assert.Equal(t, orb.Point{3000, 3000}, v.Center())

	visible := v.CalculateExtent(size)
	assert.True(t, visible.Contains(extent.Min))
	assert.True(t, visible.Contains(extent.Max))
	assert.InDelta(t, 20, (extent.Min[0]-visible.Min[0])/v.Resolution(), 1e-6)
}

func TestFitConstrainResolution(t *testing.T) {
	v := NewView(orb.Point{0, 0}, 2)
	extent := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{4000, 4000}}
	v.Fit(extent, FitOptions{Size: Size{Width: 800, Height: 600}, ConstrainResolution: true})
	z := v.Zoom()
	assert.InDelta(t, math.Round(z), z, 1e-9)
}

func TestFitPointExtentClampsResolution(t *testing.T) {
	v := NewView(orb.Point{0, 0}, 2)
	p := orb.Point{10, 10}
	v.Fit(orb.Bound{Min: p, Max: p}, FitOptions{Size: DefaultSize})
	assert.Equal(t, MinResolution, v.Resolution())
	assert.Equal(t, p, v.Center())
}

func TestPixelRoundTrip(t *testing.T) {
	v := NewView(orb.Point{100, 100}, 10)
	c := orb.Point{250, -40}
	px := v.PixelFromCoordinate(c, DefaultSize)
	back := v.CoordinateFromPixel(px, DefaultSize)
	assert.InDelta(t, c[0], back[0], 1e-6)
	assert.InDelta(t, c[1], back[1], 1e-6)
}
