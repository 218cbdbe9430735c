package olmap

import (
	"math"
	"sync"

	"github.com/paulmach/orb"
)

// Resolution limits for EPSG:3857 with 256px tiles.
const (
	MaxResolution = 156543.03392804097
	MinResolution = MaxResolution / (1 << 28)
)

// Size is the viewport size in pixels.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Pixel is a viewport position, origin top-left.
type Pixel [2]float64

// FitOptions controls View.Fit.
type FitOptions struct {
	Size Size
	// Padding is top, right, bottom, left in pixels.
	Padding             [4]float64
	ConstrainResolution bool
}

// View holds the center and resolution of a map.
type View struct {
	mu         sync.RWMutex
	center     orb.Point
	resolution float64
}

// NewView creates a view centered on center at zoom.
func NewView(center orb.Point, zoom float64) *View {
	return &View{center: center, resolution: resolutionForZoom(zoom)}
}

// Center returns the view center in map coordinates.
func (v *View) Center() orb.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.center
}

// Resolution returns map units per pixel.
func (v *View) Resolution() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.resolution
}

// Zoom returns the fractional zoom level.
func (v *View) Zoom() float64 {
	return zoomForResolution(v.Resolution())
}

// SetCenter moves the view.
func (v *View) SetCenter(c orb.Point) {
	v.mu.Lock()
	v.center = c
	v.mu.Unlock()
}

// SetZoom changes the resolution to match zoom.
func (v *View) SetZoom(zoom float64) {
	v.mu.Lock()
	v.resolution = resolutionForZoom(zoom)
	v.mu.Unlock()
}

// Fit centers the view on extent and picks the resolution at which the
// extent fills the padded viewport.
func (v *View) Fit(extent orb.Bound, opts FitOptions) {
	w := opts.Size.Width - opts.Padding[1] - opts.Padding[3]
	h := opts.Size.Height - opts.Padding[0] - opts.Padding[2]
	if w <= 0 || h <= 0 {
		return
	}

	res := math.Max(
		(extent.Max[0]-extent.Min[0])/w,
		(extent.Max[1]-extent.Min[1])/h,
	)
	if opts.ConstrainResolution {
		res = resolutionForZoom(math.Floor(zoomForResolution(res)))
	}
	res = clampResolution(res)

	center := extent.Center()
	center[0] += (opts.Padding[1] - opts.Padding[3]) / 2 * res
	center[1] += (opts.Padding[0] - opts.Padding[2]) / 2 * res

	v.mu.Lock()
	v.center = center
	v.resolution = res
	v.mu.Unlock()
}

// CalculateExtent returns the map extent visible in a viewport of size.
func (v *View) CalculateExtent(size Size) orb.Bound {
	v.mu.RLock()
	defer v.mu.RUnlock()
	hw := size.Width / 2 * v.resolution
	hh := size.Height / 2 * v.resolution
	return orb.Bound{
		Min: orb.Point{v.center[0] - hw, v.center[1] - hh},
		Max: orb.Point{v.center[0] + hw, v.center[1] + hh},
	}
}

// PixelFromCoordinate converts a map coordinate to a viewport pixel.
func (v *View) PixelFromCoordinate(c orb.Point, size Size) Pixel {
	ext := v.CalculateExtent(size)
	res := v.Resolution()
	return Pixel{(c[0] - ext.Min[0]) / res, (ext.Max[1] - c[1]) / res}
}

// CoordinateFromPixel converts a viewport pixel to a map coordinate.
func (v *View) CoordinateFromPixel(p Pixel, size Size) orb.Point {
	ext := v.CalculateExtent(size)
	res := v.Resolution()
	return orb.Point{ext.Min[0] + p[0]*res, ext.Max[1] - p[1]*res}
}

func resolutionForZoom(zoom float64) float64 {
	return clampResolution(MaxResolution / math.Pow(2, zoom))
}

func zoomForResolution(res float64) float64 {
	return math.Log2(MaxResolution / res)
}

func clampResolution(res float64) float64 {
	if res < MinResolution || math.IsNaN(res) {
		return MinResolution
	}
	if res > MaxResolution {
		return MaxResolution
	}
	return res
}
