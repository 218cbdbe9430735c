// Package style provides default vector styles and the default controls,
// interactions and layers of a new map.
package style

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultColor is used when a layer does not name a color.
const DefaultColor = "yellow"

// palette maps named colors to RGB components.
var palette = map[string][3]int{
	"blue":      {51, 153, 255},
	"darkgreen": {51, 153, 51},
	"green":     {102, 204, 0},
	"grey":      {204, 204, 204},
	"orange":    {255, 153, 51},
	"purple":    {204, 51, 102},
	"red":       {204, 0, 0},
	"yellow":    {255, 255, 51},
}

// Vector is the appearance of a vector layer.
type Vector struct {
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Fill        string  `json:"fill"`
	PointRadius float64 `json:"pointRadius"`
}

// ForColor returns the style for a named palette color or a #rrggbb (or
// #rgb) value.
// Unknown or empty colors fall back to DefaultColor.
func ForColor(color string) Vector {
	rgb, ok := parseColor(color)
	if !ok {
		rgb = palette[DefaultColor]
	}
	return Vector{
		Stroke:      fmt.Sprintf("rgba(%d,%d,%d,1)", rgb[0], rgb[1], rgb[2]),
		StrokeWidth: 2,
		Fill:        fmt.Sprintf("rgba(%d,%d,%d,0.2)", rgb[0], rgb[1], rgb[2]),
		PointRadius: 4,
	}
}

func parseColor(color string) ([3]int, bool) {
	color = strings.ToLower(strings.TrimSpace(color))
	if rgb, ok := palette[color]; ok {
		return rgb, true
	}
	c, err := colorful.Hex(color)
	if err != nil {
		return [3]int{}, false
	}
	r, g, b := c.RGB255()
	return [3]int{int(r), int(g), int(b)}, true
}
