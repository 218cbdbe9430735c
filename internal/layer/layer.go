// Package layer builds detached map layers from declarative options.
package layer

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/project"

	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/style"
)

// Type is a layer type tag.
type Type string

const (
	TypeGeoJSON Type = "geojson"
	TypeWKT     Type = "wkt"
	TypeWMS     Type = "wms"
	TypeXYZ     Type = "xyz"
)

// Types lists the supported layer types.
var Types = []Type{TypeGeoJSON, TypeWKT, TypeWMS, TypeXYZ}

// ParseType matches s against the supported tags, ignoring case.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(s))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", &InvalidLayerTypeError{Type: s}
}

// Options is the addLayer call surface shared by all layer types.
type Options struct {
	Title   string            `json:"title,omitempty" yaml:"title,omitempty" doc:"Layer title, defaults to the type name"`
	Visible *bool             `json:"visible,omitempty" yaml:"visible,omitempty" doc:"Initial visibility, defaults to true"`
	Color   string            `json:"color,omitempty" yaml:"color,omitempty" doc:"Palette color name or #rrggbb" example:"green"`
	Group   string            `json:"group,omitempty" yaml:"group,omitempty" doc:"Title of the layer group to insert into"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty" doc:"Data URL (geojson) or tile URL (wms, xyz)"`
	WKT     string            `json:"wkt,omitempty" yaml:"wkt,omitempty" doc:"Well-Known-Text geometry (wkt)"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty" doc:"WMS request params"`
	Base    bool              `json:"base,omitempty" yaml:"base,omitempty" doc:"Base layer role (wms, xyz)"`
}

func (o Options) title(t Type) string {
	if o.Title == "" {
		return string(t)
	}
	return o.Title
}

func (o Options) visible() bool {
	return o.Visible == nil || *o.Visible
}

func (o Options) role() string {
	if o.Base {
		return olmap.RoleBase
	}
	return olmap.RoleNormal
}

// Validate checks the required field for t.
func (o Options) Validate(t Type) error {
	switch t {
	case TypeGeoJSON, TypeWMS, TypeXYZ:
		if o.URL == "" {
			return &MissingParameterError{Type: t, Field: "url"}
		}
	case TypeWKT:
		if o.WKT == "" {
			return &MissingParameterError{Type: t, Field: "wkt"}
		}
	default:
		return &InvalidLayerTypeError{Type: string(t)}
	}
	return nil
}

// Build dispatches to the constructor for typ.
func Build(typ string, opts Options) (olmap.Layer, error) {
	t, err := ParseType(typ)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeGeoJSON:
		return GeoJSON(opts)
	case TypeWKT:
		return WKT(opts)
	case TypeWMS:
		return WMS(opts)
	default:
		return XYZ(opts)
	}
}

// GeoJSON builds a vector layer whose features load from opts.URL.
func GeoJSON(opts Options) (*olmap.VectorLayer, error) {
	if err := opts.Validate(TypeGeoJSON); err != nil {
		return nil, err
	}
	source := olmap.NewVectorSource(olmap.VectorSourceOptions{URL: opts.URL, Format: "geojson"})
	return olmap.NewVectorLayer(olmap.VectorLayerOptions{
		Title:   opts.title(TypeGeoJSON),
		Source:  source,
		Style:   style.ForColor(opts.Color),
		Visible: opts.visible(),
	}), nil
}

// WKT builds a vector layer from opts.WKT. Geometry text that fails to
// parse yields a layer whose source is in the error state.
func WKT(opts Options) (*olmap.VectorLayer, error) {
	if err := opts.Validate(TypeWKT); err != nil {
		return nil, err
	}
	var source *olmap.VectorSource
	if features, err := ParseWKT(opts.WKT); err != nil {
		source = olmap.NewErroredVectorSource(err)
	} else {
		source = olmap.NewVectorSource(olmap.VectorSourceOptions{Features: features})
	}
	return olmap.NewVectorLayer(olmap.VectorLayerOptions{
		Title:   opts.title(TypeWKT),
		Source:  source,
		Style:   style.ForColor(opts.Color),
		Visible: opts.visible(),
	}), nil
}

// WMS builds a tile layer backed by a tiled WMS source.
func WMS(opts Options) (*olmap.TileLayer, error) {
	if err := opts.Validate(TypeWMS); err != nil {
		return nil, err
	}
	return olmap.NewTileLayer(olmap.TileLayerOptions{
		Title:   opts.title(TypeWMS),
		Source:  olmap.NewTileWMS(opts.URL, opts.Params),
		Visible: opts.visible(),
		Role:    opts.role(),
	}), nil
}

// XYZ builds a tile layer backed by an XYZ template source.
func XYZ(opts Options) (*olmap.TileLayer, error) {
	if err := opts.Validate(TypeXYZ); err != nil {
		return nil, err
	}
	return olmap.NewTileLayer(olmap.TileLayerOptions{
		Title:   opts.title(TypeXYZ),
		Source:  olmap.NewXYZ(opts.URL),
		Visible: opts.visible(),
		Role:    opts.role(),
	}), nil
}

var multipartKeywords = []string{"MULTIPOINT", "MULTILINESTRING", "MULTIPOLYGON", "GEOMETRYCOLLECTION"}

// IsMultipart reports whether text names a multi-part geometry.
func IsMultipart(text string) bool {
	for _, kw := range multipartKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ParseWKT reads EPSG:4326 geometry text into features in map coordinates.
// Multi-part geometries yield one feature per part.
func ParseWKT(text string) ([]*geojson.Feature, error) {
	geom, err := wkt.Unmarshal(text)
	if err != nil {
		return nil, fmt.Errorf("parsing wkt: %w", err)
	}
	geom = project.Geometry(geom, project.WGS84.ToMercator)

	if !IsMultipart(text) {
		return []*geojson.Feature{geojson.NewFeature(geom)}, nil
	}
	parts := splitParts(geom)
	features := make([]*geojson.Feature, 0, len(parts))
	for _, p := range parts {
		features = append(features, geojson.NewFeature(p))
	}
	return features, nil
}

func splitParts(g orb.Geometry) []orb.Geometry {
	var parts []orb.Geometry
	switch g := g.(type) {
	case orb.MultiPoint:
		for _, p := range g {
			parts = append(parts, p)
		}
	case orb.MultiLineString:
		for _, ls := range g {
			parts = append(parts, ls)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			parts = append(parts, p)
		}
	case orb.Collection:
		for _, child := range g {
			parts = append(parts, splitParts(child)...)
		}
	default:
		parts = append(parts, g)
	}
	return parts
}
