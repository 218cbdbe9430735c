package olmap

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"
)

// SourceState is the load state of a source.
type SourceState string

const (
	StateUndefined SourceState = "undefined"
	StateLoading   SourceState = "loading"
	StateReady     SourceState = "ready"
	StateError     SourceState = "error"
)

// Source provides data to a layer.
type Source interface {
	State() SourceState
}

// Loader fetches the raw body behind a source URL.
type Loader interface {
	Load(ctx context.Context, url string) ([]byte, error)
}

// VectorSource holds features in map coordinates (EPSG:3857). A source built
// with a URL starts undefined and settles to ready or error after Load.
type VectorSource struct {
	mu       sync.RWMutex
	url      string
	format   string
	state    SourceState
	err      error
	features []*geojson.Feature
	done     chan struct{}
}

// VectorSourceOptions configures a VectorSource. Set either URL or Features.
type VectorSourceOptions struct {
	URL      string
	Format   string
	Features []*geojson.Feature
}

// NewVectorSource creates a vector source. Sources built from literal
// features are ready immediately.
func NewVectorSource(opts VectorSourceOptions) *VectorSource {
	s := &VectorSource{
		url:    opts.URL,
		format: opts.Format,
		state:  StateUndefined,
		done:   make(chan struct{}),
	}
	if opts.URL == "" {
		s.features = append(s.features, opts.Features...)
		s.state = StateReady
		close(s.done)
	}
	return s
}

// NewErroredVectorSource creates a source that failed before producing features.
func NewErroredVectorSource(err error) *VectorSource {
	s := &VectorSource{state: StateError, err: err, done: make(chan struct{})}
	close(s.done)
	return s
}

// URL returns the remote URL, empty for literal sources.
func (s *VectorSource) URL() string { return s.url }

// Format returns the remote format name.
func (s *VectorSource) Format() string { return s.format }

// State returns the current load state.
func (s *VectorSource) State() SourceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the load error, if the source is in the error state.
func (s *VectorSource) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Done is closed once the source has settled to ready or error.
func (s *VectorSource) Done() <-chan struct{} { return s.done }

// Features returns a snapshot of the features.
func (s *VectorSource) Features() []*geojson.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*geojson.Feature(nil), s.features...)
}

// AddFeatures appends features in map coordinates.
func (s *VectorSource) AddFeatures(features ...*geojson.Feature) {
	s.mu.Lock()
	s.features = append(s.features, features...)
	s.mu.Unlock()
}

// Clear removes all features.
func (s *VectorSource) Clear() {
	s.mu.Lock()
	s.features = nil
	s.mu.Unlock()
}

// Extent returns the bound of all features. ok is false when there are none.
func (s *VectorSource) Extent() (orb.Bound, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return featuresBound(s.features)
}

// Load fetches the source URL with loader and replaces the features. It
// runs at most once; later calls return the settled error.
func (s *VectorSource) Load(ctx context.Context, loader Loader) error {
	s.mu.Lock()
	if s.url == "" || s.state != StateUndefined {
		err := s.err
		s.mu.Unlock()
		return err
	}
	s.state = StateLoading
	s.mu.Unlock()

	features, err := s.fetch(ctx, loader)

	s.mu.Lock()
	if err != nil {
		s.state = StateError
		s.err = err
	} else {
		s.features = features
		s.state = StateReady
	}
	s.mu.Unlock()
	close(s.done)
	return err
}

func (s *VectorSource) fetch(ctx context.Context, loader Loader) ([]*geojson.Feature, error) {
	body, err := loader.Load(ctx, s.url)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, fmt.Errorf("parsing geojson from %s: %w", s.url, err)
	}
	for _, f := range fc.Features {
		if f.Geometry != nil {
			f.Geometry = project.Geometry(f.Geometry, project.WGS84.ToMercator)
		}
	}
	return fc.Features, nil
}

func featuresBound(features []*geojson.Feature) (orb.Bound, bool) {
	var (
		b     orb.Bound
		found bool
	)
	for _, f := range features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if !found {
			b = f.Geometry.Bound()
			found = true
			continue
		}
		b = b.Union(f.Geometry.Bound())
	}
	return b, found
}

// TileSource is a remote source addressed by z/x/y tile coordinates.
type TileSource interface {
	Source
	URL() string
	TileURL(z maptile.Zoom, x, y uint32) string
}

// XYZ is a tile source with a {z}/{x}/{y} URL template.
type XYZ struct {
	url string
}

// NewXYZ creates an XYZ source. The template may use {z}, {x}, {y}, {-y}
// and a {a-c} style subdomain range.
func NewXYZ(urlTemplate string) *XYZ {
	return &XYZ{url: urlTemplate}
}

// State is always ready; tiles load on demand.
func (s *XYZ) State() SourceState { return StateReady }

// URL returns the template.
func (s *XYZ) URL() string { return s.url }

// TileURL expands the template for one tile.
func (s *XYZ) TileURL(z maptile.Zoom, x, y uint32) string {
	u := s.url
	u = strings.ReplaceAll(u, "{z}", strconv.Itoa(int(z)))
	u = strings.ReplaceAll(u, "{x}", strconv.FormatUint(uint64(x), 10))
	u = strings.ReplaceAll(u, "{y}", strconv.FormatUint(uint64(y), 10))
	if strings.Contains(u, "{-y}") {
		flipped := (uint32(1) << z) - 1 - y
		u = strings.ReplaceAll(u, "{-y}", strconv.FormatUint(uint64(flipped), 10))
	}
	return expandRange(u, x+y)
}

// expandRange replaces a {a-c} or {1-4} placeholder with one member of the
// range chosen by n.
func expandRange(u string, n uint32) string {
	open := strings.Index(u, "{")
	if open < 0 {
		return u
	}
	end := strings.Index(u[open:], "}")
	if end < 0 {
		return u
	}
	inner := u[open+1 : open+end]
	if len(inner) != 3 || inner[1] != '-' || inner[2] < inner[0] {
		return u
	}
	span := uint32(inner[2]-inner[0]) + 1
	pick := string(rune(inner[0] + byte(n%span)))
	return u[:open] + pick + u[open+end+1:]
}

// TileWMS is a tiled WMS source. Params are sent with every GetMap request.
type TileWMS struct {
	url    string
	params map[string]string
}

// NewTileWMS creates a tiled WMS source.
func NewTileWMS(baseURL string, params map[string]string) *TileWMS {
	p := make(map[string]string, len(params))
	for k, v := range params {
		p[strings.ToUpper(k)] = v
	}
	return &TileWMS{url: baseURL, params: p}
}

// State is always ready; tiles load on demand.
func (s *TileWMS) State() SourceState { return StateReady }

// URL returns the WMS endpoint.
func (s *TileWMS) URL() string { return s.url }

// Params returns a copy of the request params.
func (s *TileWMS) Params() map[string]string {
	p := make(map[string]string, len(s.params))
	for k, v := range s.params {
		p[k] = v
	}
	return p
}

// TileURL builds the GetMap request for one 256px tile in EPSG:3857.
func (s *TileWMS) TileURL(z maptile.Zoom, x, y uint32) string {
	bound := maptile.New(x, y, z).Bound()
	lo := project.WGS84.ToMercator(bound.Min)
	hi := project.WGS84.ToMercator(bound.Max)

	q := url.Values{}
	q.Set("SERVICE", "WMS")
	q.Set("VERSION", "1.3.0")
	q.Set("REQUEST", "GetMap")
	q.Set("FORMAT", "image/png")
	q.Set("TRANSPARENT", "true")
	q.Set("CRS", "EPSG:3857")
	q.Set("WIDTH", "256")
	q.Set("HEIGHT", "256")
	q.Set("BBOX", formatBBox(lo, hi))

	keys := make([]string, 0, len(s.params))
	for k := range s.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q.Set(k, s.params[k])
	}

	sep := "?"
	if strings.Contains(s.url, "?") {
		sep = "&"
	}
	return s.url + sep + q.Encode()
}

func formatBBox(lo, hi orb.Point) string {
	parts := []float64{lo[0], lo[1], hi[0], hi[1]}
	out := make([]string, len(parts))
	for i, v := range parts {
		out[i] = strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	}
	return strings.Join(out, ",")
}
