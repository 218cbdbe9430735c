package olmap

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loaderFunc func(ctx context.Context, url string) ([]byte, error)

func (f loaderFunc) Load(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

func TestLiteralVectorSourceIsReady(t *testing.T) {
	s := NewVectorSource(VectorSourceOptions{
		Features: []*geojson.Feature{geojson.NewFeature(orb.Point{1, 2})},
	})
	assert.Equal(t, StateReady, s.State())
	ext, ok := s.Extent()
	require.True(t, ok)
	assert.Equal(t, orb.Point{1, 2}, ext.Min)
	select {
	case <-s.Done():
	default:
		t.Fatal("done not closed")
	}
}

func TestVectorSourceLoad(t *testing.T) {
	body := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[0,0]},"properties":{"name":"a"}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[1,1]},"properties":{"name":"b"}}]}`
	s := NewVectorSource(VectorSourceOptions{URL: "/x.json", Format: "geojson"})
	assert.Equal(t, StateUndefined, s.State())

	var got string
	err := s.Load(context.Background(), loaderFunc(func(_ context.Context, u string) ([]byte, error) {
		got = u
		return []byte(body), nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "/x.json", got)
	assert.Equal(t, StateReady, s.State())
	require.Len(t, s.Features(), 2)

	ext, ok := s.Extent()
	require.True(t, ok)
	assert.InDelta(t, 111319.49, ext.Max[0], 0.01)
}

func TestVectorSourceLoadError(t *testing.T) {
	s := NewVectorSource(VectorSourceOptions{URL: "/missing.json"})
	boom := errors.New("boom")
	err := s.Load(context.Background(), loaderFunc(func(context.Context, string) ([]byte, error) {
		return nil, boom
	}))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateError, s.State())
	assert.ErrorIs(t, s.Err(), boom)

	// settled sources do not reload
	assert.ErrorIs(t, s.Load(context.Background(), nil), boom)
}

func TestXYZTileURL(t *testing.T) {
	s := NewXYZ("https://{a-c}.tile.example.org/{z}/{x}/{y}.png")
	assert.Equal(t, "https://b.tile.example.org/3/1/0.png", s.TileURL(3, 1, 0))
	assert.Equal(t, "https://a.tile.example.org/3/1/2.png", s.TileURL(3, 1, 2))

	tms := NewXYZ("https://tiles.example.org/{z}/{x}/{-y}.png")
	assert.Equal(t, "https://tiles.example.org/2/0/3.png", tms.TileURL(2, 0, 0))
}

func TestWMSTileURL(t *testing.T) {
	s := NewTileWMS("https://wms.example.org/ows", map[string]string{"layers": "soils"})
	u, err := url.Parse(s.TileURL(0, 0, 0))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "GetMap", q.Get("REQUEST"))
	assert.Equal(t, "soils", q.Get("LAYERS"))
	assert.Equal(t, "EPSG:3857", q.Get("CRS"))
	assert.Equal(t, "-20037508.34,-20037508.34,20037508.34,20037508.34", q.Get("BBOX"))
}
