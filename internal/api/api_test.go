package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-map/internal/behavior"
	"github.com/joeblew999/plat-map/internal/catalog"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/preset"
	"github.com/joeblew999/plat-map/internal/registry"
	"github.com/joeblew999/plat-map/internal/store"
	"github.com/joeblew999/plat-map/internal/templates"
)

func newTestAPI(t *testing.T) (humatest.TestAPI, *Services) {
	t.Helper()
	s := store.NewMemory()
	reg := registry.New(instance.Config{Builtins: behavior.Builtins(s)})
	t.Cleanup(reg.Close)
	r := templates.Default()
	extras := behavior.DefaultExtras(r)
	svc := &Services{
		Registry: reg,
		Builder:  &preset.Builder{Registry: reg, Extras: extras, Renderer: r},
		Extras:   extras,
		Renderer: r,
		Catalog:  catalog.New(t.TempDir()),
		Store:    s,
	}

	cfg := huma.DefaultConfig("plat-map test", "1.0.0")
	cfg.CreateHooks = nil
	cfg.Transformers = append(cfg.Transformers, LinkTransformer())
	_, api := humatest.New(t, cfg)
	RegisterRoutes(api, svc)
	NewInfoHandler("", "memory", svc).RegisterRoutes(api)
	NewStateHandler(s).RegisterRoutes(api)
	return api, svc
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestHealthAndInfo(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ok", decode[HealthBody](t, resp.Body.Bytes()).Status)
	assert.Contains(t, strings.Join(resp.Header().Values("Link"), ","), `rel="maps"`)

	resp = api.Get("/api/v1/info")
	require.Equal(t, http.StatusOK, resp.Code)
	info := decode[InfoBody](t, resp.Body.Bytes())
	assert.Equal(t, "plat-map", info.Name)
	assert.Equal(t, []string{"geojson", "wkt", "wms", "xyz"}, info.LayerTypes)
	assert.Contains(t, info.Behaviors, "layerSwitcherInSidePanel")
}

func TestMapLifecycle(t *testing.T) {
	api, svc := newTestAPI(t)

	resp := api.Post("/api/v1/maps", map[string]any{"target": "main", "drawing": true})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	body := decode[MapBody](t, resp.Body.Bytes())
	assert.Equal(t, "main", body.Target)
	assert.True(t, body.Drawing)
	assert.Contains(t, body.Controls, "edit")

	resp = api.Post("/api/v1/maps", map[string]any{"target": "main"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = api.Get("/api/v1/maps/main")
	require.Equal(t, http.StatusOK, resp.Code)
	links := strings.Join(resp.Header().Values("Link"), ",")
	assert.Contains(t, links, `</api/v1/maps/main>; rel="self"`)
	assert.Contains(t, links, `</api/v1/maps/main/zoom>; rel="zoom"; method="POST"`)
	assert.Contains(t, links, `rel="features"`)

	resp = api.Delete("/api/v1/maps/main")
	require.Equal(t, http.StatusOK, resp.Code)
	_, ok := svc.Registry.Get("main")
	assert.False(t, ok)

	assert.Equal(t, http.StatusNotFound, api.Get("/api/v1/maps/main").Code)
	assert.Equal(t, http.StatusNotFound, api.Delete("/api/v1/maps/main").Code)
}

func TestCreateMapWithLayers(t *testing.T) {
	api, _ := newTestAPI(t)

	resp := api.Post("/api/v1/maps", map[string]any{
		"target": "main",
		"controlOptions": map[string]bool{
			"zoom": false,
		},
		"layers": []map[string]any{
			{"type": "wkt", "title": "Fields", "wkt": "POINT(1 2)", "group": "Overlays"},
		},
		"behaviors": []map[string]any{{"name": "measure"}},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	body := decode[MapBody](t, resp.Body.Bytes())

	assert.NotContains(t, body.Controls, "zoom")
	assert.Contains(t, body.Controls, "measure")
	require.Len(t, body.Layers, 3)
	assert.Equal(t, "Overlays", body.Layers[1].Title)
	assert.Equal(t, "group", body.Layers[1].Kind)
	assert.Equal(t, LayerBody{Title: "Fields", Kind: "vector", Visible: true, Depth: 1, State: "ready", Features: 1}, body.Layers[2])
}

func TestCreateMapRejectsBadLayer(t *testing.T) {
	api, svc := newTestAPI(t)

	resp := api.Post("/api/v1/maps", map[string]any{
		"target": "main",
		"layers": []map[string]any{{"type": "shapefile", "url": "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, svc.Registry.List())
}

func TestListMapsPaginates(t *testing.T) {
	api, _ := newTestAPI(t)
	for _, target := range []string{"c", "a", "b"} {
		require.Equal(t, http.StatusCreated, api.Post("/api/v1/maps", map[string]any{"target": target}).Code)
	}

	resp := api.Get("/api/v1/maps?offset=1&limit=1")
	require.Equal(t, http.StatusOK, resp.Code)
	type page struct {
		Total int          `json:"total"`
		Data  []MapSummary `json:"data"`
	}
	p := decode[page](t, resp.Body.Bytes())
	assert.Equal(t, 3, p.Total)
	require.Len(t, p.Data, 1)
	assert.Equal(t, "b", p.Data[0].Target)
	assert.Contains(t, strings.Join(resp.Header().Values("Link"), ","), `rel="next"`)
}

func TestAddLayer(t *testing.T) {
	api, _ := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.Post("/api/v1/maps", map[string]any{"target": "main"}).Code)

	resp := api.Post("/api/v1/maps/main/layers", map[string]any{
		"type": "WMS", "title": "Soils", "url": "https://wms.example.com", "params": map[string]string{"layers": "soils"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	l := decode[LayerBody](t, resp.Body.Bytes())
	assert.Equal(t, "tile", l.Kind)
	assert.Equal(t, "normal", l.Role)

	resp = api.Post("/api/v1/maps/main/layers", map[string]any{"type": "wkt", "title": "Broken", "wkt": "NOT WKT"})
	require.Equal(t, http.StatusCreated, resp.Code)
	l = decode[LayerBody](t, resp.Body.Bytes())
	assert.Equal(t, "error", l.State)
	assert.NotEmpty(t, l.Error)

	resp = api.Post("/api/v1/maps/main/layers", map[string]any{"type": "geojson"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "url")

	resp = api.Post("/api/v1/maps/main/layers", map[string]any{"type": "kml", "url": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/api/v1/maps/nope/layers", map[string]any{"type": "wkt", "wkt": "POINT(0 0)"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestLayerVisibilityIsRemembered(t *testing.T) {
	api, svc := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.Post("/api/v1/maps", map[string]any{
		"target":    "main",
		"behaviors": []map[string]any{{"name": "rememberLayer"}},
	}).Code)

	resp := api.Patch("/api/v1/maps/main/layers/OpenStreetMap", map[string]any{"visible": false})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.False(t, decode[LayerBody](t, resp.Body.Bytes()).Visible)

	visible, ok, err := svc.Store.Visibility(context.Background(), "main/OpenStreetMap")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, visible)

	resp = api.Get("/api/v1/state")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "main/OpenStreetMap")

	assert.Equal(t, http.StatusNotFound, api.Patch("/api/v1/maps/main/layers/Nope", map[string]any{"visible": true}).Code)
}

func TestAddBehavior(t *testing.T) {
	api, _ := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.Post("/api/v1/maps", map[string]any{"target": "main"}).Code)

	resp := api.Post("/api/v1/maps/main/behaviors", map[string]any{"name": "layerSwitcherInSidePanel"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.NotContains(t, decode[MapBody](t, resp.Body.Bytes()).Controls, "layerSwitcher")

	resp = api.Post("/api/v1/maps/main/behaviors", map[string]any{"name": "teleport"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Get("/api/v1/behaviors")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "rememberLayer")
}

func TestZoomPopupAndClick(t *testing.T) {
	api, _ := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.Post("/api/v1/maps", map[string]any{
		"target": "main",
		"layers": []map[string]any{
			{"type": "wkt", "title": "Fields", "wkt": "POLYGON((10 10, 20 10, 20 20, 10 20, 10 10))"},
		},
	}).Code)

	resp := api.Post("/api/v1/maps/main/zoom", map[string]any{})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	view := decode[ViewBody](t, resp.Body.Bytes())
	assert.InDelta(t, 15, view.LonLat[0], 0.5)
	assert.Greater(t, view.Zoom, 2.0)

	resp = api.Post("/api/v1/maps/main/zoom", map[string]any{"layer": "Nope"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Post("/api/v1/maps/main/popup")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.False(t, decode[OverlayBody](t, resp.Body.Bytes()).Visible)

	resp = api.Post("/api/v1/maps/main/click", map[string]any{"lonLat": []float64{15, 15}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	click := decode[ClickResult](t, resp.Body.Bytes())
	require.Len(t, click.Overlays, 1)
	assert.Contains(t, click.Overlays[0].Content, "Fields")

	resp = api.Post("/api/v1/maps/main/click", map[string]any{"x": 0, "y": 0})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[ClickResult](t, resp.Body.Bytes()).Overlays)

	resp = api.Post("/api/v1/maps/main/click", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDrawing(t *testing.T) {
	api, _ := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.Post("/api/v1/maps", map[string]any{"target": "plain"}).Code)
	assert.Equal(t, http.StatusConflict, api.Get("/api/v1/maps/plain/features").Code)

	require.Equal(t, http.StatusCreated, api.Post("/api/v1/maps", map[string]any{"target": "main", "drawing": true}).Code)

	resp := api.Post("/api/v1/maps/main/features", map[string]any{"wkt": "MULTIPOINT((1 2),(3 4))"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	d := decode[DrawingBody](t, resp.Body.Bytes())
	assert.Equal(t, 2, d.Count)
	assert.True(t, strings.HasPrefix(d.WKT, "GEOMETRYCOLLECTION("), d.WKT)

	assert.Equal(t, http.StatusBadRequest, api.Post("/api/v1/maps/main/features", map[string]any{"wkt": "NOPE"}).Code)

	resp = api.Delete("/api/v1/maps/main/features")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decode[DrawingBody](t, resp.Body.Bytes()).Count)
}

func TestSources(t *testing.T) {
	api, svc := newTestAPI(t)
	resp := api.Get("/api/v1/sources")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `[]`, resp.Body.String())

	require.NoError(t, os.MkdirAll(svc.Catalog.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(svc.Catalog.Dir(), "fields.geojson"), []byte(`{}`), 0o644))
	resp = api.Get("/api/v1/sources")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "/sources/fields.geojson")
}
