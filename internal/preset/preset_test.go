package preset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-map/internal/behavior"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/registry"
	"github.com/joeblew999/plat-map/internal/store"
	"github.com/joeblew999/plat-map/internal/templates"
)

const sample = `
maps:
  - target: main
    drawing: true
    zoom: 4
    controlOptions:
      rotate: false
    layers:
      - type: WKT
        title: Fields
        wkt: "MULTIPOINT((1 2),(3 4))"
        group: Overlays
        color: green
      - type: xyz
        title: Topo
        url: "https://tiles.example.com/{z}/{x}/{y}.png"
        base: true
    behaviors:
      - name: measure
        options:
          units: us
      - name: layerSwitcherInSidePanel
    popup: true
  - target: side
`

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	reg := registry.New(instance.Config{Builtins: behavior.Builtins(store.NewMemory())})
	t.Cleanup(reg.Close)
	r := templates.Default()
	return &Builder{Registry: reg, Extras: behavior.DefaultExtras(r), Renderer: r}
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Maps, 2)

	main := f.Maps[0]
	assert.Equal(t, "main", main.Target)
	assert.True(t, main.Drawing)
	require.NotNil(t, main.Zoom)
	assert.Equal(t, 4.0, *main.Zoom)
	assert.Equal(t, false, main.ControlOptions["rotate"])
	require.Len(t, main.Layers, 2)
	assert.Equal(t, "Fields", main.Layers[0].Title)
	assert.Equal(t, "Overlays", main.Layers[0].Group)
	assert.True(t, main.Layers[1].Base)
	assert.Equal(t, "us", main.Behaviors[0].Options.String("units", ""))
	assert.True(t, main.Popup)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("maps:\n  - target: a\n    colour: red\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Maps, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	extras := behavior.DefaultExtras(nil)
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, f.Validate(extras))

	bad := &File{Maps: []MapSpec{
		{Target: ""},
		{Target: "a", Layers: []LayerSpec{{Type: "geojson"}}},
		{Target: "a", Layers: []LayerSpec{{Type: "shapefile"}}},
		{Target: "b", Behaviors: []BehaviorSpec{{Name: "teleport"}}},
	}}
	err = bad.Validate(extras)
	require.Error(t, err)
	assert.ErrorIs(t, err, instance.ErrMissingTarget)
	assert.ErrorIs(t, err, registry.ErrDuplicateInstance)
	assert.ErrorIs(t, err, layer.ErrMissingParameter)
	assert.ErrorIs(t, err, layer.ErrInvalidLayerType)
	assert.ErrorIs(t, err, instance.ErrUnknownBehavior)
}

func TestApply(t *testing.T) {
	b := newBuilder(t)
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, b.Apply(context.Background(), f))

	assert.Equal(t, []string{"main", "side"}, b.Registry.List())

	inst, ok := b.Registry.Get("main")
	require.True(t, ok)
	assert.NotNil(t, inst.Edit())

	fields, ok := inst.FindLayer("Fields")
	require.True(t, ok)
	assert.Len(t, fields.(*olmap.VectorLayer).VectorSource().Features(), 2)

	topo, ok := inst.FindLayer("Topo")
	require.True(t, ok)
	assert.Equal(t, olmap.RoleBase, topo.(*olmap.TileLayer).Role())

	ctl, ok := olmap.FindControl[*behavior.MeasureControl](inst.Map())
	require.True(t, ok)
	assert.Equal(t, behavior.US, ctl.Units())

	_, ok = olmap.FindControl[olmap.PanelRenderer](inst.Map())
	assert.False(t, ok)
	assert.Len(t, inst.Map().Overlays(), 1)

	for _, c := range inst.Map().Controls() {
		assert.NotEqual(t, "rotate", c.Name())
	}
}

func TestBuildRemovesFailedInstance(t *testing.T) {
	b := newBuilder(t)
	_, err := b.Build(context.Background(), MapSpec{
		Target: "broken",
		Layers: []LayerSpec{{Type: "wms"}},
	})
	require.ErrorIs(t, err, layer.ErrMissingParameter)
	_, ok := b.Registry.Get("broken")
	assert.False(t, ok)
}

func TestBuildDuplicate(t *testing.T) {
	b := newBuilder(t)
	ctx := context.Background()
	_, err := b.Build(ctx, MapSpec{Target: "main"})
	require.NoError(t, err)
	_, err = b.Build(ctx, MapSpec{Target: "main"})
	assert.ErrorIs(t, err, registry.ErrDuplicateInstance)
	_, ok := b.Registry.Get("main")
	assert.True(t, ok)
}

func TestCheckBuildsWithoutLoading(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	extras := behavior.DefaultExtras(templates.Default())
	require.NoError(t, Check(context.Background(), f, extras))

	f.Maps[0].Layers = append(f.Maps[0].Layers, LayerSpec{Type: "geojson", Options: layer.Options{URL: "/sources/missing.geojson"}})
	assert.NoError(t, Check(context.Background(), f, extras))
}

func TestCheckReportsAttachErrors(t *testing.T) {
	failing := behavior.DefaultExtras(templates.Default())
	failing["refuse"] = instance.BehaviorFunc(func(context.Context, *instance.Instance, instance.BehaviorOptions) error {
		return assert.AnError
	})
	f := &File{Maps: []MapSpec{{Target: "main", Behaviors: []BehaviorSpec{{Name: "refuse"}}}}}
	require.NoError(t, f.Validate(failing))

	err := Check(context.Background(), f, failing)
	assert.ErrorIs(t, err, assert.AnError)
}
