package olmap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapEmitsLayerAddedForNestedLayers(t *testing.T) {
	m := New(Options{Target: "map"})
	var added []string
	m.On(EventLayerAdded, func(e Event) {
		added = append(added, e.Layer.Title())
		assert.Equal(t, "map", e.Target)
	})

	g := NewGroup(GroupOptions{Title: "G", Visible: true})
	m.AddLayer(g)
	g.Layers().Push(NewVectorLayer(VectorLayerOptions{Title: "child", Visible: true}))

	assert.Equal(t, []string{"G", "child"}, added)
}

func TestMapEmitsVisibilityChanges(t *testing.T) {
	l := NewVectorLayer(VectorLayerOptions{Title: "a", Visible: true})
	m := New(Options{Target: "map", Layers: []Layer{l}})

	var seen []bool
	m.On(EventLayerVisibility, func(e Event) {
		seen = append(seen, e.Data["visible"].(bool))
	})
	l.SetVisible(false)
	l.SetVisible(false)
	l.SetVisible(true)
	assert.Equal(t, []bool{false, true}, seen)

	require.True(t, m.RemoveLayer(l))
	l.SetVisible(false)
	assert.Len(t, seen, 2)
}

func TestFindControl(t *testing.T) {
	panel := &SidePanelControl{}
	m := New(Options{Controls: []Control{NewControl("zoom"), &LayerSwitcher{}, panel}})

	sp, ok := FindControl[SidePanel](m)
	require.True(t, ok)
	assert.Same(t, panel, sp)

	_, ok = FindControl[PanelRenderer](m)
	assert.True(t, ok)

	require.True(t, m.RemoveControl(sp))
	_, ok = FindControl[SidePanel](m)
	assert.False(t, ok)
}

func TestLayerTreeReverse(t *testing.T) {
	base := NewTileLayer(TileLayerOptions{Title: "OSM", Source: NewXYZ("x"), Visible: true, Role: RoleBase})
	g := NewGroup(GroupOptions{Title: "Farm", Visible: true, Layers: []Layer{
		NewVectorLayer(VectorLayerOptions{Title: "Fields"}),
	}})
	m := New(Options{Layers: []Layer{base, g}})

	tree := (&LayerSwitcher{Reverse: true}).RenderPanel(m)
	require.Len(t, tree, 3)
	assert.Equal(t, LayerEntry{Title: "Farm", Visible: true, Group: true}, tree[0])
	assert.Equal(t, LayerEntry{Title: "Fields", Depth: 1}, tree[1])
	assert.Equal(t, LayerEntry{Title: "OSM", Visible: true, Role: RoleBase}, tree[2])
}

func TestSingleClickAndDispose(t *testing.T) {
	m := New(Options{Target: "map"})
	ch := m.Bus().Subscribe()

	var clicked orb.Point
	m.On(EventSingleClick, func(e Event) { clicked = e.Coordinate })
	m.SingleClick(orb.Point{5, 6})
	assert.Equal(t, orb.Point{5, 6}, clicked)

	e := <-ch
	assert.Equal(t, EventSingleClick, e.Type)
	assert.NotEmpty(t, e.ID)

	m.Dispose()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, m.Layers().Len())
}
