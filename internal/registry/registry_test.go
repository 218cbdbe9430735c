package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-map/internal/behavior"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/store"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m := New(instance.Config{Builtins: behavior.Builtins(store.NewMemory())})
	t.Cleanup(m.Close)
	return m
}

func TestCreateAndGet(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	inst, err := m.Create(ctx, "map", instance.Options{})
	require.NoError(t, err)
	assert.Equal(t, "map", inst.Target())

	got, ok := m.Get("map")
	require.True(t, ok)
	assert.Same(t, inst, got)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestCreateRejectsDuplicateTarget(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	first, err := m.Create(ctx, "map", instance.Options{})
	require.NoError(t, err)

	_, err = m.Create(ctx, "map", instance.Options{})
	require.ErrorIs(t, err, ErrDuplicateInstance)
	var dup *DuplicateInstanceError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "map", dup.Target)

	got, _ := m.Get("map")
	assert.Same(t, first, got)
}

func TestCreateRequiresTarget(t *testing.T) {
	_, err := newManager(t).Create(context.Background(), "", instance.Options{})
	assert.ErrorIs(t, err, instance.ErrMissingTarget)
}

func TestCreateWithDrawing(t *testing.T) {
	inst, err := newManager(t).Create(context.Background(), "map", instance.Options{Drawing: true})
	require.NoError(t, err)
	assert.NotNil(t, inst.Edit())
}

func TestInstancesAreIndependent(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	a, err := m.Create(ctx, "a", instance.Options{})
	require.NoError(t, err)
	b, err := m.Create(ctx, "b", instance.Options{})
	require.NoError(t, err)

	_, err = a.AddLayer("wkt", layer.Options{WKT: "POINT(1 2)"})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Map().Layers().Len())
	assert.Equal(t, 1, b.Map().Layers().Len())

	require.NoError(t, m.Remove("a"))
	_, ok := m.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, a.Map().Layers().Len())

	got, ok := m.Get("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Equal(t, 1, b.Map().Layers().Len())
	assert.Equal(t, []string{"b"}, m.List())
}

func TestRemoveMissing(t *testing.T) {
	err := newManager(t).Remove("nope")
	require.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "nope", nf.Target)
}

func TestListAndEach(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	for _, target := range []string{"c", "a", "b"} {
		_, err := m.Create(ctx, target, instance.Options{})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, m.List())
	assert.Equal(t, 3, m.Len())

	var seen []string
	m.Each(func(inst *instance.Instance) { seen = append(seen, inst.Target()) })
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	m.Close()
	assert.Empty(t, m.List())
}
