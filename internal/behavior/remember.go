package behavior

import (
	"context"

	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/store"
)

// RememberLayer persists layer visibility across instances of the same target.
type RememberLayer struct {
	Store store.LayerStore
}

// Name returns "rememberLayer".
func (RememberLayer) Name() string { return string(instance.BehaviorRememberLayer) }

// Attach restores the visibility of current layers, then keeps the store in
// sync with visibility changes and restores layers added later.
func (b RememberLayer) Attach(ctx context.Context, inst *instance.Instance, _ instance.BehaviorOptions) error {
	if b.Store == nil {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	log := inst.Logger()

	restore := func(l olmap.Layer) {
		visible, ok, err := b.Store.Visibility(ctx, LayerKey(inst.Target(), l))
		if err != nil {
			log.Warn("restoring layer visibility", "title", l.Title(), "err", err)
			return
		}
		if ok {
			l.SetVisible(visible)
		}
	}

	olmap.Walk(inst.Map().Layers(), func(l olmap.Layer, _ int) { restore(l) })

	inst.On(olmap.EventLayerAdded, func(e olmap.Event) {
		if e.Layer == nil {
			return
		}
		restore(e.Layer)
		if c, ok := e.Layer.(olmap.Container); ok {
			olmap.Walk(c.Layers(), func(l olmap.Layer, _ int) { restore(l) })
		}
	})
	inst.On(olmap.EventLayerVisibility, func(e olmap.Event) {
		if e.Layer == nil {
			return
		}
		if err := b.Store.SetVisibility(ctx, LayerKey(inst.Target(), e.Layer), e.Layer.Visible()); err != nil {
			log.Warn("saving layer visibility", "title", e.Layer.Title(), "err", err)
		}
	})
	return nil
}

// LayerKey is the store key for a layer of the map bound to target.
func LayerKey(target string, l olmap.Layer) string {
	return target + "/" + l.Title()
}
