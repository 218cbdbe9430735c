package behavior

import (
	"context"
	"fmt"

	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/templates"
)

// LayersPaneID is the side panel pane hosting the layer switcher.
const LayersPaneID = "layers"

// LayerSwitcherInSidePanel moves the layer switcher into a side panel pane.
// It is not a built-in; callers attach it with AttachBehavior.
type LayerSwitcherInSidePanel struct {
	Renderer *templates.Renderer
}

// Name returns "layerSwitcherInSidePanel".
func (LayerSwitcherInSidePanel) Name() string { return "layerSwitcherInSidePanel" }

// Attach does nothing when the map has no side panel.
func (b LayerSwitcherInSidePanel) Attach(_ context.Context, inst *instance.Instance, opts instance.BehaviorOptions) error {
	m := inst.Map()
	panel, ok := olmap.FindControl[olmap.SidePanel](m)
	if !ok {
		return nil
	}
	r := b.Renderer
	if r == nil {
		r = templates.Default()
	}
	reverse := true
	if existing, ok := olmap.FindControl[olmap.PanelRenderer](m); ok {
		if ls, ok := existing.(*olmap.LayerSwitcher); ok {
			reverse = ls.Reverse
		}
		m.RemoveControl(existing)
	}
	reverse = opts.Bool("reverse", reverse)

	pane := panel.DefinePane(olmap.PaneOptions{
		PaneID: LayersPaneID,
		Name:   opts.String("name", "Layers"),
		Icon:   opts.String("icon", "layers"),
		Weight: 1,
	})

	render := func() (string, error) {
		return r.LayerSwitcher(inst.Target(), olmap.LayerTree(m.Layers(), reverse))
	}
	html, err := render()
	if err != nil {
		return fmt.Errorf("rendering layer switcher: %w", err)
	}
	widget := pane.AddWidgetElement(html)

	refresh := func(olmap.Event) {
		html, err := render()
		if err != nil {
			inst.Logger().Warn("re-rendering layer switcher", "err", err)
			return
		}
		pane.SetWidgetElement(widget, html)
	}
	inst.On(olmap.EventLayerAdded, refresh)
	inst.On(olmap.EventLayerVisibility, refresh)
	return nil
}
