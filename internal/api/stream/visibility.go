package stream

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/humastar"
	"github.com/joeblew999/plat-map/internal/olmap"
)

// ToggleVisibilityInput carries the Datastar signals of a layer switcher click.
type ToggleVisibilityInput struct {
	TargetInput
	humastar.SignalsInput
}

// ToggleVisibility shows or hides the layer named by the "layer" signal and
// answers with the re-rendered layer switcher. Without a "visible" signal
// the layer is toggled.
func (h *EventHandler) ToggleVisibility(ctx context.Context, input *ToggleVisibilityInput) (*huma.StreamResponse, error) {
	inst, ok := h.registry.Get(input.Target)
	if !ok {
		return nil, huma.Error404NotFound("map not found: " + input.Target)
	}
	signals, err := input.MustParse()
	if err != nil {
		return nil, err
	}
	title := signals.String("layer")

	return h.Stream(func(sse humastar.SSE) {
		l, ok := inst.FindLayer(title)
		if !ok {
			_ = sse.Error("Layer not found: " + title)
			return
		}
		visible := !l.Visible()
		if signals.Has("visible") {
			visible = signals.Bool("visible")
		}
		if layerRole(l) == olmap.RoleBase && visible {
			hideOtherBases(inst.Map(), l)
		}
		l.SetVisible(visible)
		h.patchPanel(sse, inst)
		state := "hidden"
		if visible {
			state = "shown"
		}
		_ = sse.Success(title + " " + state)
	}), nil
}

// hideOtherBases keeps a single base layer visible, as the radio buttons
// of the layer switcher imply.
func hideOtherBases(m *olmap.Map, keep olmap.Layer) {
	olmap.Walk(m.Layers(), func(l olmap.Layer, _ int) {
		if l != keep && layerRole(l) == olmap.RoleBase {
			l.SetVisible(false)
		}
	})
}

func layerRole(l olmap.Layer) string {
	if tl, ok := l.(*olmap.TileLayer); ok {
		return tl.Role()
	}
	return ""
}
