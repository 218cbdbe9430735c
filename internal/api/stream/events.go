// Package stream contains the Datastar SSE handlers that push map instance
// notifications to the page.
package stream

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb/project"

	"github.com/joeblew999/plat-map/internal/humastar"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/registry"
	"github.com/joeblew999/plat-map/internal/templates"
)

// EventHandler streams instance events to the Datastar UI via SSE.
type EventHandler struct {
	humastar.Handler
	registry *registry.Manager
}

// NewEventHandler creates a new event handler.
func NewEventHandler(reg *registry.Manager, renderer *templates.Renderer) *EventHandler {
	if renderer == nil {
		renderer = templates.Default()
	}
	return &EventHandler{
		Handler:  humastar.Handler{Renderer: renderer},
		registry: reg,
	}
}

type TargetInput struct {
	Target string `path:"target" doc:"Map target" example:"main-map"`
}

func (h *EventHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/maps/{target}/events", h.Events,
		huma.OperationTags("ui"),
	)
	huma.Post(api, "/api/v1/maps/{target}/ui/visibility", h.ToggleVisibility,
		huma.OperationTags("ui"),
	)
}

// PanelSelector returns the CSS selector of the layer switcher of target.
// The element ID is escaped, so targets holding '.', ':' or spaces still
// select the panel.
func PanelSelector(target string) string {
	return "#" + cssEscape(target+"-layers")
}

// cssEscape serializes s as a CSS identifier the way CSS.escape does.
func cssEscape(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == 0:
			b.WriteRune('\uFFFD')
		case r < 0x20 || r == 0x7f,
			r >= '0' && r <= '9' && (i == 0 || i == 1 && runes[0] == '-'):
			fmt.Fprintf(&b, "\\%x ", r)
		case i == 0 && r == '-' && len(runes) == 1:
			b.WriteString("\\-")
		case r >= 0x80 || r == '-' || r == '_' ||
			r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Events streams the layer switcher, view signals and a custom DOM event
// for every notification of the map until the client leaves or the map is
// removed.
func (h *EventHandler) Events(ctx context.Context, input *TargetInput) (*huma.StreamResponse, error) {
	inst, ok := h.registry.Get(input.Target)
	if !ok {
		return nil, huma.Error404NotFound("map not found: " + input.Target)
	}
	return &huma.StreamResponse{
		Body: func(humaCtx huma.Context) {
			ch := inst.Subscribe()
			defer inst.Unsubscribe(ch)

			sse := humastar.NewSSE(humaCtx)
			h.patchPanel(sse, inst)
			_ = sse.Signals(viewSignals(inst.Map()))

			for {
				select {
				case <-ctx.Done():
					return
				case <-humaCtx.Context().Done():
					return
				case ev, ok := <-ch:
					if !ok {
						return
					}
					if err := h.forward(sse, inst, ev); err != nil {
						return
					}
				}
			}
		},
	}, nil
}

// forward translates one map event into SSE events.
func (h *EventHandler) forward(sse humastar.SSE, inst *instance.Instance, ev olmap.Event) error {
	switch ev.Type {
	case olmap.EventLayerAdded, olmap.EventLayerVisibility:
		h.patchPanel(sse, inst)
	case olmap.EventViewChange:
		if err := sse.Signals(viewSignals(inst.Map())); err != nil {
			return err
		}
	case olmap.EventPopupShown:
		if err := sse.Signals(map[string]any{
			"popup": map[string]any{
				"id":         ev.Data["overlay"],
				"content":    ev.Data["content"],
				"coordinate": []float64{ev.Coordinate[0], ev.Coordinate[1]},
			},
		}); err != nil {
			return err
		}
	case olmap.EventFeatureChange:
		if err := sse.Signals(map[string]any{"wkt": ev.Data["wkt"]}); err != nil {
			return err
		}
	case olmap.EventMeasure:
		if err := sse.Signals(map[string]any{"measurement": ev.Data["measurement"]}); err != nil {
			return err
		}
	}
	return sse.Event(string(ev.Type), detail(ev))
}

func (h *EventHandler) patchPanel(sse humastar.SSE, inst *instance.Instance) {
	html, err := h.Renderer.LayerSwitcher(inst.Target(), olmap.LayerTree(inst.Map().Layers(), true))
	if err != nil {
		inst.Logger().Warn("rendering layer switcher", "err", err)
		return
	}
	_ = sse.Patch(html, PanelSelector(inst.Target()))
}

// detail is the custom event payload: the event data plus identifiers.
func detail(ev olmap.Event) map[string]any {
	d := map[string]any{"id": ev.ID, "target": ev.Target}
	if ev.Layer != nil {
		d["layer"] = ev.Layer.Title()
	}
	for k, v := range ev.Data {
		d[k] = v
	}
	return d
}

func viewSignals(m *olmap.Map) map[string]any {
	v := m.View()
	ll := project.Mercator.ToWGS84(v.Center())
	return map[string]any{
		"view": map[string]any{
			"center": []float64{ll[0], ll[1]},
			"zoom":   v.Zoom(),
		},
	}
}
