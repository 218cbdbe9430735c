package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/joeblew999/plat-map/internal/behavior"
	"github.com/joeblew999/plat-map/internal/humastar"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/preset"
)

type ListMapsInput struct {
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Items to skip"`
	Limit  int `query:"limit" minimum:"0" default:"0" doc:"Page size, 0 for all"`
}

type MapOutput struct {
	Body MapBody
}

type LayerOutput struct {
	Body LayerBody
}

func (h *APIHandler) ListMaps(ctx context.Context, input *ListMapsInput) (*struct{ Body humastar.Page[MapSummary] }, error) {
	summaries := []MapSummary{}
	h.svc.Registry.Each(func(inst *instance.Instance) {
		summaries = append(summaries, MapSummary{
			Target:  inst.Target(),
			Layers:  inst.Map().Layers().Len(),
			Drawing: inst.Edit() != nil,
		})
	})
	return &struct{ Body humastar.Page[MapSummary] }{
		Body: humastar.Paginate(summaries, input.Offset, input.Limit),
	}, nil
}

func (h *APIHandler) CreateMap(ctx context.Context, input *struct{ Body preset.MapSpec }) (*MapOutput, error) {
	inst, err := h.svc.Builder.Build(ctx, input.Body)
	if err != nil {
		return nil, toHumaError(err)
	}
	return &MapOutput{Body: mapBody(inst)}, nil
}

func (h *APIHandler) GetMap(ctx context.Context, input *TargetInput) (*MapOutput, error) {
	inst, err := h.instance(input.Target)
	if err != nil {
		return nil, err
	}
	return &MapOutput{Body: mapBody(inst)}, nil
}

func (h *APIHandler) DeleteMap(ctx context.Context, input *TargetInput) (*struct{ Body MessageBody }, error) {
	if err := h.svc.Registry.Remove(input.Target); err != nil {
		return nil, toHumaError(err)
	}
	return &struct{ Body MessageBody }{Body: MessageBody{Message: "Map removed"}}, nil
}

func (h *APIHandler) AddLayer(ctx context.Context, input *struct {
	TargetInput
	Body preset.LayerSpec
}) (*LayerOutput, error) {
	inst, err := h.instance(input.Target)
	if err != nil {
		return nil, err
	}
	l, err := inst.AddLayer(input.Body.Type, input.Body.Options)
	if err != nil {
		return nil, toHumaError(err)
	}
	depth := 0
	if input.Body.Group != "" {
		depth = 1
	}
	return &LayerOutput{Body: layerBody(l, depth)}, nil
}

type VisibilityBody struct {
	Visible bool `json:"visible" doc:"Show or hide the layer"`
}

func (h *APIHandler) SetLayerVisibility(ctx context.Context, input *struct {
	TargetInput
	Title string `path:"title" doc:"Layer title" example:"Fields"`
	Body  VisibilityBody
}) (*LayerOutput, error) {
	inst, err := h.instance(input.Target)
	if err != nil {
		return nil, err
	}
	l, ok := inst.FindLayer(input.Title)
	if !ok {
		return nil, huma.Error404NotFound("layer not found: " + input.Title)
	}
	l.SetVisible(input.Body.Visible)
	return &LayerOutput{Body: layerBody(l, 0)}, nil
}

func (h *APIHandler) ListBehaviors(ctx context.Context, input *struct{}) (*struct{ Body []string }, error) {
	return &struct{ Body []string }{Body: h.svc.Extras.Names()}, nil
}

func (h *APIHandler) AddBehavior(ctx context.Context, input *struct {
	TargetInput
	Body preset.BehaviorSpec
}) (*MapOutput, error) {
	inst, err := h.instance(input.Target)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Extras.Attach(ctx, inst, input.Body.Name, input.Body.Options); err != nil {
		return nil, toHumaError(err)
	}
	return &MapOutput{Body: mapBody(inst)}, nil
}

type ZoomBody struct {
	Layer string `json:"layer,omitempty" doc:"Layer title to fit; empty fits all vector layers"`
}

func (h *APIHandler) Zoom(ctx context.Context, input *struct {
	TargetInput
	Body ZoomBody
}) (*struct{ Body ViewBody }, error) {
	inst, err := h.instance(input.Target)
	if err != nil {
		return nil, err
	}
	if input.Body.Layer == "" {
		inst.ZoomToVectors(nil)
	} else {
		l, ok := inst.FindLayer(input.Body.Layer)
		if !ok {
			return nil, huma.Error404NotFound("layer not found: " + input.Body.Layer)
		}
		if c, ok := l.(olmap.Container); ok {
			inst.ZoomToVectors(c.Layers())
		} else {
			inst.ZoomToLayer(l)
		}
	}
	return &struct{ Body ViewBody }{Body: viewBody(inst.Map())}, nil
}

func (h *APIHandler) AddPopup(ctx context.Context, input *TargetInput) (*struct{ Body OverlayBody }, error) {
	inst, err := h.instance(input.Target)
	if err != nil {
		return nil, err
	}
	popup := inst.AddPopup(behavior.FeatureInfo(inst, h.svc.Renderer))
	return &struct{ Body OverlayBody }{Body: overlayBody(popup)}, nil
}

type ClickBody struct {
	X      *float64  `json:"x,omitempty" doc:"Viewport pixel x"`
	Y      *float64  `json:"y,omitempty" doc:"Viewport pixel y"`
	LonLat []float64 `json:"lonLat,omitempty" minItems:"2" maxItems:"2" doc:"Click position in EPSG:4326, used when x and y are absent"`
}

type ClickResult struct {
	Coordinate []float64     `json:"coordinate" doc:"Click position in map coordinates"`
	Overlays   []OverlayBody `json:"overlays" doc:"Overlays shown after the click"`
}

func (h *APIHandler) Click(ctx context.Context, input *struct {
	TargetInput
	Body ClickBody
}) (*struct{ Body ClickResult }, error) {
	inst, err := h.instance(input.Target)
	if err != nil {
		return nil, err
	}
	m := inst.Map()

	var coord orb.Point
	switch {
	case input.Body.X != nil && input.Body.Y != nil:
		coord = m.View().CoordinateFromPixel(olmap.Pixel{*input.Body.X, *input.Body.Y}, m.Size())
	case len(input.Body.LonLat) == 2:
		coord = project.WGS84.ToMercator(orb.Point{input.Body.LonLat[0], input.Body.LonLat[1]})
	default:
		return nil, huma.Error400BadRequest("click needs x and y or lonLat")
	}

	for _, o := range m.Overlays() {
		o.Hide()
	}
	inst.Click(coord)

	result := ClickResult{Coordinate: []float64{coord[0], coord[1]}, Overlays: []OverlayBody{}}
	for _, o := range m.Overlays() {
		if _, shown := o.Position(); shown {
			result.Overlays = append(result.Overlays, overlayBody(o))
		}
	}
	return &struct{ Body ClickResult }{Body: result}, nil
}

type DrawingBody struct {
	WKT   string `json:"wkt" doc:"Drawn features as EPSG:4326 WKT"`
	Count int    `json:"count" doc:"Number of drawn features"`
}

type DrawInput struct {
	WKT string `json:"wkt" minLength:"1" doc:"EPSG:4326 geometry to draw; multi-part geometries draw one feature per part" example:"LINESTRING(0 0, 1 1)"`
}

func (h *APIHandler) edit(target string) (instance.EditHandle, error) {
	inst, err := h.instance(target)
	if err != nil {
		return nil, err
	}
	edit := inst.Edit()
	if edit == nil {
		return nil, toHumaError(ErrDrawingDisabled)
	}
	return edit, nil
}

func drawingBody(edit instance.EditHandle) DrawingBody {
	return DrawingBody{WKT: edit.WKT(), Count: len(edit.Features())}
}

func (h *APIHandler) GetDrawing(ctx context.Context, input *TargetInput) (*struct{ Body DrawingBody }, error) {
	edit, err := h.edit(input.Target)
	if err != nil {
		return nil, err
	}
	return &struct{ Body DrawingBody }{Body: drawingBody(edit)}, nil
}

func (h *APIHandler) Draw(ctx context.Context, input *struct {
	TargetInput
	Body DrawInput
}) (*struct{ Body DrawingBody }, error) {
	edit, err := h.edit(input.Target)
	if err != nil {
		return nil, err
	}
	features, err := layer.ParseWKT(input.Body.WKT)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	for _, f := range features {
		edit.Add(f.Geometry)
	}
	return &struct{ Body DrawingBody }{Body: drawingBody(edit)}, nil
}

func (h *APIHandler) ClearDrawing(ctx context.Context, input *TargetInput) (*struct{ Body DrawingBody }, error) {
	edit, err := h.edit(input.Target)
	if err != nil {
		return nil, err
	}
	edit.Clear()
	return &struct{ Body DrawingBody }{Body: drawingBody(edit)}, nil
}
