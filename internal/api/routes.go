// Package api defines the Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/behavior"
	"github.com/joeblew999/plat-map/internal/catalog"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/preset"
	"github.com/joeblew999/plat-map/internal/registry"
	"github.com/joeblew999/plat-map/internal/store"
	"github.com/joeblew999/plat-map/internal/templates"
)

// Services holds the dependencies of the API handlers.
type Services struct {
	Registry *registry.Manager
	Builder  *preset.Builder
	Extras   behavior.Extras
	Renderer *templates.Renderer
	Catalog  *catalog.Catalog
	Store    store.LayerStore
}

// RegisterRoutes registers every REST route on api.
func RegisterRoutes(api huma.API, svc *Services) {
	huma.AutoRegister(api, NewAPIHandler(svc))
}

// Shared types

// TargetInput selects a map instance by target.
type TargetInput struct {
	Target string `path:"target" doc:"Map target" example:"main-map"`
}

type MessageBody struct {
	Message string `json:"message" doc:"Result message"`
}

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
	Maps    int    `json:"maps" doc:"Number of live map instances"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterMaps registers map instance routes.
func (h *APIHandler) RegisterMaps(api huma.API) {
	huma.Get(api, "/api/v1/maps", h.ListMaps, huma.OperationTags("maps"))
	huma.Post(api, "/api/v1/maps", h.CreateMap, huma.OperationTags("maps"), created)
	huma.Get(api, "/api/v1/maps/{target}", h.GetMap, huma.OperationTags("maps"))
	huma.Delete(api, "/api/v1/maps/{target}", h.DeleteMap, huma.OperationTags("maps"))
}

// RegisterLayers registers layer routes of a map.
func (h *APIHandler) RegisterLayers(api huma.API) {
	huma.Post(api, "/api/v1/maps/{target}/layers", h.AddLayer, huma.OperationTags("layers"), created)
	huma.Patch(api, "/api/v1/maps/{target}/layers/{title}", h.SetLayerVisibility, huma.OperationTags("layers"))
}

// RegisterBehaviors registers behavior routes.
func (h *APIHandler) RegisterBehaviors(api huma.API) {
	huma.Get(api, "/api/v1/behaviors", h.ListBehaviors, huma.OperationTags("behaviors"))
	huma.Post(api, "/api/v1/maps/{target}/behaviors", h.AddBehavior, huma.OperationTags("behaviors"))
}

// RegisterView registers view, popup and click routes.
func (h *APIHandler) RegisterView(api huma.API) {
	huma.Post(api, "/api/v1/maps/{target}/zoom", h.Zoom, huma.OperationTags("view"))
	huma.Post(api, "/api/v1/maps/{target}/popup", h.AddPopup, huma.OperationTags("view"), created)
	huma.Post(api, "/api/v1/maps/{target}/click", h.Click, huma.OperationTags("view"))
}

// RegisterDrawing registers routes over the edit handle.
func (h *APIHandler) RegisterDrawing(api huma.API) {
	huma.Get(api, "/api/v1/maps/{target}/features", h.GetDrawing, huma.OperationTags("drawing"))
	huma.Post(api, "/api/v1/maps/{target}/features", h.Draw, huma.OperationTags("drawing"))
	huma.Delete(api, "/api/v1/maps/{target}/features", h.ClearDrawing, huma.OperationTags("drawing"))
}

// RegisterSources registers source listing routes.
func (h *APIHandler) RegisterSources(api huma.API) {
	huma.Get(api, "/api/v1/sources", h.GetSources, huma.OperationTags("sources"))
}

func created(o *huma.Operation) { o.DefaultStatus = 201 }

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0", Maps: h.svc.Registry.Len()}}, nil
}

func (h *APIHandler) GetSources(ctx context.Context, input *struct{}) (*struct{ Body []catalog.Source }, error) {
	if h.svc.Catalog == nil {
		return &struct{ Body []catalog.Source }{Body: []catalog.Source{}}, nil
	}
	sources, err := h.svc.Catalog.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list sources", err)
	}
	return &struct{ Body []catalog.Source }{Body: sources}, nil
}

// instance looks up the map bound to target or returns a 404.
func (h *APIHandler) instance(target string) (*instance.Instance, error) {
	inst, ok := h.svc.Registry.Get(target)
	if !ok {
		return nil, toHumaError(&registry.NotFoundError{Target: target})
	}
	return inst, nil
}
