package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/store"
)

// StateHandler exposes the remembered layer visibility.
type StateHandler struct {
	store store.LayerStore
}

// NewStateHandler creates a state handler over s.
func NewStateHandler(s store.LayerStore) *StateHandler {
	return &StateHandler{store: s}
}

// RegisterRoutes registers layer state routes with Huma.
func (h *StateHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/state", h.ListState, huma.OperationTags("state"))
}

// StateOutput is the response for listing layer state.
type StateOutput struct {
	Body struct {
		Entries []store.Entry `json:"entries" doc:"Remembered layer visibility"`
		Count   int           `json:"count" doc:"Number of entries"`
	}
}

// ListState returns every remembered layer visibility.
func (h *StateHandler) ListState(ctx context.Context, input *struct{}) (*StateOutput, error) {
	if h.store == nil {
		return nil, huma.Error503ServiceUnavailable("Layer state store not available")
	}
	entries, err := h.store.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list layer state", err)
	}
	out := &StateOutput{}
	out.Body.Entries = entries
	out.Body.Count = len(entries)
	return out, nil
}
