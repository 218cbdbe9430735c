package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/layer"
)

type InfoHandler struct {
	dataDir string
	store   string
	svc     *Services
}

func NewInfoHandler(dataDir, store string, svc *Services) *InfoHandler {
	return &InfoHandler{dataDir: dataDir, store: store, svc: svc}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name       string   `json:"name" doc:"Service name"`
	Version    string   `json:"version" doc:"Service version"`
	DataDir    string   `json:"data_dir" doc:"Data directory path"`
	Store      string   `json:"store" doc:"Layer state backend" enum:"memory,duckdb"`
	Maps       []string `json:"maps" doc:"Live map targets"`
	LayerTypes []string `json:"layer_types" doc:"Supported layer types"`
	Behaviors  []string `json:"behaviors" doc:"Attachable behaviors"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	types := make([]string, len(layer.Types))
	for i, t := range layer.Types {
		types[i] = string(t)
	}
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:       "plat-map",
		Version:    "0.1.0",
		DataDir:    h.dataDir,
		Store:      h.store,
		Maps:       h.svc.Registry.List(),
		LayerTypes: types,
		Behaviors:  h.svc.Extras.Names(),
	}}, nil
}
