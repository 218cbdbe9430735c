package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/registry"
)

// ErrDrawingDisabled is returned by drawing routes on maps without an edit handle.
var ErrDrawingDisabled = errors.New("drawing is not enabled on this map")

// toHumaError maps domain errors to HTTP status errors.
func toHumaError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, registry.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, registry.ErrDuplicateInstance), errors.Is(err, ErrDrawingDisabled):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, layer.ErrMissingParameter),
		errors.Is(err, layer.ErrInvalidLayerType),
		errors.Is(err, instance.ErrUnknownBehavior),
		errors.Is(err, instance.ErrMissingTarget):
		return huma.Error400BadRequest(err.Error())
	}
	return huma.Error500InternalServerError("Internal error", err)
}
