package layer

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingParameter is matched by MissingParameterError.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrInvalidLayerType is matched by InvalidLayerTypeError.
	ErrInvalidLayerType = errors.New("invalid layer type")
)

// MissingParameterError reports a required field absent for a layer type.
type MissingParameterError struct {
	Type  Type
	Field string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing %s for %s layer", e.Field, e.Type)
}

// Is matches ErrMissingParameter.
func (e *MissingParameterError) Is(target error) bool { return target == ErrMissingParameter }

// InvalidLayerTypeError reports an unrecognized layer type tag.
type InvalidLayerTypeError struct {
	Type string
}

func (e *InvalidLayerTypeError) Error() string {
	return fmt.Sprintf("invalid layer type %q", e.Type)
}

// Is matches ErrInvalidLayerType.
func (e *InvalidLayerTypeError) Is(target error) bool { return target == ErrInvalidLayerType }
