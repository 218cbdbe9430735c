// Package preset declares maps, with their layers and behaviors, in YAML and
// builds them into a registry.
package preset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-map/internal/behavior"
	"github.com/joeblew999/plat-map/internal/instance"
	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/logger"
	"github.com/joeblew999/plat-map/internal/registry"
	"github.com/joeblew999/plat-map/internal/store"
	"github.com/joeblew999/plat-map/internal/templates"
)

// LayerSpec is one addLayer call.
type LayerSpec struct {
	Type          string `json:"type" yaml:"type" minLength:"1" doc:"Layer type: geojson, wkt, wms or xyz, case-insensitive" example:"wkt"`
	layer.Options `yaml:",inline"`
}

// BehaviorSpec is one behavior attachment.
type BehaviorSpec struct {
	Name    string                   `json:"name" yaml:"name" doc:"Behavior name" example:"measure"`
	Options instance.BehaviorOptions `json:"options,omitempty" yaml:"options,omitempty" doc:"Behavior options"`
}

// MapSpec declares one map instance.
type MapSpec struct {
	Target           string `json:"target" yaml:"target" minLength:"1" doc:"Page element the map is bound to" example:"main-map"`
	instance.Options `yaml:",inline"`
	Layers           []LayerSpec    `json:"layers,omitempty" yaml:"layers,omitempty" doc:"Layers added after creation"`
	Behaviors        []BehaviorSpec `json:"behaviors,omitempty" yaml:"behaviors,omitempty" doc:"Behaviors attached after the layers"`
	Popup            bool           `json:"popup,omitempty" yaml:"popup,omitempty" doc:"Show a feature-info popup on click"`
	FitVectors       bool           `json:"fitVectors,omitempty" yaml:"fitVectors,omitempty" doc:"Zoom to the vector layers once they are added"`
}

// File is a preset document.
type File struct {
	Maps []MapSpec `json:"maps" yaml:"maps"`
}

// Load reads a preset file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a preset document, rejecting unknown fields.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing preset: %w", err)
	}
	return &f, nil
}

// Validate checks targets, layer types and options, and behavior names
// without creating any instance.
func (f *File) Validate(extras behavior.Extras) error {
	var errs []error
	seen := make(map[string]bool)
	for i, m := range f.Maps {
		if m.Target == "" {
			errs = append(errs, fmt.Errorf("maps[%d]: %w", i, instance.ErrMissingTarget))
			continue
		}
		if seen[m.Target] {
			errs = append(errs, fmt.Errorf("maps[%d]: %w", i, &registry.DuplicateInstanceError{Target: m.Target}))
		}
		seen[m.Target] = true
		if err := m.Validate(extras); err != nil {
			errs = append(errs, fmt.Errorf("maps[%d] %s: %w", i, m.Target, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks the layers and behaviors of one map.
func (m MapSpec) Validate(extras behavior.Extras) error {
	var errs []error
	for i, l := range m.Layers {
		if _, err := layer.Build(l.Type, l.Options); err != nil {
			errs = append(errs, fmt.Errorf("layers[%d]: %w", i, err))
		}
	}
	for i, b := range m.Behaviors {
		if !extras.Has(b.Name) {
			errs = append(errs, fmt.Errorf("behaviors[%d]: %w", i, &instance.UnknownBehaviorError{Name: b.Name}))
		}
	}
	return errors.Join(errs...)
}

// Builder creates map instances from specs.
type Builder struct {
	Registry *registry.Manager
	Extras   behavior.Extras
	Renderer *templates.Renderer
	Logger   logger.Logger
}

// Build creates the instance for spec, then adds its layers, behaviors and
// popup in that order. On failure the partly built instance is removed.
func (b *Builder) Build(ctx context.Context, spec MapSpec) (*instance.Instance, error) {
	inst, err := b.Registry.Create(ctx, spec.Target, spec.Options)
	if err != nil {
		return nil, err
	}
	if err := b.populate(ctx, inst, spec); err != nil {
		_ = b.Registry.Remove(spec.Target)
		return nil, err
	}
	return inst, nil
}

func (b *Builder) populate(ctx context.Context, inst *instance.Instance, spec MapSpec) error {
	for i, l := range spec.Layers {
		if _, err := inst.AddLayer(l.Type, l.Options); err != nil {
			return fmt.Errorf("layers[%d]: %w", i, err)
		}
	}
	for i, bs := range spec.Behaviors {
		if err := b.Extras.Attach(ctx, inst, bs.Name, bs.Options); err != nil {
			return fmt.Errorf("behaviors[%d] %s: %w", i, bs.Name, err)
		}
	}
	if spec.Popup {
		inst.AddPopup(behavior.FeatureInfo(inst, b.Renderer))
	}
	if spec.FitVectors {
		inst.ZoomToVectors(nil)
	}
	return nil
}

// Apply builds every map in f. It stops at the first failure.
func (b *Builder) Apply(ctx context.Context, f *File) error {
	log := b.Logger
	if log == nil {
		log = logger.Discard()
	}
	for _, spec := range f.Maps {
		if _, err := b.Build(ctx, spec); err != nil {
			return fmt.Errorf("preset map %s: %w", spec.Target, err)
		}
		log.Info("preset map ready", "target", spec.Target, "layers", len(spec.Layers), "behaviors", len(spec.Behaviors))
	}
	return nil
}

// Check validates f and then builds it into a throwaway registry backed by
// an in-memory store, so attach-time behavior errors surface too. Remote
// sources are not fetched.
func Check(ctx context.Context, f *File, extras behavior.Extras) error {
	if err := f.Validate(extras); err != nil {
		return err
	}
	reg := registry.New(instance.Config{Builtins: behavior.Builtins(store.NewMemory())})
	defer reg.Close()
	b := &Builder{Registry: reg, Extras: extras, Renderer: templates.Default()}
	return b.Apply(ctx, f)
}
