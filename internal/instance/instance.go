// Package instance implements a map instance: one map widget bound to a
// page target, with layer, popup, zoom and behavior operations.
package instance

import (
	"context"
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/joeblew999/plat-map/internal/layer"
	"github.com/joeblew999/plat-map/internal/logger"
	"github.com/joeblew999/plat-map/internal/olmap"
	"github.com/joeblew999/plat-map/internal/style"
)

// Options are the declarative settings of a new instance.
type Options struct {
	Drawing            bool                     `json:"drawing,omitempty" yaml:"drawing,omitempty" doc:"Enable drawing and editing controls"`
	ControlOptions     style.ControlOptions     `json:"controlOptions,omitempty" yaml:"controlOptions,omitempty" doc:"Toggle default controls by name"`
	InteractionOptions style.InteractionOptions `json:"interactionOptions,omitempty" yaml:"interactionOptions,omitempty" doc:"Toggle default interactions by name"`
	Center             []float64                `json:"center,omitempty" yaml:"center,omitempty" minItems:"2" maxItems:"2" doc:"Initial center in map coordinates"`
	Zoom               *float64                 `json:"zoom,omitempty" yaml:"zoom,omitempty" doc:"Initial zoom level, defaults to 2"`
	Size               *olmap.Size              `json:"size,omitempty" yaml:"size,omitempty" doc:"Viewport size in pixels"`
}

// DefaultZoom is the zoom of a new view.
const DefaultZoom = 2

// Config carries the collaborators an instance needs.
type Config struct {
	Builtins Builtins
	Loader   olmap.Loader
	Logger   logger.Logger
}

// Instance wraps one map widget bound to a target.
type Instance struct {
	target string
	m      *olmap.Map
	cfg    Config
	log    logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.RWMutex
	edit EditHandle

	// groupMu serializes group find-or-create; editInit serializes InitEdit.
	groupMu  sync.Mutex
	editInit sync.Mutex
}

// New assembles an instance: default layers, controls and interactions,
// then the view, then drawing tools when opts.Drawing is set.
func New(ctx context.Context, target string, opts Options, cfg Config) (*Instance, error) {
	if target == "" {
		return nil, ErrMissingTarget
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	center := orb.Point{0, 0}
	if len(opts.Center) == 2 {
		center = orb.Point{opts.Center[0], opts.Center[1]}
	}
	zoom := float64(DefaultZoom)
	if opts.Zoom != nil {
		zoom = *opts.Zoom
	}
	var size olmap.Size
	if opts.Size != nil {
		size = *opts.Size
	}

	inst := &Instance{
		target: target,
		cfg:    cfg,
		log:    cfg.Logger.With("target", target),
		m: olmap.New(olmap.Options{
			Target:       target,
			Layers:       style.Layers(),
			Controls:     style.Controls(opts.ControlOptions),
			Interactions: style.Interactions(opts.InteractionOptions),
			View:         olmap.NewView(center, zoom),
			Size:         size,
		}),
	}
	inst.ctx, inst.cancel = context.WithCancel(context.Background())

	if opts.Drawing {
		if err := inst.AddBehavior(ctx, string(BehaviorEdit), nil); err != nil {
			inst.Dispose()
			return nil, fmt.Errorf("enabling drawing: %w", err)
		}
	}
	return inst, nil
}

// Target returns the page target.
func (i *Instance) Target() string { return i.target }

// Map returns the underlying map widget.
func (i *Instance) Map() *olmap.Map { return i.m }

// Logger returns the instance logger.
func (i *Instance) Logger() logger.Logger { return i.log }

// AddLayer builds a layer of type typ and inserts it. With opts.Group set
// the layer goes into the top-level group of that title, created on first
// use; otherwise it is appended to the top-level layers.
func (i *Instance) AddLayer(typ string, opts layer.Options) (olmap.Layer, error) {
	l, err := layer.Build(typ, opts)
	if err != nil {
		return nil, err
	}

	if opts.Group != "" {
		i.findOrCreateGroup(opts.Group).Layers().Push(l)
	} else {
		i.m.AddLayer(l)
	}

	i.load(l)
	i.log.Debug("layer added", "type", typ, "title", l.Title(), "group", opts.Group)
	return l, nil
}

// FindLayer returns the first layer titled title, searching groups depth-first.
func (i *Instance) FindLayer(title string) (olmap.Layer, bool) {
	var found olmap.Layer
	olmap.Walk(i.m.Layers(), func(l olmap.Layer, _ int) {
		if found == nil && l.Title() == title {
			found = l
		}
	})
	return found, found != nil
}

// findOrCreateGroup returns the last top-level container titled title.
// Concurrent callers asking for the same title get the same group.
func (i *Instance) findOrCreateGroup(title string) olmap.Container {
	i.groupMu.Lock()
	defer i.groupMu.Unlock()

	var group olmap.Container
	for _, l := range i.m.Layers().Array() {
		if c, ok := l.(olmap.Container); ok && c.Title() == title {
			group = c
		}
	}
	if group == nil {
		group = olmap.NewGroup(olmap.GroupOptions{Title: title, Visible: true})
		i.m.AddLayer(group)
	}
	return group
}

// load starts fetching a URL-backed vector source in the background.
func (i *Instance) load(l olmap.Layer) {
	vl, ok := l.(*olmap.VectorLayer)
	if !ok || vl.VectorSource() == nil || vl.VectorSource().URL() == "" || i.cfg.Loader == nil {
		return
	}
	src := vl.VectorSource()
	go func() {
		if err := src.Load(i.ctx, i.cfg.Loader); err != nil {
			i.log.Warn("source load failed", "title", vl.Title(), "url", src.URL(), "err", err)
			return
		}
		i.log.Debug("source ready", "title", vl.Title(), "features", len(src.Features()))
	}()
}

// On registers a handler for instance notifications.
func (i *Instance) On(t olmap.EventType, fn olmap.Handler) func() {
	return i.m.On(t, fn)
}

// Subscribe returns a channel receiving every notification.
func (i *Instance) Subscribe() chan olmap.Event { return i.m.Bus().Subscribe() }

// Unsubscribe releases a channel from Subscribe.
func (i *Instance) Unsubscribe(ch chan olmap.Event) { i.m.Bus().Unsubscribe(ch) }

// Click dispatches a single-click at a map coordinate.
func (i *Instance) Click(coord orb.Point) { i.m.SingleClick(coord) }

// Dispose stops source loads and tears down the widget.
func (i *Instance) Dispose() {
	i.cancel()
	i.m.Dispose()
}
