// Package olmap models the map widget that plat-map drives: a layer tree,
// overlays, controls, interactions, a view, and an event bus. It stands in
// for the browser rendering engine, which draws whatever this model holds.
package olmap

import (
	"sync"

	"github.com/paulmach/orb"
)

// DefaultSize is used when a map is created without a viewport size.
var DefaultSize = Size{Width: 800, Height: 600}

// Options configures a new Map.
type Options struct {
	Target       string
	Layers       []Layer
	Controls     []Control
	Interactions []Interaction
	View         *View
	Size         Size
}

// Map is a widget bound to one page target.
type Map struct {
	target string
	layers *Collection
	view   *View
	bus    *Bus

	mu           sync.RWMutex
	size         Size
	overlays     []*Overlay
	controls     []Control
	interactions []Interaction
}

// New creates a map. Initial layers are bound without layer-added events.
func New(opts Options) *Map {
	m := &Map{
		target:       opts.Target,
		layers:       NewCollection(),
		view:         opts.View,
		bus:          NewBus(),
		size:         opts.Size,
		controls:     append([]Control(nil), opts.Controls...),
		interactions: append([]Interaction(nil), opts.Interactions...),
	}
	if m.view == nil {
		m.view = NewView(orb.Point{0, 0}, 2)
	}
	if m.size.Width == 0 || m.size.Height == 0 {
		m.size = DefaultSize
	}
	for _, l := range opts.Layers {
		m.layers.items = append(m.layers.items, l)
		m.bindTree(l)
	}
	m.layers.setOnAdd(func(l Layer) { m.added(l, nil) })
	return m
}

// Target returns the page target the map is bound to.
func (m *Map) Target() string { return m.target }

// Layers returns the top-level layer collection.
func (m *Map) Layers() *Collection { return m.layers }

// AddLayer appends a layer to the top level.
func (m *Map) AddLayer(l Layer) { m.layers.Push(l) }

// RemoveLayer removes a top-level layer.
func (m *Map) RemoveLayer(l Layer) bool { return m.layers.Remove(l) }

// View returns the map view.
func (m *Map) View() *View { return m.view }

// Size returns the viewport size.
func (m *Map) Size() Size {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// SetSize changes the viewport size.
func (m *Map) SetSize(s Size) {
	m.mu.Lock()
	m.size = s
	m.mu.Unlock()
}

// AddOverlay registers an overlay.
func (m *Map) AddOverlay(o *Overlay) {
	m.mu.Lock()
	m.overlays = append(m.overlays, o)
	m.mu.Unlock()
}

// Overlays returns a snapshot of the overlays.
func (m *Map) Overlays() []*Overlay {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Overlay(nil), m.overlays...)
}

// Controls returns a snapshot of the controls.
func (m *Map) Controls() []Control {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Control(nil), m.controls...)
}

// AddControl registers a control.
func (m *Map) AddControl(c Control) {
	m.mu.Lock()
	m.controls = append(m.controls, c)
	m.mu.Unlock()
}

// RemoveControl unregisters c. It reports whether c was present.
func (m *Map) RemoveControl(c Control) bool {
	if c == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.controls {
		if existing == c {
			m.controls = append(m.controls[:i:i], m.controls[i+1:]...)
			return true
		}
	}
	return false
}

// Interactions returns a snapshot of the interactions.
func (m *Map) Interactions() []Interaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Interaction(nil), m.interactions...)
}

// AddInteraction registers an interaction.
func (m *Map) AddInteraction(i Interaction) {
	m.mu.Lock()
	m.interactions = append(m.interactions, i)
	m.mu.Unlock()
}

// On registers a handler for events of type t.
func (m *Map) On(t EventType, fn Handler) func() { return m.bus.On(t, fn) }

// Emit stamps e with the map target and dispatches it.
func (m *Map) Emit(e Event) {
	e.Target = m.target
	m.bus.Emit(e)
}

// Bus returns the map's event bus.
func (m *Map) Bus() *Bus { return m.bus }

// SingleClick dispatches a single-click at a map coordinate.
func (m *Map) SingleClick(coord orb.Point) {
	m.Emit(Event{
		Type:       EventSingleClick,
		Coordinate: coord,
		Pixel:      m.view.PixelFromCoordinate(coord, m.Size()),
	})
}

// Dispose drops layers, overlays and controls and closes the event bus.
func (m *Map) Dispose() {
	m.layers.Clear()
	m.mu.Lock()
	m.overlays = nil
	m.controls = nil
	m.interactions = nil
	m.mu.Unlock()
	m.bus.Close()
}

// added binds a layer that just entered the map and announces it.
func (m *Map) added(l Layer, parent Container) {
	m.bindTree(l)
	e := Event{Type: EventLayerAdded, Layer: l}
	if parent != nil {
		e.Data = map[string]any{"group": parent.Title()}
	}
	m.Emit(e)
}

// bindTree wires visibility notifications for l and, for groups, watches
// their member collection so nested additions are announced too.
func (m *Map) bindTree(l Layer) {
	l.bind(m.visibilityChanged)
	g, ok := l.(Container)
	if !ok {
		return
	}
	g.Layers().setOnAdd(func(child Layer) { m.added(child, g) })
	g.Layers().ForEach(m.bindTree)
}

func (m *Map) visibilityChanged(l Layer, key string) {
	if key != PropVisible {
		return
	}
	m.Emit(Event{
		Type:  EventLayerVisibility,
		Layer: l,
		Data:  map[string]any{"visible": l.Visible()},
	})
}
