package olmap

import "sync"

// Control is a UI element registered on a map.
type Control interface {
	Name() string
}

// SidePanel is implemented by controls that host named panes.
type SidePanel interface {
	Control
	DefinePane(opts PaneOptions) *Pane
}

// PanelRenderer is implemented by controls that render a layer tree panel.
type PanelRenderer interface {
	Control
	RenderPanel(m *Map) []LayerEntry
}

// FindControl returns the first control on m that implements T.
func FindControl[T Control](m *Map) (T, bool) {
	for _, c := range m.Controls() {
		if t, ok := c.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// BasicControl is a control with no behavior beyond its name.
type BasicControl struct {
	name string
}

// NewControl creates a named control.
func NewControl(name string) *BasicControl {
	return &BasicControl{name: name}
}

// Name returns the control name.
func (c *BasicControl) Name() string { return c.name }

// LayerEntry is one row of a rendered layer tree.
type LayerEntry struct {
	Title   string
	Visible bool
	Role    string
	Depth   int
	Group   bool
}

// LayerSwitcher lists the map's layers.
type LayerSwitcher struct {
	Reverse bool
}

// Name returns "layerSwitcher".
func (c *LayerSwitcher) Name() string { return "layerSwitcher" }

// RenderPanel flattens the layer tree into entries, top-most layer first
// when Reverse is set.
func (c *LayerSwitcher) RenderPanel(m *Map) []LayerEntry {
	return LayerTree(m.Layers(), c.Reverse)
}

// LayerTree flattens a collection into entries. Children keep their order
// relative to their group.
func LayerTree(c *Collection, reverse bool) []LayerEntry {
	var out []LayerEntry
	layers := c.Array()
	if reverse {
		for i, j := 0, len(layers)-1; i < j; i, j = i+1, j-1 {
			layers[i], layers[j] = layers[j], layers[i]
		}
	}
	for _, l := range layers {
		entry := LayerEntry{Title: l.Title(), Visible: l.Visible()}
		if tl, ok := l.(*TileLayer); ok {
			entry.Role = tl.Role()
		}
		g, isGroup := l.(Container)
		entry.Group = isGroup
		out = append(out, entry)
		if isGroup {
			for _, child := range LayerTree(g.Layers(), reverse) {
				child.Depth++
				out = append(out, child)
			}
		}
	}
	return out
}

// PaneOptions describes a side panel pane.
type PaneOptions struct {
	PaneID string
	Name   string
	Icon   string
	Weight int
}

// Pane is a side panel section holding widget markup.
type Pane struct {
	mu      sync.RWMutex
	opts    PaneOptions
	widgets []string
}

// ID returns the pane ID.
func (p *Pane) ID() string { return p.opts.PaneID }

// Options returns the pane's definition.
func (p *Pane) Options() PaneOptions { return p.opts }

// AddWidgetElement appends widget markup and returns its index.
func (p *Pane) AddWidgetElement(html string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.widgets = append(p.widgets, html)
	return len(p.widgets) - 1
}

// SetWidgetElement replaces the markup of widget i.
func (p *Pane) SetWidgetElement(i int, html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i >= 0 && i < len(p.widgets) {
		p.widgets[i] = html
	}
}

// Widgets returns a snapshot of the widget markup.
func (p *Pane) Widgets() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.widgets...)
}

// SidePanelControl is a collapsible panel made of panes.
type SidePanelControl struct {
	mu    sync.RWMutex
	panes []*Pane
}

// Name returns "sidePanel".
func (c *SidePanelControl) Name() string { return "sidePanel" }

// DefinePane returns the pane with opts.PaneID, creating it if needed.
func (c *SidePanelControl) DefinePane(opts PaneOptions) *Pane {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.panes {
		if p.opts.PaneID == opts.PaneID {
			return p
		}
	}
	p := &Pane{opts: opts}
	c.panes = append(c.panes, p)
	return p
}

// Pane looks up a pane by ID.
func (c *SidePanelControl) Pane(id string) (*Pane, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.panes {
		if p.opts.PaneID == id {
			return p, true
		}
	}
	return nil, false
}

// Panes returns a snapshot of the panes.
func (c *SidePanelControl) Panes() []*Pane {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Pane(nil), c.panes...)
}

// Interaction is a user-input handler registered on a map.
type Interaction interface {
	Name() string
	Active() bool
	SetActive(active bool)
}

// BasicInteraction is a named interaction that can be toggled.
type BasicInteraction struct {
	mu     sync.RWMutex
	name   string
	active bool
}

// NewInteraction creates an active interaction.
func NewInteraction(name string) *BasicInteraction {
	return &BasicInteraction{name: name, active: true}
}

// Name returns the interaction name.
func (i *BasicInteraction) Name() string { return i.name }

// Active reports whether the interaction handles input.
func (i *BasicInteraction) Active() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.active
}

// SetActive toggles the interaction.
func (i *BasicInteraction) SetActive(active bool) {
	i.mu.Lock()
	i.active = active
	i.mu.Unlock()
}
