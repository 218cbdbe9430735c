package olmap

import "sync"

// Well-known layer property keys.
const (
	PropTitle   = "title"
	PropVisible = "visible"
	PropType    = "type"
)

// Layer roles stored under PropType, used by layer switchers.
const (
	RoleBase   = "base"
	RoleNormal = "normal"
)

// Layer is a renderable entry in a map's layer tree.
type Layer interface {
	Title() string
	Visible() bool
	SetVisible(visible bool)
	Get(key string) any
	Set(key string, value any)

	bind(notify func(Layer, string))
}

// Container is implemented by layers that hold other layers.
type Container interface {
	Layer
	Layers() *Collection
}

// Sourced is implemented by layers backed by a data source.
type Sourced interface {
	Layer
	Source() Source
}

// properties is the property bag shared by all layer kinds.
type properties struct {
	mu     sync.RWMutex
	self   Layer
	values map[string]any
	notify func(Layer, string)
}

func (p *properties) init(self Layer, title string, visible bool) {
	p.self = self
	p.values = map[string]any{
		PropTitle:   title,
		PropVisible: visible,
	}
}

func (p *properties) Title() string {
	s, _ := p.Get(PropTitle).(string)
	return s
}

func (p *properties) Visible() bool {
	v, _ := p.Get(PropVisible).(bool)
	return v
}

func (p *properties) SetVisible(visible bool) {
	p.Set(PropVisible, visible)
}

func (p *properties) Get(key string) any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.values[key]
}

// Set stores a property. Changing visibility on a bound layer notifies the map.
func (p *properties) Set(key string, value any) {
	p.mu.Lock()
	old, had := p.values[key]
	p.values[key] = value
	notify := p.notify
	p.mu.Unlock()

	if notify == nil {
		return
	}
	if key == PropVisible && had {
		was, _ := old.(bool)
		now, _ := value.(bool)
		if was == now {
			return
		}
	}
	notify(p.self, key)
}

func (p *properties) bind(notify func(Layer, string)) {
	p.mu.Lock()
	p.notify = notify
	p.mu.Unlock()
}

// VectorLayer renders features from a VectorSource.
type VectorLayer struct {
	properties
	source *VectorSource
	style  any
}

// VectorLayerOptions configures a VectorLayer.
type VectorLayerOptions struct {
	Title   string
	Source  *VectorSource
	Style   any
	Visible bool
}

// NewVectorLayer creates a detached vector layer.
func NewVectorLayer(opts VectorLayerOptions) *VectorLayer {
	l := &VectorLayer{source: opts.Source, style: opts.Style}
	l.properties.init(l, opts.Title, opts.Visible)
	return l
}

// Source returns the layer's source.
func (l *VectorLayer) Source() Source { return l.source }

// VectorSource returns the concrete vector source.
func (l *VectorLayer) VectorSource() *VectorSource { return l.source }

// Style returns the style the layer was built with.
func (l *VectorLayer) Style() any { return l.style }

// TileLayer renders tiles from a tiled source.
type TileLayer struct {
	properties
	source TileSource
}

// TileLayerOptions configures a TileLayer.
type TileLayerOptions struct {
	Title   string
	Source  TileSource
	Visible bool
	Role    string
}

// NewTileLayer creates a detached tile layer.
func NewTileLayer(opts TileLayerOptions) *TileLayer {
	l := &TileLayer{source: opts.Source}
	l.properties.init(l, opts.Title, opts.Visible)
	role := opts.Role
	if role == "" {
		role = RoleNormal
	}
	l.values[PropType] = role
	return l
}

// Source returns the layer's source.
func (l *TileLayer) Source() Source { return l.source }

// TileSource returns the concrete tiled source.
func (l *TileLayer) TileSource() TileSource { return l.source }

// Role returns "base" or "normal".
func (l *TileLayer) Role() string {
	s, _ := l.Get(PropType).(string)
	return s
}

// Group is a named, ordered container of layers.
type Group struct {
	properties
	layers *Collection
}

// GroupOptions configures a Group.
type GroupOptions struct {
	Title   string
	Layers  []Layer
	Visible bool
}

// NewGroup creates a detached layer group.
func NewGroup(opts GroupOptions) *Group {
	g := &Group{layers: NewCollection(opts.Layers...)}
	g.properties.init(g, opts.Title, opts.Visible)
	return g
}

// Layers returns the group's member collection.
func (g *Group) Layers() *Collection { return g.layers }

// Collection is an ordered, observable list of layers.
type Collection struct {
	mu    sync.RWMutex
	items []Layer
	onAdd func(Layer)
}

// NewCollection creates a collection holding layers.
func NewCollection(layers ...Layer) *Collection {
	return &Collection{items: append([]Layer(nil), layers...)}
}

// Push appends a layer and notifies the owning map, if any.
func (c *Collection) Push(l Layer) {
	c.mu.Lock()
	c.items = append(c.items, l)
	onAdd := c.onAdd
	c.mu.Unlock()

	if onAdd != nil {
		onAdd(l)
	}
}

// Remove drops the first occurrence of l. It reports whether l was present.
func (c *Collection) Remove(l Layer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item == l {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			l.bind(nil)
			return true
		}
	}
	return false
}

// Array returns a snapshot of the layers.
func (c *Collection) Array() []Layer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Layer(nil), c.items...)
}

// Len returns the number of layers.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// ForEach calls fn for a snapshot of the layers.
func (c *Collection) ForEach(fn func(Layer)) {
	for _, l := range c.Array() {
		fn(l)
	}
}

// Clear removes every layer.
func (c *Collection) Clear() {
	c.mu.Lock()
	items := c.items
	c.items = nil
	c.mu.Unlock()
	for _, l := range items {
		l.bind(nil)
	}
}

func (c *Collection) setOnAdd(fn func(Layer)) {
	c.mu.Lock()
	c.onAdd = fn
	c.mu.Unlock()
}

// Walk visits every layer in c depth-first, descending into containers.
// Containers are visited before their children.
func Walk(c *Collection, fn func(l Layer, depth int)) {
	walk(c, 0, fn)
}

func walk(c *Collection, depth int, fn func(Layer, int)) {
	c.ForEach(func(l Layer) {
		fn(l, depth)
		if g, ok := l.(Container); ok {
			walk(g.Layers(), depth+1, fn)
		}
	})
}
