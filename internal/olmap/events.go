package olmap

import (
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// EventType names a notification emitted on a map.
type EventType string

// Notification events. Payloads are carried in Event fields; Data holds
// event-specific extras listed next to each constant.
const (
	// EventLayerAdded fires whenever a layer enters the map, at top level or
	// inside a group. Layer is set; Data["group"] is the parent group title
	// when the layer went into a group.
	EventLayerAdded EventType = "layer-added"
	// EventLayerVisibility fires when a layer inside the map is shown or
	// hidden. Layer is set; Data["visible"] is the new bool.
	EventLayerVisibility EventType = "layer-visibility"
	// EventSingleClick fires for each single click. Coordinate and Pixel are set.
	EventSingleClick EventType = "single-click"
	// EventPopupShown fires after a popup is shown. Coordinate is set;
	// Data["overlay"] is the overlay ID and Data["content"] the markup.
	EventPopupShown EventType = "popup-shown"
	// EventFeatureChange fires when drawn features change. Data["wkt"] holds
	// the WKT of all drawn features; Data["count"] their number.
	EventFeatureChange EventType = "feature-change"
	// EventMeasure fires after a drawn geometry is measured. Data["measurement"]
	// is the formatted value, Data["kind"] is "length" or "area".
	EventMeasure EventType = "measure"
	// EventViewChange fires after the view is fitted. Data["zoom"] is the new zoom.
	EventViewChange EventType = "view-change"
)

// Event is a notification delivered to map subscribers.
type Event struct {
	ID         string
	Type       EventType
	Target     string
	Layer      Layer
	Coordinate orb.Point
	Pixel      Pixel
	Data       map[string]any
}

// Handler receives events synchronously.
type Handler func(Event)

type handlerEntry struct {
	id int
	fn Handler
}

// Bus dispatches map events. Handlers registered with On run synchronously
// in registration order; channels from Subscribe receive a non-blocking copy.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]handlerEntry
	subs     map[chan Event]struct{}
	nextID   int
	closed   bool
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]handlerEntry),
		subs:     make(map[chan Event]struct{}),
	}
}

// On registers fn for events of type t. The returned func removes it.
func (b *Bus) On(t EventType, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[t] = append(b.handlers[t], handlerEntry{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.handlers[t]
		for i, e := range entries {
			if e.id == id {
				b.handlers[t] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers e to handlers and subscribers. Handlers may emit further
// events; they must not emit the same event in a loop.
func (b *Bus) Emit(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	entries := append([]handlerEntry(nil), b.handlers[e.Type]...)
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
	b.mu.RUnlock()

	for _, h := range entries {
		h.fn(e)
	}
}

// Subscribe returns a buffered channel that receives every event.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs[ch] = struct{}{}
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

// Close drops all handlers and closes every subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = map[chan Event]struct{}{}
	b.handlers = map[EventType][]handlerEntry{}
}
