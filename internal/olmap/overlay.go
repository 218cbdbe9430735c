package olmap

import (
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Overlay is an element anchored to a map coordinate, such as a popup.
type Overlay struct {
	id string

	mu       sync.RWMutex
	position *orb.Point
	content  string
}

// NewOverlay creates a hidden overlay.
func NewOverlay() *Overlay {
	return &Overlay{id: uuid.NewString()}
}

// ID returns the overlay identifier.
func (o *Overlay) ID() string { return o.id }

// Show anchors the overlay at coord with content.
func (o *Overlay) Show(coord orb.Point, content string) {
	o.mu.Lock()
	o.position = &coord
	o.content = content
	o.mu.Unlock()
}

// Hide removes the overlay from view and keeps its content.
func (o *Overlay) Hide() {
	o.mu.Lock()
	o.position = nil
	o.mu.Unlock()
}

// Position returns the anchor coordinate; ok is false while hidden.
func (o *Overlay) Position() (orb.Point, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.position == nil {
		return orb.Point{}, false
	}
	return *o.position, true
}

// Content returns the last shown markup.
func (o *Overlay) Content() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.content
}
