package instance

import "github.com/joeblew999/plat-map/internal/olmap"

// ContentFunc computes popup markup for a click. Empty content suppresses
// the popup for that click.
type ContentFunc func(e olmap.Event) string

// AddPopup registers a popup shown on single-click with content from fn.
func (i *Instance) AddPopup(fn ContentFunc) *olmap.Overlay {
	popup := olmap.NewOverlay()
	i.m.AddOverlay(popup)
	i.m.On(olmap.EventSingleClick, func(e olmap.Event) {
		content := fn(e)
		if content == "" {
			return
		}
		popup.Show(e.Coordinate, content)
		i.m.Emit(olmap.Event{
			Type:       olmap.EventPopupShown,
			Coordinate: e.Coordinate,
			Pixel:      e.Pixel,
			Data:       map[string]any{"overlay": popup.ID(), "content": content},
		})
	})
	return popup
}
