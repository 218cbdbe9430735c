package templates

import "github.com/joeblew999/plat-map/internal/olmap"

// LayerSwitcherData feeds the "layer-switcher" template.
type LayerSwitcherData struct {
	Target  string
	Entries []olmap.LayerEntry
}

// FeatureInfo is one feature listed in a popup.
type FeatureInfo struct {
	Layer      string
	Name       string
	Properties map[string]any
}

// FeaturePopupData feeds the "feature-popup" template.
type FeaturePopupData struct {
	Features []FeatureInfo
}

// LayerSwitcher renders the layer tree of one map.
func (r *Renderer) LayerSwitcher(target string, entries []olmap.LayerEntry) (string, error) {
	return r.Render("layer-switcher", LayerSwitcherData{Target: target, Entries: entries})
}

// FeaturePopup renders popup content; no features renders nothing.
func (r *Renderer) FeaturePopup(features []FeatureInfo) (string, error) {
	if len(features) == 0 {
		return "", nil
	}
	return r.Render("feature-popup", FeaturePopupData{Features: features})
}
