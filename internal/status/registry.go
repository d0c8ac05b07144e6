package status

import "strings"

// Preset is a predefined availability label with display metadata.
type Preset struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IconKey     string `json:"icon_key"`
	Color       string `json:"color"`
}

// Well-known preset IDs.
const (
	PresetOnline  = "online"
	PresetBusy    = "busy"
	PresetAway    = "away"
	PresetOffline = "offline"

	// PresetShowingCustom is a signal, not content: it means "read the
	// companion custom text/icon fields", never a self-contained status.
	PresetShowingCustom = "showing_custom"

	// PresetUnknown is the defined fallback for unrecognized preset IDs.
	PresetUnknown = "unknown"
)

var appPresets = map[string]Preset{
	PresetOnline: {
		ID:          PresetOnline,
		DisplayName: "Online",
		IconKey:     "circle-filled",
		Color:       "#34C759",
	},
	PresetBusy: {
		ID:          PresetBusy,
		DisplayName: "Busy",
		IconKey:     "minus-circle",
		Color:       "#FF3B30",
	},
	PresetAway: {
		ID:          PresetAway,
		DisplayName: "Away",
		IconKey:     "clock",
		Color:       "#FF9500",
	},
	PresetOffline: {
		ID:          PresetOffline,
		DisplayName: "Offline",
		IconKey:     "circle-outline",
		Color:       "#8E8E93",
	},
	PresetShowingCustom: {
		ID:          PresetShowingCustom,
		DisplayName: "Custom",
		IconKey:     "pencil",
		Color:       "#5856D6",
	},
	PresetUnknown: {
		ID:          PresetUnknown,
		DisplayName: "Unknown",
		IconKey:     "question-mark",
		Color:       "#8E8E93",
	},
}

// AppPresets returns the built-in presets in a stable order.
func AppPresets() []Preset {
	out := make([]Preset, 0, len(appPresets))
	for _, id := range []string{PresetOnline, PresetBusy, PresetAway, PresetOffline, PresetShowingCustom, PresetUnknown} {
		out = append(out, appPresets[id])
	}
	return out
}

// LookupAppPreset returns the built-in preset for the given ID.
func LookupAppPreset(id string) (Preset, bool) {
	preset, ok := appPresets[normalizeID(id)]
	return preset, ok
}

// ParsePresetID maps a raw preset id onto a known app preset. The mapping is
// total: unrecognized input resolves to the Unknown preset.
func ParsePresetID(raw string) Preset {
	if preset, ok := LookupAppPreset(raw); ok {
		return preset
	}
	return appPresets[PresetUnknown]
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
