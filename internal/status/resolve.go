package status

import (
	"time"

	"github.com/silverlynx18/sock/pkg/metrics"
)

// Source names the scope whose status won resolution.
type Source string

const (
	SourceGlobal Source = "global"
	SourceGroup  Source = "group"
	SourceNone   Source = "none"
)

// Snapshot is one scope's raw status fields as stored.
type Snapshot struct {
	PresetID   string
	CustomText string
	CustomIcon string
	ExpiresAt  *time.Time
}

// Active reports whether the snapshot should still be considered at the
// given time.
func (s *Snapshot) Active(now time.Time) bool {
	if s == nil {
		return false
	}
	return s.ExpiresAt == nil || now.Before(*s.ExpiresAt)
}

// Lookup resolves a preset id to display metadata. Implementations merge
// user-saved presets over the app registry.
type Lookup func(id string) (Preset, bool)

// Input bundles everything needed to compute an effective status.
type Input struct {
	Global         *Snapshot
	Group          *Snapshot
	OverrideGroups bool
	Now            time.Time
	Lookup         Lookup
}

// Effective is the rendered status for one user in one scope.
type Effective struct {
	Source      Source `json:"source"`
	PresetID    string `json:"preset_id"`
	DisplayName string `json:"display_name"`
	IconKey     string `json:"icon_key"`
	Color       string `json:"color"`
	Custom      bool   `json:"custom"`
}

// Resolve applies the status precedence rules: a global status with the
// override flag beats everything, otherwise an unexpired group status beats
// the global one, otherwise the global status applies. With no active
// snapshot the user renders as Offline.
func Resolve(in Input) Effective {
	lookup := in.Lookup
	if lookup == nil {
		lookup = LookupAppPreset
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	var (
		winner *Snapshot
		source Source
	)
	switch {
	case in.OverrideGroups && in.Global.Active(now):
		winner, source = in.Global, SourceGlobal
	case in.Group.Active(now):
		winner, source = in.Group, SourceGroup
	case in.Global.Active(now):
		winner, source = in.Global, SourceGlobal
	}

	if winner == nil {
		metrics.StatusResolutions.WithLabelValues(string(SourceNone)).Inc()
		offline, _ := LookupAppPreset(PresetOffline)
		return Effective{
			Source:      SourceNone,
			PresetID:    offline.ID,
			DisplayName: offline.DisplayName,
			IconKey:     offline.IconKey,
			Color:       offline.Color,
		}
	}

	metrics.StatusResolutions.WithLabelValues(string(source)).Inc()
	return renderSnapshot(winner, source, lookup)
}

// renderSnapshot picks the display fields for a single scope. The
// showing_custom sentinel, or an unmatched preset id paired with custom
// text, renders the companion fields; anything else renders the preset's
// own metadata, falling back to Unknown for unrecognized IDs.
func renderSnapshot(snap *Snapshot, source Source, lookup Lookup) Effective {
	preset, found := lookup(snap.PresetID)

	custom := normalizeID(snap.PresetID) == PresetShowingCustom || (!found && snap.CustomText != "")
	if custom && snap.CustomText != "" {
		sentinel, _ := LookupAppPreset(PresetShowingCustom)
		icon := snap.CustomIcon
		if icon == "" {
			icon = sentinel.IconKey
		}
		return Effective{
			Source:      source,
			PresetID:    PresetShowingCustom,
			DisplayName: snap.CustomText,
			IconKey:     icon,
			Color:       sentinel.Color,
			Custom:      true,
		}
	}

	if !found {
		preset = ParsePresetID(snap.PresetID)
	}

	return Effective{
		Source:      source,
		PresetID:    preset.ID,
		DisplayName: preset.DisplayName,
		IconKey:     preset.IconKey,
		Color:       preset.Color,
	}
}
