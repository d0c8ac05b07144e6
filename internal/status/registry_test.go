package status

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePresetID(t *testing.T) {
	require.Equal(t, PresetOnline, ParsePresetID("online").ID)
	require.Equal(t, PresetOnline, ParsePresetID("ONLINE").ID)
	require.Equal(t, PresetOnline, ParsePresetID("  Online ").ID)
	require.Equal(t, "Online", ParsePresetID("ONLINE").DisplayName)

	require.Equal(t, PresetUnknown, ParsePresetID("nonexistent").ID)
	require.Equal(t, "Unknown", ParsePresetID("nonexistent").DisplayName)
	require.Equal(t, PresetUnknown, ParsePresetID("").ID)
}

func TestLookupAppPreset(t *testing.T) {
	preset, ok := LookupAppPreset("busy")
	require.True(t, ok)
	require.Equal(t, "Busy", preset.DisplayName)

	_, ok = LookupAppPreset("bogus")
	require.False(t, ok)
}

func TestAppPresetsStableOrder(t *testing.T) {
	presets := AppPresets()
	require.Len(t, presets, 6)
	require.Equal(t, PresetOnline, presets[0].ID)
	require.Equal(t, PresetUnknown, presets[len(presets)-1].ID)
}
