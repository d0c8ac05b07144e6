package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var resolveNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestResolveGlobalOverrideWins(t *testing.T) {
	effective := Resolve(Input{
		Global:         &Snapshot{PresetID: "busy"},
		Group:          &Snapshot{PresetID: "away"},
		OverrideGroups: true,
		Now:            resolveNow,
	})

	require.Equal(t, SourceGlobal, effective.Source)
	require.Equal(t, PresetBusy, effective.PresetID)
	require.Equal(t, "Busy", effective.DisplayName)
}

func TestResolveGroupBeatsGlobalWithoutOverride(t *testing.T) {
	effective := Resolve(Input{
		Global: &Snapshot{PresetID: "busy"},
		Group:  &Snapshot{PresetID: "away"},
		Now:    resolveNow,
	})

	require.Equal(t, SourceGroup, effective.Source)
	require.Equal(t, PresetAway, effective.PresetID)
}

func TestResolveExpiredGroupFallsBackToGlobal(t *testing.T) {
	expired := resolveNow.Add(-time.Minute)

	effective := Resolve(Input{
		Global: &Snapshot{PresetID: "busy"},
		Group:  &Snapshot{PresetID: "away", ExpiresAt: &expired},
		Now:    resolveNow,
	})

	require.Equal(t, SourceGlobal, effective.Source)
	require.Equal(t, PresetBusy, effective.PresetID)
}

func TestResolveExpiredOverrideFallsBackToGroup(t *testing.T) {
	expired := resolveNow.Add(-time.Minute)

	effective := Resolve(Input{
		Global:         &Snapshot{PresetID: "busy", ExpiresAt: &expired},
		Group:          &Snapshot{PresetID: "away"},
		OverrideGroups: true,
		Now:            resolveNow,
	})

	require.Equal(t, SourceGroup, effective.Source)
	require.Equal(t, PresetAway, effective.PresetID)
}

func TestResolvePrecedenceMatrix(t *testing.T) {
	expired := resolveNow.Add(-time.Hour)

	cases := []struct {
		name         string
		override     bool
		groupPresent bool
		groupExpired bool
		wantSource   Source
	}{
		{"override+group", true, true, false, SourceGlobal},
		{"override+expired-group", true, true, true, SourceGlobal},
		{"override+no-group", true, false, false, SourceGlobal},
		{"group", false, true, false, SourceGroup},
		{"expired-group", false, true, true, SourceGlobal},
		{"no-group", false, false, false, SourceGlobal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := Input{
				Global:         &Snapshot{PresetID: "busy"},
				OverrideGroups: tc.override,
				Now:            resolveNow,
			}
			if tc.groupPresent {
				in.Group = &Snapshot{PresetID: "away"}
				if tc.groupExpired {
					in.Group.ExpiresAt = &expired
				}
			}

			require.Equal(t, tc.wantSource, Resolve(in).Source)
		})
	}
}

func TestResolveNoActiveStatus(t *testing.T) {
	effective := Resolve(Input{Now: resolveNow})

	require.Equal(t, SourceNone, effective.Source)
	require.Equal(t, PresetOffline, effective.PresetID)
	require.Equal(t, "Offline", effective.DisplayName)
}

func TestResolveCustomText(t *testing.T) {
	effective := Resolve(Input{
		Global: &Snapshot{
			PresetID:   "showing_custom",
			CustomText: "At the gym",
			CustomIcon: "dumbbell",
		},
		Now: resolveNow,
	})

	require.True(t, effective.Custom)
	require.Equal(t, "At the gym", effective.DisplayName)
	require.Equal(t, "dumbbell", effective.IconKey)
	require.NotEqual(t, "Custom", effective.DisplayName)
}

func TestResolveCustomSentinelWithoutTextUsesPresetName(t *testing.T) {
	effective := Resolve(Input{
		Global: &Snapshot{PresetID: "showing_custom"},
		Now:    resolveNow,
	})

	require.False(t, effective.Custom)
	require.Equal(t, "Custom", effective.DisplayName)
}

func TestResolveUnmatchedPresetWithCustomTextRendersText(t *testing.T) {
	effective := Resolve(Input{
		Global: &Snapshot{PresetID: "deleted-user-preset", CustomText: "Touring"},
		Now:    resolveNow,
	})

	require.True(t, effective.Custom)
	require.Equal(t, "Touring", effective.DisplayName)
}

func TestResolveUnrecognizedPresetFallsBackToUnknown(t *testing.T) {
	effective := Resolve(Input{
		Global: &Snapshot{PresetID: "nonexistent"},
		Now:    resolveNow,
	})

	require.Equal(t, PresetUnknown, effective.PresetID)
	require.Equal(t, "Unknown", effective.DisplayName)
}

func TestResolveUserPresetLookup(t *testing.T) {
	lookup := func(id string) (Preset, bool) {
		if id == "my-preset" {
			return Preset{ID: "my-preset", DisplayName: "Raiding", IconKey: "sword", Color: "#123456"}, true
		}
		return LookupAppPreset(id)
	}

	effective := Resolve(Input{
		Global: &Snapshot{PresetID: "my-preset"},
		Now:    resolveNow,
		Lookup: lookup,
	})

	require.False(t, effective.Custom)
	require.Equal(t, "Raiding", effective.DisplayName)
	require.Equal(t, "#123456", effective.Color)
}
