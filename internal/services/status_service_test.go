package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/silverlynx18/sock/internal/permissions"
	"github.com/silverlynx18/sock/internal/status"
)

func TestGlobalStatusResolvesEverywhere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	_, err := env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{PresetID: status.PresetBusy})
	require.NoError(t, err)

	effective, err := env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, status.SourceGlobal, effective.Source)
	require.Equal(t, status.PresetBusy, effective.PresetID)
}

func TestGroupStatusBeatsGlobal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	_, err := env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{PresetID: status.PresetAway})
	require.NoError(t, err)
	_, err = env.statuses.SetMemberStatus(ctx, group.ID, owner.ID, SetStatusInput{PresetID: status.PresetOnline})
	require.NoError(t, err)

	effective, err := env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, status.SourceGroup, effective.Source)
	require.Equal(t, status.PresetOnline, effective.PresetID)
}

func TestGlobalOverrideBeatsGroupStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	_, err := env.statuses.SetMemberStatus(ctx, group.ID, owner.ID, SetStatusInput{PresetID: status.PresetOnline})
	require.NoError(t, err)
	_, err = env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{
		PresetID:       status.PresetBusy,
		OverrideGroups: true,
	})
	require.NoError(t, err)

	effective, err := env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, status.SourceGlobal, effective.Source)
	require.Equal(t, status.PresetBusy, effective.PresetID)
}

func TestExpiredGroupStatusFallsBackToGlobal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	deadline := env.clock.Now().Add(time.Hour)
	_, err := env.statuses.SetMemberStatus(ctx, group.ID, owner.ID, SetStatusInput{
		PresetID:  status.PresetOnline,
		ExpiresAt: &deadline,
	})
	require.NoError(t, err)
	_, err = env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{PresetID: status.PresetAway})
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)

	effective, err := env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, status.SourceGlobal, effective.Source)
	require.Equal(t, status.PresetAway, effective.PresetID)
}

func TestNoStatusRendersOffline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	effective, err := env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, status.SourceNone, effective.Source)
	require.Equal(t, status.PresetOffline, effective.PresetID)
}

func TestCustomStatusTextRenders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	_, err := env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{
		PresetID:   status.PresetShowingCustom,
		CustomText: "At the gym",
		CustomIcon: "dumbbell",
	})
	require.NoError(t, err)

	effective, err := env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.True(t, effective.Custom)
	require.Equal(t, "At the gym", effective.DisplayName)
	require.Equal(t, "dumbbell", effective.IconKey)
}

func TestCustomStatusRequiresText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	env.createGroup(t, owner.ID, "Climbing Crew")

	_, err := env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{
		PresetID: status.PresetShowingCustom,
	})
	require.Error(t, err)

	// The sentinel check survives case and whitespace variations.
	_, err = env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{
		PresetID: "  SHOWING_CUSTOM ",
	})
	require.Error(t, err)

	stored, err := env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{
		PresetID:   "SHOWING_CUSTOM",
		CustomText: "Walking the dog",
	})
	require.NoError(t, err)
	require.Equal(t, status.PresetShowingCustom, stored.PresetID)
}

func TestUserSavedPresetResolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	preset, err := env.statuses.CreatePreset(ctx, owner.ID, PresetInput{
		DisplayName: "Walking the dog",
		IconKey:     "paw",
		Color:       "#8B5E3C",
	})
	require.NoError(t, err)

	_, err = env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{PresetID: preset.ID})
	require.NoError(t, err)

	effective, err := env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, preset.ID, effective.PresetID)
	require.Equal(t, "Walking the dog", effective.DisplayName)
	require.Equal(t, "paw", effective.IconKey)
}

func TestSetMemberStatusRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	outsider := env.createUser(t, "outsider")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	_, err := env.statuses.SetMemberStatus(ctx, group.ID, outsider.ID, SetStatusInput{PresetID: status.PresetOnline})
	require.ErrorIs(t, err, ErrMemberNotFound)
}

func TestUnknownPresetRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	env.createGroup(t, owner.ID, "Climbing Crew")

	_, err := env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{PresetID: "no-such-preset"})
	require.ErrorIs(t, err, ErrPresetNotFound)
}

func TestGroupStatusesRoster(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	friend := env.createUser(t, "friend")
	group := env.createGroup(t, owner.ID, "Climbing Crew")
	env.addMember(t, group.ID, friend.ID, permissions.RoleMember)

	_, err := env.statuses.SetGlobalStatus(ctx, friend.ID, SetStatusInput{PresetID: status.PresetBusy})
	require.NoError(t, err)

	roster, err := env.statuses.GroupStatuses(ctx, group.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	bySource := map[string]status.Source{}
	for _, entry := range roster {
		bySource[entry.UserID] = entry.Status.Source
	}
	require.Equal(t, status.SourceNone, bySource[owner.ID])
	require.Equal(t, status.SourceGlobal, bySource[friend.ID])
}

func TestClearStatuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Climbing Crew")

	_, err := env.statuses.SetGlobalStatus(ctx, owner.ID, SetStatusInput{PresetID: status.PresetBusy})
	require.NoError(t, err)
	_, err = env.statuses.SetMemberStatus(ctx, group.ID, owner.ID, SetStatusInput{PresetID: status.PresetOnline})
	require.NoError(t, err)

	require.NoError(t, env.statuses.ClearMemberStatus(ctx, group.ID, owner.ID))

	effective, err := env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, status.SourceGlobal, effective.Source)

	require.NoError(t, env.statuses.ClearGlobalStatus(ctx, owner.ID))

	effective, err = env.statuses.EffectiveStatus(ctx, group.ID, owner.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, status.SourceNone, effective.Source)

	// Clearing again is harmless.
	require.NoError(t, env.statuses.ClearGlobalStatus(ctx, owner.ID))
}

func TestPresetCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	other := env.createUser(t, "other")

	preset, err := env.statuses.CreatePreset(ctx, owner.ID, PresetInput{DisplayName: "Gaming"})
	require.NoError(t, err)

	updated, err := env.statuses.UpdatePreset(ctx, owner.ID, preset.ID, PresetInput{IconKey: "controller"})
	require.NoError(t, err)
	require.Equal(t, "Gaming", updated.DisplayName)
	require.Equal(t, "controller", updated.IconKey)

	// Other users cannot touch it.
	_, err = env.statuses.UpdatePreset(ctx, other.ID, preset.ID, PresetInput{DisplayName: "Hacked"})
	require.ErrorIs(t, err, ErrPresetNotFound)
	require.ErrorIs(t, env.statuses.DeletePreset(ctx, other.ID, preset.ID), ErrPresetNotFound)

	listed, err := env.statuses.ListPresets(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, env.statuses.DeletePreset(ctx, owner.ID, preset.ID))
	require.ErrorIs(t, env.statuses.DeletePreset(ctx, owner.ID, preset.ID), ErrPresetNotFound)
}
