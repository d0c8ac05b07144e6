package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/silverlynx18/sock/internal/permissions"
	apperrors "github.com/silverlynx18/sock/pkg/errors"
)

func TestCreateGroupMakesCreatorOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	group := env.createGroup(t, owner.ID, "Book Club")

	members, err := env.groups.ListMembers(ctx, group.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, permissions.RoleOwner.String(), members[0].Role)
}

func TestGroupVisibilityIsMemberOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	outsider := env.createUser(t, "outsider")
	group := env.createGroup(t, owner.ID, "Book Club")

	_, err := env.groups.GetByID(ctx, group.ID, outsider.ID)
	require.ErrorIs(t, err, ErrGroupNotFound)

	_, err = env.groups.ListMembers(ctx, group.ID, outsider.ID)
	require.Error(t, err)
}

func TestChangeRolePromotionRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "admin")
	target := env.createUser(t, "target")

	group := env.createGroup(t, owner.ID, "Book Club")
	env.addMember(t, group.ID, admin.ID, permissions.RoleAdmin)
	env.addMember(t, group.ID, target.ID, permissions.RoleMember)

	// An admin can promote up to moderator but not to admin.
	require.NoError(t, env.groups.ChangeRole(ctx, group.ID, admin.ID, target.ID, permissions.RoleModerator))
	require.ErrorIs(t,
		env.groups.ChangeRole(ctx, group.ID, admin.ID, target.ID, permissions.RoleAdmin),
		ErrRoleChangeDenied)

	// The owner can promote to admin.
	require.NoError(t, env.groups.ChangeRole(ctx, group.ID, owner.ID, target.ID, permissions.RoleAdmin))

	// Nobody can be promoted to owner.
	require.ErrorIs(t,
		env.groups.ChangeRole(ctx, group.ID, owner.ID, target.ID, permissions.RoleOwner),
		ErrRoleChangeDenied)
}

func TestChangeRoleDemotionRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "admin")
	moderator := env.createUser(t, "mod")

	group := env.createGroup(t, owner.ID, "Book Club")
	env.addMember(t, group.ID, admin.ID, permissions.RoleAdmin)
	env.addMember(t, group.ID, moderator.ID, permissions.RoleModerator)

	// An admin can demote a moderator but not another admin.
	require.NoError(t, env.groups.ChangeRole(ctx, group.ID, admin.ID, moderator.ID, permissions.RoleMember))
	require.ErrorIs(t,
		env.groups.ChangeRole(ctx, group.ID, moderator.ID, admin.ID, permissions.RoleMember),
		ErrRoleChangeDenied)

	// The owner can never be demoted.
	require.ErrorIs(t,
		env.groups.ChangeRole(ctx, group.ID, admin.ID, owner.ID, permissions.RoleMember),
		ErrRoleChangeDenied)
}

func TestChangeRoleRejectsSelfEscalation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "admin")
	group := env.createGroup(t, owner.ID, "Book Club")
	env.addMember(t, group.ID, admin.ID, permissions.RoleAdmin)

	require.ErrorIs(t,
		env.groups.ChangeRole(ctx, group.ID, admin.ID, admin.ID, permissions.RoleOwner),
		ErrRoleChangeDenied)
}

func TestRemoveMemberRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	moderator := env.createUser(t, "mod")
	plainA := env.createUser(t, "plain-a")
	plainB := env.createUser(t, "plain-b")

	group := env.createGroup(t, owner.ID, "Book Club")
	env.addMember(t, group.ID, moderator.ID, permissions.RoleModerator)
	env.addMember(t, group.ID, plainA.ID, permissions.RoleMember)
	env.addMember(t, group.ID, plainB.ID, permissions.RoleMember)

	// Plain members cannot remove anyone.
	require.ErrorIs(t,
		env.groups.RemoveMember(ctx, group.ID, plainA.ID, plainB.ID),
		ErrRemoveMemberDenied)

	// A moderator cannot remove the owner.
	require.ErrorIs(t,
		env.groups.RemoveMember(ctx, group.ID, moderator.ID, owner.ID),
		ErrRemoveMemberDenied)

	// A moderator can remove a plain member.
	require.NoError(t, env.groups.RemoveMember(ctx, group.ID, moderator.ID, plainA.ID))

	members, err := env.groups.ListMembers(ctx, group.ID, owner.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
}

func TestOwnerCannotLeave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	friend := env.createUser(t, "friend")
	group := env.createGroup(t, owner.ID, "Book Club")
	env.addMember(t, group.ID, friend.ID, permissions.RoleMember)

	require.ErrorIs(t, env.groups.Leave(ctx, group.ID, owner.ID), ErrOwnerCannotLeave)
	require.NoError(t, env.groups.Leave(ctx, group.ID, friend.ID))

	groupsOfFriend, err := env.groups.ListForUser(ctx, friend.ID)
	require.NoError(t, err)
	require.Empty(t, groupsOfFriend)
}

func TestUpdateGroupRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	moderator := env.createUser(t, "mod")
	group := env.createGroup(t, owner.ID, "Book Club")
	env.addMember(t, group.ID, moderator.ID, permissions.RoleModerator)

	name := "Renamed Club"
	_, err := env.groups.Update(ctx, group.ID, moderator.ID, UpdateGroupInput{Name: &name})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	updated, err := env.groups.Update(ctx, group.ID, owner.ID, UpdateGroupInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, name, updated.Name)
}

func TestDeleteGroupRequiresOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	admin := env.createUser(t, "admin")
	group := env.createGroup(t, owner.ID, "Book Club")
	env.addMember(t, group.ID, admin.ID, permissions.RoleAdmin)

	require.ErrorIs(t, env.groups.Delete(ctx, group.ID, admin.ID), apperrors.ErrForbidden)
	require.NoError(t, env.groups.Delete(ctx, group.ID, owner.ID))

	_, err := env.groups.GetByID(ctx, group.ID, owner.ID)
	require.ErrorIs(t, err, ErrGroupNotFound)
}
