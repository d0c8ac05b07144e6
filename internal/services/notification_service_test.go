package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/silverlynx18/sock/pkg/errors"
)

func TestNotificationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "ada")

	created, err := env.notifications.Create(ctx, CreateNotificationInput{
		UserID:  user.ID,
		Type:    "invite.received",
		Title:   "You have been invited to a group",
		Message: "Open your invitations to respond.",
		Metadata: map[string]any{
			"group_id": "g-1",
		},
	})
	require.NoError(t, err)
	require.Equal(t, "info", created.Severity)
	require.Equal(t, "g-1", created.Metadata["group_id"])

	unread, err := env.notifications.CountUnread(ctx, user.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, unread)

	read, err := env.notifications.MarkRead(ctx, user.ID, created.ID)
	require.NoError(t, err)
	require.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	unread, err = env.notifications.CountUnread(ctx, user.ID)
	require.NoError(t, err)
	require.Zero(t, unread)
}

func TestNotificationOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "ada")
	other := env.createUser(t, "lin")

	created, err := env.notifications.Create(ctx, CreateNotificationInput{
		UserID: owner.ID,
		Type:   "invite.received",
		Title:  "Hello",
	})
	require.NoError(t, err)

	_, err = env.notifications.MarkRead(ctx, other.ID, created.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.ErrorIs(t, env.notifications.Delete(ctx, other.ID, created.ID), apperrors.ErrNotFound)
}

func TestNotificationMarkAllReadAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "ada")
	for range 3 {
		_, err := env.notifications.Create(ctx, CreateNotificationInput{
			UserID: user.ID,
			Type:   "invite.received",
			Title:  "Hello",
		})
		require.NoError(t, err)
	}

	unreadOnly, err := env.notifications.ListForUser(ctx, ListNotificationsInput{
		UserID:     user.ID,
		UnreadOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, unreadOnly, 3)

	require.NoError(t, env.notifications.MarkAllRead(ctx, user.ID))

	unreadOnly, err = env.notifications.ListForUser(ctx, ListNotificationsInput{
		UserID:     user.ID,
		UnreadOnly: true,
	})
	require.NoError(t, err)
	require.Empty(t, unreadOnly)

	all, err := env.notifications.ListForUser(ctx, ListNotificationsInput{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, all, 3)
}
