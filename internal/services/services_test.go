package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/silverlynx18/sock/internal/models"
	"github.com/silverlynx18/sock/internal/permissions"
)

// fakeClock is a controllable time source shared by the service fixtures.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db            *gorm.DB
	clock         *fakeClock
	users         *UserService
	groups        *GroupService
	invites       *InviteService
	statuses      *StatusService
	notifications *NotificationService
	audit         *AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupInvite{},
		&models.StatusPreset{},
		&models.UserStatus{},
		&models.MemberStatus{},
		&models.Notification{},
		&models.AuditLog{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	clock := newFakeClock()

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)

	audit, err := NewAuditService(db)
	require.NoError(t, err)

	users, err := NewUserService(db)
	require.NoError(t, err)

	groups, err := NewGroupService(db, checker, audit)
	require.NoError(t, err)

	notifications, err := NewNotificationService(db, nil)
	require.NoError(t, err)

	statuses, err := NewStatusService(db, checker, nil, WithStatusClock(clock.Now))
	require.NoError(t, err)

	invites, err := NewInviteService(db, checker, groups, users, notifications, audit,
		WithInviteClock(clock.Now),
		WithInviteAcceptURL("https://sock.example.com/invites"),
	)
	require.NoError(t, err)

	return &testEnv{
		db:            db,
		clock:         clock,
		users:         users,
		groups:        groups,
		invites:       invites,
		statuses:      statuses,
		notifications: notifications,
		audit:         audit,
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := e.users.Create(context.Background(), CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) createGroup(t *testing.T, ownerID, name string) *models.Group {
	t.Helper()

	group, err := e.groups.Create(context.Background(), ownerID, CreateGroupInput{Name: name})
	require.NoError(t, err)
	return group
}

func (e *testEnv) addMember(t *testing.T, groupID, userID string, role permissions.Role) {
	t.Helper()
	require.NoError(t, e.groups.AddMember(context.Background(), groupID, userID, role))
}
