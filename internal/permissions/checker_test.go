package permissions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/silverlynx18/sock/internal/models"
)

func openCheckerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Group{}, &models.GroupMember{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func TestCheckerMemberRole(t *testing.T) {
	db := openCheckerTestDB(t)

	group := &models.Group{Name: "Climbing Crew"}
	require.NoError(t, db.Create(group).Error)

	user := &models.User{Username: "ada", Email: "ada@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: group.ID,
		UserID:  user.ID,
		Role:    "admin",
	}).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	role, isMember, err := checker.MemberRole(context.Background(), group.ID, user.ID)
	require.NoError(t, err)
	require.True(t, isMember)
	require.Equal(t, RoleAdmin, role)

	_, isMember, err = checker.MemberRole(context.Background(), group.ID, "not-a-member")
	require.NoError(t, err)
	require.False(t, isMember)
}

func TestCheckerUnknownRoleFallsBackToMember(t *testing.T) {
	db := openCheckerTestDB(t)

	group := &models.Group{Name: "Book Club"}
	require.NoError(t, db.Create(group).Error)

	user := &models.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: group.ID,
		UserID:  user.ID,
		Role:    "super-duper-admin",
	}).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	role, isMember, err := checker.MemberRole(context.Background(), group.ID, user.ID)
	require.NoError(t, err)
	require.True(t, isMember)
	require.Equal(t, RoleMember, role)
}

func TestCheckerCheck(t *testing.T) {
	db := openCheckerTestDB(t)

	group := &models.Group{Name: "Runners"}
	require.NoError(t, db.Create(group).Error)

	moderator := &models.User{Username: "mia", Email: "mia@example.com", Password: "x"}
	require.NoError(t, db.Create(moderator).Error)
	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: group.ID,
		UserID:  moderator.ID,
		Role:    "moderator",
	}).Error)

	checker, err := NewChecker(db)
	require.NoError(t, err)

	allowed, err := checker.Check(context.Background(), moderator.ID, group.ID, "invite.create")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = checker.Check(context.Background(), moderator.ID, group.ID, "group.manage")
	require.NoError(t, err)
	require.False(t, allowed)

	allowed, err = checker.Check(context.Background(), "stranger", group.ID, "group.view")
	require.NoError(t, err)
	require.False(t, allowed, "non-members are always denied")

	_, err = checker.Check(context.Background(), moderator.ID, group.ID, "no.such.capability")
	require.Error(t, err)
}

func TestRegistryContents(t *testing.T) {
	capability, ok := Get("group.delete")
	require.True(t, ok)
	require.Equal(t, RoleOwner, capability.MinRole)

	ids := make([]string, 0)
	for _, capability := range List() {
		ids = append(ids, capability.ID)
	}
	require.Contains(t, ids, "group.view")
	require.Contains(t, ids, "content.moderate")
}
