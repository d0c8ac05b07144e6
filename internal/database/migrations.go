package database

import (
	"gorm.io/gorm"

	"github.com/silverlynx18/sock/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupInvite{},
		&models.StatusPreset{},
		&models.UserStatus{},
		&models.MemberStatus{},
		&models.Notification{},
		&models.AuditLog{},
	)
}
