package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupMember records a user's membership and role within a group.
type GroupMember struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	GroupID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_group_user" json:"user_id"`
	Role     string    `gorm:"type:varchar(32);not null;default:'member'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	Group *Group `gorm:"foreignKey:GroupID" json:"-"`
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns identifiers and the join timestamp.
func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}
