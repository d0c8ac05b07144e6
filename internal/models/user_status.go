package models

import "time"

// UserStatus is a user's global availability status. When OverrideGroups is
// set, it is authoritative everywhere and group-specific statuses are ignored.
type UserStatus struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	PresetID   string `gorm:"not null" json:"preset_id"`
	CustomText string `json:"custom_text"`
	CustomIcon string `json:"custom_icon"`

	OverrideGroups bool       `gorm:"default:false" json:"override_groups"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
