package models

import "time"

// MemberStatus is a group-scoped availability status. An unexpired member
// status takes precedence over the global one unless the global override
// flag is set.
type MemberStatus struct {
	BaseModel

	GroupID string `gorm:"type:uuid;not null;uniqueIndex:idx_member_status" json:"group_id"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex:idx_member_status" json:"user_id"`

	PresetID   string `gorm:"not null" json:"preset_id"`
	CustomText string `json:"custom_text"`
	CustomIcon string `json:"custom_icon"`

	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	Group *Group `gorm:"foreignKey:GroupID" json:"-"`
	User  *User  `gorm:"foreignKey:UserID" json:"-"`
}
