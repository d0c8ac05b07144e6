package models

import (
	"strings"
	"time"
)

// InviteType identifies which recipient field on an invitation is authoritative.
type InviteType string

const (
	InviteTypeDirect   InviteType = "direct"
	InviteTypeEmail    InviteType = "email"
	InviteTypeUsername InviteType = "username"
	InviteTypePhone    InviteType = "phone"
)

// ParseInviteType maps a raw string onto a known invite type.
func ParseInviteType(raw string) (InviteType, bool) {
	switch InviteType(strings.ToLower(strings.TrimSpace(raw))) {
	case InviteTypeDirect:
		return InviteTypeDirect, true
	case InviteTypeEmail:
		return InviteTypeEmail, true
	case InviteTypeUsername:
		return InviteTypeUsername, true
	case InviteTypePhone:
		return InviteTypePhone, true
	default:
		return "", false
	}
}

// InviteStatus is the lifecycle state of a group invitation.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
	InviteStatusExpired  InviteStatus = "expired"
	InviteStatusRevoked  InviteStatus = "revoked"
)

// Terminal reports whether the status permits no further transitions.
func (s InviteStatus) Terminal() bool {
	switch s {
	case InviteStatusAccepted, InviteStatusDeclined, InviteStatusExpired, InviteStatusRevoked:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step.
// Only pending invitations may move, and only into a terminal state.
func (s InviteStatus) CanTransitionTo(next InviteStatus) bool {
	if s != InviteStatusPending {
		return false
	}
	return next.Terminal()
}

// ParseInviteStatus maps a raw string onto a known invite status.
func ParseInviteStatus(raw string) (InviteStatus, bool) {
	switch InviteStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case InviteStatusPending:
		return InviteStatusPending, true
	case InviteStatusAccepted:
		return InviteStatusAccepted, true
	case InviteStatusDeclined:
		return InviteStatusDeclined, true
	case InviteStatusExpired:
		return InviteStatusExpired, true
	case InviteStatusRevoked:
		return InviteStatusRevoked, true
	default:
		return "", false
	}
}

// GroupInvite represents an offer of group membership to an identified or
// matchable recipient. Exactly one recipient field is authoritative, chosen
// by Type. Email invitations additionally carry a hashed redemption token.
type GroupInvite struct {
	BaseModel

	GroupID   string     `gorm:"type:uuid;not null;index" json:"group_id"`
	InviterID string     `gorm:"type:uuid;not null;index" json:"inviter_id"`
	Type      InviteType `gorm:"type:varchar(16);not null" json:"type"`

	InviteeUserID *string `gorm:"type:uuid;index" json:"invitee_user_id,omitempty"`
	Email         string  `gorm:"index" json:"email,omitempty"`
	Username      string  `gorm:"index" json:"username,omitempty"`
	Phone         string  `json:"phone,omitempty"`

	Status       InviteStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	RoleToAssign string       `gorm:"type:varchar(32);not null;default:'member'" json:"role_to_assign"`
	TokenHash    string       `json:"-"`

	// Resolution records the outcome of the external matching process for
	// email/username/phone invitations. It never drives state transitions.
	Resolved        bool    `gorm:"default:false" json:"resolved"`
	ResolvedUserID  *string `gorm:"type:uuid" json:"resolved_user_id,omitempty"`
	ResolutionError string  `json:"resolution_error,omitempty"`

	ExpiresAt   *time.Time `gorm:"index" json:"expires_at,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	Group   *Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Inviter *User  `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}

// Expired reports whether the invitation's deadline has passed at the given time.
func (i *GroupInvite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}

// RecipientUserID returns the concrete account the invitation targets, either
// the direct invitee or the account produced by external resolution.
func (i *GroupInvite) RecipientUserID() string {
	if i.InviteeUserID != nil {
		return *i.InviteeUserID
	}
	if i.ResolvedUserID != nil {
		return *i.ResolvedUserID
	}
	return ""
}
