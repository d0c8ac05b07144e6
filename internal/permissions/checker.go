package permissions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/silverlynx18/sock/internal/models"
	"github.com/silverlynx18/sock/pkg/metrics"
)

// Checker answers group capability questions using persisted memberships.
type Checker struct {
	db *gorm.DB
}

// NewChecker constructs a capability checker backed by the provided database.
func NewChecker(db *gorm.DB) (*Checker, error) {
	if db == nil {
		return nil, errors.New("permission checker: db is required")
	}
	return &Checker{db: db}, nil
}

// MemberRole loads the role a user holds within a group. The second return
// value reports whether the user is a member at all.
func (c *Checker) MemberRole(ctx context.Context, groupID, userID string) (Role, bool, error) {
	ctx = ensureContext(ctx)

	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return RoleMember, false, errors.New("permission checker: group id is required")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return RoleMember, false, errors.New("permission checker: user id is required")
	}

	var member models.GroupMember
	err := c.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RoleMember, false, nil
	}
	if err != nil {
		return RoleMember, false, fmt.Errorf("permission checker: load membership: %w", err)
	}

	return ParseRole(member.Role), true, nil
}

// Check determines whether the user holds the capability within the group.
// Non-members are always denied.
func (c *Checker) Check(ctx context.Context, userID, groupID, capabilityID string) (bool, error) {
	capability, ok := Get(capabilityID)
	if !ok {
		metrics.RoleChecks.WithLabelValues(capabilityID, "error").Inc()
		return false, fmt.Errorf("permission checker: unknown capability %q", capabilityID)
	}

	role, isMember, err := c.MemberRole(ctx, groupID, userID)
	if err != nil {
		metrics.RoleChecks.WithLabelValues(capability.ID, "error").Inc()
		return false, err
	}
	if !isMember {
		metrics.RoleChecks.WithLabelValues(capability.ID, "denied").Inc()
		return false, nil
	}

	allowed := IsAtLeast(role, capability.MinRole)
	if allowed {
		metrics.RoleChecks.WithLabelValues(capability.ID, "allowed").Inc()
	} else {
		metrics.RoleChecks.WithLabelValues(capability.ID, "denied").Inc()
	}
	return allowed, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
