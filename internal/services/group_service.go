package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/silverlynx18/sock/internal/models"
	"github.com/silverlynx18/sock/internal/permissions"
	apperrors "github.com/silverlynx18/sock/pkg/errors"
)

// CreateGroupInput captures new group metadata.
type CreateGroupInput struct {
	Name        string
	Description string
	PhotoURL    string
}

// UpdateGroupInput describes mutable group fields.
type UpdateGroupInput struct {
	Name        *string
	Description *string
	PhotoURL    *string
}

// GroupService handles group lifecycle, membership, and role changes.
type GroupService struct {
	db      *gorm.DB
	checker *permissions.Checker
	audit   *AuditService
}

// NewGroupService constructs a GroupService instance.
func NewGroupService(db *gorm.DB, checker *permissions.Checker, audit *AuditService) (*GroupService, error) {
	if db == nil {
		return nil, errors.New("group service: db is required")
	}
	if checker == nil {
		return nil, errors.New("group service: permission checker is required")
	}
	return &GroupService{db: db, checker: checker, audit: audit}, nil
}

// Create registers a new group with the creator as its Owner.
func (s *GroupService) Create(ctx context.Context, creatorID string, input CreateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("group name is required")
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		PhotoURL:    strings.TrimSpace(input.PhotoURL),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return fmt.Errorf("create group: %w", err)
		}
		member := &models.GroupMember{
			GroupID: group.ID,
			UserID:  creatorID,
			Role:    permissions.RoleOwner.String(),
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("group service: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &creatorID,
		Action:   "group.create",
		Resource: group.ID,
		Result:   "success",
		Metadata: map[string]any{"name": group.Name},
	})

	return group, nil
}

// GetByID loads a group for one of its members.
func (s *GroupService) GetByID(ctx context.Context, groupID, userID string) (*models.Group, error) {
	ctx = ensureContext(ctx)

	_, isMember, err := s.checker.MemberRole(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrGroupNotFound
	}

	var group models.Group
	err = s.db.WithContext(ctx).
		Preload("Members.User").
		First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("group service: load group: %w", err)
	}
	return &group, nil
}

// ListForUser returns every group the user belongs to.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]models.Group, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var groups []models.Group
	err := s.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.name").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("group service: list groups: %w", err)
	}
	return groups, nil
}

// Update modifies group metadata. Requires the group.manage capability.
func (s *GroupService) Update(ctx context.Context, groupID, actorID string, input UpdateGroupInput) (*models.Group, error) {
	ctx = ensureContext(ctx)

	if err := s.requireCapability(ctx, groupID, actorID, "group.manage"); err != nil {
		return nil, err
	}

	var group models.Group
	err := s.db.WithContext(ctx).First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("group service: load group: %w", err)
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != group.Name {
			updates["name"] = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.PhotoURL != nil {
		updates["photo_url"] = strings.TrimSpace(*input.PhotoURL)
	}

	if len(updates) == 0 {
		return &group, nil
	}

	if err := s.db.WithContext(ctx).Model(&group).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("group service: update group: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "group.update",
		Resource: group.ID,
		Result:   "success",
	})

	return &group, nil
}

// Delete removes a group and all dependent rows. Owner only.
func (s *GroupService) Delete(ctx context.Context, groupID, actorID string) error {
	ctx = ensureContext(ctx)

	if err := s.requireCapability(ctx, groupID, actorID, "group.delete"); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupInvite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&models.MemberStatus{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, "id = ?", groupID).Error
	})
	if err != nil {
		return fmt.Errorf("group service: delete group: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "group.delete",
		Resource: groupID,
		Result:   "success",
	})

	return nil
}

// ListMembers returns memberships with their users preloaded.
func (s *GroupService) ListMembers(ctx context.Context, groupID, actorID string) ([]models.GroupMember, error) {
	ctx = ensureContext(ctx)

	_, isMember, err := s.checker.MemberRole(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrGroupNotFound
	}

	var members []models.GroupMember
	err = s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("group service: list members: %w", err)
	}
	return members, nil
}

// AddMember inserts a membership row with the supplied role. Authorization
// happens upstream (invitation acceptance or group creation).
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string, role permissions.Role) error {
	ctx = ensureContext(ctx)
	return s.addMember(s.db.WithContext(ctx), groupID, userID, role)
}

// addMember runs the membership insert on the supplied handle so invitation
// acceptance can include it in its transaction.
func (s *GroupService) addMember(db *gorm.DB, groupID, userID string, role permissions.Role) error {
	var group models.Group
	err := db.First(&group, "id = ?", groupID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGroupNotFound
	}
	if err != nil {
		return fmt.Errorf("group service: load group: %w", err)
	}

	member := &models.GroupMember{
		GroupID: groupID,
		UserID:  strings.TrimSpace(userID),
		Role:    role.String(),
	}
	if err := db.Create(member).Error; err != nil {
		if isUniqueConstraintError(err) {
			return ErrMemberAlreadyExists
		}
		return fmt.Errorf("group service: add member: %w", err)
	}
	return nil
}

// RemoveMember removes the target from the group when the actor's role
// permits it under the role model.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, actorID, targetID string) error {
	ctx = ensureContext(ctx)

	actorRole, isMember, err := s.checker.MemberRole(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrGroupNotFound
	}

	targetRole, targetIsMember, err := s.checker.MemberRole(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if !targetIsMember {
		return ErrMemberNotFound
	}

	if !permissions.CanRemoveMember(actorRole, targetRole) {
		return ErrRemoveMemberDenied
	}

	if err := s.deleteMembership(ctx, groupID, targetID); err != nil {
		return err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "member.remove",
		Resource: groupID,
		Result:   "success",
		Metadata: map[string]any{"target": targetID, "target_role": targetRole.String()},
	})

	return nil
}

// Leave removes the caller's own membership. Owners must transfer ownership
// first, which is outside this service.
func (s *GroupService) Leave(ctx context.Context, groupID, userID string) error {
	ctx = ensureContext(ctx)

	role, isMember, err := s.checker.MemberRole(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrMemberNotFound
	}
	if role == permissions.RoleOwner {
		return ErrOwnerCannotLeave
	}

	return s.deleteMembership(ctx, groupID, userID)
}

// ChangeRole promotes or demotes a member. Promotion requires
// CanPromoteTo(actor, newRole); demotion additionally requires
// CanDemoteFrom(actor, currentRole). Self-escalation is always rejected.
func (s *GroupService) ChangeRole(ctx context.Context, groupID, actorID, targetID string, newRole permissions.Role) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(actorID) == strings.TrimSpace(targetID) {
		return ErrRoleChangeDenied
	}

	actorRole, isMember, err := s.checker.MemberRole(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrGroupNotFound
	}

	currentRole, targetIsMember, err := s.checker.MemberRole(ctx, groupID, targetID)
	if err != nil {
		return err
	}
	if !targetIsMember {
		return ErrMemberNotFound
	}

	if newRole == currentRole {
		return nil
	}

	if newRole > currentRole {
		if !permissions.CanPromoteTo(actorRole, newRole) {
			return ErrRoleChangeDenied
		}
	} else {
		if !permissions.CanDemoteFrom(actorRole, currentRole) || !permissions.CanPromoteTo(actorRole, newRole) {
			return ErrRoleChangeDenied
		}
	}

	err = s.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, targetID).
		Update("role", newRole.String()).Error
	if err != nil {
		return fmt.Errorf("group service: change role: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "member.role_change",
		Resource: groupID,
		Result:   "success",
		Metadata: map[string]any{
			"target": targetID,
			"from":   currentRole.String(),
			"to":     newRole.String(),
		},
	})

	return nil
}

// MemberIDs returns the user IDs of every group member, used for realtime fan-out.
func (s *GroupService) MemberIDs(ctx context.Context, groupID string) ([]string, error) {
	ctx = ensureContext(ctx)

	var ids []string
	err := s.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("group service: member ids: %w", err)
	}
	return ids, nil
}

func (s *GroupService) requireCapability(ctx context.Context, groupID, actorID, capability string) error {
	allowed, err := s.checker.Check(ctx, actorID, groupID, capability)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *GroupService) deleteMembership(ctx context.Context, groupID, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&models.MemberStatus{}).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&models.GroupMember{}).Error
	})
	if err != nil {
		return fmt.Errorf("group service: remove membership: %w", err)
	}
	return nil
}
