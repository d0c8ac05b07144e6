package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/silverlynx18/sock/internal/models"
	"github.com/silverlynx18/sock/internal/permissions"
	"github.com/silverlynx18/sock/internal/realtime"
	"github.com/silverlynx18/sock/internal/status"
	apperrors "github.com/silverlynx18/sock/pkg/errors"
)

// StatusOption customises StatusService behaviour.
type StatusOption func(*StatusService)

// WithStatusClock injects a custom clock primarily for testing.
func WithStatusClock(clock func() time.Time) StatusOption {
	return func(s *StatusService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// SetStatusInput carries the fields a user can set on a status, either
// globally or scoped to a single group. OverrideGroups only applies to the
// global scope.
type SetStatusInput struct {
	PresetID       string
	CustomText     string
	CustomIcon     string
	OverrideGroups bool
	ExpiresAt      *time.Time
}

// PresetInput carries the editable fields of a user-saved preset.
type PresetInput struct {
	DisplayName string
	IconKey     string
	Color       string
}

// MemberEffective pairs a group member with their resolved status.
type MemberEffective struct {
	UserID      string           `json:"user_id"`
	DisplayName string           `json:"display_name"`
	Role        string           `json:"role"`
	Status      status.Effective `json:"status"`
}

// StatusService manages stored statuses, user-saved presets and effective
// status resolution.
type StatusService struct {
	db      *gorm.DB
	checker *permissions.Checker
	hub     *realtime.Hub

	now func() time.Time
}

// NewStatusService constructs a StatusService. The hub is optional.
func NewStatusService(db *gorm.DB, checker *permissions.Checker, hub *realtime.Hub, opts ...StatusOption) (*StatusService, error) {
	if db == nil {
		return nil, errors.New("status service: db is required")
	}
	if checker == nil {
		return nil, errors.New("status service: permission checker is required")
	}

	service := &StatusService{
		db:      db,
		checker: checker,
		hub:     hub,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// SetGlobalStatus stores or replaces the user's global status.
func (s *StatusService) SetGlobalStatus(ctx context.Context, userID string, input SetStatusInput) (*models.UserStatus, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if err := s.validateStatusInput(ctx, userID, input); err != nil {
		return nil, err
	}

	record := models.UserStatus{
		UserID:         userID,
		PresetID:       status.ParsePresetID(input.PresetID).ID,
		CustomText:     strings.TrimSpace(input.CustomText),
		CustomIcon:     strings.TrimSpace(input.CustomIcon),
		OverrideGroups: input.OverrideGroups,
		ExpiresAt:      input.ExpiresAt,
	}
	if s.isUserPreset(ctx, userID, input.PresetID) {
		record.PresetID = strings.TrimSpace(input.PresetID)
	}

	var existing models.UserStatus
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, fmt.Errorf("status service: create global status: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("status service: load global status: %w", err)
	default:
		record.BaseModel = existing.BaseModel
		if err := s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"preset_id":       record.PresetID,
			"custom_text":     record.CustomText,
			"custom_icon":     record.CustomIcon,
			"override_groups": record.OverrideGroups,
			"expires_at":      record.ExpiresAt,
		}).Error; err != nil {
			return nil, fmt.Errorf("status service: update global status: %w", err)
		}
	}

	s.broadcastUserChange(ctx, userID)
	return &record, nil
}

// ClearGlobalStatus removes the user's global status. Clearing an absent
// status is a no-op.
func (s *StatusService) ClearGlobalStatus(ctx context.Context, userID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UserStatus{}).Error
	if err != nil {
		return fmt.Errorf("status service: clear global status: %w", err)
	}

	s.broadcastUserChange(ctx, userID)
	return nil
}

// SetMemberStatus stores or replaces the user's status within one group.
func (s *StatusService) SetMemberStatus(ctx context.Context, groupID, userID string, input SetStatusInput) (*models.MemberStatus, error) {
	ctx = ensureContext(ctx)

	if _, isMember, err := s.checker.MemberRole(ctx, groupID, userID); err != nil {
		return nil, err
	} else if !isMember {
		return nil, ErrMemberNotFound
	}
	if err := s.validateStatusInput(ctx, userID, input); err != nil {
		return nil, err
	}

	record := models.MemberStatus{
		GroupID:    strings.TrimSpace(groupID),
		UserID:     strings.TrimSpace(userID),
		PresetID:   status.ParsePresetID(input.PresetID).ID,
		CustomText: strings.TrimSpace(input.CustomText),
		CustomIcon: strings.TrimSpace(input.CustomIcon),
		ExpiresAt:  input.ExpiresAt,
	}
	if s.isUserPreset(ctx, userID, input.PresetID) {
		record.PresetID = strings.TrimSpace(input.PresetID)
	}

	var existing models.MemberStatus
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
			return nil, fmt.Errorf("status service: create member status: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("status service: load member status: %w", err)
	default:
		record.BaseModel = existing.BaseModel
		if err := s.db.WithContext(ctx).Model(&existing).Updates(map[string]any{
			"preset_id":   record.PresetID,
			"custom_text": record.CustomText,
			"custom_icon": record.CustomIcon,
			"expires_at":  record.ExpiresAt,
		}).Error; err != nil {
			return nil, fmt.Errorf("status service: update member status: %w", err)
		}
	}

	s.broadcastGroupChange(ctx, groupID, userID)
	return &record, nil
}

// ClearMemberStatus removes the user's status inside one group.
func (s *StatusService) ClearMemberStatus(ctx context.Context, groupID, userID string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.MemberStatus{}).Error
	if err != nil {
		return fmt.Errorf("status service: clear member status: %w", err)
	}

	s.broadcastGroupChange(ctx, groupID, userID)
	return nil
}

// EffectiveStatus resolves what the viewer sees for the target inside one
// group. Both users must be group members.
func (s *StatusService) EffectiveStatus(ctx context.Context, groupID, viewerID, targetID string) (status.Effective, error) {
	ctx = ensureContext(ctx)

	if _, isMember, err := s.checker.MemberRole(ctx, groupID, viewerID); err != nil {
		return status.Effective{}, err
	} else if !isMember {
		return status.Effective{}, ErrGroupNotFound
	}
	if _, isMember, err := s.checker.MemberRole(ctx, groupID, targetID); err != nil {
		return status.Effective{}, err
	} else if !isMember {
		return status.Effective{}, ErrMemberNotFound
	}

	global, err := s.globalSnapshot(ctx, targetID)
	if err != nil {
		return status.Effective{}, err
	}
	override := global != nil && s.overrideFlag(ctx, targetID)

	group, err := s.memberSnapshot(ctx, groupID, targetID)
	if err != nil {
		return status.Effective{}, err
	}

	lookup, err := s.lookupFor(ctx, targetID)
	if err != nil {
		return status.Effective{}, err
	}

	return status.Resolve(status.Input{
		Global:         global,
		Group:          group,
		OverrideGroups: override,
		Now:            s.now(),
		Lookup:         lookup,
	}), nil
}

// GroupStatuses resolves the effective status of every member of a group,
// as seen by the viewer.
func (s *StatusService) GroupStatuses(ctx context.Context, groupID, viewerID string) ([]MemberEffective, error) {
	ctx = ensureContext(ctx)

	if _, isMember, err := s.checker.MemberRole(ctx, groupID, viewerID); err != nil {
		return nil, err
	} else if !isMember {
		return nil, ErrGroupNotFound
	}

	var members []models.GroupMember
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("status service: load members: %w", err)
	}

	now := s.now()
	results := make([]MemberEffective, 0, len(members))
	for _, member := range members {
		global, err := s.globalSnapshot(ctx, member.UserID)
		if err != nil {
			return nil, err
		}
		group, err := s.memberSnapshot(ctx, groupID, member.UserID)
		if err != nil {
			return nil, err
		}
		lookup, err := s.lookupFor(ctx, member.UserID)
		if err != nil {
			return nil, err
		}

		entry := MemberEffective{
			UserID: member.UserID,
			Role:   member.Role,
			Status: status.Resolve(status.Input{
				Global:         global,
				Group:          group,
				OverrideGroups: global != nil && s.overrideFlag(ctx, member.UserID),
				Now:            now,
				Lookup:         lookup,
			}),
		}
		if member.User != nil {
			entry.DisplayName = member.User.Name()
		}
		results = append(results, entry)
	}

	return results, nil
}

// CreatePreset saves a user-defined preset.
func (s *StatusService) CreatePreset(ctx context.Context, ownerID string, input PresetInput) (*models.StatusPreset, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.DisplayName)
	if name == "" {
		return nil, apperrors.NewBadRequest("preset display name is required")
	}

	preset := models.StatusPreset{
		OwnerID:     strings.TrimSpace(ownerID),
		DisplayName: name,
		IconKey:     strings.TrimSpace(input.IconKey),
		Color:       strings.TrimSpace(input.Color),
	}
	if err := s.db.WithContext(ctx).Create(&preset).Error; err != nil {
		return nil, fmt.Errorf("status service: create preset: %w", err)
	}
	return &preset, nil
}

// ListPresets returns the user's saved presets ordered by name.
func (s *StatusService) ListPresets(ctx context.Context, ownerID string) ([]models.StatusPreset, error) {
	ctx = ensureContext(ctx)

	var presets []models.StatusPreset
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("display_name ASC").
		Find(&presets).Error
	if err != nil {
		return nil, fmt.Errorf("status service: list presets: %w", err)
	}
	return presets, nil
}

// UpdatePreset edits a saved preset owned by the user.
func (s *StatusService) UpdatePreset(ctx context.Context, ownerID, presetID string, input PresetInput) (*models.StatusPreset, error) {
	ctx = ensureContext(ctx)

	var preset models.StatusPreset
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", presetID, ownerID).
		First(&preset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPresetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("status service: load preset: %w", err)
	}

	updates := map[string]any{}
	if name := strings.TrimSpace(input.DisplayName); name != "" {
		updates["display_name"] = name
		preset.DisplayName = name
	}
	if icon := strings.TrimSpace(input.IconKey); icon != "" {
		updates["icon_key"] = icon
		preset.IconKey = icon
	}
	if color := strings.TrimSpace(input.Color); color != "" {
		updates["color"] = color
		preset.Color = color
	}
	if len(updates) == 0 {
		return &preset, nil
	}

	if err := s.db.WithContext(ctx).Model(&preset).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("status service: update preset: %w", err)
	}
	return &preset, nil
}

// DeletePreset removes a saved preset owned by the user. Stored statuses
// referencing it keep their snapshot fields and resolve through the custom
// text fallback.
func (s *StatusService) DeletePreset(ctx context.Context, ownerID, presetID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", presetID, ownerID).
		Delete(&models.StatusPreset{})
	if result.Error != nil {
		return fmt.Errorf("status service: delete preset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPresetNotFound
	}
	return nil
}

func (s *StatusService) validateStatusInput(ctx context.Context, userID string, input SetStatusInput) error {
	presetID := strings.TrimSpace(input.PresetID)
	if presetID == "" {
		return apperrors.NewBadRequest("preset id is required")
	}
	if strings.EqualFold(presetID, status.PresetShowingCustom) && strings.TrimSpace(input.CustomText) == "" {
		return apperrors.NewBadRequest("custom status text is required")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.now()) {
		return apperrors.NewBadRequest("expiry must be in the future")
	}
	if _, known := status.LookupAppPreset(presetID); known {
		return nil
	}
	if s.isUserPreset(ctx, userID, presetID) {
		return nil
	}
	return ErrPresetNotFound
}

func (s *StatusService) isUserPreset(ctx context.Context, userID, presetID string) bool {
	presetID = strings.TrimSpace(presetID)
	if presetID == "" {
		return false
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.StatusPreset{}).
		Where("id = ? AND owner_id = ?", presetID, userID).
		Count(&count).Error
	return err == nil && count > 0
}

func (s *StatusService) globalSnapshot(ctx context.Context, userID string) (*status.Snapshot, error) {
	var record models.UserStatus
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("status service: load global status: %w", err)
	}
	return &status.Snapshot{
		PresetID:   record.PresetID,
		CustomText: record.CustomText,
		CustomIcon: record.CustomIcon,
		ExpiresAt:  record.ExpiresAt,
	}, nil
}

func (s *StatusService) memberSnapshot(ctx context.Context, groupID, userID string) (*status.Snapshot, error) {
	var record models.MemberStatus
	err := s.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("status service: load member status: %w", err)
	}
	return &status.Snapshot{
		PresetID:   record.PresetID,
		CustomText: record.CustomText,
		CustomIcon: record.CustomIcon,
		ExpiresAt:  record.ExpiresAt,
	}, nil
}

func (s *StatusService) overrideFlag(ctx context.Context, userID string) bool {
	var record models.UserStatus
	err := s.db.WithContext(ctx).
		Select("override_groups").
		Where("user_id = ?", userID).
		First(&record).Error
	return err == nil && record.OverrideGroups
}

// lookupFor merges the target user's saved presets over the app registry.
func (s *StatusService) lookupFor(ctx context.Context, userID string) (status.Lookup, error) {
	saved, err := s.ListPresets(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]status.Preset, len(saved))
	for _, preset := range saved {
		byID[preset.ID] = status.Preset{
			ID:          preset.ID,
			DisplayName: preset.DisplayName,
			IconKey:     preset.IconKey,
			Color:       preset.Color,
		}
	}
	return func(id string) (status.Preset, bool) {
		if preset, ok := byID[strings.TrimSpace(id)]; ok {
			return preset, true
		}
		return status.LookupAppPreset(id)
	}, nil
}

func (s *StatusService) broadcastUserChange(ctx context.Context, userID string) {
	if s.hub == nil {
		return
	}

	var groupIDs []string
	if err := s.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &groupIDs).Error; err != nil {
		return
	}
	for _, groupID := range groupIDs {
		s.broadcastGroupChange(ctx, groupID, userID)
	}
}

func (s *StatusService) broadcastGroupChange(ctx context.Context, groupID, userID string) {
	if s.hub == nil {
		return
	}

	var memberIDs []string
	if err := s.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &memberIDs).Error; err != nil {
		return
	}

	s.hub.BroadcastToUsers(realtime.StreamStatuses, memberIDs, realtime.Message{
		Stream: realtime.StreamStatuses,
		Event:  "status.changed",
		Data: map[string]any{
			"group_id": groupID,
			"user_id":  userID,
		},
	})
}
