package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/silverlynx18/sock/internal/models"
	"github.com/silverlynx18/sock/internal/permissions"
	"github.com/silverlynx18/sock/pkg/crypto"
	apperrors "github.com/silverlynx18/sock/pkg/errors"
	"github.com/silverlynx18/sock/pkg/metrics"
)

const (
	defaultInviteExpiry     = 7 * 24 * time.Hour
	defaultInviteTokenBytes = 48
)

// InviteOption customises InviteService behaviour.
type InviteOption func(*InviteService)

// WithInviteAcceptURL configures the base URL used to create email invite links.
func WithInviteAcceptURL(url string) InviteOption {
	return func(s *InviteService) {
		s.acceptURL = strings.TrimRight(url, "/")
	}
}

// WithInviteExpiry overrides the invitation lifetime.
func WithInviteExpiry(d time.Duration) InviteOption {
	return func(s *InviteService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInviteTokenSize adjusts the random token length in bytes.
func WithInviteTokenSize(size int) InviteOption {
	return func(s *InviteService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithInviteClock injects a custom clock primarily for testing.
func WithInviteClock(clock func() time.Time) InviteOption {
	return func(s *InviteService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// CreateInviteInput captures a new invitation. Exactly one recipient field
// matching Type must be populated.
type CreateInviteInput struct {
	GroupID      string
	InviterID    string
	Type         models.InviteType
	RecipientID  string // direct
	Email        string // email
	Username     string // username
	Phone        string // phone
	RoleToAssign permissions.Role
}

// InviteService manages the invitation lifecycle.
type InviteService struct {
	db            *gorm.DB
	checker       *permissions.Checker
	groups        *GroupService
	users         *UserService
	notifications *NotificationService
	audit         *AuditService

	acceptURL   string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
}

// NewInviteService constructs an InviteService with the provided dependencies.
// The notification and audit services are optional.
func NewInviteService(
	db *gorm.DB,
	checker *permissions.Checker,
	groups *GroupService,
	users *UserService,
	notifications *NotificationService,
	audit *AuditService,
	opts ...InviteOption,
) (*InviteService, error) {
	if db == nil {
		return nil, errors.New("invite service: db is required")
	}
	if checker == nil {
		return nil, errors.New("invite service: permission checker is required")
	}
	if groups == nil {
		return nil, errors.New("invite service: group service is required")
	}
	if users == nil {
		return nil, errors.New("invite service: user service is required")
	}

	service := &InviteService{
		db:            db,
		checker:       checker,
		groups:        groups,
		users:         users,
		notifications: notifications,
		audit:         audit,
		expiry:        defaultInviteExpiry,
		tokenLength:   defaultInviteTokenBytes,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Create issues a new pending invitation. The inviter needs the
// invite.create capability; assigning a role above Member additionally
// requires the promote rule for that role.
func (s *InviteService) Create(ctx context.Context, input CreateInviteInput) (invite *models.GroupInvite, token, link string, err error) {
	ctx = ensureContext(ctx)

	inviterRole, isMember, err := s.checker.MemberRole(ctx, input.GroupID, input.InviterID)
	if err != nil {
		return nil, "", "", err
	}
	if !isMember {
		return nil, "", "", ErrGroupNotFound
	}
	if !permissions.CanModerateContent(inviterRole) {
		return nil, "", "", apperrors.ErrForbidden
	}
	if input.RoleToAssign > permissions.RoleMember && !permissions.CanPromoteTo(inviterRole, input.RoleToAssign) {
		return nil, "", "", ErrRoleChangeDenied
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)

	invite = &models.GroupInvite{
		GroupID:      strings.TrimSpace(input.GroupID),
		InviterID:    strings.TrimSpace(input.InviterID),
		Type:         input.Type,
		Status:       models.InviteStatusPending,
		RoleToAssign: input.RoleToAssign.String(),
		ExpiresAt:    &expiresAt,
	}

	switch input.Type {
	case models.InviteTypeDirect:
		recipientID := strings.TrimSpace(input.RecipientID)
		if recipientID == "" {
			return nil, "", "", apperrors.NewBadRequest("recipient user id is required for direct invitations")
		}
		if _, err := s.users.GetByID(ctx, recipientID); err != nil {
			return nil, "", "", err
		}
		if _, alreadyMember, err := s.checker.MemberRole(ctx, input.GroupID, recipientID); err != nil {
			return nil, "", "", err
		} else if alreadyMember {
			return nil, "", "", ErrMemberAlreadyExists
		}
		invite.InviteeUserID = &recipientID
		invite.Resolved = true
		invite.ResolvedUserID = &recipientID

	case models.InviteTypeEmail:
		email := strings.ToLower(strings.TrimSpace(input.Email))
		if email == "" {
			return nil, "", "", apperrors.NewBadRequest("email is required for email invitations")
		}
		invite.Email = email

		token, err = crypto.GenerateToken(s.tokenLength)
		if err != nil {
			return nil, "", "", fmt.Errorf("invite service: generate token: %w", err)
		}
		invite.TokenHash = tokenHash(token)
		link = s.inviteLink(token)

	case models.InviteTypeUsername:
		username := strings.TrimSpace(input.Username)
		if username == "" {
			return nil, "", "", apperrors.NewBadRequest("username is required for username invitations")
		}
		invite.Username = username

	case models.InviteTypePhone:
		phone := strings.TrimSpace(input.Phone)
		if phone == "" {
			return nil, "", "", apperrors.NewBadRequest("phone number is required for phone invitations")
		}
		invite.Phone = phone

	default:
		return nil, "", "", apperrors.NewBadRequest("unsupported invitation type")
	}

	if err := s.ensureNoPendingDuplicate(ctx, invite, now); err != nil {
		return nil, "", "", err
	}

	if err := s.db.WithContext(ctx).Create(invite).Error; err != nil {
		return nil, "", "", fmt.Errorf("invite service: create invite: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &invite.InviterID,
		Action:   "invite.create",
		Resource: invite.ID,
		Result:   "success",
		Metadata: map[string]any{
			"group_id": invite.GroupID,
			"type":     string(invite.Type),
			"role":     invite.RoleToAssign,
		},
	})

	if invite.InviteeUserID != nil {
		s.notifyRecipient(ctx, invite)
	}

	return invite, token, link, nil
}

// Accept transitions a pending invitation to accepted and adds the caller to
// the group. Expired pending invitations are marked expired and rejected.
func (s *InviteService) Accept(ctx context.Context, inviteID, userID string) (*models.GroupInvite, error) {
	ctx = ensureContext(ctx)

	invite, err := s.loadInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	if invite.Status != models.InviteStatusPending {
		return nil, ErrInviteNotPending
	}

	now := s.now()
	if invite.Expired(now) {
		// Lazy expiry detection on read, mirroring the scheduled sweep.
		if err := s.applyTransition(ctx, invite, models.InviteStatusExpired, now); err != nil {
			return nil, err
		}
		return nil, ErrInviteExpired
	}

	if err := s.authorizeRecipient(ctx, invite, userID); err != nil {
		return nil, err
	}

	// The transition and the membership grant commit together: if a
	// concurrent revoke or expiry wins the guarded update, no member row
	// survives the rollback.
	role := permissions.ParseRole(invite.RoleToAssign)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, invite, models.InviteStatusAccepted, now); err != nil {
			return err
		}
		if err := s.groups.addMember(tx, invite.GroupID, userID, role); err != nil {
			if !errors.Is(err, ErrMemberAlreadyExists) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.finishTransition(invite, models.InviteStatusAccepted, now)

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &invite.InviterID,
		Action:   "invite.accept",
		Resource: invite.ID,
		Result:   "success",
		Metadata: map[string]any{"group_id": invite.GroupID, "user_id": userID},
	})

	s.notifyInviter(ctx, invite, "invite.accepted", "Invitation accepted")

	return invite, nil
}

// AcceptByToken redeems an email invitation link for the signed-in user.
func (s *InviteService) AcceptByToken(ctx context.Context, token, userID string) (*models.GroupInvite, error) {
	ctx = ensureContext(ctx)

	invite, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	// Bind the redeeming account before the recipient check runs. The token
	// itself proves the holder received the invitation email.
	if !invite.Resolved && invite.Status == models.InviteStatusPending {
		id := strings.TrimSpace(userID)
		err := s.db.WithContext(ctx).Model(invite).Updates(map[string]any{
			"resolved":         true,
			"resolved_user_id": id,
		}).Error
		if err != nil {
			return nil, fmt.Errorf("invite service: bind recipient: %w", err)
		}
	}

	return s.Accept(ctx, invite.ID, userID)
}

// Decline transitions a pending invitation to declined.
func (s *InviteService) Decline(ctx context.Context, inviteID, userID string) (*models.GroupInvite, error) {
	ctx = ensureContext(ctx)

	invite, err := s.loadInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite.Status != models.InviteStatusPending {
		return nil, ErrInviteNotPending
	}
	if err := s.authorizeRecipient(ctx, invite, userID); err != nil {
		return nil, err
	}

	if err := s.applyTransition(ctx, invite, models.InviteStatusDeclined, s.now()); err != nil {
		return nil, err
	}

	s.notifyInviter(ctx, invite, "invite.declined", "Invitation declined")

	return invite, nil
}

// Revoke cancels a pending invitation. Allowed for the inviter or any member
// holding the invite.revoke capability.
func (s *InviteService) Revoke(ctx context.Context, inviteID, actorID string) (*models.GroupInvite, error) {
	ctx = ensureContext(ctx)

	invite, err := s.loadInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if invite.Status != models.InviteStatusPending {
		return nil, ErrInviteNotPending
	}

	if strings.TrimSpace(actorID) != invite.InviterID {
		allowed, err := s.checker.Check(ctx, actorID, invite.GroupID, "invite.revoke")
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrInviteDenied
		}
	}

	if err := s.applyTransition(ctx, invite, models.InviteStatusRevoked, s.now()); err != nil {
		return nil, err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &actorID,
		Action:   "invite.revoke",
		Resource: invite.ID,
		Result:   "success",
		Metadata: map[string]any{"group_id": invite.GroupID},
	})

	return invite, nil
}

// ListForGroup returns a group's invitations, optionally filtered by status.
func (s *InviteService) ListForGroup(ctx context.Context, groupID, actorID string, status models.InviteStatus) ([]models.GroupInvite, error) {
	ctx = ensureContext(ctx)

	allowed, err := s.checker.Check(ctx, actorID, groupID, "invite.create")
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}

	query := s.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var invites []models.GroupInvite
	if err := query.Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("invite service: list invites: %w", err)
	}
	return invites, nil
}

// ListForUser returns pending invitations addressed to the user, including
// resolved email/username invitations.
func (s *InviteService) ListForUser(ctx context.Context, userID string) ([]models.GroupInvite, error) {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.ErrUnauthorized
	}

	var invites []models.GroupInvite
	err := s.db.WithContext(ctx).
		Preload("Group").
		Preload("Inviter").
		Where("status = ?", models.InviteStatusPending).
		Where("invitee_user_id = ? OR resolved_user_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&invites).Error
	if err != nil {
		return nil, fmt.Errorf("invite service: list user invites: %w", err)
	}
	return invites, nil
}

// ResolveRecipient runs the account-matching step for email/username
// invitations. It records the outcome without changing lifecycle state.
// Allowed for the inviter or any member holding the invite.create capability.
func (s *InviteService) ResolveRecipient(ctx context.Context, inviteID, actorID string) (*models.GroupInvite, error) {
	ctx = ensureContext(ctx)

	invite, err := s.loadInvite(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(actorID) != invite.InviterID {
		allowed, err := s.checker.Check(ctx, actorID, invite.GroupID, "invite.create")
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrInviteDenied
		}
	}

	if invite.Resolved {
		return invite, nil
	}

	var (
		matched         *models.User
		resolutionError string
	)

	switch invite.Type {
	case models.InviteTypeEmail:
		matched, err = s.users.FindByEmail(ctx, invite.Email)
	case models.InviteTypeUsername:
		matched, err = s.users.FindByUsername(ctx, invite.Username)
	case models.InviteTypePhone:
		// Phone-contact matching needs the contact book upload, which is a
		// client-side concern; there is nothing to match server-side.
		resolutionError = "phone contacts cannot be matched server-side"
	default:
		return invite, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if matched != nil {
		updates["resolved"] = true
		updates["resolved_user_id"] = matched.ID
		updates["resolution_error"] = ""
		invite.Resolved = true
		invite.ResolvedUserID = &matched.ID
		invite.ResolutionError = ""
	} else {
		if resolutionError == "" {
			resolutionError = "no matching account found"
		}
		updates["resolution_error"] = resolutionError
		invite.ResolutionError = resolutionError
	}

	if err := s.db.WithContext(ctx).Model(invite).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("invite service: record resolution: %w", err)
	}

	if invite.Resolved && invite.Status == models.InviteStatusPending {
		s.notifyRecipient(ctx, invite)
	}

	return invite, nil
}

// ExpireOverdue transitions every overdue pending invitation to expired and
// returns the number of rows affected. Called from the maintenance sweeper.
func (s *InviteService) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.GroupInvite{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", models.InviteStatusPending, now).
		Updates(map[string]any{
			"status":       models.InviteStatusExpired,
			"processed_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("invite service: expire overdue: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.InviteTransitions.WithLabelValues(string(models.InviteStatusExpired)).Add(float64(result.RowsAffected))
	}

	return result.RowsAffected, nil
}

func (s *InviteService) loadInvite(ctx context.Context, inviteID string) (*models.GroupInvite, error) {
	inviteID = strings.TrimSpace(inviteID)
	if inviteID == "" {
		return nil, apperrors.NewBadRequest("invitation id is required")
	}

	var invite models.GroupInvite
	err := s.db.WithContext(ctx).First(&invite, "id = ?", inviteID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invite service: load invite: %w", err)
	}
	return &invite, nil
}

func (s *InviteService) findByToken(ctx context.Context, token string) (*models.GroupInvite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.NewBadRequest("invitation token is required")
	}

	var invite models.GroupInvite
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash(token)).
		First(&invite).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invite service: find by token: %w", err)
	}
	return &invite, nil
}

// applyTransition persists a lifecycle step after validating it against the
// state machine. ProcessedAt is set exactly when pending is left.
func (s *InviteService) applyTransition(ctx context.Context, invite *models.GroupInvite, next models.InviteStatus, now time.Time) error {
	if err := s.transition(s.db.WithContext(ctx), invite, next, now); err != nil {
		return err
	}
	s.finishTransition(invite, next, now)
	return nil
}

// transition runs the guarded lifecycle update on the supplied handle so it
// can participate in a caller-owned transaction. The in-memory invite and
// metrics are left untouched until the enclosing work commits.
func (s *InviteService) transition(db *gorm.DB, invite *models.GroupInvite, next models.InviteStatus, now time.Time) error {
	if !invite.Status.CanTransitionTo(next) {
		return ErrInviteNotPending
	}

	updates := map[string]any{
		"status":       next,
		"processed_at": now,
	}
	// Guard against a concurrent transition winning the race.
	result := db.
		Model(&models.GroupInvite{}).
		Where("id = ? AND status = ?", invite.ID, models.InviteStatusPending).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("invite service: transition to %s: %w", next, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInviteNotPending
	}
	return nil
}

func (s *InviteService) finishTransition(invite *models.GroupInvite, next models.InviteStatus, now time.Time) {
	invite.Status = next
	invite.ProcessedAt = &now
	metrics.InviteTransitions.WithLabelValues(string(next)).Inc()
}

// authorizeRecipient checks that the acting user is the invitation's target.
func (s *InviteService) authorizeRecipient(ctx context.Context, invite *models.GroupInvite, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.ErrUnauthorized
	}

	recipient := invite.RecipientUserID()
	if recipient == "" {
		// Unresolved email/username invitations can still be claimed when the
		// caller's account matches the recipient field.
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		switch invite.Type {
		case models.InviteTypeEmail:
			if strings.EqualFold(user.Email, invite.Email) {
				return nil
			}
		case models.InviteTypeUsername:
			if user.Username == invite.Username {
				return nil
			}
		}
		return ErrInviteUnresolved
	}

	if recipient != userID {
		return ErrInviteDenied
	}
	return nil
}

func (s *InviteService) ensureNoPendingDuplicate(ctx context.Context, invite *models.GroupInvite, now time.Time) error {
	query := s.db.WithContext(ctx).
		Model(&models.GroupInvite{}).
		Where("group_id = ? AND status = ?", invite.GroupID, models.InviteStatusPending).
		Where("expires_at IS NULL OR expires_at > ?", now)

	switch invite.Type {
	case models.InviteTypeDirect:
		query = query.Where("invitee_user_id = ?", invite.InviteeUserID)
	case models.InviteTypeEmail:
		query = query.Where("email = ?", invite.Email)
	case models.InviteTypeUsername:
		query = query.Where("username = ?", invite.Username)
	case models.InviteTypePhone:
		query = query.Where("phone = ?", invite.Phone)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("invite service: check duplicates: %w", err)
	}
	if count > 0 {
		return ErrInviteAlreadyPending
	}
	return nil
}

func (s *InviteService) notifyRecipient(ctx context.Context, invite *models.GroupInvite) {
	if s.notifications == nil {
		return
	}
	recipient := invite.RecipientUserID()
	if recipient == "" {
		return
	}
	_, _ = s.notifications.Create(ctx, CreateNotificationInput{
		UserID:  recipient,
		Type:    "invite.received",
		Title:   "You have been invited to a group",
		Message: "Open your invitations to respond.",
		Metadata: map[string]any{
			"invite_id": invite.ID,
			"group_id":  invite.GroupID,
		},
	})
}

func (s *InviteService) notifyInviter(ctx context.Context, invite *models.GroupInvite, eventType, title string) {
	if s.notifications == nil {
		return
	}
	_, _ = s.notifications.Create(ctx, CreateNotificationInput{
		UserID:  invite.InviterID,
		Type:    eventType,
		Title:   title,
		Metadata: map[string]any{
			"invite_id": invite.ID,
			"group_id":  invite.GroupID,
		},
	})
}

func (s *InviteService) inviteLink(token string) string {
	if s.acceptURL == "" {
		return token
	}
	return fmt.Sprintf("%s?token=%s", s.acceptURL, token)
}

func tokenHash(token string) string {
	checksum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(checksum[:])
}
