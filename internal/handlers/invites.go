package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/silverlynx18/sock/internal/models"
	"github.com/silverlynx18/sock/internal/permissions"
	"github.com/silverlynx18/sock/internal/services"
	apperrors "github.com/silverlynx18/sock/pkg/errors"
	"github.com/silverlynx18/sock/pkg/response"
)

type createInviteRequest struct {
	Type        string `json:"type" validate:"required"`
	RecipientID string `json:"recipient_id" validate:"omitempty,max=64"`
	Email       string `json:"email" validate:"omitempty,email"`
	Username    string `json:"username" validate:"omitempty,max=64"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Role        string `json:"role" validate:"omitempty"`
}

type acceptTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// createInviteResponse returns the persisted invitation plus, for email
// invitations, the one-time token and link. The token is never stored in
// clear text so this is the only chance to read it.
type createInviteResponse struct {
	Invite *models.GroupInvite `json:"invite"`
	Token  string              `json:"token,omitempty"`
	Link   string              `json:"link,omitempty"`
}

// InviteHandler exposes the invitation lifecycle endpoints.
type InviteHandler struct {
	invites *services.InviteService
}

// NewInviteHandler constructs an InviteHandler.
func NewInviteHandler(invites *services.InviteService) (*InviteHandler, error) {
	if invites == nil {
		return nil, errors.New("invite handler: invite service is required")
	}
	return &InviteHandler{invites: invites}, nil
}

// Create issues a new invitation into the group.
func (h *InviteHandler) Create(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req createInviteRequest
	if !bindAndValidate(c, &req) {
		return
	}

	inviteType, ok := models.ParseInviteType(req.Type)
	if !ok {
		response.Error(c, apperrors.NewBadRequest("unknown invitation type"))
		return
	}

	role := permissions.RoleMember
	if strings.TrimSpace(req.Role) != "" {
		role, ok = parseRoleStrict(req.Role)
		if !ok {
			response.Error(c, apperrors.NewBadRequest("unknown role"))
			return
		}
	}

	invite, token, link, err := h.invites.Create(requestContext(c), services.CreateInviteInput{
		GroupID:      c.Param("groupID"),
		InviterID:    userID,
		Type:         inviteType,
		RecipientID:  req.RecipientID,
		Email:        req.Email,
		Username:     req.Username,
		Phone:        req.Phone,
		RoleToAssign: role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, createInviteResponse{
		Invite: invite,
		Token:  token,
		Link:   link,
	})
}

// ListForGroup returns a group's invitations, optionally filtered by status.
func (h *InviteHandler) ListForGroup(c *gin.Context) {
	var status models.InviteStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, ok := models.ParseInviteStatus(raw)
		if !ok {
			response.Error(c, apperrors.NewBadRequest("unknown invitation status"))
			return
		}
		status = parsed
	}

	invites, err := h.invites.ListForGroup(requestContext(c), c.Param("groupID"), currentUserID(c), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invites)
}

// ListMine returns pending invitations addressed to the caller.
func (h *InviteHandler) ListMine(c *gin.Context) {
	invites, err := h.invites.ListForUser(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invites)
}

// Accept redeems a pending invitation for the caller.
func (h *InviteHandler) Accept(c *gin.Context) {
	invite, err := h.invites.Accept(requestContext(c), c.Param("inviteID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invite)
}

// AcceptByToken redeems an email invitation link for the caller.
func (h *InviteHandler) AcceptByToken(c *gin.Context) {
	var req acceptTokenRequest
	if !bindAndValidate(c, &req) {
		return
	}

	invite, err := h.invites.AcceptByToken(requestContext(c), req.Token, currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invite)
}

// Decline turns down a pending invitation.
func (h *InviteHandler) Decline(c *gin.Context) {
	invite, err := h.invites.Decline(requestContext(c), c.Param("inviteID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invite)
}

// Revoke cancels a pending invitation.
func (h *InviteHandler) Revoke(c *gin.Context) {
	invite, err := h.invites.Revoke(requestContext(c), c.Param("inviteID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invite)
}

// Resolve runs the recipient matching step for an invitation.
func (h *InviteHandler) Resolve(c *gin.Context) {
	invite, err := h.invites.ResolveRecipient(requestContext(c), c.Param("inviteID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, invite)
}
