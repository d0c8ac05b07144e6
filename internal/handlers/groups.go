package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/silverlynx18/sock/internal/middleware"
	"github.com/silverlynx18/sock/internal/models"
	"github.com/silverlynx18/sock/internal/permissions"
	"github.com/silverlynx18/sock/internal/services"
	apperrors "github.com/silverlynx18/sock/pkg/errors"
	"github.com/silverlynx18/sock/pkg/response"
)

// MemberDTO is the public projection of a group membership.
type MemberDTO struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type createGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Description string `json:"description" validate:"omitempty,max=512"`
	PhotoURL    string `json:"photo_url" validate:"omitempty,max=512"`
}

type updateGroupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=128"`
	Description *string `json:"description" validate:"omitempty,max=512"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty,max=512"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// GroupHandler exposes group lifecycle and membership endpoints.
type GroupHandler struct {
	groups *services.GroupService
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups *services.GroupService) (*GroupHandler, error) {
	if groups == nil {
		return nil, errors.New("group handler: group service is required")
	}
	return &GroupHandler{groups: groups}, nil
}

// Create registers a new group owned by the caller.
func (h *GroupHandler) Create(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req createGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	group, err := h.groups.Create(requestContext(c), userID, services.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, group)
}

// List returns the caller's groups.
func (h *GroupHandler) List(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	groups, err := h.groups.ListForUser(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, groups)
}

// Get returns one group the caller belongs to.
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groups.GetByID(requestContext(c), c.Param("groupID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, group)
}

// Update modifies group metadata.
func (h *GroupHandler) Update(c *gin.Context) {
	var req updateGroupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	group, err := h.groups.Update(requestContext(c), c.Param("groupID"), currentUserID(c), services.UpdateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, group)
}

// Delete removes a group entirely.
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groups.Delete(requestContext(c), c.Param("groupID"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListMembers returns the group's membership roster.
func (h *GroupHandler) ListMembers(c *gin.Context) {
	members, err := h.groups.ListMembers(requestContext(c), c.Param("groupID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, toMemberDTOs(members))
}

// RemoveMember expels a member from the group.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	err := h.groups.RemoveMember(requestContext(c), c.Param("groupID"), currentUserID(c), c.Param("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// Leave removes the caller's own membership.
func (h *GroupHandler) Leave(c *gin.Context) {
	if err := h.groups.Leave(requestContext(c), c.Param("groupID"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"left": true})
}

// ChangeRole promotes or demotes a member.
func (h *GroupHandler) ChangeRole(c *gin.Context) {
	var req changeRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	role, ok := parseRoleStrict(req.Role)
	if !ok {
		response.Error(c, apperrors.NewBadRequest("unknown role"))
		return
	}

	err := h.groups.ChangeRole(requestContext(c), c.Param("groupID"), currentUserID(c), c.Param("userID"), role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"role": role.String()})
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.CtxUserIDKey)
}

// parseRoleStrict rejects unknown role names instead of falling back to member.
func parseRoleStrict(raw string) (permissions.Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, role := range permissions.Roles() {
		if role.String() == normalized {
			return role, true
		}
	}
	return permissions.RoleMember, false
}

func toMemberDTOs(members []models.GroupMember) []MemberDTO {
	items := make([]MemberDTO, 0, len(members))
	for _, member := range members {
		dto := MemberDTO{
			UserID: member.UserID,
			Role:   member.Role,
		}
		if member.User != nil {
			dto.DisplayName = member.User.Name()
		}
		items = append(items, dto)
	}
	return items
}
