package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/silverlynx18/sock/internal/services"
	"github.com/silverlynx18/sock/internal/status"
	apperrors "github.com/silverlynx18/sock/pkg/errors"
	"github.com/silverlynx18/sock/pkg/response"
)

type setStatusRequest struct {
	PresetID       string     `json:"preset_id" validate:"required,max=64"`
	CustomText     string     `json:"custom_text" validate:"omitempty,max=128"`
	CustomIcon     string     `json:"custom_icon" validate:"omitempty,max=64"`
	OverrideGroups bool       `json:"override_groups"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

type presetRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=1,max=128"`
	IconKey     string `json:"icon_key" validate:"omitempty,max=64"`
	Color       string `json:"color" validate:"omitempty,max=32"`
}

type updatePresetRequest struct {
	DisplayName string `json:"display_name" validate:"omitempty,max=128"`
	IconKey     string `json:"icon_key" validate:"omitempty,max=64"`
	Color       string `json:"color" validate:"omitempty,max=32"`
}

// StatusHandler exposes status storage, resolution and preset endpoints.
type StatusHandler struct {
	statuses *services.StatusService
}

// NewStatusHandler constructs a StatusHandler.
func NewStatusHandler(statuses *services.StatusService) (*StatusHandler, error) {
	if statuses == nil {
		return nil, errors.New("status handler: status service is required")
	}
	return &StatusHandler{statuses: statuses}, nil
}

// AppPresets lists the app-defined presets every client can offer.
func (h *StatusHandler) AppPresets(c *gin.Context) {
	response.Success(c, http.StatusOK, status.AppPresets())
}

// SetGlobal stores the caller's global status.
func (h *StatusHandler) SetGlobal(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req setStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	stored, err := h.statuses.SetGlobalStatus(requestContext(c), userID, services.SetStatusInput{
		PresetID:       req.PresetID,
		CustomText:     req.CustomText,
		CustomIcon:     req.CustomIcon,
		OverrideGroups: req.OverrideGroups,
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stored)
}

// ClearGlobal removes the caller's global status.
func (h *StatusHandler) ClearGlobal(c *gin.Context) {
	if err := h.statuses.ClearGlobalStatus(requestContext(c), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

// SetForGroup stores the caller's status inside one group.
func (h *StatusHandler) SetForGroup(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req setStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	stored, err := h.statuses.SetMemberStatus(requestContext(c), c.Param("groupID"), userID, services.SetStatusInput{
		PresetID:   req.PresetID,
		CustomText: req.CustomText,
		CustomIcon: req.CustomIcon,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, stored)
}

// ClearForGroup removes the caller's status inside one group.
func (h *StatusHandler) ClearForGroup(c *gin.Context) {
	err := h.statuses.ClearMemberStatus(requestContext(c), c.Param("groupID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

// MemberStatus resolves what the caller sees for one member of a group.
func (h *StatusHandler) MemberStatus(c *gin.Context) {
	effective, err := h.statuses.EffectiveStatus(requestContext(c), c.Param("groupID"), currentUserID(c), c.Param("userID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, effective)
}

// GroupStatuses resolves every member's effective status in a group.
func (h *StatusHandler) GroupStatuses(c *gin.Context) {
	roster, err := h.statuses.GroupStatuses(requestContext(c), c.Param("groupID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, roster)
}

// CreatePreset saves a new user-defined preset.
func (h *StatusHandler) CreatePreset(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	var req presetRequest
	if !bindAndValidate(c, &req) {
		return
	}

	preset, err := h.statuses.CreatePreset(requestContext(c), userID, services.PresetInput{
		DisplayName: req.DisplayName,
		IconKey:     req.IconKey,
		Color:       req.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, preset)
}

// ListPresets returns the caller's saved presets.
func (h *StatusHandler) ListPresets(c *gin.Context) {
	presets, err := h.statuses.ListPresets(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, presets)
}

// UpdatePreset edits a saved preset.
func (h *StatusHandler) UpdatePreset(c *gin.Context) {
	var req updatePresetRequest
	if !bindAndValidate(c, &req) {
		return
	}

	preset, err := h.statuses.UpdatePreset(requestContext(c), currentUserID(c), c.Param("presetID"), services.PresetInput{
		DisplayName: req.DisplayName,
		IconKey:     req.IconKey,
		Color:       req.Color,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, preset)
}

// DeletePreset removes a saved preset.
func (h *StatusHandler) DeletePreset(c *gin.Context) {
	if err := h.statuses.DeletePreset(requestContext(c), currentUserID(c), c.Param("presetID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
