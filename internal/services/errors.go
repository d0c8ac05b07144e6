package services

import (
	"net/http"

	apperrors "github.com/silverlynx18/sock/pkg/errors"
)

var (
	// ErrGroupNotFound indicates the requested group does not exist.
	ErrGroupNotFound = apperrors.New("GROUP_NOT_FOUND", "Group not found", http.StatusNotFound)
	// ErrMemberNotFound indicates the requested membership does not exist.
	ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "User is not a member of the group", http.StatusNotFound)
	// ErrMemberAlreadyExists signals the user already belongs to the group.
	ErrMemberAlreadyExists = apperrors.New("MEMBER_EXISTS", "User already belongs to the group", http.StatusConflict)
	// ErrRoleChangeDenied signals the actor's role does not permit the role change.
	ErrRoleChangeDenied = apperrors.New("ROLE_CHANGE_DENIED", "Your role does not allow this role change", http.StatusForbidden)
	// ErrRemoveMemberDenied signals the actor's role does not permit removing the target.
	ErrRemoveMemberDenied = apperrors.New("REMOVE_MEMBER_DENIED", "Your role does not allow removing this member", http.StatusForbidden)
	// ErrOwnerCannotLeave signals the group owner must transfer ownership before leaving.
	ErrOwnerCannotLeave = apperrors.New("OWNER_CANNOT_LEAVE", "The group owner cannot leave the group", http.StatusConflict)

	// ErrInviteNotFound indicates no invitation matches the request.
	ErrInviteNotFound = apperrors.New("INVITE_NOT_FOUND", "Invitation not found", http.StatusNotFound)
	// ErrInviteNotPending signals the invitation already reached a terminal state.
	ErrInviteNotPending = apperrors.New("INVITE_NOT_PENDING", "Invitation has already been processed", http.StatusConflict)
	// ErrInviteExpired signals the invitation deadline has passed.
	ErrInviteExpired = apperrors.New("INVITE_EXPIRED", "Invitation has expired", http.StatusConflict)
	// ErrInviteDenied signals the actor may not act on this invitation.
	ErrInviteDenied = apperrors.New("INVITE_DENIED", "You are not allowed to act on this invitation", http.StatusForbidden)
	// ErrInviteAlreadyPending signals an open invitation already targets the recipient.
	ErrInviteAlreadyPending = apperrors.New("INVITE_ALREADY_PENDING", "An open invitation already exists for this recipient", http.StatusConflict)
	// ErrInviteUnresolved signals the recipient has not been matched to an account yet.
	ErrInviteUnresolved = apperrors.New("INVITE_UNRESOLVED", "Invitation recipient has not been resolved to an account", http.StatusConflict)

	// ErrPresetNotFound indicates the requested status preset does not exist.
	ErrPresetNotFound = apperrors.New("PRESET_NOT_FOUND", "Status preset not found", http.StatusNotFound)

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrUserExists signals the username or email is already taken.
	ErrUserExists = apperrors.New("USER_EXISTS", "Username or email is already taken", http.StatusConflict)
)
