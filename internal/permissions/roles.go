package permissions

import "strings"

// Role is an ordinal permission level held by a group member. Higher level
// means strictly greater capability. The ordering is total and fixed.
type Role int

const (
	RoleMember Role = iota
	RoleModerator
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleMember:    "member",
	RoleModerator: "moderator",
	RoleAdmin:     "admin",
	RoleOwner:     "owner",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "member"
}

// ParseRole maps a stored role string onto a Role. The mapping is total:
// unrecognized input falls back to RoleMember rather than failing.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "owner":
		return RoleOwner
	case "admin":
		return RoleAdmin
	case "moderator":
		return RoleModerator
	default:
		return RoleMember
	}
}

// Roles lists every role in ascending capability order.
func Roles() []Role {
	return []Role{RoleMember, RoleModerator, RoleAdmin, RoleOwner}
}

// IsAtLeast reports whether a carries at least the capability level of b.
func IsAtLeast(a, b Role) bool {
	return a >= b
}

// CanManageSettings reports whether the role may change group settings.
func CanManageSettings(r Role) bool {
	return IsAtLeast(r, RoleAdmin)
}

// CanModerateContent reports whether the role may moderate group content.
func CanModerateContent(r Role) bool {
	return IsAtLeast(r, RoleModerator)
}

// CanRemoveMember reports whether an actor may remove a member holding the
// target role. Owners remove anyone except another Owner; Admins and
// Moderators remove strictly-lower roles; Members remove no one.
func CanRemoveMember(actor, target Role) bool {
	switch actor {
	case RoleOwner:
		return target != RoleOwner
	case RoleAdmin, RoleModerator:
		return target < actor
	default:
		return false
	}
}

// CanPromoteTo reports whether an actor may assign the target role to another
// member. Owners assign anything below Owner; Admins assign roles strictly
// below Admin. Nobody is ever promoted to Owner this way.
func CanPromoteTo(actor, target Role) bool {
	switch actor {
	case RoleOwner:
		return target < RoleOwner
	case RoleAdmin:
		return target < RoleAdmin
	default:
		return false
	}
}

// CanDemoteFrom reports whether an actor may demote a member currently
// holding the given role. An Owner is never demoted by anyone; ownership
// transfer is a separate operation outside this model.
func CanDemoteFrom(actor, current Role) bool {
	if current == RoleOwner {
		return false
	}
	switch actor {
	case RoleOwner:
		return true
	case RoleAdmin:
		return current < RoleAdmin
	default:
		return false
	}
}
