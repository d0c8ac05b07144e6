package permissions

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Capability describes a group action gated by a minimum role level.
// Pairwise rules (removing, promoting, demoting members) depend on the
// target's role as well and are expressed as predicates in roles.go.
type Capability struct {
	ID          string
	MinRole     Role
	Description string
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Capability)
)

// Register adds a capability to the registry. Registering a duplicate or
// empty ID is a programming error.
func Register(capability *Capability) error {
	if capability == nil {
		return fmt.Errorf("permissions: capability is nil")
	}

	id := strings.TrimSpace(capability.ID)
	if id == "" {
		return fmt.Errorf("permissions: capability id is required")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[id]; exists {
		return fmt.Errorf("permissions: capability %q already registered", id)
	}

	registry[id] = capability
	return nil
}

// Get returns the registered capability for the supplied ID.
func Get(id string) (*Capability, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	capability, ok := registry[strings.TrimSpace(id)]
	return capability, ok
}

// List returns all registered capabilities sorted by ID.
func List() []*Capability {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]*Capability, 0, len(registry))
	for _, capability := range registry {
		out = append(out, capability)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func init() {
	capabilities := []*Capability{
		{
			ID:          "group.view",
			MinRole:     RoleMember,
			Description: "View group details and member statuses",
		},
		{
			ID:          "group.manage",
			MinRole:     RoleAdmin,
			Description: "Edit group settings",
		},
		{
			ID:          "group.delete",
			MinRole:     RoleOwner,
			Description: "Delete the group",
		},
		{
			ID:          "content.moderate",
			MinRole:     RoleModerator,
			Description: "Moderate group content",
		},
		{
			ID:          "invite.create",
			MinRole:     RoleModerator,
			Description: "Invite new members to the group",
		},
		{
			ID:          "invite.revoke",
			MinRole:     RoleModerator,
			Description: "Revoke pending invitations",
		},
	}

	for _, capability := range capabilities {
		if err := Register(capability); err != nil {
			panic(err)
		}
	}
}
