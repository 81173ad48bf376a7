package gamemode

import (
	"fmt"
	"sort"
	"strings"
)

// Role is a team role a player can queue for.
type Role string

const (
	RoleTank    Role = "tank"
	RoleDPS     Role = "dps"
	RoleSupport Role = "support"

	// RoleAny is the catch-all role used by modes without role
	// differentiation. A queue entry preferring RoleAny is eligible for
	// every slot, and every entry is eligible for a RoleAny slot.
	RoleAny Role = "any"
)

// RoleEmojis decorates roles in embeds and button labels.
var RoleEmojis = map[Role]string{
	RoleTank:    "\U0001F6E1️",
	RoleDPS:     "⚔️",
	RoleSupport: "\U0001F489",
	RoleAny:     "\U0001F3AE",
}

// Mode is a static game mode configuration mapping roles to slot counts.
type Mode struct {
	Name  string
	Slots map[Role]int
}

// Builtin modes. 5v5 is the role-locked format; 6v6 and "any" use the
// catch-all role.
var modes = map[string]Mode{
	"5v5": {
		Name:  "5v5",
		Slots: map[Role]int{RoleTank: 1, RoleDPS: 2, RoleSupport: 2},
	},
	"6v6": {
		Name:  "6v6",
		Slots: map[Role]int{RoleAny: 12},
	},
	"any": {
		Name:  "any",
		Slots: map[Role]int{RoleAny: 10},
	},
}

// Get looks up a mode by name.
func Get(name string) (Mode, error) {
	m, ok := modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("unknown game mode %q", name)
	}
	return m, nil
}

// Names returns all mode names, sorted. Used for command choices.
func Names() []string {
	names := make([]string, 0, len(modes))
	for name := range modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TotalPlayers is the sum of all slot counts.
func (m Mode) TotalPlayers() int {
	total := 0
	for _, n := range m.Slots {
		total += n
	}
	return total
}

// Roles returns the mode's roles in display order.
func (m Mode) Roles() []Role {
	ordered := []Role{RoleTank, RoleDPS, RoleSupport, RoleAny}
	var roles []Role
	for _, r := range ordered {
		if m.Slots[r] > 0 {
			roles = append(roles, r)
		}
	}
	return roles
}

// HasRole reports whether role is part of this mode's vocabulary.
func (m Mode) HasRole(role Role) bool {
	return m.Slots[role] > 0
}

// CatchAll reports whether the mode uses the single catch-all role.
func (m Mode) CatchAll() bool {
	return m.Slots[RoleAny] > 0
}

// ParseRole validates a role name supplied by a command option.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(s)) {
	case RoleTank:
		return RoleTank, nil
	case RoleDPS:
		return RoleDPS, nil
	case RoleSupport:
		return RoleSupport, nil
	case RoleAny:
		return RoleAny, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// RoleSet is a set of preferred roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Union returns a new set containing both operands' roles.
func (s RoleSet) Union(other RoleSet) RoleSet {
	out := make(RoleSet, len(s)+len(other))
	for r := range s {
		out[r] = struct{}{}
	}
	for r := range other {
		out[r] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same roles.
func (s RoleSet) Equal(other RoleSet) bool {
	if len(s) != len(other) {
		return false
	}
	for r := range s {
		if !other.Has(r) {
			return false
		}
	}
	return true
}

// Roles returns the members sorted by name, for stable serialization and
// display.
func (s RoleSet) Roles() []Role {
	roles := make([]Role, 0, len(s))
	for r := range s {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

func (s RoleSet) String() string {
	parts := make([]string, 0, len(s))
	for _, r := range s.Roles() {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ", ")
}
