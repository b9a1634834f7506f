package models

import (
	"fmt"
	"strings"
)

// Role is a user's privilege level within their organization.
// Roles are totally ordered: Owner > Admin > Viewer.
type Role int

const (
	RoleUnknown Role = iota
	RoleViewer
	RoleAdmin
	RoleOwner
)

var roleNames = map[Role]string{
	RoleViewer: "Viewer",
	RoleAdmin:  "Admin",
	RoleOwner:  "Owner",
}

// ParseRole converts a role name to a Role, ignoring case.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if strings.EqualFold(s, name) {
			return r, nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "Unknown"
}

// Valid returns true for Viewer, Admin and Owner.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role name.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
