package authz

import "github.com/go-faster/errors"

// Role is one of the closed set of staff roles issued by the backend.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleCashier Role = "CASHIER"
)

// UnknownRoleError indicates a role string outside the known set.
type UnknownRoleError struct {
	Value string
}

func (e *UnknownRoleError) Error() string {
	return "unknown role " + e.Value
}

// ParseRole validates a role string against the known set. Rejecting unknown
// values at construction time turns role typos into hard errors instead of
// silent authorization misses.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleCashier:
		return Role(s), nil
	}
	return "", &UnknownRoleError{Value: s}
}

// ParseRoles validates a full role claim. It fails on the first unknown value.
func ParseRoles(ss []string) ([]Role, error) {
	roles := make([]Role, 0, len(ss))
	for _, s := range ss {
		r, err := ParseRole(s)
		if err != nil {
			return nil, errors.Wrap(err, "parse roles")
		}
		roles = append(roles, r)
	}
	return roles, nil
}
