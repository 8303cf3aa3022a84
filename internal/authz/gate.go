package authz

// RoleSet is the set of roles held by a session.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from a list of roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether the set contains r. A nil set contains nothing.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Decision is the outcome of an access check for a role-gated view.
type Decision int

const (
	// DecisionUnauthenticated means no session exists; the caller should
	// route to the login view.
	DecisionUnauthenticated Decision = iota
	// DecisionUnauthorized means a session exists but holds none of the
	// required roles; the caller should route to the home view.
	DecisionUnauthorized
	// DecisionAllowed grants access.
	DecisionAllowed
)

func (d Decision) String() string {
	switch d {
	case DecisionUnauthenticated:
		return "unauthenticated"
	case DecisionUnauthorized:
		return "unauthorized"
	case DecisionAllowed:
		return "allowed"
	}
	return "unknown"
}

// Decide maps (session, required roles) to an access decision. A nil held set
// means no session exists. An empty required set admits any authenticated
// session, so a session whose role set is empty (but non-nil) is still shut
// out of every view that requires a role.
func Decide(held RoleSet, required []Role) Decision {
	if held == nil {
		return DecisionUnauthenticated
	}
	if len(required) == 0 {
		return DecisionAllowed
	}
	for _, r := range required {
		if held.Has(r) {
			return DecisionAllowed
		}
	}
	return DecisionUnauthorized
}
