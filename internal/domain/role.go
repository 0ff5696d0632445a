package domain

// Role is the closed set of account roles. Roles are immutable after signup;
// the authorization gate is the only place they are evaluated.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleEmployer  Role = "employer"
)

// ValidRoles returns the set of valid account roles.
func ValidRoles() []Role {
	return []Role{RoleCandidate, RoleEmployer}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleCandidate, RoleEmployer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
