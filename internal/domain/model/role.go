package model

// Role is a platform user role.
type Role string

// Known roles.
const (
	RoleAthlete Role = "athlete"
	RoleCoach   Role = "coach"
	RoleBrand   Role = "brand"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAthlete, RoleCoach, RoleBrand, RoleAdmin:
		return true
	}
	return false
}

// Principal is the authenticated caller of an operation. The zero value is
// an anonymous caller.
type Principal struct {
	UserID string
	Role   Role
}

// Anonymous reports whether the principal carries no identity.
func (p Principal) Anonymous() bool { return p.UserID == "" }

// IsAdmin reports whether the principal has the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
