package domain

// Role enumerates administrative roles carried in user records and tokens.
// A plain member carries no role.
type Role string

const (
	RoleNone       Role = ""
	RoleSuperAdmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
)

// Valid reports whether r is a role a user record may hold.
func (r Role) Valid() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}
