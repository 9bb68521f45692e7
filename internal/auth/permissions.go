package auth

// Permission represents a named capability in the system.
type Permission string

// Permission constants.
const (
	PermQuery     Permission = "trade:query"
	PermOrder     Permission = "trade:order"
	PermAuditRead Permission = "audit:read"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermQuery,
		PermAuditRead,
	},
	RoleTrader: {
		PermQuery,
		PermOrder,
		PermAuditRead,
	},
}

// HasPermission checks whether a role grants a permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
