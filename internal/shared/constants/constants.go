package constants

const (
	// Environment constants
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	// Database table names
	TableRoles           = "roles"
	TablePermissions     = "permissions"
	TablePermissionRoles = "permission_roles"
	TableMembers         = "members"

	// Field limits shared by validation and schema
	MaxRoleNameLength       = 100
	MaxPermissionKeyLength  = 100
	MaxPermissionNameLength = 255
	MaxDefaultPathLength    = 255

	// Casbin subject prefixes
	CasbinMemberPrefix = "member:"
)
