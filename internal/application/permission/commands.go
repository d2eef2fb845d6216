package permission

type CreatePermissionCommand struct {
	Key         string `json:"key" validate:"required,max=100,permkey"`
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Description string `json:"description"`
}

// CreateRoleCommand creates a role. A nil Permissions leaves the role
// without join rows; a non-nil list is synchronized in the same transaction.
type CreateRoleCommand struct {
	Name        string   `json:"name" validate:"required,notblank,max=100"`
	Description string   `json:"description"`
	DefaultPath string   `json:"default_path" validate:"required,notblank,max=255"`
	Permissions []string `json:"permissions"`
}

type CreateMemberCommand struct {
	FirstName string `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	RoleID    *uint  `json:"role_id"`
}
