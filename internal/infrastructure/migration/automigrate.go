package migration

import (
	"warden/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PermissionModel{},
		&models.RoleModel{},
		&models.PermissionRoleModel{},
		&models.MemberModel{},
	}
}
