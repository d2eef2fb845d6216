package models

import (
	"warden/internal/shared/constants"
)

// PermissionRoleModel is a pure (role, permission) link without an identity of its own.
type PermissionRoleModel struct {
	RoleID       uint `gorm:"primaryKey;autoIncrement:false"`
	PermissionID uint `gorm:"primaryKey;autoIncrement:false;index:idx_permission_roles_permission"`
}

func (PermissionRoleModel) TableName() string {
	return constants.TablePermissionRoles
}
