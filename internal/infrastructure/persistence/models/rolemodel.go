package models

import (
	"time"

	"warden/internal/shared/constants"
)

type RoleModel struct {
	ID              uint                  `gorm:"primarykey"`
	Name            string                `gorm:"uniqueIndex:idx_roles_name;not null;size:100"`
	Description     string                `gorm:"type:text"`
	DefaultPath     string                `gorm:"not null;size:255"`
	PermissionRoles []PermissionRoleModel `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (RoleModel) TableName() string {
	return constants.TableRoles
}
