package models

import (
	"time"

	"warden/internal/shared/constants"
)

type PermissionModel struct {
	ID          uint   `gorm:"primarykey"`
	Key         string `gorm:"column:permission_key;uniqueIndex:idx_permissions_key;not null;size:100"`
	Name        string `gorm:"not null;size:255;index:idx_permissions_name"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PermissionModel) TableName() string {
	return constants.TablePermissions
}
