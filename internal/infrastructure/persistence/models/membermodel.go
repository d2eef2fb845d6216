package models

import (
	"time"

	"warden/internal/shared/constants"
)

type MemberModel struct {
	ID        uint   `gorm:"primarykey"`
	FirstName string `gorm:"not null;size:100"`
	LastName  string `gorm:"size:100"`
	Email     string `gorm:"uniqueIndex:idx_members_email;not null;size:255"`
	RoleID    *uint  `gorm:"index:idx_members_role"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (MemberModel) TableName() string {
	return constants.TableMembers
}
