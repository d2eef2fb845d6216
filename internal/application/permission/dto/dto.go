package dto

import (
	"warden/internal/domain/permission"
	"warden/internal/shared/mapper"
)

// RoleDTO is the public projection of a role. Permissions holds permission
// ids ordered by permission name.
type RoleDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Permissions []uint `json:"permissions"`
}

type PermissionDTO struct {
	ID          uint   `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type MemberDTO struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	RoleID    *uint  `json:"role_id"`
}

// ToRoleDTO expects the role's persisted permissions to be loaded.
func ToRoleDTO(r *permission.Role) *RoleDTO {
	return &RoleDTO{
		ID:          r.ID(),
		Name:        r.Name(),
		Description: r.Description(),
		Permissions: r.PermissionIDs(),
	}
}

func ToPermissionDTO(p *permission.Permission) *PermissionDTO {
	return &PermissionDTO{
		ID:          p.ID(),
		Key:         p.Key(),
		Name:        p.Name(),
		Description: p.Description(),
	}
}

func ToPermissionDTOList(perms []*permission.Permission) []*PermissionDTO {
	return mapper.MapSlice(perms, ToPermissionDTO)
}

func ToMemberDTO(m *permission.Member) *MemberDTO {
	return &MemberDTO{
		ID:        m.ID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		RoleID:    m.RoleID,
	}
}

func ToMemberDTOList(members []*permission.Member) []*MemberDTO {
	return mapper.MapSlice(members, ToMemberDTO)
}
