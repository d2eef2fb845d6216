package mappers

import (
	"warden/internal/domain/permission"
	"warden/internal/infrastructure/persistence/models"
)

// PermissionMapper converts between authorization entities and persistence models.
type PermissionMapper interface {
	RoleToModel(r *permission.Role) *models.RoleModel
	RoleToDomain(model *models.RoleModel) (*permission.Role, error)
	PermissionToModel(p *permission.Permission) *models.PermissionModel
	PermissionToDomain(model *models.PermissionModel) (*permission.Permission, error)
	MemberToModel(m *permission.Member) *models.MemberModel
	MemberToDomain(model *models.MemberModel) *permission.Member
}

type PermissionMapperImpl struct{}

func NewPermissionMapper() PermissionMapper {
	return &PermissionMapperImpl{}
}

func (m *PermissionMapperImpl) RoleToModel(r *permission.Role) *models.RoleModel {
	return &models.RoleModel{
		ID:          r.ID(),
		Name:        r.Name(),
		Description: r.Description(),
		DefaultPath: r.DefaultPath(),
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}
}

func (m *PermissionMapperImpl) RoleToDomain(model *models.RoleModel) (*permission.Role, error) {
	return permission.ReconstructRole(
		model.ID,
		model.Name,
		model.Description,
		model.DefaultPath,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *PermissionMapperImpl) PermissionToModel(p *permission.Permission) *models.PermissionModel {
	return &models.PermissionModel{
		ID:          p.ID(),
		Key:         p.Key(),
		Name:        p.Name(),
		Description: p.Description(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func (m *PermissionMapperImpl) PermissionToDomain(model *models.PermissionModel) (*permission.Permission, error) {
	return permission.ReconstructPermission(
		model.ID,
		model.Key,
		model.Name,
		model.Description,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *PermissionMapperImpl) MemberToModel(mem *permission.Member) *models.MemberModel {
	return &models.MemberModel{
		ID:        mem.ID,
		FirstName: mem.FirstName,
		LastName:  mem.LastName,
		Email:     mem.Email,
		RoleID:    mem.RoleID,
	}
}

func (m *PermissionMapperImpl) MemberToDomain(model *models.MemberModel) *permission.Member {
	return &permission.Member{
		ID:        model.ID,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Email:     model.Email,
		RoleID:    model.RoleID,
	}
}
