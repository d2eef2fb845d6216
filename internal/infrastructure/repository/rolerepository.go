package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"warden/internal/domain/permission"
	"warden/internal/infrastructure/persistence/mappers"
	"warden/internal/infrastructure/persistence/models"
	"warden/internal/shared/constants"
	"warden/internal/shared/db"
	apperrors "warden/internal/shared/errors"
	"warden/internal/shared/logger"
)

type RoleRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PermissionMapper
	logger logger.Interface
}

func NewRoleRepository(gdb *gorm.DB, log logger.Interface) permission.RoleRepository {
	return &RoleRepositoryImpl{
		db:     gdb,
		mapper: mappers.NewPermissionMapper(),
		logger: log,
	}
}

func (r *RoleRepositoryImpl) tx(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db)
}

func (r *RoleRepositoryImpl) Create(ctx context.Context, role *permission.Role) error {
	model := r.mapper.RoleToModel(role)

	if err := r.tx(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("role name already exists", role.Name())
		}
		return fmt.Errorf("failed to create role: %w", err)
	}

	return role.SetID(model.ID)
}

func (r *RoleRepositoryImpl) Update(ctx context.Context, role *permission.Role) error {
	result := r.tx(ctx).Model(&models.RoleModel{}).
		Where("id = ?", role.ID()).
		Updates(map[string]interface{}{
			"name":         role.Name(),
			"description":  role.Description(),
			"default_path": role.DefaultPath(),
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return apperrors.NewConflictError("role name already exists", role.Name())
		}
		return fmt.Errorf("failed to update role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("role not found")
	}

	return nil
}

func (r *RoleRepositoryImpl) GetByID(ctx context.Context, id uint) (*permission.Role, error) {
	var model models.RoleModel
	if err := r.tx(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return r.mapper.RoleToDomain(&model)
}

func (r *RoleRepositoryImpl) GetByName(ctx context.Context, name string) (*permission.Role, error) {
	var model models.RoleModel
	if err := r.tx(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get role by name: %w", err)
	}

	return r.mapper.RoleToDomain(&model)
}

func (r *RoleRepositoryImpl) List(ctx context.Context) ([]*permission.Role, error) {
	var roleModels []*models.RoleModel
	if err := r.tx(ctx).Scopes(db.OrderByName(constants.TableRoles)).Find(&roleModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	roles := make([]*permission.Role, 0, len(roleModels))
	for _, model := range roleModels {
		role, err := r.mapper.RoleToDomain(model)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct role: %w", err)
		}
		roles = append(roles, role)
	}

	return roles, nil
}

// Delete removes the role's join rows, detaches its members and deletes the
// role. Callers wanting atomicity run it inside a transaction.
func (r *RoleRepositoryImpl) Delete(ctx context.Context, id uint) error {
	tx := r.tx(ctx)

	if err := tx.Where("role_id = ?", id).Delete(&models.PermissionRoleModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete role permissions: %w", err)
	}

	if err := tx.Model(&models.MemberModel{}).Where("role_id = ?", id).Update("role_id", nil).Error; err != nil {
		return fmt.Errorf("failed to detach role members: %w", err)
	}

	result := tx.Delete(&models.RoleModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("role not found")
	}
	return nil
}

func (r *RoleRepositoryImpl) LockForUpdate(ctx context.Context, id uint) error {
	var model models.RoleModel
	err := r.tx(ctx).Scopes(db.ForUpdate()).Select("id").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("role not found")
		}
		return fmt.Errorf("failed to lock role: %w", err)
	}
	return nil
}

func (r *RoleRepositoryImpl) GetPermissions(ctx context.Context, roleID uint) ([]*permission.Permission, error) {
	var permModels []*models.PermissionModel
	err := r.tx(ctx).
		Table(constants.TablePermissions).
		Select(constants.TablePermissions+".*").
		Joins("INNER JOIN "+constants.TablePermissionRoles+" ON "+constants.TablePermissions+".id = "+constants.TablePermissionRoles+".permission_id").
		Where(constants.TablePermissionRoles+".role_id = ?", roleID).
		Scopes(db.OrderByName(constants.TablePermissions)).
		Find(&permModels).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}

	permissions := make([]*permission.Permission, 0, len(permModels))
	for _, model := range permModels {
		perm, err := r.mapper.PermissionToDomain(model)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct permission: %w", err)
		}
		permissions = append(permissions, perm)
	}
	return permissions, nil
}

func (r *RoleRepositoryImpl) ClearPermissions(ctx context.Context, roleID uint) error {
	result := r.tx(ctx).Where("role_id = ?", roleID).Delete(&models.PermissionRoleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear role permissions: %w", result.Error)
	}

	r.logger.Debugw("cleared role permissions", "role_id", roleID, "rows", result.RowsAffected)
	return nil
}

func (r *RoleRepositoryImpl) AddPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	links := make([]models.PermissionRoleModel, 0, len(permissionIDs))
	for _, permID := range permissionIDs {
		links = append(links, models.PermissionRoleModel{
			RoleID:       roleID,
			PermissionID: permID,
		})
	}

	if err := r.tx(ctx).Create(&links).Error; err != nil {
		return fmt.Errorf("failed to add role permissions: %w", err)
	}
	return nil
}

func (r *RoleRepositoryImpl) AssignMember(ctx context.Context, memberID uint, roleID *uint) error {
	result := r.tx(ctx).Model(&models.MemberModel{}).
		Where("id = ?", memberID).
		Update("role_id", roleID)
	if result.Error != nil {
		return fmt.Errorf("failed to assign member role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("member not found")
	}
	return nil
}

func (r *RoleRepositoryImpl) ListMembers(ctx context.Context, roleID uint) ([]*permission.Member, error) {
	var memberModels []*models.MemberModel
	err := r.tx(ctx).
		Where("role_id = ?", roleID).
		Order("first_name ASC, last_name ASC").
		Find(&memberModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list role members: %w", err)
	}

	members := make([]*permission.Member, 0, len(memberModels))
	for _, model := range memberModels {
		members = append(members, r.mapper.MemberToDomain(model))
	}
	return members, nil
}

func (r *RoleRepositoryImpl) GetMember(ctx context.Context, memberID uint) (*permission.Member, error) {
	var model models.MemberModel
	if err := r.tx(ctx).First(&model, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return r.mapper.MemberToDomain(&model), nil
}

func (r *RoleRepositoryImpl) CreateMember(ctx context.Context, member *permission.Member) error {
	model := r.mapper.MemberToModel(member)
	if err := r.tx(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("member email already exists", member.Email)
		}
		return fmt.Errorf("failed to create member: %w", err)
	}
	member.ID = model.ID
	return nil
}
