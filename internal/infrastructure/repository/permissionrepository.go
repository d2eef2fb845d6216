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
)

type PermissionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PermissionMapper
}

func NewPermissionRepository(gdb *gorm.DB) permission.PermissionRepository {
	return &PermissionRepositoryImpl{
		db:     gdb,
		mapper: mappers.NewPermissionMapper(),
	}
}

func (r *PermissionRepositoryImpl) tx(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db)
}

func (r *PermissionRepositoryImpl) Create(ctx context.Context, perm *permission.Permission) error {
	model := r.mapper.PermissionToModel(perm)

	if err := r.tx(ctx).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("permission key already exists", perm.Key())
		}
		return fmt.Errorf("failed to create permission: %w", err)
	}

	return perm.SetID(model.ID)
}

func (r *PermissionRepositoryImpl) Update(ctx context.Context, perm *permission.Permission) error {
	result := r.tx(ctx).Model(&models.PermissionModel{}).
		Where("id = ?", perm.ID()).
		Updates(map[string]interface{}{
			"name":        perm.Name(),
			"description": perm.Description(),
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update permission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("permission not found")
	}
	return nil
}

func (r *PermissionRepositoryImpl) GetByID(ctx context.Context, id uint) (*permission.Permission, error) {
	var model models.PermissionModel
	if err := r.tx(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}
	return r.mapper.PermissionToDomain(&model)
}

func (r *PermissionRepositoryImpl) GetByKey(ctx context.Context, key string) (*permission.Permission, error) {
	var model models.PermissionModel
	if err := r.tx(ctx).Where(&models.PermissionModel{Key: key}).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get permission by key: %w", err)
	}
	// The column collation may fold case; keys compare exactly.
	if model.Key != key {
		return nil, nil
	}
	return r.mapper.PermissionToDomain(&model)
}

func (r *PermissionRepositoryImpl) GetByKeys(ctx context.Context, keys []string) ([]*permission.Permission, error) {
	if len(keys) == 0 {
		return []*permission.Permission{}, nil
	}

	var permModels []*models.PermissionModel
	err := r.tx(ctx).
		Where("permission_key IN ?", keys).
		Scopes(db.OrderByName(constants.TablePermissions)).
		Find(&permModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions by keys: %w", err)
	}

	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	exact := permModels[:0]
	for _, m := range permModels {
		if _, ok := wanted[m.Key]; ok {
			exact = append(exact, m)
		}
	}

	return r.toEntities(exact)
}

func (r *PermissionRepositoryImpl) List(ctx context.Context) ([]*permission.Permission, error) {
	var permModels []*models.PermissionModel
	if err := r.tx(ctx).Scopes(db.OrderByName(constants.TablePermissions)).Find(&permModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return r.toEntities(permModels)
}

func (r *PermissionRepositoryImpl) toEntities(permModels []*models.PermissionModel) ([]*permission.Permission, error) {
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
