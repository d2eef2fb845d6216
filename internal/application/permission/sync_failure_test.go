package permission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"warden/internal/domain/permission"
	"warden/internal/infrastructure/cache"
	"warden/internal/shared/db"
	apperrors "warden/internal/shared/errors"
)

func newMockedAuthorizer(t *testing.T) (*RoleAuthorizer, *mockRoleRepository, *mockPermissionRepository, *mockEnforcer, *mockLogger) {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	roleRepo := new(mockRoleRepository)
	permRepo := new(mockPermissionRepository)
	enforcer := new(mockEnforcer)
	log := newQuietMockLogger()

	authorizer := NewRoleAuthorizer(
		roleRepo,
		permRepo,
		cache.NopPermissionKeyCache{},
		enforcer,
		db.NewTransactionManager(gdb),
		Options{},
		log,
	)
	return authorizer, roleRepo, permRepo, enforcer, log
}

func savedRole(t *testing.T, id uint, name string) *permission.Role {
	role, err := permission.ReconstructRole(id, name, "", "/", time.Now(), time.Now())
	require.NoError(t, err)
	return role
}

func savedPermission(t *testing.T, id uint, key, name string) *permission.Permission {
	perm, err := permission.ReconstructPermission(id, key, name, "", time.Now(), time.Now())
	require.NoError(t, err)
	return perm
}

func TestSyncPermissions_ResolveFailureIsSyncFailure(t *testing.T) {
	authorizer, roleRepo, permRepo, enforcer, _ := newMockedAuthorizer(t)
	ctx := context.Background()
	boom := errors.New("connection reset by peer")

	roleRepo.On("LockForUpdate", mock.Anything, uint(1)).Return(nil)
	permRepo.On("GetByKeys", mock.Anything, []string{"admin"}).Return(nil, boom)

	role := savedRole(t, 1, "Admin")
	role.SetPermissionKeys([]string{"admin", "admin"})

	keys, err := authorizer.SyncPermissions(ctx, role)
	require.Error(t, err)
	assert.Nil(t, keys)
	assert.True(t, apperrors.IsSyncFailure(err))
	assert.ErrorIs(t, err, boom)

	pending, ok := role.PendingKeys()
	assert.True(t, ok, "pending keys survive a failed sync")
	assert.Equal(t, []string{"admin", "admin"}, pending)

	roleRepo.AssertNotCalled(t, "ClearPermissions", mock.Anything, mock.Anything)
	enforcer.AssertNotCalled(t, "ReplaceRolePolicies", mock.Anything, mock.Anything)
}

func TestSyncPermissions_InsertFailureIsSyncFailure(t *testing.T) {
	authorizer, roleRepo, permRepo, enforcer, _ := newMockedAuthorizer(t)
	ctx := context.Background()
	boom := errors.New("deadlock found")

	admin := savedPermission(t, 10, "admin", "Administer")

	roleRepo.On("LockForUpdate", mock.Anything, uint(1)).Return(nil)
	roleRepo.On("ClearPermissions", mock.Anything, uint(1)).Return(nil)
	roleRepo.On("AddPermissions", mock.Anything, uint(1), []uint{10}).Return(boom)
	permRepo.On("GetByKeys", mock.Anything, []string{"admin"}).Return([]*permission.Permission{admin}, nil)

	role := savedRole(t, 1, "Admin")
	role.SetPermissionKeys([]string{"admin"})

	_, err := authorizer.SyncPermissions(ctx, role)
	require.Error(t, err)
	assert.True(t, apperrors.IsSyncFailure(err))
	assert.ErrorIs(t, err, boom)
	assert.False(t, role.PermissionsLoaded())

	roleRepo.AssertExpectations(t)
	enforcer.AssertNotCalled(t, "ReplaceRolePolicies", mock.Anything, mock.Anything)
}

func TestSyncPermissions_LockFailureIsSyncFailure(t *testing.T) {
	authorizer, roleRepo, _, _, _ := newMockedAuthorizer(t)

	roleRepo.On("LockForUpdate", mock.Anything, uint(5)).Return(apperrors.NewNotFoundError("role not found"))

	role := savedRole(t, 5, "Ghost")
	role.SetPermissionKeys([]string{"admin"})

	_, err := authorizer.SyncPermissions(context.Background(), role)
	assert.True(t, apperrors.IsSyncFailure(err))
}

func TestSyncPermissions_UnknownKeysAreLoggedAtWarn(t *testing.T) {
	authorizer, roleRepo, permRepo, enforcer, log := newMockedAuthorizer(t)
	ctx := context.Background()

	admin := savedPermission(t, 10, "admin", "Administer")

	roleRepo.On("LockForUpdate", mock.Anything, uint(1)).Return(nil)
	roleRepo.On("ClearPermissions", mock.Anything, uint(1)).Return(nil)
	roleRepo.On("AddPermissions", mock.Anything, uint(1), []uint{10}).Return(nil)
	permRepo.On("GetByKeys", mock.Anything, []string{"admin", "ghost_key"}).Return([]*permission.Permission{admin}, nil)
	enforcer.On("ReplaceRolePolicies", "Admin", []string{"admin"}).Return(nil)

	role := savedRole(t, 1, "Admin")
	role.SetPermissionKeys([]string{"admin", "ghost_key", "admin"})

	keys, err := authorizer.SyncPermissions(ctx, role)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, keys)

	log.AssertCalled(t, "Warnw", "dropping unknown permission keys", mock.MatchedBy(func(kv []interface{}) bool {
		for i := 0; i+1 < len(kv); i += 2 {
			if kv[i] == "keys" {
				unknown, ok := kv[i+1].([]string)
				return ok && len(unknown) == 1 && unknown[0] == "ghost_key"
			}
		}
		return false
	}))
	enforcer.AssertExpectations(t)
}

func TestSyncPermissions_EnforcerFailureDoesNotFailSync(t *testing.T) {
	authorizer, roleRepo, permRepo, enforcer, log := newMockedAuthorizer(t)

	roleRepo.On("LockForUpdate", mock.Anything, uint(1)).Return(nil)
	roleRepo.On("ClearPermissions", mock.Anything, uint(1)).Return(nil)
	roleRepo.On("AddPermissions", mock.Anything, uint(1), mock.Anything).Return(nil)
	permRepo.On("GetByKeys", mock.Anything, []string{}).Return([]*permission.Permission{}, nil)
	enforcer.On("ReplaceRolePolicies", "Admin", []string{}).Return(errors.New("adapter down"))

	role := savedRole(t, 1, "Admin")
	role.SetPermissionKeys(nil)

	keys, err := authorizer.SyncPermissions(context.Background(), role)
	require.NoError(t, err)
	assert.Empty(t, keys)

	log.AssertCalled(t, "Errorw", "failed to mirror role permissions into enforcer", mock.Anything)
}
