package permission

import (
	"context"

	"github.com/stretchr/testify/mock"

	"warden/internal/domain/permission"
	"warden/internal/shared/logger"
)

type mockLogger struct {
	mock.Mock
}

func (m *mockLogger) Debug(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Warn(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) With(keysAndValues ...interface{}) logger.Interface {
	return m
}

func (m *mockLogger) Named(name string) logger.Interface {
	return m
}

func (m *mockLogger) Debugw(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Infow(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Warnw(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

func (m *mockLogger) Errorw(msg string, keysAndValues ...interface{}) {
	m.Called(msg, keysAndValues)
}

// newQuietMockLogger accepts any log call.
func newQuietMockLogger() *mockLogger {
	l := new(mockLogger)
	for _, method := range []string{"Debug", "Info", "Warn", "Error", "Debugw", "Infow", "Warnw", "Errorw"} {
		l.On(method, mock.Anything, mock.Anything).Maybe()
	}
	return l
}

type mockRoleRepository struct {
	mock.Mock
}

func (m *mockRoleRepository) Create(ctx context.Context, role *permission.Role) error {
	args := m.Called(ctx, role)
	if args.Error(0) == nil && role.ID() == 0 {
		_ = role.SetID(1)
	}
	return args.Error(0)
}

func (m *mockRoleRepository) Update(ctx context.Context, role *permission.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *mockRoleRepository) GetByID(ctx context.Context, id uint) (*permission.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permission.Role), args.Error(1)
}

func (m *mockRoleRepository) GetByName(ctx context.Context, name string) (*permission.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permission.Role), args.Error(1)
}

func (m *mockRoleRepository) List(ctx context.Context) ([]*permission.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permission.Role), args.Error(1)
}

func (m *mockRoleRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRoleRepository) LockForUpdate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRoleRepository) GetPermissions(ctx context.Context, roleID uint) ([]*permission.Permission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permission.Permission), args.Error(1)
}

func (m *mockRoleRepository) ClearPermissions(ctx context.Context, roleID uint) error {
	args := m.Called(ctx, roleID)
	return args.Error(0)
}

func (m *mockRoleRepository) AddPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error {
	args := m.Called(ctx, roleID, permissionIDs)
	return args.Error(0)
}

func (m *mockRoleRepository) AssignMember(ctx context.Context, memberID uint, roleID *uint) error {
	args := m.Called(ctx, memberID, roleID)
	return args.Error(0)
}

func (m *mockRoleRepository) ListMembers(ctx context.Context, roleID uint) ([]*permission.Member, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permission.Member), args.Error(1)
}

func (m *mockRoleRepository) GetMember(ctx context.Context, memberID uint) (*permission.Member, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permission.Member), args.Error(1)
}

func (m *mockRoleRepository) CreateMember(ctx context.Context, member *permission.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

type mockPermissionRepository struct {
	mock.Mock
}

func (m *mockPermissionRepository) Create(ctx context.Context, perm *permission.Permission) error {
	args := m.Called(ctx, perm)
	return args.Error(0)
}

func (m *mockPermissionRepository) Update(ctx context.Context, perm *permission.Permission) error {
	args := m.Called(ctx, perm)
	return args.Error(0)
}

func (m *mockPermissionRepository) GetByID(ctx context.Context, id uint) (*permission.Permission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permission.Permission), args.Error(1)
}

func (m *mockPermissionRepository) GetByKey(ctx context.Context, key string) (*permission.Permission, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*permission.Permission), args.Error(1)
}

func (m *mockPermissionRepository) GetByKeys(ctx context.Context, keys []string) ([]*permission.Permission, error) {
	args := m.Called(ctx, keys)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permission.Permission), args.Error(1)
}

func (m *mockPermissionRepository) List(ctx context.Context) ([]*permission.Permission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*permission.Permission), args.Error(1)
}

type mockEnforcer struct {
	mock.Mock
}

func (m *mockEnforcer) Enforce(subject string, key string) (bool, error) {
	args := m.Called(subject, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockEnforcer) ReplaceRolePolicies(role string, keys []string) error {
	args := m.Called(role, keys)
	return args.Error(0)
}

func (m *mockEnforcer) RemoveRole(role string) error {
	args := m.Called(role)
	return args.Error(0)
}

func (m *mockEnforcer) RenameRole(oldName, newName string) error {
	args := m.Called(oldName, newName)
	return args.Error(0)
}

func (m *mockEnforcer) AssignRole(subject string, role string) error {
	args := m.Called(subject, role)
	return args.Error(0)
}

func (m *mockEnforcer) UnassignRoles(subject string) error {
	args := m.Called(subject)
	return args.Error(0)
}

func (m *mockEnforcer) ReplaceAll(policies, groupings [][]string) error {
	args := m.Called(policies, groupings)
	return args.Error(0)
}

func (m *mockEnforcer) LoadPolicy() error {
	args := m.Called()
	return args.Error(0)
}
