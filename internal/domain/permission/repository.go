package permission

import "context"

type RoleRepository interface {
	Create(ctx context.Context, role *Role) error
	Update(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id uint) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	// List returns roles ordered by name.
	List(ctx context.Context) ([]*Role, error)
	// Delete removes the role, its join rows and detaches its members.
	Delete(ctx context.Context, id uint) error

	// LockForUpdate takes a row lock on the role for the surrounding transaction.
	LockForUpdate(ctx context.Context, id uint) error
	// GetPermissions returns the persisted permissions ordered by name.
	GetPermissions(ctx context.Context, roleID uint) ([]*Permission, error)
	ClearPermissions(ctx context.Context, roleID uint) error
	AddPermissions(ctx context.Context, roleID uint, permissionIDs []uint) error

	AssignMember(ctx context.Context, memberID uint, roleID *uint) error
	// ListMembers returns members ordered by first name, last name.
	ListMembers(ctx context.Context, roleID uint) ([]*Member, error)
	GetMember(ctx context.Context, memberID uint) (*Member, error)
	CreateMember(ctx context.Context, member *Member) error
}

type PermissionRepository interface {
	Create(ctx context.Context, permission *Permission) error
	Update(ctx context.Context, permission *Permission) error
	GetByID(ctx context.Context, id uint) (*Permission, error)
	GetByKey(ctx context.Context, key string) (*Permission, error)
	// GetByKeys resolves keys in one query; unknown keys are absent from the result.
	GetByKeys(ctx context.Context, keys []string) ([]*Permission, error)
	// List returns permissions ordered by name.
	List(ctx context.Context) ([]*Permission, error)
}

// PermissionKeyCache caches a role's persisted key list.
//
// Writers read Generation before loading keys from storage and pass it to
// Set; Invalidate advances the generation, so a load that raced with an
// invalidation is never stored.
type PermissionKeyCache interface {
	// Get returns the cached keys and whether the entry was present.
	Get(ctx context.Context, roleID uint) ([]string, bool, error)
	Generation(ctx context.Context, roleID uint) (int64, error)
	Set(ctx context.Context, roleID uint, generation int64, keys []string) error
	Invalidate(ctx context.Context, roleID uint) error
}
