package permission

import (
	"slices"
	"strings"
	"time"

	"warden/internal/shared/errors"
)

// Role is a named bundle of permissions.
//
// Its permission set is tracked in two explicit parts: the persisted
// permissions, loaded lazily from the join rows and ordered by permission
// name, and an optional pending key list recorded by SetPermissionKeys. The
// pending list only takes effect once the authorizer synchronizes it.
type Role struct {
	id          uint
	name        string
	description string
	defaultPath string
	createdAt   time.Time
	updatedAt   time.Time

	permissions       []*Permission
	permissionsLoaded bool

	pendingKeys    []string
	hasPendingKeys bool
}

// NewRole builds an unsaved role. Presence of name and default path is
// checked by Validate at save time.
func NewRole(name, description, defaultPath string) *Role {
	now := time.Now()
	return &Role{
		name:        strings.TrimSpace(name),
		description: description,
		defaultPath: strings.TrimSpace(defaultPath),
		createdAt:   now,
		updatedAt:   now,
	}
}

func ReconstructRole(id uint, name, description, defaultPath string, createdAt, updatedAt time.Time) (*Role, error) {
	if id == 0 {
		return nil, errors.NewInternalError("role ID cannot be zero")
	}

	return &Role{
		id:          id,
		name:        name,
		description: description,
		defaultPath: defaultPath,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (r *Role) ID() uint {
	return r.id
}

func (r *Role) SetID(id uint) error {
	if r.id != 0 {
		return errors.NewInternalError("role ID is already set")
	}
	if id == 0 {
		return errors.NewInternalError("role ID cannot be zero")
	}
	r.id = id
	return nil
}

// MarkUnsaved drops an ID assigned inside a transaction that rolled back.
func (r *Role) MarkUnsaved() {
	r.id = 0
}

func (r *Role) IsNew() bool {
	return r.id == 0
}

func (r *Role) Name() string {
	return r.name
}

func (r *Role) Description() string {
	return r.description
}

func (r *Role) DefaultPath() string {
	return r.defaultPath
}

func (r *Role) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Role) UpdatedAt() time.Time {
	return r.updatedAt
}

func (r *Role) Rename(name string) {
	r.name = strings.TrimSpace(name)
	r.updatedAt = time.Now()
}

func (r *Role) UpdateDescription(description string) {
	r.description = description
	r.updatedAt = time.Now()
}

func (r *Role) UpdateDefaultPath(path string) {
	r.defaultPath = strings.TrimSpace(path)
	r.updatedAt = time.Now()
}

// Validate enforces the presence invariants checked before every save.
func (r *Role) Validate() error {
	var missing []string
	if r.name == "" {
		missing = append(missing, "name is required")
	}
	if r.defaultPath == "" {
		missing = append(missing, "default_path is required")
	}
	if len(missing) > 0 {
		return errors.NewValidationError("invalid role", strings.Join(missing, "; "))
	}
	return nil
}

// LoadPermissions records the persisted permission set, ordered by name.
func (r *Role) LoadPermissions(perms []*Permission) {
	sorted := slices.Clone(perms)
	slices.SortStableFunc(sorted, func(a, b *Permission) int {
		return strings.Compare(a.Name(), b.Name())
	})
	r.permissions = sorted
	r.permissionsLoaded = true
}

// ResetPermissions forgets the persisted set so the next read reloads it.
func (r *Role) ResetPermissions() {
	r.permissions = nil
	r.permissionsLoaded = false
}

func (r *Role) PermissionsLoaded() bool {
	return r.permissionsLoaded
}

// Permissions returns the persisted permissions ordered by name.
func (r *Role) Permissions() []*Permission {
	return slices.Clone(r.permissions)
}

func (r *Role) PermissionIDs() []uint {
	ids := make([]uint, 0, len(r.permissions))
	for _, p := range r.permissions {
		ids = append(ids, p.ID())
	}
	return ids
}

// PersistedKeys returns the keys of the persisted permissions, ordered by permission name.
func (r *Role) PersistedKeys() []string {
	keys := make([]string, 0, len(r.permissions))
	for _, p := range r.permissions {
		keys = append(keys, p.Key())
	}
	return keys
}

// SetPermissionKeys records the desired key list. Duplicates are allowed; a
// nil or empty list means the role should end up with no permissions.
func (r *Role) SetPermissionKeys(keys []string) {
	r.pendingKeys = slices.Clone(keys)
	if r.pendingKeys == nil {
		r.pendingKeys = []string{}
	}
	r.hasPendingKeys = true
}

// PendingKeys returns the desired key list and whether one was set.
func (r *Role) PendingKeys() ([]string, bool) {
	return slices.Clone(r.pendingKeys), r.hasPendingKeys
}

func (r *Role) ClearPendingKeys() {
	r.pendingKeys = nil
	r.hasPendingKeys = false
}

// PermissionKeys returns the pending keys when set, otherwise the persisted keys.
func (r *Role) PermissionKeys() []string {
	if r.hasPendingKeys {
		return slices.Clone(r.pendingKeys)
	}
	return r.PersistedKeys()
}

// HasPermission reports whether ref's key is in the loaded persisted set.
// The comparison is exact and pending keys are not consulted. It is false
// until LoadPermissions has run; RoleAuthorizer.HasPermission loads first.
func (r *Role) HasPermission(ref KeyRef) bool {
	if ref == nil {
		return false
	}
	key := ref.PermissionKey()
	for _, p := range r.permissions {
		if p.Key() == key {
			return true
		}
	}
	return false
}
