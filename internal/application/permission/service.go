package permission

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"warden/internal/application/permission/dto"
	"warden/internal/domain/permission"
	vo "warden/internal/domain/permission/value_objects"
	"warden/internal/shared/db"
	"warden/internal/shared/errors"
	"warden/internal/shared/logger"
	"warden/internal/shared/mapper"
	"warden/internal/shared/utils"
	"warden/internal/shared/utils/setutil"
)

// predicatePattern is the only call shape Check accepts: a bare key
// followed by a question mark, e.g. "admin?".
var predicatePattern = regexp.MustCompile(`^[a-z_]*\?$`)

type Options struct {
	// StrictPermissionKeys fails a synchronization that names unknown keys
	// instead of dropping them.
	StrictPermissionKeys bool
}

// RoleAuthorizer answers permission questions for roles and keeps their
// persisted permission sets in step with the desired key lists.
type RoleAuthorizer struct {
	roleRepo       permission.RoleRepository
	permissionRepo permission.PermissionRepository
	cache          permission.PermissionKeyCache
	enforcer       permission.PolicyEnforcer
	txManager      *db.TransactionManager
	locks          *roleLocks
	opts           Options
	logger         logger.Interface
}

func NewRoleAuthorizer(
	roleRepo permission.RoleRepository,
	permissionRepo permission.PermissionRepository,
	cache permission.PermissionKeyCache,
	enforcer permission.PolicyEnforcer,
	txManager *db.TransactionManager,
	opts Options,
	logger logger.Interface,
) *RoleAuthorizer {
	return &RoleAuthorizer{
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
		cache:          cache,
		enforcer:       enforcer,
		txManager:      txManager,
		locks:          newRoleLocks(),
		opts:           opts,
		logger:         logger,
	}
}

// FindByCanonicalName canonicalizes raw and looks the role up by exact name.
// A missing role is (nil, nil).
func (s *RoleAuthorizer) FindByCanonicalName(ctx context.Context, raw string) (*permission.Role, error) {
	name := vo.CanonicalRoleName(raw)
	if name == "" {
		return nil, nil
	}

	role, err := s.roleRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find role %q: %w", name, err)
	}
	return role, nil
}

func (s *RoleAuthorizer) GetRole(ctx context.Context, id uint) (*permission.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return role, nil
}

func (s *RoleAuthorizer) ListRoles(ctx context.Context) ([]*permission.Role, error) {
	return s.roleRepo.List(ctx)
}

// PermissionKeys returns the pending key list when one is set, otherwise
// the persisted keys ordered by permission name.
func (s *RoleAuthorizer) PermissionKeys(ctx context.Context, role *permission.Role) ([]string, error) {
	if pending, ok := role.PendingKeys(); ok {
		return pending, nil
	}
	return s.persistedKeys(ctx, role)
}

// persistedKeys reads through the role, then the key cache, then storage.
// The cache generation is read before storage so a load that overlaps a
// sync is not written back.
func (s *RoleAuthorizer) persistedKeys(ctx context.Context, role *permission.Role) ([]string, error) {
	if role.IsNew() {
		return []string{}, nil
	}
	if role.PermissionsLoaded() {
		return role.PersistedKeys(), nil
	}

	keys, hit, err := s.cache.Get(ctx, role.ID())
	if err != nil {
		s.logger.Warnw("permission key cache read failed", "role_id", role.ID(), "error", err)
	} else if hit {
		return keys, nil
	}

	generation, genErr := s.cache.Generation(ctx, role.ID())
	if genErr != nil {
		s.logger.Warnw("permission key cache generation read failed", "role_id", role.ID(), "error", genErr)
	}

	if err := s.loadPermissions(ctx, role); err != nil {
		return nil, err
	}

	keys = role.PersistedKeys()
	if genErr == nil {
		if err := s.cache.Set(ctx, role.ID(), generation, keys); err != nil {
			s.logger.Warnw("permission key cache write failed", "role_id", role.ID(), "error", err)
		}
	}
	return keys, nil
}

func (s *RoleAuthorizer) loadPermissions(ctx context.Context, role *permission.Role) error {
	perms, err := s.roleRepo.GetPermissions(ctx, role.ID())
	if err != nil {
		return fmt.Errorf("failed to load role permissions: %w", err)
	}
	role.LoadPermissions(perms)
	return nil
}

// HasPermission resolves ref to its key and compares it exactly against the
// persisted set. Pending keys are not consulted.
func (s *RoleAuthorizer) HasPermission(ctx context.Context, role *permission.Role, ref permission.KeyRef) (bool, error) {
	if ref == nil {
		return false, nil
	}
	key := ref.PermissionKey()
	if key == "" {
		return false, nil
	}

	keys, err := s.persistedKeys(ctx, role)
	if err != nil {
		return false, err
	}
	if role.PermissionsLoaded() {
		return role.HasPermission(ref), nil
	}
	return slices.Contains(keys, key), nil
}

// Check is the predicate form of HasPermission: "admin?" asks for key
// "admin". Any other call shape is an InvalidOperation.
func (s *RoleAuthorizer) Check(ctx context.Context, role *permission.Role, call string) (bool, error) {
	if !predicatePattern.MatchString(call) {
		return false, errors.NewInvalidOperationError("undefined role predicate", call)
	}
	return s.HasPermission(ctx, role, permission.Key(strings.TrimSuffix(call, "?")))
}

// SyncPermissions replaces the role's join rows with the pending key list.
// Without a pending list it is a no-op returning the persisted keys.
func (s *RoleAuthorizer) SyncPermissions(ctx context.Context, role *permission.Role) ([]string, error) {
	pending, ok := role.PendingKeys()
	if !ok {
		return s.persistedKeys(ctx, role)
	}
	if role.IsNew() {
		return nil, errors.NewInvalidOperationError("role must be saved before its permissions are synchronized")
	}

	unlock := s.locks.lock(role.ID())
	defer unlock()

	var perms []*permission.Permission
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		perms, err = s.replacePermissions(ctx, role, pending)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.applySynced(ctx, role, perms)
	return role.PersistedKeys(), nil
}

// replacePermissions must run inside a transaction. Storage errors come back
// as SyncFailure; strict-mode rejections as ValidationError.
func (s *RoleAuthorizer) replacePermissions(ctx context.Context, role *permission.Role, desired []string) ([]*permission.Permission, error) {
	if err := s.roleRepo.LockForUpdate(ctx, role.ID()); err != nil {
		return nil, errors.NewSyncFailure(role.ID(), err)
	}

	keys := setutil.Unique(desired)

	perms, err := s.permissionRepo.GetByKeys(ctx, keys)
	if err != nil {
		return nil, errors.NewSyncFailure(role.ID(), err)
	}

	found := mapper.MapSlice(perms, (*permission.Permission).Key)
	if unknown := setutil.Difference(keys, found); len(unknown) > 0 {
		if s.opts.StrictPermissionKeys {
			return nil, errors.NewValidationError("unknown permission keys", strings.Join(unknown, ", "))
		}
		s.logger.Warnw("dropping unknown permission keys",
			"role_id", role.ID(),
			"role", role.Name(),
			"keys", unknown)
	}

	if err := s.roleRepo.ClearPermissions(ctx, role.ID()); err != nil {
		return nil, errors.NewSyncFailure(role.ID(), err)
	}

	ids := mapper.MapSlice(perms, (*permission.Permission).ID)
	if err := s.roleRepo.AddPermissions(ctx, role.ID(), ids); err != nil {
		return nil, errors.NewSyncFailure(role.ID(), err)
	}

	return perms, nil
}

// applySynced runs after commit: it updates the in-memory role, drops the
// cached keys and mirrors the new set into the policy enforcer.
func (s *RoleAuthorizer) applySynced(ctx context.Context, role *permission.Role, perms []*permission.Permission) {
	role.LoadPermissions(perms)
	role.ClearPendingKeys()

	if err := s.cache.Invalidate(ctx, role.ID()); err != nil {
		s.logger.Warnw("failed to invalidate permission key cache", "role_id", role.ID(), "error", err)
	}

	if err := s.enforcer.ReplaceRolePolicies(role.Name(), role.PersistedKeys()); err != nil {
		s.logger.Errorw("failed to mirror role permissions into enforcer",
			"role_id", role.ID(),
			"role", role.Name(),
			"error", err)
	}

	s.logger.Infow("role permissions synchronized",
		"role_id", role.ID(),
		"role", role.Name(),
		"count", len(perms))
}

// Save validates the role, creates or updates it and synchronizes any
// pending key list, all in one transaction.
func (s *RoleAuthorizer) Save(ctx context.Context, role *permission.Role) error {
	if err := role.Validate(); err != nil {
		return err
	}

	isNew := role.IsNew()
	if !isNew {
		unlock := s.locks.lock(role.ID())
		defer unlock()
	}

	pending, hasPending := role.PendingKeys()

	var (
		oldName string
		perms   []*permission.Permission
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if isNew {
			if err := s.roleRepo.Create(ctx, role); err != nil {
				return err
			}
		} else {
			existing, err := s.roleRepo.GetByID(ctx, role.ID())
			if err != nil {
				return fmt.Errorf("failed to get role: %w", err)
			}
			if existing == nil {
				return errors.NewNotFoundError("role not found")
			}
			oldName = existing.Name()

			if err := s.roleRepo.Update(ctx, role); err != nil {
				return err
			}
		}

		if !hasPending {
			return nil
		}

		var err error
		perms, err = s.replacePermissions(ctx, role, pending)
		return err
	})
	if err != nil {
		if isNew {
			role.MarkUnsaved()
		}
		s.logger.Errorw("failed to save role", "role", role.Name(), "error", err)
		return err
	}

	if !isNew && oldName != role.Name() {
		if err := s.enforcer.RenameRole(oldName, role.Name()); err != nil {
			s.logger.Errorw("failed to rename role in enforcer", "from", oldName, "to", role.Name(), "error", err)
		}
	}

	if hasPending {
		s.applySynced(ctx, role, perms)
	}

	s.logger.Infow("role saved", "role_id", role.ID(), "role", role.Name(), "created", isNew)
	return nil
}

func (s *RoleAuthorizer) CreateRole(ctx context.Context, cmd CreateRoleCommand) (*permission.Role, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	role := permission.NewRole(cmd.Name, cmd.Description, cmd.DefaultPath)
	if cmd.Permissions != nil {
		role.SetPermissionKeys(cmd.Permissions)
	}

	if err := s.Save(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// SetRolePermissions loads the role, records keys as its desired list and
// synchronizes it.
func (s *RoleAuthorizer) SetRolePermissions(ctx context.Context, roleID uint, keys []string) ([]string, error) {
	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, errors.NewNotFoundError("role not found")
	}

	role.SetPermissionKeys(keys)
	return s.SyncPermissions(ctx, role)
}

// DeleteRole removes the role with its join rows and detaches its members.
// Permissions are left untouched.
func (s *RoleAuthorizer) DeleteRole(ctx context.Context, id uint) error {
	unlock := s.locks.lock(id)
	defer unlock()

	var name string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		role, err := s.roleRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get role: %w", err)
		}
		if role == nil {
			return errors.NewNotFoundError("role not found")
		}
		name = role.Name()

		return s.roleRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warnw("failed to invalidate permission key cache", "role_id", id, "error", err)
	}
	if err := s.enforcer.RemoveRole(name); err != nil {
		s.logger.Errorw("failed to remove role from enforcer", "role", name, "error", err)
	}

	s.logger.Infow("role deleted", "role_id", id, "role", name)
	return nil
}

// Project returns the JSON projection of role, loading its permissions
// when they are not loaded yet.
func (s *RoleAuthorizer) Project(ctx context.Context, role *permission.Role) (*dto.RoleDTO, error) {
	if !role.IsNew() && !role.PermissionsLoaded() {
		if err := s.loadPermissions(ctx, role); err != nil {
			return nil, err
		}
	}
	return dto.ToRoleDTO(role), nil
}

func (s *RoleAuthorizer) ProjectAll(ctx context.Context, roles []*permission.Role) ([]*dto.RoleDTO, error) {
	return mapper.MapSliceErr(roles, func(r *permission.Role) (*dto.RoleDTO, error) {
		return s.Project(ctx, r)
	})
}

func (s *RoleAuthorizer) CreatePermission(ctx context.Context, cmd CreatePermissionCommand) (*permission.Permission, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	perm, err := permission.NewPermission(cmd.Key, strings.TrimSpace(cmd.Name), cmd.Description)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := s.permissionRepo.Create(ctx, perm); err != nil {
		s.logger.Errorw("failed to create permission", "key", cmd.Key, "error", err)
		return nil, err
	}

	s.logger.Infow("permission created", "permission_id", perm.ID(), "key", perm.Key())
	return perm, nil
}

func (s *RoleAuthorizer) UpdatePermission(ctx context.Context, perm *permission.Permission) error {
	if err := utils.ValidateStruct(CreatePermissionCommand{Key: perm.Key(), Name: perm.Name()}); err != nil {
		return err
	}
	if err := s.permissionRepo.Update(ctx, perm); err != nil {
		return err
	}
	// Names order the key lists, so cached lists may be stale.
	return s.invalidateAllKeyCaches(ctx)
}

func (s *RoleAuthorizer) invalidateAllKeyCaches(ctx context.Context) error {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if err := s.cache.Invalidate(ctx, r.ID()); err != nil {
			s.logger.Warnw("failed to invalidate permission key cache", "role_id", r.ID(), "error", err)
		}
	}
	return nil
}

// GetPermissionByKey returns nil when no permission has key.
func (s *RoleAuthorizer) GetPermissionByKey(ctx context.Context, key string) (*permission.Permission, error) {
	return s.permissionRepo.GetByKey(ctx, key)
}

func (s *RoleAuthorizer) ListPermissions(ctx context.Context) ([]*permission.Permission, error) {
	return s.permissionRepo.List(ctx)
}

func (s *RoleAuthorizer) CreateMember(ctx context.Context, cmd CreateMemberCommand) (*permission.Member, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	member := &permission.Member{
		FirstName: strings.TrimSpace(cmd.FirstName),
		LastName:  strings.TrimSpace(cmd.LastName),
		Email:     cmd.Email,
	}

	var roleName string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if cmd.RoleID != nil {
			role, err := s.roleRepo.GetByID(ctx, *cmd.RoleID)
			if err != nil {
				return fmt.Errorf("failed to get role: %w", err)
			}
			if role == nil {
				return errors.NewNotFoundError("role not found")
			}
			roleName = role.Name()
			member.RoleID = cmd.RoleID
		}
		return s.roleRepo.CreateMember(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	if roleName != "" {
		if err := s.enforcer.AssignRole(permission.MemberSubject(member.ID), roleName); err != nil {
			s.logger.Errorw("failed to add member role to enforcer", "member_id", member.ID, "error", err)
		}
	}
	return member, nil
}

// AssignMember moves a member to roleID; a nil roleID unassigns it.
func (s *RoleAuthorizer) AssignMember(ctx context.Context, memberID uint, roleID *uint) error {
	var roleName string
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		member, err := s.roleRepo.GetMember(ctx, memberID)
		if err != nil {
			return fmt.Errorf("failed to get member: %w", err)
		}
		if member == nil {
			return errors.NewNotFoundError("member not found")
		}

		if roleID != nil {
			role, err := s.roleRepo.GetByID(ctx, *roleID)
			if err != nil {
				return fmt.Errorf("failed to get role: %w", err)
			}
			if role == nil {
				return errors.NewNotFoundError("role not found")
			}
			roleName = role.Name()
		}

		return s.roleRepo.AssignMember(ctx, memberID, roleID)
	})
	if err != nil {
		return err
	}

	subject := permission.MemberSubject(memberID)
	if err := s.enforcer.UnassignRoles(subject); err != nil {
		s.logger.Errorw("failed to clear member roles in enforcer", "member_id", memberID, "error", err)
	}
	if roleName != "" {
		if err := s.enforcer.AssignRole(subject, roleName); err != nil {
			s.logger.Errorw("failed to add member role to enforcer", "member_id", memberID, "error", err)
		}
	}

	s.logger.Infow("member assigned", "member_id", memberID, "role", roleName)
	return nil
}

// ListMembers returns the role's members ordered by first name, last name.
func (s *RoleAuthorizer) ListMembers(ctx context.Context, roleID uint) ([]*permission.Member, error) {
	return s.roleRepo.ListMembers(ctx, roleID)
}

// MemberCan asks the policy enforcer whether the member's role grants key.
func (s *RoleAuthorizer) MemberCan(ctx context.Context, memberID uint, key string) (bool, error) {
	return s.enforcer.Enforce(permission.MemberSubject(memberID), key)
}
