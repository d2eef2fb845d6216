package permission

import (
	"context"
	"fmt"
	"strings"

	"warden/internal/domain/permission"
	permissionInfra "warden/internal/infrastructure/permission"
	"warden/internal/shared/logger"
)

type SeedResult struct {
	PermissionsCreated int `json:"permissions_created"`
	PermissionsUpdated int `json:"permissions_updated"`
	RolesCreated       int `json:"roles_created"`
	RolesUpdated       int `json:"roles_updated"`
}

// Seeder applies a catalog file. Existing permissions and roles are updated
// in place, so re-running a catalog leaves the same state.
type Seeder struct {
	authorizer *RoleAuthorizer
	roleRepo   permission.RoleRepository
	logger     logger.Interface
}

func NewSeeder(authorizer *RoleAuthorizer, roleRepo permission.RoleRepository, logger logger.Interface) *Seeder {
	return &Seeder{
		authorizer: authorizer,
		roleRepo:   roleRepo,
		logger:     logger,
	}
}

func (s *Seeder) Seed(ctx context.Context, path string) (*SeedResult, error) {
	catalog, err := permissionInfra.LoadCatalog(path)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("seeding catalog", "path", path,
		"permissions", len(catalog.Permissions),
		"roles", len(catalog.Roles))

	return s.Apply(ctx, catalog)
}

func (s *Seeder) Apply(ctx context.Context, catalog *permissionInfra.Catalog) (*SeedResult, error) {
	result := &SeedResult{}

	for _, p := range catalog.Permissions {
		if err := s.seedPermission(ctx, p, result); err != nil {
			return result, err
		}
	}

	for _, r := range catalog.Roles {
		if err := s.seedRole(ctx, r, result); err != nil {
			return result, err
		}
	}

	s.logger.Infow("catalog seeded",
		"permissions_created", result.PermissionsCreated,
		"permissions_updated", result.PermissionsUpdated,
		"roles_created", result.RolesCreated,
		"roles_updated", result.RolesUpdated)
	return result, nil
}

func (s *Seeder) seedPermission(ctx context.Context, p permissionInfra.CatalogPermission, result *SeedResult) error {
	existing, err := s.authorizer.GetPermissionByKey(ctx, p.Key)
	if err != nil {
		return fmt.Errorf("failed to look up permission %s: %w", p.Key, err)
	}

	if existing == nil {
		if _, err := s.authorizer.CreatePermission(ctx, CreatePermissionCommand{
			Key:         p.Key,
			Name:        p.Name,
			Description: p.Description,
		}); err != nil {
			return fmt.Errorf("failed to seed permission %s: %w", p.Key, err)
		}
		result.PermissionsCreated++
		return nil
	}

	name := strings.TrimSpace(p.Name)
	if existing.Name() == name && existing.Description() == p.Description {
		return nil
	}

	if err := existing.UpdateName(name); err != nil {
		return fmt.Errorf("failed to seed permission %s: %w", p.Key, err)
	}
	existing.UpdateDescription(p.Description)
	if err := s.authorizer.UpdatePermission(ctx, existing); err != nil {
		return fmt.Errorf("failed to update permission %s: %w", p.Key, err)
	}
	result.PermissionsUpdated++
	return nil
}

func (s *Seeder) seedRole(ctx context.Context, r permissionInfra.CatalogRole, result *SeedResult) error {
	name := strings.TrimSpace(r.Name)

	role, err := s.roleRepo.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to look up role %s: %w", name, err)
	}

	created := role == nil
	if created {
		role = permission.NewRole(name, r.Description, r.DefaultPath)
	} else {
		changed := false
		if r.Description != "" && r.Description != role.Description() {
			role.UpdateDescription(r.Description)
			changed = true
		}
		if r.DefaultPath != "" && r.DefaultPath != role.DefaultPath() {
			role.UpdateDefaultPath(r.DefaultPath)
			changed = true
		}

		if !changed && r.Permissions != nil {
			current, err := s.authorizer.PermissionKeys(ctx, role)
			if err != nil {
				return err
			}
			known, err := s.knownKeys(ctx, r.Permissions)
			if err != nil {
				return err
			}
			changed = !sameKeys(current, known)
		}
		if !changed {
			return nil
		}
	}

	if r.Permissions != nil {
		role.SetPermissionKeys(r.Permissions)
	}

	if err := s.authorizer.Save(ctx, role); err != nil {
		return fmt.Errorf("failed to seed role %s: %w", name, err)
	}

	if created {
		result.RolesCreated++
	} else {
		result.RolesUpdated++
	}
	return nil
}

// knownKeys returns the keys of keys that exist in the catalog. A sync drops
// the rest, so they never reach the persisted set.
func (s *Seeder) knownKeys(ctx context.Context, keys []string) ([]string, error) {
	perms, err := s.authorizer.permissionRepo.GetByKeys(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog keys: %w", err)
	}
	known := make([]string, 0, len(perms))
	for _, p := range perms {
		known = append(known, p.Key())
	}
	return known, nil
}

// sameKeys compares key sets, ignoring order and duplicates.
func sameKeys(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	other := make(map[string]struct{}, len(b))
	for _, k := range b {
		if _, ok := set[k]; !ok {
			return false
		}
		other[k] = struct{}{}
	}
	return len(set) == len(other)
}
