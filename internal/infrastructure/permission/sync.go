package permission

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"warden/internal/domain/permission"
	"warden/internal/shared/constants"
	"warden/internal/shared/logger"
)

// PolicySync rebuilds the casbin policy set from the persisted roles,
// permission_roles and members tables.
type PolicySync struct {
	db       *gorm.DB
	enforcer permission.PolicyEnforcer
	logger   logger.Interface
}

func NewPolicySync(db *gorm.DB, enforcer permission.PolicyEnforcer, logger logger.Interface) *PolicySync {
	return &PolicySync{
		db:       db,
		enforcer: enforcer,
		logger:   logger,
	}
}

type roleKeyRow struct {
	RoleName      string
	PermissionKey string
}

type memberRoleRow struct {
	MemberID uint
	RoleName string
}

// SyncToCasbin rebuilds the whole casbin rule set from storage. Rules for
// roles that no longer exist and groupings of detached members are dropped.
func (s *PolicySync) SyncToCasbin(ctx context.Context) error {
	s.logger.Info("syncing permissions to casbin...")

	var rows []roleKeyRow
	err := s.db.WithContext(ctx).
		Table(constants.TablePermissionRoles+" pr").
		Select("r.name AS role_name, p.permission_key AS permission_key").
		Joins("JOIN "+constants.TableRoles+" r ON pr.role_id = r.id").
		Joins("JOIN "+constants.TablePermissions+" p ON pr.permission_id = p.id").
		Order("r.name ASC, p.name ASC").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to load role permissions: %w", err)
	}

	policies := make([][]string, 0, len(rows))
	for _, row := range rows {
		policies = append(policies, []string{row.RoleName, row.PermissionKey})
	}

	var members []memberRoleRow
	err = s.db.WithContext(ctx).
		Table(constants.TableMembers+" m").
		Select("m.id AS member_id, r.name AS role_name").
		Joins("JOIN "+constants.TableRoles+" r ON m.role_id = r.id").
		Order("m.id ASC").
		Scan(&members).Error
	if err != nil {
		return fmt.Errorf("failed to load member roles: %w", err)
	}

	groupings := make([][]string, 0, len(members))
	for _, m := range members {
		groupings = append(groupings, []string{permission.MemberSubject(m.MemberID), m.RoleName})
	}

	if err := s.enforcer.ReplaceAll(policies, groupings); err != nil {
		return fmt.Errorf("failed to replace casbin rules: %w", err)
	}

	s.logger.Infow("permissions synced to casbin", "policies", len(policies), "members", len(groupings))
	return nil
}
