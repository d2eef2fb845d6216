package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"warden/internal/domain/permission"
	"warden/internal/shared/logger"
)

var _ permission.PolicyEnforcer = (*Enforcer)(nil)

// DefaultModel grants a subject a key when it, or a role it belongs to,
// holds a policy for exactly that key.
const DefaultModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj
`

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer builds a casbin enforcer persisted in the casbin_rule table.
// An empty modelPath selects DefaultModel.
func NewEnforcer(db *gorm.DB, modelPath string, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := loadModel(modelPath)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

func loadModel(modelPath string) (model.Model, error) {
	if modelPath == "" {
		m, err := model.NewModelFromString(DefaultModel)
		if err != nil {
			return nil, fmt.Errorf("failed to parse default casbin model: %w", err)
		}
		return m, nil
	}

	m, err := model.NewModelFromFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model %s: %w", modelPath, err)
	}
	return m, nil
}

func (e *Enforcer) Enforce(subject string, key string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(subject, key)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "subject", subject, "key", key)
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	return allowed, nil
}

func (e *Enforcer) ReplaceRolePolicies(role string, keys []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemoveFilteredPolicy(0, role); err != nil {
		e.logger.Errorw("failed to remove role policies", "error", err, "role", role)
		return fmt.Errorf("failed to remove role policies: %w", err)
	}

	if len(keys) == 0 {
		return nil
	}

	rules := make([][]string, 0, len(keys))
	for _, key := range keys {
		rules = append(rules, []string{role, key})
	}

	if _, err := e.enforcer.AddPolicies(rules); err != nil {
		e.logger.Errorw("failed to add role policies", "error", err, "role", role)
		return fmt.Errorf("failed to add role policies: %w", err)
	}

	return nil
}

// RemoveRole drops the role's policies and every grouping that points at it.
func (e *Enforcer) RemoveRole(role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.DeleteRole(role); err != nil {
		e.logger.Errorw("failed to delete role", "error", err, "role", role)
		return fmt.Errorf("failed to delete role: %w", err)
	}

	return nil
}

func (e *Enforcer) RenameRole(oldName, newName string) error {
	if oldName == newName {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	policies, err := e.enforcer.GetFilteredPolicy(0, oldName)
	if err != nil {
		return fmt.Errorf("failed to get role policies: %w", err)
	}
	subjects, err := e.enforcer.GetUsersForRole(oldName)
	if err != nil {
		return fmt.Errorf("failed to get role subjects: %w", err)
	}

	if _, err := e.enforcer.DeleteRole(oldName); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	if len(policies) > 0 {
		renamed := make([][]string, 0, len(policies))
		for _, p := range policies {
			rule := append([]string{newName}, p[1:]...)
			renamed = append(renamed, rule)
		}
		if _, err := e.enforcer.AddPolicies(renamed); err != nil {
			return fmt.Errorf("failed to add renamed role policies: %w", err)
		}
	}

	for _, subject := range subjects {
		if _, err := e.enforcer.AddRoleForUser(subject, newName); err != nil {
			return fmt.Errorf("failed to regroup subject %s: %w", subject, err)
		}
	}

	e.logger.Infow("role renamed in policy store", "from", oldName, "to", newName)
	return nil
}

func (e *Enforcer) AssignRole(subject string, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.AddRoleForUser(subject, role)
	if err != nil {
		e.logger.Errorw("failed to add role for subject", "error", err, "subject", subject, "role", role)
		return fmt.Errorf("failed to add role for subject: %w", err)
	}

	return nil
}

func (e *Enforcer) UnassignRoles(subject string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.DeleteRolesForUser(subject)
	if err != nil {
		e.logger.Errorw("failed to delete roles for subject", "error", err, "subject", subject)
		return fmt.Errorf("failed to delete roles for subject: %w", err)
	}

	return nil
}

func (e *Enforcer) ReplaceAll(policies, groupings [][]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.enforcer.GetPolicy()
	if err != nil {
		return fmt.Errorf("failed to get policies: %w", err)
	}
	if len(current) > 0 {
		if _, err := e.enforcer.RemovePolicies(current); err != nil {
			e.logger.Errorw("failed to clear policies", "error", err)
			return fmt.Errorf("failed to clear policies: %w", err)
		}
	}

	currentGroupings, err := e.enforcer.GetGroupingPolicy()
	if err != nil {
		return fmt.Errorf("failed to get groupings: %w", err)
	}
	if len(currentGroupings) > 0 {
		if _, err := e.enforcer.RemoveGroupingPolicies(currentGroupings); err != nil {
			e.logger.Errorw("failed to clear groupings", "error", err)
			return fmt.Errorf("failed to clear groupings: %w", err)
		}
	}

	if len(policies) > 0 {
		if _, err := e.enforcer.AddPolicies(policies); err != nil {
			return fmt.Errorf("failed to add policies: %w", err)
		}
	}
	if len(groupings) > 0 {
		if _, err := e.enforcer.AddGroupingPolicies(groupings); err != nil {
			return fmt.Errorf("failed to add groupings: %w", err)
		}
	}

	return nil
}

// GetPolicies returns every (role, key) rule currently loaded.
func (e *Enforcer) GetPolicies() ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies, err := e.enforcer.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get policies: %w", err)
	}
	return policies, nil
}

// GetGroupings returns every (subject, role) assignment currently loaded.
func (e *Enforcer) GetGroupings() ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	groupings, err := e.enforcer.GetGroupingPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get groupings: %w", err)
	}
	return groupings, nil
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Info("policy reloaded successfully")
	return nil
}
