package permission

// PolicyEnforcer mirrors persisted role permissions and member assignments
// into a policy engine that answers member-level checks.
type PolicyEnforcer interface {
	Enforce(subject string, key string) (bool, error)
	// ReplaceRolePolicies makes keys the complete policy set for role.
	ReplaceRolePolicies(role string, keys []string) error
	RemoveRole(role string) error
	RenameRole(oldName, newName string) error
	AssignRole(subject string, role string) error
	UnassignRoles(subject string) error
	// ReplaceAll makes policies ({role, key}) and groupings ({subject, role})
	// the complete rule set.
	ReplaceAll(policies, groupings [][]string) error
	LoadPolicy() error
}
