package permission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/shared/errors"
)

func mustPermission(t *testing.T, id uint, key, name string) *Permission {
	p, err := ReconstructPermission(id, key, name, "", time.Now(), time.Now())
	require.NoError(t, err)
	return p
}

func TestRole_Validate(t *testing.T) {
	tests := []struct {
		name        string
		role        *Role
		wantErr     bool
		wantDetails string
	}{
		{"complete", NewRole("Admin", "", "/admin"), false, ""},
		{"missing name", NewRole("  ", "", "/admin"), true, "name is required"},
		{"missing default path", NewRole("Admin", "", ""), true, "default_path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.role.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Contains(t, errors.GetAppError(err).Details, tt.wantDetails)
		})
	}
}

func TestRole_PermissionKeysState(t *testing.T) {
	role := NewRole("Admin", "", "/")
	role.LoadPermissions([]*Permission{
		mustPermission(t, 2, "editor", "Editor"),
		mustPermission(t, 1, "admin", "Admin"),
	})

	assert.Equal(t, []string{"admin", "editor"}, role.PermissionKeys())
	assert.Equal(t, []uint{1, 2}, role.PermissionIDs())

	_, pending := role.PendingKeys()
	assert.False(t, pending)

	role.SetPermissionKeys([]string{"ghost", "ghost"})
	assert.Equal(t, []string{"ghost", "ghost"}, role.PermissionKeys())
	assert.Equal(t, []string{"admin", "editor"}, role.PersistedKeys())

	role.ClearPendingKeys()
	assert.Equal(t, []string{"admin", "editor"}, role.PermissionKeys())

	role.SetPermissionKeys(nil)
	keys, pending := role.PendingKeys()
	assert.True(t, pending)
	assert.Empty(t, keys)
	assert.NotNil(t, keys)
}

func TestRole_HasPermission(t *testing.T) {
	admin := mustPermission(t, 1, "admin", "Admin")
	other := mustPermission(t, 9, "billing", "Billing")

	role := NewRole("Admin", "", "/")
	assert.False(t, role.HasPermission(Key("admin")), "nothing loaded yet")

	role.LoadPermissions([]*Permission{admin})
	role.SetPermissionKeys([]string{"billing"})

	assert.True(t, role.HasPermission(Key("admin")))
	assert.True(t, role.HasPermission(admin))
	assert.False(t, role.HasPermission(Key("Admin")))
	assert.False(t, role.HasPermission(other), "pending keys are not persisted")
	assert.False(t, role.HasPermission(nil))
}

func TestRole_SetID(t *testing.T) {
	role := NewRole("Admin", "", "/")
	assert.True(t, role.IsNew())
	assert.Error(t, role.SetID(0))
	require.NoError(t, role.SetID(5))
	assert.Error(t, role.SetID(6))
	assert.Equal(t, uint(5), role.ID())
}

func TestNewPermission(t *testing.T) {
	_, err := NewPermission("", "Admin", "")
	assert.Error(t, err)
	_, err = NewPermission("admin", "", "")
	assert.Error(t, err)

	p, err := NewPermission("admin", "Admin", "full access")
	require.NoError(t, err)
	assert.Equal(t, "admin", p.PermissionKey())
	assert.Zero(t, p.ID())
}
