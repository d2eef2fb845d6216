package permission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		catalog, err := ParseCatalog([]byte(`
permissions:
  - key: admin
    name: Administer
  - key: editor
    name: Edit Content
    description: Write articles
roles:
  - name: Admin
    default_path: /admin
    permissions: [admin, editor]
`))
		require.NoError(t, err)
		require.Len(t, catalog.Permissions, 2)
		assert.Equal(t, "Write articles", catalog.Permissions[1].Description)
		require.Len(t, catalog.Roles, 1)
		assert.Equal(t, []string{"admin", "editor"}, catalog.Roles[0].Permissions)
		assert.Equal(t, "/admin", catalog.Roles[0].DefaultPath)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"missing key", "permissions:\n  - name: Nameless\n"},
		{"duplicate key", "permissions:\n  - {key: a, name: A}\n  - {key: a, name: B}\n"},
		{"unknown field", "permissions:\n  - {key: a, name: A, scope: x}\n"},
		{"not yaml", "permissions: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("permissions:\n  - {key: reports, name: Reports}\n"), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog.Permissions, 1)
	assert.Equal(t, "reports", catalog.Permissions[0].Key)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
