package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"warden/internal/shared/config"
	"warden/internal/shared/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return gdb
}

func tableExists(t *testing.T, gdb *gorm.DB, name string) bool {
	t.Helper()
	return gdb.Migrator().HasTable(name)
}

func TestGooseStrategy_UpAndDown(t *testing.T) {
	gdb := openTestDB(t)
	strategy := NewGooseStrategy(config.DriverSQLite, logger.NewNopLogger())

	require.NoError(t, strategy.Migrate(gdb))

	for _, table := range []string{"permissions", "roles", "permission_roles", "members"} {
		assert.True(t, tableExists(t, gdb, table), table)
	}

	version, err := strategy.GetVersion(gdb)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	t.Run("migrate is idempotent", func(t *testing.T) {
		require.NoError(t, strategy.Migrate(gdb))
	})

	t.Run("status succeeds", func(t *testing.T) {
		assert.NoError(t, strategy.Status(gdb))
	})

	t.Run("deleting a role cascades to join rows and detaches members", func(t *testing.T) {
		require.NoError(t, gdb.Exec(`INSERT INTO permissions (id, permission_key, name) VALUES (1, 'admin', 'Admin')`).Error)
		require.NoError(t, gdb.Exec(`INSERT INTO roles (id, name, default_path) VALUES (1, 'Admin', '/')`).Error)
		require.NoError(t, gdb.Exec(`INSERT INTO permission_roles (role_id, permission_id) VALUES (1, 1)`).Error)
		require.NoError(t, gdb.Exec(`INSERT INTO members (id, first_name, email, role_id) VALUES (1, 'Ada', 'ada@example.com', 1)`).Error)

		require.NoError(t, gdb.Exec(`DELETE FROM roles WHERE id = 1`).Error)

		var joins int64
		require.NoError(t, gdb.Table("permission_roles").Count(&joins).Error)
		assert.Zero(t, joins)

		var member struct{ RoleID *uint }
		require.NoError(t, gdb.Raw(`SELECT role_id FROM members WHERE id = 1`).Scan(&member).Error)
		assert.Nil(t, member.RoleID)
	})

	t.Run("unique constraints", func(t *testing.T) {
		err := gdb.Exec(`INSERT INTO permissions (permission_key, name) VALUES ('admin', 'Again')`).Error
		assert.Error(t, err)
	})

	t.Run("down drops the tables", func(t *testing.T) {
		require.NoError(t, strategy.MigrateDown(gdb, 1))
		assert.False(t, tableExists(t, gdb, "roles"))

		version, err := strategy.GetVersion(gdb)
		require.NoError(t, err)
		assert.Zero(t, version)
	})
}

func TestManager_SelectsStrategy(t *testing.T) {
	log := logger.NewNopLogger()

	m := NewManager(&config.MigrationConfig{Strategy: "auto"}, config.DriverSQLite, log)
	assert.Equal(t, StrategyAuto, m.GetStrategy().GetName())
	_, ok := m.Goose()
	assert.False(t, ok)

	m = NewManager(&config.MigrationConfig{Strategy: ""}, config.DriverMySQL, log)
	assert.Equal(t, StrategyGoose, m.GetStrategy().GetName())
	g, ok := m.Goose()
	require.True(t, ok)
	assert.Equal(t, "mysql", g.dialect)

	info := m.GetStrategyInfo()
	assert.Equal(t, StrategyGoose, info["name"])
}

func TestManager_AutoMigrate(t *testing.T) {
	gdb := openTestDB(t)
	m := NewManagerWithStrategy(NewGormAutoMigrateStrategy(logger.NewNopLogger()), logger.NewNopLogger())

	require.NoError(t, m.Migrate(gdb))
	assert.True(t, tableExists(t, gdb, "permission_roles"))
	assert.True(t, tableExists(t, gdb, "members"))
}

func TestGenerator_CreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sqlite"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sqlite", "00001_create_rbac_tables.sql"), []byte("-- +goose Up\n"), 0o644))

	g := NewGenerator(dir, logger.NewNopLogger())
	files, err := g.CreateMigration("add_role_color")
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, filepath.Join(dir, "mysql", "00001_add_role_color.sql"), files[0])
	assert.Equal(t, filepath.Join(dir, "sqlite", "00002_add_role_color.sql"), files[1])

	content, err := os.ReadFile(files[1])
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- +goose Up")
	assert.Contains(t, string(content), "-- +goose Down")

	_, err = g.CreateMigration("Bad Name")
	assert.Error(t, err)
}

func TestEmbeddedScripts(t *testing.T) {
	for _, dir := range []string{"scripts/mysql", "scripts/sqlite"} {
		entries, err := scriptsFS.ReadDir(dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, dir)
	}

	t.Run("mysql permission keys use a binary collation", func(t *testing.T) {
		content, err := scriptsFS.ReadFile("scripts/mysql/00001_create_rbac_tables.sql")
		require.NoError(t, err)
		assert.Contains(t, string(content), "permission_key VARCHAR(100) NOT NULL COLLATE utf8mb4_bin")
	})
}

func TestKeyCollationStatement(t *testing.T) {
	assert.Contains(t, keyCollationStatement("mysql"), "COLLATE utf8mb4_bin")
	assert.Contains(t, keyCollationStatement("mysql"), "permission_key")
	assert.Empty(t, keyCollationStatement("sqlite"))
}
