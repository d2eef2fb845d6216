package migration

import "embed"

//go:embed scripts/mysql/*.sql scripts/sqlite/*.sql
var scriptsFS embed.FS

// ScriptsDir is the on-disk location of the SQL scripts, relative to the repo root.
const ScriptsDir = "internal/infrastructure/migration/scripts"

func scriptsDirFor(dialect string) string {
	if dialect == "sqlite3" {
		return "scripts/sqlite"
	}
	return "scripts/mysql"
}
