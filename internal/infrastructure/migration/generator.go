package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"warden/internal/shared/logger"
)

var scriptNamePattern = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)

var migrationNamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Generator writes new goose scripts for every dialect under scriptsPath.
type Generator struct {
	scriptsPath string
	logger      logger.Interface
}

func NewGenerator(scriptsPath string, log logger.Interface) *Generator {
	return &Generator{
		scriptsPath: scriptsPath,
		logger:      log.With("component", "migration.generator"),
	}
}

// CreateMigration adds a script named after the next sequence number to both
// the mysql and sqlite directories and returns the created paths.
func (g *Generator) CreateMigration(name string) ([]string, error) {
	if !migrationNamePattern.MatchString(name) {
		return nil, fmt.Errorf("migration name %q must be lower snake case", name)
	}

	var created []string
	for _, dialect := range []string{"mysql", "sqlite"} {
		dir := filepath.Join(g.scriptsPath, dialect)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("failed to create scripts directory: %w", err)
		}

		next, err := nextVersion(dir)
		if err != nil {
			return created, err
		}

		path := filepath.Join(dir, fmt.Sprintf("%05d_%s.sql", next, name))
		if err := os.WriteFile(path, []byte(scriptTemplate(name, dialect)), 0o644); err != nil {
			return created, fmt.Errorf("failed to write migration %s: %w", path, err)
		}
		created = append(created, path)
	}

	g.logger.Infow("migration files created successfully", "files", created)
	return created, nil
}

func nextVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read scripts directory: %w", err)
	}

	var versions []int
	for _, e := range entries {
		m := scriptNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}

	if len(versions) == 0 {
		return 1, nil
	}
	sort.Ints(versions)
	return versions[len(versions)-1] + 1, nil
}

func scriptTemplate(name, dialect string) string {
	return fmt.Sprintf(`-- Migration: %s (%s)
-- Created: %s

-- +goose Up

-- +goose Down

`, name, dialect, time.Now().Format("2006-01-02 15:04:05"))
}
