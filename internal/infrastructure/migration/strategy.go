package migration

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"warden/internal/shared/config"
	"warden/internal/shared/logger"
)

const (
	StrategyGoose = "goose"
	StrategyAuto  = "auto"
)

// Strategy defines the interface for different migration strategies
type Strategy interface {
	// Migrate executes the migration strategy
	Migrate(db *gorm.DB) error
	// GetName returns the strategy name
	GetName() string
}

// goose keeps its dialect, base FS and logger in package globals.
var gooseMu sync.Mutex

// GooseStrategy applies the embedded, dialect specific SQL scripts.
type GooseStrategy struct {
	dialect string
	logger  logger.Interface
}

// NewGooseStrategy picks the script set matching the database driver.
func NewGooseStrategy(driver string, log logger.Interface) *GooseStrategy {
	dialect := "mysql"
	if driver == config.DriverSQLite || driver == "" {
		dialect = "sqlite3"
	}
	return &GooseStrategy{
		dialect: dialect,
		logger:  log.With("component", "migration.goose"),
	}
}

func (s *GooseStrategy) GetName() string {
	return StrategyGoose
}

func (s *GooseStrategy) withGoose(db *gorm.DB, fn func(sqlDB *sql.DB, dir string) error) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(scriptsFS)
	goose.SetLogger(&gooseLogger{log: s.logger})
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return fn(sqlDB, scriptsDirFor(s.dialect))
}

func (s *GooseStrategy) Migrate(db *gorm.DB) error {
	return s.withGoose(db, func(sqlDB *sql.DB, dir string) error {
		currentVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			s.logger.Errorw("failed to get current version", "error", err)
			return fmt.Errorf("failed to get current version: %w", err)
		}

		s.logger.Infow("current migration status", "version", currentVersion)

		if err := goose.Up(sqlDB, dir); err != nil {
			s.logger.Errorw("migration failed", "error", err)
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		finalVersion, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get final version: %w", err)
		}

		s.logger.Infow("migration completed successfully",
			"from_version", currentVersion,
			"to_version", finalVersion)
		return nil
	})
}

func (s *GooseStrategy) MigrateDown(db *gorm.DB, steps int) error {
	s.logger.Infow("starting down migration", "steps", steps)

	return s.withGoose(db, func(sqlDB *sql.DB, dir string) error {
		for i := 0; i < steps; i++ {
			if err := goose.Down(sqlDB, dir); err != nil {
				s.logger.Errorw("down migration failed", "error", err)
				return fmt.Errorf("failed to run down migration: %w", err)
			}
		}

		s.logger.Infow("down migration completed successfully")
		return nil
	})
}

func (s *GooseStrategy) GetVersion(db *gorm.DB) (int64, error) {
	var version int64
	err := s.withGoose(db, func(sqlDB *sql.DB, _ string) error {
		v, err := goose.GetDBVersion(sqlDB)
		if err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// Status logs the applied state of every script.
func (s *GooseStrategy) Status(db *gorm.DB) error {
	return s.withGoose(db, func(sqlDB *sql.DB, dir string) error {
		if err := goose.Status(sqlDB, dir); err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}
		return nil
	})
}

// GormAutoMigrateStrategy derives the schema from the persistence models.
type GormAutoMigrateStrategy struct {
	models []interface{}
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{
		models: AutoMigrateModels(),
		logger: log.With("component", "migration.auto"),
	}
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return StrategyAuto
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	s.logger.Infow("running gorm auto migrate", "models_count", len(s.models))

	if err := db.AutoMigrate(s.models...); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}

	if stmt := keyCollationStatement(db.Dialector.Name()); stmt != "" {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to set permission key collation: %w", err)
		}
	}
	return nil
}

// keyCollationStatement returns the DDL that makes permission keys compare
// byte for byte. SQLite text comparison is already binary.
func keyCollationStatement(dialect string) string {
	if dialect != "mysql" {
		return ""
	}
	return "ALTER TABLE permissions MODIFY permission_key VARCHAR(100) NOT NULL COLLATE utf8mb4_bin"
}

type gooseLogger struct {
	log logger.Interface
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}
