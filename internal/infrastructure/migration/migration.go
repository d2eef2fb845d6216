package migration

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"warden/internal/shared/config"
	"warden/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager selects the strategy named in cfg; unknown names fall back to goose.
func NewManager(cfg *config.MigrationConfig, driver string, log logger.Interface) *Manager {
	var strategy Strategy

	switch strings.ToLower(cfg.Strategy) {
	case StrategyAuto:
		strategy = NewGormAutoMigrateStrategy(log)
	default:
		strategy = NewGooseStrategy(driver, log)
	}

	return NewManagerWithStrategy(strategy, log)
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   log.With("component", "migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(db); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// Goose returns the goose strategy when it is the active one.
func (m *Manager) Goose() (*GooseStrategy, bool) {
	g, ok := m.strategy.(*GooseStrategy)
	return g, ok
}

// GetStrategyInfo returns information about the current strategy
func (m *Manager) GetStrategyInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":        m.strategy.GetName(),
		"description": getStrategyDescription(m.strategy.GetName()),
	}
}

func getStrategyDescription(strategyName string) string {
	switch strategyName {
	case StrategyAuto:
		return "GORM AutoMigrate - Automatic schema migration based on struct definitions"
	case StrategyGoose:
		return "goose - Versioned SQL migration scripts embedded per dialect"
	default:
		return "Unknown migration strategy"
	}
}
