// Package app wires configuration, storage and the authorizer for the CLI commands.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	permissionApp "warden/internal/application/permission"
	"warden/internal/domain/permission"
	"warden/internal/infrastructure/cache"
	"warden/internal/infrastructure/config"
	"warden/internal/infrastructure/database"
	permissionInfra "warden/internal/infrastructure/permission"
	"warden/internal/infrastructure/repository"
	"warden/internal/shared/db"
	"warden/internal/shared/logger"
)

var configPath string

// BindFlags registers the flags every subcommand shares.
func BindFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
}

// Bootstrap loads configuration, initializes the logger and opens the database.
func Bootstrap() (*config.Config, logger.Interface, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return cfg, logger.NewLogger(), nil
}

// Container holds the services a command needs.
type Container struct {
	Config     *config.Config
	Logger     logger.Interface
	DB         *gorm.DB
	Redis      *redis.Client
	Enforcer   *permissionInfra.Enforcer
	RoleRepo   permission.RoleRepository
	Authorizer *permissionApp.RoleAuthorizer
	Seeder     *permissionApp.Seeder
	PolicySync *permissionInfra.PolicySync
}

func NewContainer(ctx context.Context) (*Container, error) {
	cfg, log, err := Bootstrap()
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     database.Get(),
	}

	keyCache, err := c.initKeyCache(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Enforcer, err = permissionInfra.NewEnforcer(c.DB, cfg.Authorization.CasbinModelPath, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.RoleRepo = repository.NewRoleRepository(c.DB, log)
	c.Authorizer = permissionApp.NewRoleAuthorizer(
		c.RoleRepo,
		repository.NewPermissionRepository(c.DB),
		keyCache,
		c.Enforcer,
		db.NewTransactionManager(c.DB),
		permissionApp.Options{StrictPermissionKeys: cfg.Authorization.StrictPermissionKeys},
		log.Named("authorizer"),
	)
	c.Seeder = permissionApp.NewSeeder(c.Authorizer, c.RoleRepo, log.Named("seeder"))
	c.PolicySync = permissionInfra.NewPolicySync(c.DB, c.Enforcer, log.Named("policy"))

	return c, nil
}

// initKeyCache connects to Redis when it is enabled; otherwise every key
// lookup goes to the database.
func (c *Container) initKeyCache(ctx context.Context) (permission.PermissionKeyCache, error) {
	if !c.Config.Redis.Enabled {
		return cache.NopPermissionKeyCache{}, nil
	}

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.GetAddr(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	if err := c.Redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	c.Logger.Infow("Redis connection established successfully")

	return cache.NewRedisPermissionKeyCache(c.Redis, c.Config.Redis.KeyTTL(), c.Logger), nil
}

func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warnw("failed to close Redis client", "error", err)
		}
	}
	if err := database.Close(); err != nil {
		c.Logger.Warnw("failed to close database", "error", err)
	}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
