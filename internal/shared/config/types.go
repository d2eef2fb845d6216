package config

import (
	"fmt"
	"time"
)

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns the driver specific data source name.
func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf("%s?_foreign_keys=on", d.Path)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
	// ShowSourceAll attaches source locations to every level, not only warn and error.
	ShowSourceAll bool `mapstructure:"show_source_all"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// KeyTTLMinutes bounds how long a cached permission-key list may live.
	KeyTTLMinutes int `mapstructure:"key_ttl_minutes"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (r *RedisConfig) KeyTTL() time.Duration {
	return time.Duration(r.KeyTTLMinutes) * time.Minute
}

type AuthorizationConfig struct {
	// StrictPermissionKeys rejects synchronization when a desired key has no permission.
	StrictPermissionKeys bool   `mapstructure:"strict_permission_keys"`
	CasbinModelPath      string `mapstructure:"casbin_model_path"`
	SeedFile             string `mapstructure:"seed_file"`
}

type MigrationConfig struct {
	Strategy string `mapstructure:"strategy"`
}
