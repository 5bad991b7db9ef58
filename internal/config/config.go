package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Log           LogConfig           `mapstructure:"log"`
	Configuration ConfigurationConfig `mapstructure:"configuration"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"`         // "development" or "production"
	CORSOrigins []string `mapstructure:"cors_origins"` // "*" allows any origin
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`            // "sqlite", "postgres" or "mysql"
	DSN             string `mapstructure:"dsn"`               // Connection string
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`    // Maximum idle connections (Postgres/MySQL)
	MaxOpenConns    int    `mapstructure:"max_open_conns"`    // Maximum open connections (Postgres/MySQL)
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // Connection max lifetime in minutes (Postgres/MySQL)
	LogLevel        string `mapstructure:"log_level"`         // GORM log level; falls back to log.level
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"` // Secret for JWT signing
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string `mapstructure:"format"` // "json" or "text"
	Level  string `mapstructure:"level"`  // "debug", "info", "warn", "error"
}

// ConfigurationConfig controls the configuration store and its HTTP routes
type ConfigurationConfig struct {
	RegisterRoutes           bool             `mapstructure:"register_routes"`
	RoutePrefix              string           `mapstructure:"route_prefix"`
	AllowCaseInsensitiveKeys bool             `mapstructure:"allow_case_insensitive_keys"` // lower-case keys before storage and lookup
	AllowedKeys              []string         `mapstructure:"allowed_keys"`                // empty means any key may be written
	Model                    string           `mapstructure:"model"`                       // "configuration" or "versioned"
	Hooks                    []string         `mapstructure:"hooks"`                       // hook names, invoked in order
	Pagination               PaginationConfig `mapstructure:"pagination"`
	Valkey                   ValkeyConfig     `mapstructure:"valkey"`
}

// PaginationConfig holds defaults for the pagination hook
type PaginationConfig struct {
	DefaultPerPage int `mapstructure:"default_per_page"`
	MaxPerPage     int `mapstructure:"max_per_page"`
}

// ValkeyConfig holds settings for the valkey change-event hook
type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`    // e.g., "localhost:6379"
	Channel string `mapstructure:"channel"` // pub/sub channel for change events
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom reads configuration from the given file, or from the default
// search path when file is empty.
func LoadFrom(file string) (*Config, error) {
	v := viper.New()

	// Set defaults for local development
	v.SetDefault("server.port", 8470)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./modelconfig.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60) // 60 minutes
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.level", "info")
	v.SetDefault("configuration.register_routes", true)
	v.SetDefault("configuration.route_prefix", "api")
	v.SetDefault("configuration.allow_case_insensitive_keys", true)
	v.SetDefault("configuration.allowed_keys", []string{})
	v.SetDefault("configuration.model", "configuration")
	v.SetDefault("configuration.hooks", []string{})
	v.SetDefault("configuration.pagination.default_per_page", 15)
	v.SetDefault("configuration.pagination.max_per_page", 100)
	v.SetDefault("configuration.valkey.addr", "localhost:6379")
	v.SetDefault("configuration.valkey.channel", "modelconfig:changes")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/modelconfig/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, using defaults
	}

	// Environment variables override
	v.SetEnvPrefix("MODELCONFIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Configuration.RoutePrefix = strings.Trim(cfg.Configuration.RoutePrefix, "/")

	return &cfg, nil
}
