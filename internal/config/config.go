package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Database DatabaseConfig `env:",prefix=DB_"`
	Logger   LoggerConfig   `env:",prefix=LOG_"`
	Voucher  VoucherConfig  `env:",prefix=VOUCHER_"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string `env:"HOST,default=0.0.0.0"`
	Port int    `env:"PORT,default=8080"`
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string `env:"HOST,default=localhost"`
	Port            int    `env:"PORT,default=5432"`
	User            string `env:"USER,default=postgres"`
	Password        string `env:"PASSWORD"`
	Database        string `env:"NAME,default=voucherpool"`
	MaxConnections  int    `env:"MAX_CONNECTIONS,default=25"`
	MinConnections  int    `env:"MIN_CONNECTIONS,default=5"`
	MaxConnLifetime int    `env:"MAX_CONN_LIFETIME,default=300"` // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string `env:"LEVEL,default=info"`
	Format string `env:"FORMAT,default=json"` // "json" or "console"
}

// VoucherConfig holds voucher code generation configuration.
type VoucherConfig struct {
	CodePrefix       string `env:"CODE_PREFIX,default=VP"`
	CodeSuffixLength int    `env:"CODE_SUFFIX_LENGTH,default=8"`
	// MaxCodeAttempts bounds per-record code regeneration when a generated
	// code collides with an existing one.
	MaxCodeAttempts int `env:"MAX_CODE_ATTEMPTS,default=5"`
}

// Load loads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Voucher.CodeSuffixLength < 6 {
		return fmt.Errorf("voucher code suffix length must be at least 6")
	}

	if c.Voucher.MaxCodeAttempts < 1 {
		return fmt.Errorf("voucher max code attempts must be at least 1")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
