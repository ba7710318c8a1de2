package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Mail     MailConfig     `yaml:"mail"`
	Media    MediaConfig    `yaml:"media"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig contains the transient token cache settings. An empty
// address selects the in-memory fallback store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig contains token issuing settings
type AuthConfig struct {
	Secret             string `yaml:"secret"`
	AccessTTLMinutes   int    `yaml:"access_ttl_minutes"`
	RefreshTTLHours    int    `yaml:"refresh_ttl_hours"`
	ResetTokenTTLHours int    `yaml:"reset_token_ttl_hours"`
}

// MailConfig contains SMTP settings for password-reset mail
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	ResetURL string `yaml:"reset_url"`
	// DevExposeToken echoes the reset token in the HTTP response when mail
	// cannot be delivered. Must stay off in production.
	DevExposeToken bool `yaml:"dev_expose_token"`
}

// MediaConfig contains uploaded-file storage settings
type MediaConfig struct {
	Root string `yaml:"root"`
}

// CleanupConfig contains retention settings for physical deletion
type CleanupConfig struct {
	DailyRunEnabled  bool   `yaml:"daily_run_enabled"`
	DailyRunTime     string `yaml:"daily_run_time"`
	RetentionDays    int    `yaml:"retention_days"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			AllowOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Type: "mysql",
		},
		Auth: AuthConfig{
			AccessTTLMinutes:   60,
			RefreshTTLHours:    24 * 7,
			ResetTokenTTLHours: 1,
		},
		Mail: MailConfig{
			From:     "noreply@kvadrat.kg",
			ResetURL: "http://localhost:3000/reset-password",
		},
		Media: MediaConfig{
			Root: "./media",
		},
		Cleanup: CleanupConfig{
			DailyRunEnabled:  false,
			DailyRunTime:     "03:00",
			RetentionDays:    90,
			MaxDeletionCount: 10000,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// AccessTTL returns the access token lifetime as a duration
func (c *AuthConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

// RefreshTTL returns the refresh token lifetime as a duration
func (c *AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTTLHours) * time.Hour
}

// ResetTokenTTL returns the password-reset token lifetime as a duration
func (c *AuthConfig) ResetTokenTTL() time.Duration {
	return time.Duration(c.ResetTokenTTLHours) * time.Hour
}
