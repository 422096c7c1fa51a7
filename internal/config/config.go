package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Admin     AdminConfig     `yaml:"admin"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection and transaction settings
type DatabaseConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Database      string `yaml:"database"`
	SSLMode       string `yaml:"ssl_mode"`
	TxTimeoutMS   int    `yaml:"tx_timeout_ms"`
	LockTimeoutMS int    `yaml:"lock_timeout_ms"`
	MaxRetries    int    `yaml:"max_retries"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// StorageConfig contains photo upload settings
type StorageConfig struct {
	UploadDir    string   `yaml:"upload_dir"`
	BaseURL      string   `yaml:"base_url"` // Prefix of returned references, "/uploads" by default
	MaxFileSize  int64    `yaml:"max_file_size_mb"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// RedisConfig enables the cross-process change bus. Empty Addr keeps signals in-process.
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	OverdueReport string `yaml:"overdue_report"`
	StatsSnapshot string `yaml:"stats_snapshot"`
}

type DashboardConfig struct {
	DueSoonDays int `yaml:"due_soon_days"`
}

// AdminConfig holds the account created by -seed-admin
type AdminConfig struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Storage
	if val := os.Getenv("UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_CHANNEL"); val != "" {
		c.Redis.Channel = val
	}

	// Admin seed
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.Admin.Email = val
	}
	if val := os.Getenv("ADMIN_PASSWORD"); val != "" {
		c.Admin.Password = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.TxTimeoutMS <= 0 {
		c.Database.TxTimeoutMS = 5000
	}
	if c.Database.LockTimeoutMS < 0 {
		return fmt.Errorf("lock timeout must not be negative")
	}
	if c.Database.LockTimeoutMS == 0 {
		c.Database.LockTimeoutMS = 2000
	}
	if c.Database.LockTimeoutMS >= c.Database.TxTimeoutMS {
		return fmt.Errorf("lock timeout (%dms) must be shorter than tx timeout (%dms)", c.Database.LockTimeoutMS, c.Database.TxTimeoutMS)
	}
	if c.Database.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	if c.Database.MaxRetries == 0 {
		c.Database.MaxRetries = 3
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 20
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60 * 12
	}

	// Storage validation
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("upload directory is required")
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = "/uploads"
	}
	if c.Storage.MaxFileSize <= 0 {
		c.Storage.MaxFileSize = 10
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	}

	if c.Redis.Channel == "" {
		c.Redis.Channel = "rental-changes"
	}

	// Scheduler defaults
	if c.Scheduler.OverdueReport == "" {
		c.Scheduler.OverdueReport = "0 0 8 * * *" // 8 AM UTC
	}
	if c.Scheduler.StatsSnapshot == "" {
		c.Scheduler.StatsSnapshot = "0 55 23 * * *" // 11:55 PM UTC
	}

	if c.Dashboard.DueSoonDays <= 0 {
		c.Dashboard.DueSoonDays = 3
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) TxTimeout() time.Duration {
	return time.Duration(c.Database.TxTimeoutMS) * time.Millisecond
}

func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Database.LockTimeoutMS) * time.Millisecond
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiry) * time.Minute
}

func (c *Config) DueSoonWindow() time.Duration {
	return time.Duration(c.Dashboard.DueSoonDays) * 24 * time.Hour
}
