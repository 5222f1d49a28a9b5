package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/spf13/viper"
	"golang.org/x/exp/slog"
)

// Store drivers
const (
	StoreDriverMongoDB = "mongodb"
	StoreDriverMemory  = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server         ServerConfig
	MongoDB        MongoDBConfig
	JWT            JWTConfig
	Redis          RedisConfig
	Settlement     SettlementConfig
	Reconciliation ReconciliationConfig
	Archive        ArchiveConfig
	RateLimit      RateLimitConfig
	StoreDriver    string
	LogLevel       string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
}

// MongoDBConfig holds MongoDB-specific configuration. Transactions need a replica set.
type MongoDBConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// JWTConfig holds the settings used to verify admin bearer tokens
type JWTConfig struct {
	Secret     string
	AdminRoles []string
}

// RedisConfig holds the settlement lock store. An empty Addr selects in-process locks.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// SettlementConfig holds the default prize formulas and lock timings
type SettlementConfig struct {
	KillPoolPolicy string
	PerKillPolicy  string
	LockTTL        time.Duration
	LockWait       time.Duration
}

// ReconciliationConfig holds the repair job settings
type ReconciliationConfig struct {
	Enabled     bool
	Interval    time.Duration
	GracePeriod time.Duration
	BatchSize   int
}

// ArchiveConfig holds the object storage used for distribution receipts
type ArchiveConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// RateLimitConfig limits money-moving admin requests per client
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// Load loads configuration from environment variables and config files.
// Nested keys map to env vars with underscores, e.g. MONGODB_URI or SETTLEMENT_KILLPOOLPOLICY.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration. Every key needs a default so
// AutomaticEnv can find it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.AllowedHosts", []string{"http://localhost:3000"})
	v.SetDefault("Server.ShutdownTimeout", 15*time.Second)
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("MongoDB.Database", "netwin-tournament")
	v.SetDefault("MongoDB.ConnectTimeout", 10*time.Second)
	v.SetDefault("JWT.Secret", "")
	v.SetDefault("JWT.AdminRoles", []string{"admin", "super_admin"})
	v.SetDefault("Redis.Addr", "")
	v.SetDefault("Redis.Password", "")
	v.SetDefault("Redis.DB", 0)
	v.SetDefault("Redis.KeyPrefix", "settlement:")
	v.SetDefault("Settlement.KillPoolPolicy", string(models.DefaultSettlementPolicy.KillPool))
	v.SetDefault("Settlement.PerKillPolicy", string(models.DefaultSettlementPolicy.PerKill))
	v.SetDefault("Settlement.LockTTL", 30*time.Second)
	v.SetDefault("Settlement.LockWait", 10*time.Second)
	v.SetDefault("Reconciliation.Enabled", true)
	v.SetDefault("Reconciliation.Interval", 5*time.Minute)
	v.SetDefault("Reconciliation.GracePeriod", 30*time.Minute)
	v.SetDefault("Reconciliation.BatchSize", 200)
	v.SetDefault("Archive.Enabled", false)
	v.SetDefault("Archive.Bucket", "")
	v.SetDefault("Archive.Region", "auto")
	v.SetDefault("Archive.Endpoint", "")
	v.SetDefault("Archive.AccessKeyID", "")
	v.SetDefault("Archive.SecretAccessKey", "")
	v.SetDefault("Archive.Prefix", "settlement")
	v.SetDefault("RateLimit.RequestsPerSecond", 5.0)
	v.SetDefault("RateLimit.Burst", 10)
	v.SetDefault("StoreDriver", StoreDriverMongoDB)
	v.SetDefault("LogLevel", "info")
}

// DefaultPolicy returns the prize formulas used until an admin saves settlement settings
func (c *Config) DefaultPolicy() models.SettlementPolicy {
	return models.SettlementPolicy{
		KillPool: models.KillPoolPolicy(c.Settlement.KillPoolPolicy),
		PerKill:  models.PerKillPolicy(c.Settlement.PerKillPolicy),
	}
}

// SlogLevel parses LogLevel, falling back to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT secret is required"))
	}
	if err := c.DefaultPolicy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("settlement: %w", err))
	}
	switch c.StoreDriver {
	case StoreDriverMongoDB, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.StoreDriver))
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		errs = append(errs, errors.New("archive bucket is required when archiving is enabled"))
	}
	if c.Reconciliation.Enabled && c.Reconciliation.Interval <= 0 {
		errs = append(errs, errors.New("reconciliation interval must be positive"))
	}
	return errors.Join(errs...)
}
