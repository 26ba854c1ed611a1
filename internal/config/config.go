package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"alcyxob/workout-tracker/internal/analytics"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	GinMode         string        `mapstructure:"gin_mode"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "mongo" or "memory"
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
	// Transactions need a replica set; disable for a standalone mongod.
	Transactions bool `mapstructure:"transactions"`
}

type S3Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	ExportURLExpiry time.Duration `mapstructure:"export_url_expiry"`
}

// JWTConfig holds the secret used to verify bearer tokens.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level         string `mapstructure:"level"`
	File          string `mapstructure:"file"`
	Stdout        bool   `mapstructure:"stdout"`
	JSON          bool   `mapstructure:"json"`
	Environment   string `mapstructure:"environment"`
	SentryEnabled bool   `mapstructure:"sentry_enabled"`
	SentryDSN     string `mapstructure:"sentry_dsn"`
}

// RedisConfig enables rate limiting of the public share endpoint.
// An empty address disables it.
type RedisConfig struct {
	Address         string `mapstructure:"address"`
	Password        string `mapstructure:"password"`
	ShareRatePerMin int    `mapstructure:"share_rate_per_min"`
}

type AnalyticsConfig struct {
	DefaultFormula string        `mapstructure:"default_formula"`
	LookupCacheMB  int           `mapstructure:"lookup_cache_mb"`
	LookupCacheTTL time.Duration `mapstructure:"lookup_cache_ttl"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "workout_tracker")
	v.SetDefault("database.transactions", true)
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.export_url_expiry", "15m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.environment", "development")
	v.SetDefault("redis.share_rate_per_min", 30)
	v.SetDefault("analytics.default_formula", "epley")
	v.SetDefault("analytics.lookup_cache_mb", 8)
	v.SetDefault("analytics.lookup_cache_ttl", "10m")
	v.SetDefault("metrics.namespace", "workout_tracker")
	v.SetDefault("metrics.subsystem", "api")
}

// LoadConfig reads configuration from file or environment variables.
// Nested keys map to env vars with underscores, e.g. server.address -> SERVER_ADDRESS.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	setDefaults(v)

	// A missing config file is fine; defaults and env vars still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var err error
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			err = multierr.Append(err, errors.New("database.uri is required for the mongo driver"))
		}
		if c.Database.Name == "" {
			err = multierr.Append(err, errors.New("database.name is required for the mongo driver"))
		}
	case DriverMemory:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	if c.JWT.Secret == "" {
		err = multierr.Append(err, errors.New("jwt.secret is required"))
	}
	if c.S3.Enabled && c.S3.BucketName == "" {
		err = multierr.Append(err, errors.New("s3.bucket_name is required when s3 is enabled"))
	}
	if c.Log.SentryEnabled && c.Log.SentryDSN == "" {
		err = multierr.Append(err, errors.New("log.sentry_dsn is required when sentry is enabled"))
	}
	if c.Redis.Address != "" && c.Redis.ShareRatePerMin <= 0 {
		err = multierr.Append(err, errors.New("redis.share_rate_per_min must be positive"))
	}
	if _, ferr := analytics.ParseFormula(c.Analytics.DefaultFormula); ferr != nil {
		err = multierr.Append(err, fmt.Errorf("analytics.default_formula: %w", ferr))
	}
	if c.Analytics.LookupCacheMB <= 0 {
		err = multierr.Append(err, errors.New("analytics.lookup_cache_mb must be positive"))
	}
	return err
}
