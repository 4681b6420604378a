package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	PendingStoreDB     = "db"
	PendingStoreRedis  = "redis"
	PendingStoreMemory = "memory"
)

type Config struct {
	Env             string             `json:"env" env:"APP_ENV"`
	Port            int                `json:"port" env:"APP_PORT"`
	JWTSecret       string             `json:"jwt_secret" env:"JWT_SECRET"`
	SessionTTLHours int                `json:"session_ttl_hours"`
	CORSAllowlist   []string           `json:"cors_allowlist"`
	LogConfig       logger.LogConfig   `json:"log_config"`
	Database        DatabaseConfig     `json:"database"`
	PendingStore    PendingStoreConfig `json:"pending_store"`
	Mail            MailConfig         `json:"mail"`
	OTP             OTPConfig          `json:"otp"`
	Sweep           SweepConfig        `json:"sweep"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver" env:"DB_DRIVER"`
	DSN      string `json:"dsn" env:"DB_DSN"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
	Path     string `json:"path"`
}

type PendingStoreConfig struct {
	Type             string `json:"type"`
	RedisURL         string `json:"redis_url" env:"REDIS_URL"`
	RetentionSeconds int64  `json:"retention_seconds"`
	MemorySize       int    `json:"memory_size"`
}

type MailConfig struct {
	Host           string `json:"host" env:"SMTP_HOST"`
	Port           int    `json:"port" env:"SMTP_PORT"`
	Username       string `json:"username" env:"SMTP_USER"`
	Password       string `json:"password" env:"SMTP_PASS"`
	From           string `json:"from" env:"MAIL_FROM"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type OTPConfig struct {
	TTLSeconds int64 `json:"ttl_seconds"`
}

type SweepConfig struct {
	Spec    string `json:"spec"`
	Disable bool   `json:"disable"`
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Load reads the JSON file at path (optional), then .env, then the process
// environment. Later sources win.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = EnvDevelopment
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.SessionTTLHours == 0 {
		cfg.SessionTTLHours = 24
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.PendingStore.Type == "" {
		cfg.PendingStore.Type = PendingStoreDB
	}
	if cfg.PendingStore.RetentionSeconds == 0 {
		cfg.PendingStore.RetentionSeconds = 3600
	}
	if cfg.PendingStore.MemorySize == 0 {
		cfg.PendingStore.MemorySize = 10000
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}
	if cfg.Mail.TimeoutSeconds == 0 {
		cfg.Mail.TimeoutSeconds = 10
	}
	if cfg.OTP.TTLSeconds == 0 {
		cfg.OTP.TTLSeconds = 300
	}
	if cfg.Sweep.Spec == "" {
		cfg.Sweep.Spec = "*/5 * * * *"
	}
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("database.dsn or database.host is required for postgres")
		}
	case "sqlite":
		if c.Database.DSN == "" && c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite")
	}
	switch c.PendingStore.Type {
	case PendingStoreDB, PendingStoreMemory:
	case PendingStoreRedis:
		if c.PendingStore.RedisURL == "" {
			return fmt.Errorf("pending_store.redis_url is required for redis store")
		}
	default:
		return fmt.Errorf("pending_store.type must be db, redis or memory")
	}
	return nil
}
