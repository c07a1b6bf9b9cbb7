// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port     string `env:"HEARTHTAB_PORT" envDefault:"8080"`
	DBPath   string `env:"HEARTHTAB_DB_PATH" envDefault:"hearthtab.db"`
	LogLevel string `env:"HEARTHTAB_LOG_LEVEL" envDefault:"info"`
	BaseURL  string `env:"HEARTHTAB_BASE_URL" envDefault:"http://localhost:8080"`

	HouseholdName string `env:"HEARTHTAB_HOUSEHOLD_NAME" envDefault:"Our household"`

	// Invites are disabled when the secret is empty.
	InviteSecret string        `env:"HEARTHTAB_INVITE_SECRET"`
	InviteTTL    time.Duration `env:"HEARTHTAB_INVITE_TTL" envDefault:"72h"`

	PostmarkToken string `env:"HEARTHTAB_POSTMARK_TOKEN"`
	EmailFrom     string `env:"HEARTHTAB_EMAIL_FROM"`

	Backup BackupConfig `envPrefix:"HEARTHTAB_BACKUP_"`
}

type BackupConfig struct {
	Endpoint  string        `env:"S3_ENDPOINT"`
	Bucket    string        `env:"S3_BUCKET"`
	Region    string        `env:"S3_REGION" envDefault:"auto"`
	AccessKey string        `env:"S3_ACCESS_KEY"`
	SecretKey string        `env:"S3_SECRET_KEY"`
	Prefix    string        `env:"S3_PREFIX" envDefault:"hearthtab"`
	Interval  time.Duration `env:"INTERVAL" envDefault:"24h"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
