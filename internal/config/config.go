package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name    string `envconfig:"APP_NAME" default:"contas"`
		Port    int    `envconfig:"PORT" default:"8080"`
		BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"contas"`
	}

	Auth struct {
		Secret    string        `envconfig:"AUTH_SECRET" required:"true"`
		AccessTTL time.Duration `envconfig:"AUTH_ACCESS_TTL" default:"24h"`
		VerifyTTL time.Duration `envconfig:"AUTH_VERIFY_TTL" default:"48h"`
	}

	SMTP struct {
		Host     string `envconfig:"SMTP_HOST" default:"localhost"`
		Port     int    `envconfig:"SMTP_PORT" default:"587"`
		Username string `envconfig:"SMTP_USERNAME"`
		Password string `envconfig:"SMTP_PASSWORD"`
		From     string `envconfig:"SMTP_FROM" default:"no-reply@localhost"`
	}

	Receipts struct {
		Bucket          string `envconfig:"RECEIPTS_BUCKET" required:"true"`
		CredentialsFile string `envconfig:"RECEIPTS_CREDENTIALS_FILE"`
		MaxUploadBytes  int64  `envconfig:"RECEIPTS_MAX_UPLOAD_BYTES" default:"10485760"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
