package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration, loaded once in main.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GinMode  string `envconfig:"GIN_MODE" default:""`
	RedisURL string `envconfig:"REDIS_URL" default:"localhost:6379"`

	DBUser     string `envconfig:"DB_USER" default:"root"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBName     string `envconfig:"DB_NAME" default:"boost"`

	// PIX provider credentials. An empty webhook secret disables signature
	// verification (test environments only).
	PixBaseURL       string `envconfig:"PIX_BASE_URL" default:"https://api.pix-provider.com.br"`
	PixApiKey        string `envconfig:"PIX_API_KEY" default:""`
	PixWebhookSecret string `envconfig:"PIX_WEBHOOK_SECRET" default:""`

	// RefundTimeoutHours is the auto-refund sweeper cutoff. Zero disables the
	// sweeper entirely (deployment kill switch).
	RefundTimeoutHours int `envconfig:"REFUND_TIMEOUT_HOURS" default:"0"`

	MinWithdrawalAmount float64 `envconfig:"MIN_WITHDRAWAL_AMOUNT" default:"20.00"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// DSN builds the MySQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
