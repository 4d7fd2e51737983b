package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"dispatch"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisAddr          string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword      string `env:"REDIS_PASSWORD"`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	EventChannelPrefix string `env:"EVENT_CHANNEL_PREFIX" envDefault:"dispatch"`

	BaseEarning      decimal.Decimal `env:"BASE_EARNING" envDefault:"30"`
	PerKmEarning     decimal.Decimal `env:"PER_KM_EARNING" envDefault:"5"`
	AverageSpeedKmph float64         `env:"AVERAGE_SPEED_KMPH" envDefault:"25"`

	OrderCacheTTL      time.Duration `env:"ORDER_CACHE_TTL" envDefault:"30s"`
	ReassignSchedule   string        `env:"REASSIGN_SCHEDULE" envDefault:"*/10 * * * * *"`
	StaleDeliveryAfter time.Duration `env:"STALE_DELIVERY_AFTER" envDefault:"2h"`
	StaleSchedule      string        `env:"STALE_SCHEDULE" envDefault:"@every 5m"`
	JobTimeout         time.Duration `env:"JOB_TIMEOUT" envDefault:"30s"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// LoadConfig reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.BaseEarning.IsNegative() || cfg.PerKmEarning.IsNegative() {
		return Config{}, errors.New("earning rates must not be negative")
	}
	if cfg.AverageSpeedKmph <= 0 {
		return Config{}, errors.New("AVERAGE_SPEED_KMPH must be positive")
	}
	return cfg, nil
}

// DSN is the postgres connection string for gorm.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
