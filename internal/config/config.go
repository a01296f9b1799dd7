// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      int           `env:"PORT" envDefault:"8080"`
	DBPath    string        `env:"DB_PATH" envDefault:"./data/ledger.db"`
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`

	// Currency is the ISO code used when rendering amounts for display.
	Currency string `env:"CURRENCY" envDefault:"INR"`

	ActivityQueueSize int    `env:"ACTIVITY_QUEUE_SIZE" envDefault:"256"`
	MetricsPath       string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Load reads an optional .env file and parses the environment.
// Variables already set in the environment win over the file.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: %s: %w", f, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.ActivityQueueSize <= 0 {
		return nil, fmt.Errorf("config.Load: ACTIVITY_QUEUE_SIZE must be positive, got %d", cfg.ActivityQueueSize)
	}
	return &cfg, nil
}
