package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	API struct {
		URL     string        `envconfig:"API_URL" default:"http://localhost:8000"`
		Timeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`
	}

	Session struct {
		// TokenPath overrides where the bearer token is persisted.
		// Empty means the user config dir.
		TokenPath string `envconfig:"TOKEN_PATH"`
	}

	Stub struct {
		Port      int    `envconfig:"STUB_PORT" default:"8000"`
		JWTSecret string `envconfig:"STUB_JWT_SECRET" default:"dev-only-secret"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
