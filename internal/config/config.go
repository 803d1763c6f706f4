// Package config loads the demo CLI configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	AppName         string        `env:"APP_NAME" envDefault:"Nommy"`
	APIBaseURL      string        `env:"API_URL" envDefault:"https://app.nommy.mx/api"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	StorePath       string        `env:"STORE_PATH" envDefault:"employee-session.db"`
	StorePassphrase string        `env:"STORE_PASSPHRASE,required"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (*Config, error) {
	// .env is optional, mainly for local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] env.Parse")
	}
	return &cfg, nil
}
