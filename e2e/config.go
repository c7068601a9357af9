package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Base URL of a running pipeline, e.g. http://localhost:8080.
	// Empty skips the whole suite.
	APIAddr string `envconfig:"API_ADDR"`

	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
