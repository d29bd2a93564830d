// Package config loads runtime configuration from NEARLENS_* environment
// variables and derives network-dependent endpoint defaults.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/nearlens/nearlens/internal/pkg/validator"
)

const envPrefix = "nearlens"

// Config carries every runtime setting.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Network  string `envconfig:"NETWORK" default:"mainnet" validate:"oneof=mainnet testnet"`

	// endpoint overrides; blank means the network default applies
	APIBaseURL  string `envconfig:"API_BASE_URL" validate:"omitempty,url"`
	RPCEndpoint string `envconfig:"RPC_ENDPOINT" validate:"omitempty,url"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	PageSize   int `envconfig:"PAGE_SIZE" default:"10" validate:"gt=0"`
	BatchPages int `envconfig:"BATCH_PAGES" default:"5" validate:"gt=0"`

	RedisEnabled  bool   `envconfig:"REDIS_ENABLED"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB"`

	TelemetryEnabled bool `envconfig:"TELEMETRY_ENABLED"`
}

// Load reads, defaults, and validates the configuration.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL(cfg.Network)
	}
	if cfg.RPCEndpoint == "" {
		cfg.RPCEndpoint = defaultRPCEndpoint(cfg.Network)
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultAPIBaseURL(network string) string {
	if network == "testnet" {
		return "https://tx.test.fastnear.com"
	}
	return "https://tx.main.fastnear.com"
}

func defaultRPCEndpoint(network string) string {
	if network == "testnet" {
		return "https://rpc.testnet.fastnear.com"
	}
	return "https://rpc.mainnet.fastnear.com"
}
