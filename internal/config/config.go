// Package config loads walletscope settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

// Config is the process configuration. Every field maps to an upper-case
// environment variable of the same name (e.g. RelayCacheTTL -> RELAY_CACHE_TTL).
type Config struct {
	LogLevel string `split_words:"true" default:"info" validate:"oneof=debug info warn error"`
	LogFile  string `split_words:"true"`

	OTELEnabled bool `envconfig:"OTEL_ENABLED" default:"false"`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s" validate:"gt=0"`

	RelayURL        string        `envconfig:"RELAY_URL" validate:"omitempty,url"`
	RelayExtraHosts []string      `split_words:"true"`
	RelayCacheTTL   time.Duration `envconfig:"RELAY_CACHE_TTL" default:"30s" validate:"gte=0"`

	RelayRedisAddr     string `split_words:"true"`
	RelayRedisUsername string `split_words:"true"`
	RelayRedisPassword string `split_words:"true"`
	RelayRedisDB       int    `envconfig:"RELAY_REDIS_DB" default:"0" validate:"gte=0"`

	EtherscanAPIKey string `envconfig:"ETHERSCAN_API_KEY"`
	SubscanAPIKey   string `envconfig:"SUBSCAN_API_KEY"`
	SolanaRPCURL    string `envconfig:"SOLANA_RPC_URL" validate:"omitempty,url"`
	HyperliquidURL  string `envconfig:"HYPERLIQUID_URL" validate:"omitempty,url"`
	ChainsFile      string `split_words:"true"`
}

// Load reads envFiles (".env" when none are given) into the environment,
// ignoring files that do not exist, then decodes and validates Config.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
