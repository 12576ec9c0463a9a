package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/walletscope/internal/pkg/validator"
)

func missingEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		// Act
		cfg, err := Load(missingEnv(t))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, 30*time.Second, cfg.RelayCacheTTL)
		assert.False(t, cfg.OTELEnabled)
		assert.Empty(t, cfg.RelayURL)
	})

	t.Run("should read environment variables", func(t *testing.T) {
		// Arrange
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("OTEL_ENABLED", "true")
		t.Setenv("HTTP_TIMEOUT", "5s")
		t.Setenv("RELAY_URL", "http://localhost:8787")
		t.Setenv("RELAY_EXTRA_HOSTS", "lcd.example.org,rpc.example.org")
		t.Setenv("RELAY_CACHE_TTL", "0s")
		t.Setenv("RELAY_REDIS_ADDR", "localhost:6379")
		t.Setenv("RELAY_REDIS_DB", "3")
		t.Setenv("ETHERSCAN_API_KEY", "key")
		t.Setenv("SOLANA_RPC_URL", "https://rpc.example.org")
		t.Setenv("CHAINS_FILE", "chains.yaml")

		// Act
		cfg, err := Load(missingEnv(t))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.OTELEnabled)
		assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, "http://localhost:8787", cfg.RelayURL)
		assert.Equal(t, []string{"lcd.example.org", "rpc.example.org"}, cfg.RelayExtraHosts)
		assert.Zero(t, cfg.RelayCacheTTL)
		assert.Equal(t, "localhost:6379", cfg.RelayRedisAddr)
		assert.Equal(t, 3, cfg.RelayRedisDB)
		assert.Equal(t, "key", cfg.EtherscanAPIKey)
		assert.Equal(t, "https://rpc.example.org", cfg.SolanaRPCURL)
		assert.Equal(t, "chains.yaml", cfg.ChainsFile)
	})

	t.Run("should load a dotenv file without overriding the environment", func(t *testing.T) {
		// Arrange
		file := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(file, []byte("SUBSCAN_API_KEY=from-file\nLOG_LEVEL=warn\n"), 0o600))
		t.Setenv("LOG_LEVEL", "error")
		t.Setenv("SUBSCAN_API_KEY", "")
		require.NoError(t, os.Unsetenv("SUBSCAN_API_KEY"))

		// Act
		cfg, err := Load(file)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.SubscanAPIKey)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("should reject malformed values", func(t *testing.T) {
		// Arrange
		t.Setenv("HTTP_TIMEOUT", "soon")

		// Act
		_, err := Load(missingEnv(t))

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode environment")
	})

	t.Run("should reject invalid settings", func(t *testing.T) {
		// Arrange
		t.Setenv("LOG_LEVEL", "loud")

		// Act
		_, err := Load(missingEnv(t))

		// Assert
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("should reject an unreadable dotenv file", func(t *testing.T) {
		// Act
		_, err := Load(t.TempDir())

		// Assert
		assert.Error(t, err)
	})
}
