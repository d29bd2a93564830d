package config

import (
	"testing"

	"github.com/nearlens/nearlens/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "mainnet", cfg.Network)
		assert.Equal(t, "https://tx.main.fastnear.com", cfg.APIBaseURL)
		assert.Equal(t, "https://rpc.mainnet.fastnear.com", cfg.RPCEndpoint)
		assert.Equal(t, 10, cfg.PageSize)
		assert.Equal(t, 5, cfg.BatchPages)
		assert.False(t, cfg.RedisEnabled)
	})

	t.Run("testnet endpoint defaults", func(t *testing.T) {
		t.Setenv("NEARLENS_NETWORK", "testnet")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "https://tx.test.fastnear.com", cfg.APIBaseURL)
		assert.Equal(t, "https://rpc.testnet.fastnear.com", cfg.RPCEndpoint)
	})

	t.Run("explicit endpoint wins over the network default", func(t *testing.T) {
		t.Setenv("NEARLENS_NETWORK", "testnet")
		t.Setenv("NEARLENS_API_BASE_URL", "http://localhost:8080")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	})

	t.Run("unknown network rejected", func(t *testing.T) {
		t.Setenv("NEARLENS_NETWORK", "betanet")

		_, err := Load()
		require.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("non-positive page size rejected", func(t *testing.T) {
		t.Setenv("NEARLENS_PAGE_SIZE", "0")

		_, err := Load()
		require.ErrorIs(t, err, validator.ErrValidationFailed)
	})
}
