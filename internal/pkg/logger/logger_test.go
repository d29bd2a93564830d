package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	t.Run("invalid level", func(t *testing.T) {
		err := Init("loud")
		assert.Error(t, err)
	})

	t.Run("valid level", func(t *testing.T) {
		require.NoError(t, Init("error"))

		// Logging after Init must not panic.
		Debug(t.Context(), "debug message", "k", "v")
		Info(t.Context(), "info message")
		Warn(t.Context(), "warn message")
		Error(t.Context(), "error message", "err", assert.AnError)
	})

	t.Run("second init is a no-op", func(t *testing.T) {
		require.NoError(t, Init("debug"))
	})
}
