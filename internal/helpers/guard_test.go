package helpers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	t.Parallel()

	t.Run("passes through result", func(t *testing.T) {
		got, err := Guard(func() (int, error) { return 42, nil })
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})

	t.Run("passes through error", func(t *testing.T) {
		boom := errors.New("boom")
		got, err := Guard(func() (int, error) { return 7, boom })
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 7, got)
	})

	t.Run("recovers string panic", func(t *testing.T) {
		got, err := Guard(func() ([]string, error) { panic("linter not initialized") })
		require.ErrorIs(t, err, ErrPanic)
		assert.Contains(t, err.Error(), "linter not initialized")
		assert.Nil(t, got)
	})

	t.Run("recovers error panic", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Guard(func() (string, error) { panic(boom) })
		require.ErrorIs(t, err, ErrPanic)
		require.ErrorIs(t, err, boom)
	})

	t.Run("GuardErr", func(t *testing.T) {
		require.NoError(t, GuardErr(func() error { return nil }))
		err := GuardErr(func() error { panic("nope") })
		require.ErrorIs(t, err, ErrPanic)
	})
}
