package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("garbage"), 0o600))

	v := NewValidator(10 * 1024 * 1024)

	t.Run("valid document", func(t *testing.T) {
		got := v.ValidateFile(fixture)
		assert.True(t, got.Valid, got.Message)
		assert.Equal(t, 2, got.Pages)
	})

	t.Run("garbage", func(t *testing.T) {
		got := v.ValidateFile(garbage)
		assert.False(t, got.Valid)
		assert.NotEmpty(t, got.Message)
	})

	t.Run("missing", func(t *testing.T) {
		got := v.ValidateFile(filepath.Join(dir, "nope.pdf"))
		assert.False(t, got.Valid)
		assert.Contains(t, got.Message, "does not exist")
	})

	t.Run("empty path", func(t *testing.T) {
		assert.False(t, v.ValidateFile("").Valid)
	})
}

func TestValidator_ValidateBytes(t *testing.T) {
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)

	pages, err := NewValidator(int64(len(data))).ValidateBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)

	_, err = NewValidator(10).ValidateBytes(data)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = NewValidator(10).ValidateBytes(nil)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}
