package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredString(t *testing.T) {
	t.Setenv("STORELINK_TEST_REQUIRED", "  ")
	_, err := RequiredString("STORELINK_TEST_REQUIRED")
	require.Error(t, err)

	t.Setenv("STORELINK_TEST_REQUIRED", "value")
	v, err := RequiredString("STORELINK_TEST_REQUIRED")
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestPort(t *testing.T) {
	t.Setenv("STORELINK_TEST_PORT", "70000")
	_, err := Port("STORELINK_TEST_PORT", "8090")
	require.Error(t, err)

	t.Setenv("STORELINK_TEST_PORT", "")
	p, err := Port("STORELINK_TEST_PORT", "8090")
	require.NoError(t, err)
	assert.Equal(t, "8090", p)
}

func TestBoolIntDuration(t *testing.T) {
	t.Setenv("STORELINK_TEST_BOOL", "Yes")
	assert.True(t, Bool("STORELINK_TEST_BOOL", false))
	t.Setenv("STORELINK_TEST_BOOL", "nope")
	assert.False(t, Bool("STORELINK_TEST_BOOL", true))

	t.Setenv("STORELINK_TEST_INT", "-3")
	assert.Equal(t, 7, Int("STORELINK_TEST_INT", 7))
	t.Setenv("STORELINK_TEST_INT", "12")
	assert.Equal(t, 12, Int("STORELINK_TEST_INT", 7))

	t.Setenv("STORELINK_TEST_DURATION", "30")
	assert.Equal(t, 30*time.Second, Duration("STORELINK_TEST_DURATION", time.Second))
	t.Setenv("STORELINK_TEST_DURATION", "1500ms")
	assert.Equal(t, 1500*time.Millisecond, Duration("STORELINK_TEST_DURATION", time.Second))
	t.Setenv("STORELINK_TEST_DURATION", "garbage")
	assert.Equal(t, time.Second, Duration("STORELINK_TEST_DURATION", time.Second))
}

func TestLoadDotenvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STORELINK_TEST_DOTENV=from-file\nSTORELINK_TEST_DOTENV_NEW=fresh\n"), 0o600))

	t.Setenv("STORELINK_TEST_DOTENV", "from-env")
	t.Setenv("STORELINK_TEST_DOTENV_NEW", "")
	require.NoError(t, os.Unsetenv("STORELINK_TEST_DOTENV_NEW"))

	require.NoError(t, LoadDotenv(path))
	assert.Equal(t, "from-env", os.Getenv("STORELINK_TEST_DOTENV"))
	assert.Equal(t, "fresh", os.Getenv("STORELINK_TEST_DOTENV_NEW"))

	require.NoError(t, LoadDotenv(filepath.Join(dir, "missing.env")))
}
