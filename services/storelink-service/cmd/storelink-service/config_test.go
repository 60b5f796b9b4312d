package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/storelink")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("COMPLIANCE_HANDLER_TIMEOUT", "")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "2023-10", cfg.AdminAPIVersion)
	assert.Equal(t, 4*time.Second, cfg.HandlerTimeout)
	assert.Equal(t, 24*time.Hour, cfg.DedupeTTL)
	assert.Equal(t, int64(1<<20), cfg.BodyLimit)
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("SHOPIFY_API_SECRET", "")

	_, err := loadConfig()
	assert.ErrorContains(t, err, "SHOPIFY_API_SECRET")
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("COMPLIANCE_HANDLER_TIMEOUT", "750ms")
	t.Setenv("PORT", "9000")

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.HandlerTimeout)
	assert.Equal(t, "9000", cfg.Port)
}
