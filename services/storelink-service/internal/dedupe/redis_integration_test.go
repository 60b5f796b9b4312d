//go:build integration

package dedupe

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/storelink/libs/testutil/containers"
)

func TestRedisStoreClaim(t *testing.T) {
	ctx := context.Background()
	rdb := containers.NewRedis(t)

	require.NoError(t, ReadyCheck(rdb)(ctx))

	store := NewRedisStore(rdb, time.Minute)
	first, err := store.Claim(ctx, "delivery-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.Claim(ctx, "delivery-1")
	require.NoError(t, err)
	assert.False(t, again)

	ttl, err := rdb.TTL(ctx, "storelink:webhook:delivery-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	_, err = store.Claim(ctx, "  ")
	assert.Error(t, err)
}
