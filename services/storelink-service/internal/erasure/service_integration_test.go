//go:build integration

package erasure

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/md-rashed-zaman/storelink/libs/testutil/containers"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/outbox"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/internal/storage"
	"github.com/md-rashed-zaman/storelink/services/storelink-service/migrations"
)

func TestShopRedactAgainstPostgres(t *testing.T) {
	ctx := context.Background()
	pool := containers.NewPostgres(t, migrations.InitSQL)
	onboarding := storage.NewRepository(pool)
	events := outbox.NewRepository(pool)
	svc := New(pool, onboarding, events, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := onboarding.Save(ctx, "demo.myshopify.com", storage.OnboardingInput{BusinessName: "Demo", ContactEmail: "a@demo.test"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteShopData(ctx, "demo.myshopify.com", "42"))
	require.NoError(t, svc.DeleteCustomerData(ctx, "demo.myshopify.com", "7", []string{"1"}))

	_, err = onboarding.Get(ctx, "demo.myshopify.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	pending, err := events.CountUnpublished(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	var records []outbox.Record
	require.NoError(t, pool.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		records, err = events.FetchUnpublished(ctx, tx, 10)
		if err != nil {
			return err
		}
		return events.MarkPublished(ctx, tx, []int64{records[0].ID, records[1].ID})
	}))
	require.Len(t, records, 2)
	assert.Equal(t, outbox.EventShopRedact, records[0].EventType)
	assert.Equal(t, outbox.EventCustomersRedact, records[1].EventType)
	assert.NotEmpty(t, records[0].EventID)

	pending, err = events.CountUnpublished(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}
