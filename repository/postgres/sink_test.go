package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/orderdesk/repository"
)

func TestClampBatch(t *testing.T) {
	assert.Equal(t, 500, clampBatch(0))
	assert.Equal(t, 500, clampBatch(-3))
	assert.Equal(t, 500, clampBatch(10_000))
	assert.Equal(t, 2, clampBatch(2))
}

// Requires a migrated database; set ORDERDESK_TEST_DATABASE_URL to run.
func TestSink_ReplaceAcrossBatches(t *testing.T) {
	dsn := os.Getenv("ORDERDESK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("ORDERDESK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	sink := NewSink(pool, 2)
	defer sink.Close()
	require.NoError(t, sink.Ping(ctx))

	desc := "first"
	rows := []repository.OrderRow{
		{CID: "C", CustomerName: "acme", ProductVersion: "QODER", DevScale: 1, PurchasedLicCount: 1, TotalAmount: "140.00", Description: &desc},
		{CID: "A", CustomerName: "acme", ProductVersion: "QODER", DevScale: 1, PurchasedLicCount: 1, TotalAmount: "140.00"},
		{CID: "B", CustomerName: "acme", ProductVersion: "QODER", DevScale: 1, PurchasedLicCount: 1, TotalAmount: "140.00"},
	}
	require.NoError(t, sink.Orders().Replace(ctx, rows))

	got, err := sink.Orders().ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}
