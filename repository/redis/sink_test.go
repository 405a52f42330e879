package redis

import (
	"context"
	"os"
	"testing"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/orderdesk/repository"
)

// Requires a disposable Redis; set ORDERDESK_TEST_REDIS_URL to run.
func newTestSink(t *testing.T) *Sink {
	t.Helper()
	url := os.Getenv("ORDERDESK_TEST_REDIS_URL")
	if url == "" {
		t.Skip("ORDERDESK_TEST_REDIS_URL not set")
	}
	opts, err := redislib.ParseURL(url)
	require.NoError(t, err)

	sink := NewSink(redislib.NewClient(opts), "orderdesk-test:"+t.Name()+":")
	ctx := context.Background()
	if err := sink.Ping(ctx); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = sink.client.Del(ctx, sink.key(repository.TableOrders), sink.key(repository.TableInfluences)).Err()
		_ = sink.Close()
	})
	return sink
}

func TestSink_ReplaceKeepsOrder(t *testing.T) {
	ctx := context.Background()
	orders := newTestSink(t).Orders()

	rows := []repository.OrderRow{
		{CID: "B", CustomerName: "globex", ProductVersion: "QODER", DevScale: 1, PurchasedLicCount: 1, TotalAmount: "140.00"},
		{CID: "A", CustomerName: "acme", ProductVersion: "QODER", DevScale: 1, PurchasedLicCount: 2, TotalAmount: "280.00"},
	}
	require.NoError(t, orders.Replace(ctx, rows))

	got, err := orders.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	require.NoError(t, orders.Replace(ctx, nil))
	got, err = orders.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
