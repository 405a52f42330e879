package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/internal/records"
	"github.com/fastygo/orderdesk/usecase"
)

type fakeSnapshots struct {
	mu     sync.Mutex
	tables []string
	err    error
}

func (f *fakeSnapshots) Flush(_ context.Context, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables = append(f.tables, table)
	return f.err
}

type event struct{ kind, op, outcome string }

type fakeObserver struct {
	events []event
}

func (f *fakeObserver) ObserveMutation(kind, op, outcome string) {
	f.events = append(f.events, event{kind, op, outcome})
}

var deleteClock = time.Date(2025, 7, 13, 18, 30, 5, 0, time.UTC)

func newUseCase(t *testing.T) (*UseCase, *fakeSnapshots, *fakeObserver) {
	t.Helper()
	snaps := &fakeSnapshots{}
	obs := &fakeObserver{}
	uc := New(records.New[*domain.Order](), snaps, obs, nil,
		WithClock(func() time.Time { return deleteClock }))
	return uc, snaps, obs
}

func qoderOrder(cid string, count int, amount string) *domain.Order {
	m := domain.MustMoney(amount)
	return &domain.Order{
		CID:               cid,
		CustomerName:      "acme",
		ProductVersion:    domain.VariantQoder,
		DevScale:          50,
		PurchasedLicCount: count,
		TotalAmount:       &m,
		Status:            domain.OrderPending,
	}
}

func requireCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, code), "want %s, got %v", code, err)
}

func TestOrderLifecycle_EndToEnd(t *testing.T) {
	ctx := context.Background()
	uc, snaps, _ := newUseCase(t)

	created, err := uc.CreateOrder(ctx, qoderOrder("O1", 3, "420.00"))
	require.NoError(t, err)
	require.NotNil(t, created.CreateTime)

	_, err = uc.CreateOrder(ctx, qoderOrder("O1", 3, "420.00"))
	requireCode(t, err, domain.ErrCodeConflict)

	completed := qoderOrder("O1", 3, "420.00")
	completed.Status = domain.OrderCompleted
	updated, err := uc.UpdateOrder(ctx, completed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCompleted, updated.Status)
	assert.True(t, updated.CreateTime.Equal(*created.CreateTime))

	_, err = uc.UpdateOrder(ctx, completed)
	requireCode(t, err, domain.ErrCodeForbidden)

	require.NoError(t, uc.DeleteOrder(ctx, "O1", "customer withdrew"))

	_, err = uc.GetOrder(ctx, "O1")
	requireCode(t, err, domain.ErrCodeNotFound)

	// create, update, delete each flushed once
	assert.Equal(t, []string{"orders", "orders", "orders"}, snaps.tables)
}

func TestCreateOrder_PricingMismatchCitesExpected(t *testing.T) {
	uc, snaps, obs := newUseCase(t)
	o := qoderOrder("O2", 2, "300.00")
	o.ProductVersion = domain.VariantLingmaExclusive

	_, err := uc.CreateOrder(context.Background(), o)
	requireCode(t, err, domain.ErrCodeInvalid)
	assert.Contains(t, err.Error(), "318.00")
	assert.Empty(t, snaps.tables)
	assert.Equal(t, []event{{"order", usecase.OperationCreate, usecase.OutcomeInvalid}}, obs.events)
}

func TestCreateOrder_DoesNotAliasCaller(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(t)
	in := qoderOrder("O3", 1, "140.00")

	_, err := uc.CreateOrder(ctx, in)
	require.NoError(t, err)
	in.CustomerName = "mutated"

	got, err := uc.GetOrder(ctx, "O3")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.CustomerName)
}

func TestUpdateOrder_Missing(t *testing.T) {
	uc, snaps, _ := newUseCase(t)
	_, err := uc.UpdateOrder(context.Background(), qoderOrder("nope", 1, "140.00"))
	requireCode(t, err, domain.ErrCodeNotFound)
	assert.Empty(t, snaps.tables)
}

func TestUpdateOrder_SkipsPricingCheck(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(t)
	_, err := uc.CreateOrder(ctx, qoderOrder("O4", 1, "140.00"))
	require.NoError(t, err)

	discounted := qoderOrder("O4", 1, "120.00")
	got, err := uc.UpdateOrder(ctx, discounted)
	require.NoError(t, err)
	assert.Equal(t, "120.00", got.TotalAmount.String())
}

func TestDeleteOrder_RequiresReason(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(t)
	_, err := uc.CreateOrder(ctx, qoderOrder("O5", 1, "140.00"))
	require.NoError(t, err)

	requireCode(t, uc.DeleteOrder(ctx, "O5", "   "), domain.ErrCodeInvalid)
	_, err = uc.GetOrder(ctx, "O5")
	assert.NoError(t, err)
}

func TestDeleteOrder_PaidOrderIsKept(t *testing.T) {
	ctx := context.Background()
	uc, snaps, obs := newUseCase(t)
	paid := qoderOrder("O6", 1, "140.00")
	paid.Status = domain.OrderPaid
	paid.Description = "prepaid"
	_, err := uc.CreateOrder(ctx, paid)
	require.NoError(t, err)

	requireCode(t, uc.DeleteOrder(ctx, "O6", "duplicate"), domain.ErrCodeForbidden)

	got, err := uc.GetOrder(ctx, "O6")
	require.NoError(t, err)
	assert.Equal(t, "prepaid", got.Description)
	assert.Len(t, snaps.tables, 1)
	assert.Equal(t, usecase.OutcomeForbidden, obs.events[len(obs.events)-1].outcome)
}

func TestDeleteOrder_Missing(t *testing.T) {
	uc, _, _ := newUseCase(t)
	requireCode(t, uc.DeleteOrder(context.Background(), "ghost", "cleanup"), domain.ErrCodeNotFound)
}

func TestAppendDeleteNote(t *testing.T) {
	assert.Equal(t, "[2025-07-13 18:30:05] order deleted: test order",
		appendDeleteNote("", deleteClock, "test order"))
	assert.Equal(t, "trial\n[2025-07-13 18:30:05] order deleted: test order",
		appendDeleteNote("trial", deleteClock, "test order"))
}

func TestDeleteOrder_StorageFailureAfterRemoval(t *testing.T) {
	ctx := context.Background()
	uc, snaps, _ := newUseCase(t)
	_, err := uc.CreateOrder(ctx, qoderOrder("O8", 1, "140.00"))
	require.NoError(t, err)

	snaps.err = errors.New("sink down")
	requireCode(t, uc.DeleteOrder(ctx, "O8", "wrong customer"), domain.ErrCodeStorage)

	_, err = uc.GetOrder(ctx, "O8")
	requireCode(t, err, domain.ErrCodeNotFound)
}

func TestCreateOrder_StorageFailureStillReturnsRecord(t *testing.T) {
	ctx := context.Background()
	uc, snaps, obs := newUseCase(t)
	snaps.err = errors.New("connection refused")

	created, err := uc.CreateOrder(ctx, qoderOrder("O9", 3, "420.00"))
	requireCode(t, err, domain.ErrCodeStorage)
	require.NotNil(t, created)
	assert.Equal(t, "O9", created.CID)

	got, getErr := uc.GetOrder(ctx, "O9")
	require.NoError(t, getErr)
	assert.Equal(t, "O9", got.CID)
	assert.Equal(t, usecase.OutcomeStorage, obs.events[0].outcome)
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	store := records.New[*domain.Order](records.WithClock(func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}))
	uc := New(store, nil, nil, nil)

	for _, cid := range []string{"A", "B", "C"} {
		o := qoderOrder(cid, 1, "140.00")
		if cid == "B" {
			o.CustomerName = "globex"
		}
		_, err := uc.CreateOrder(ctx, o)
		require.NoError(t, err)
	}

	all, err := uc.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B", "A"}, cids(all))

	acme, err := uc.ListOrdersByCustomer(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, cids(acme))

	blank, err := uc.ListOrdersByCustomer(ctx, "  ")
	require.NoError(t, err)
	assert.NotNil(t, blank)
	assert.Empty(t, blank)
}

func cids(orders []*domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.CID)
	}
	return out
}
