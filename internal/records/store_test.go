package records

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/orderdesk/domain"
)

var baseTime = time.Date(2025, 7, 13, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newOrder(cid, customer string, created *time.Time) *domain.Order {
	amount := domain.MustMoney("159.00")
	return &domain.Order{
		CID:               cid,
		CustomerName:      customer,
		ProductVersion:    domain.VariantLingmaExclusive,
		DevScale:          10,
		PurchasedLicCount: 1,
		TotalAmount:       &amount,
		Status:            domain.OrderPending,
		CreateTime:        created,
	}
}

func at(offset time.Duration) *time.Time {
	t := baseTime.Add(offset)
	return &t
}

func ids(orders []*domain.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.CID
	}
	return out
}

func TestStore_CreateThenGet(t *testing.T) {
	s := New[*domain.Order](WithClock(fixedClock(baseTime)))

	order := newOrder("O1", "acme", nil)
	require.True(t, s.Create(order))

	got, ok := s.Get("O1")
	require.True(t, ok)
	require.NotNil(t, got.CreateTime)
	assert.True(t, got.CreateTime.Equal(baseTime))
	assert.Equal(t, order, got)
}

func TestStore_CreateKeepsCallerCreateTime(t *testing.T) {
	s := New[*domain.Order](WithClock(fixedClock(baseTime)))

	require.True(t, s.Create(newOrder("O1", "acme", at(-time.Hour))))

	got, _ := s.Get("O1")
	assert.True(t, got.CreateTime.Equal(baseTime.Add(-time.Hour)))
}

func TestStore_CreateDuplicateDoesNotOverwrite(t *testing.T) {
	s := New[*domain.Order]()

	require.True(t, s.Create(newOrder("O1", "acme", nil)))
	assert.False(t, s.Create(newOrder("O1", "globex", nil)))
	assert.False(t, s.Create(newOrder("O1", "initech", nil)))

	got, _ := s.Get("O1")
	assert.Equal(t, "acme", got.CustomerName)
	assert.Equal(t, 1, s.Len())
}

func TestStore_GetReturnsIsolatedCopy(t *testing.T) {
	s := New[*domain.Order]()
	order := newOrder("O1", "acme", nil)
	require.True(t, s.Create(order))

	order.CustomerName = "mutated after create"
	got, _ := s.Get("O1")
	got.CustomerName = "mutated after get"

	again, _ := s.Get("O1")
	assert.Equal(t, "acme", again.CustomerName)
}

func TestStore_UpdateMissingIsNoop(t *testing.T) {
	s := New[*domain.Order]()
	require.True(t, s.Create(newOrder("O1", "acme", nil)))

	assert.False(t, s.Update(newOrder("missing", "acme", nil)))
	assert.Equal(t, 1, s.Len())
	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestStore_UpdateReplacesWholeRecordAndStamps(t *testing.T) {
	now := baseTime
	s := New[*domain.Order](WithClock(func() time.Time { return now }))
	require.True(t, s.Create(newOrder("O1", "acme", nil)))

	now = baseTime.Add(time.Minute)
	replacement := newOrder("O1", "acme", at(0))
	replacement.Description = "renewal"
	replacement.Status = domain.OrderShipped
	require.True(t, s.Update(replacement))

	got, _ := s.Get("O1")
	assert.Equal(t, "renewal", got.Description)
	assert.Equal(t, domain.OrderShipped, got.Status)
	require.NotNil(t, got.UpdateTime)
	assert.True(t, got.UpdateTime.Equal(now))
}

func TestStore_UpdateKeepsStoredCreateTime(t *testing.T) {
	s := New[*domain.Order](WithClock(fixedClock(baseTime)))
	require.True(t, s.Create(newOrder("O1", "acme", nil)))

	require.True(t, s.Update(newOrder("O1", "acme", nil)))
	got, _ := s.Get("O1")
	require.NotNil(t, got.CreateTime)
	assert.True(t, got.CreateTime.Equal(baseTime))

	require.True(t, s.Update(newOrder("O1", "acme", at(time.Hour))))
	got, _ = s.Get("O1")
	assert.True(t, got.CreateTime.Equal(baseTime))
}

func TestStore_Delete(t *testing.T) {
	s := New[*domain.Order]()
	require.True(t, s.Create(newOrder("O1", "acme", nil)))

	assert.True(t, s.Delete("O1"))
	assert.False(t, s.Delete("O1"))
	_, ok := s.Get("O1")
	assert.False(t, ok)
}

func TestStore_ListAllOrdersNewestFirstNilsLast(t *testing.T) {
	s := New[*domain.Order]()
	s.Replace([]*domain.Order{
		newOrder("undated-1", "acme", nil),
		newOrder("old", "acme", at(-2*time.Hour)),
		newOrder("undated-2", "acme", nil),
		newOrder("new", "acme", at(time.Hour)),
		newOrder("mid", "acme", at(0)),
		newOrder("undated-3", "acme", nil),
	})

	assert.Equal(t,
		[]string{"new", "mid", "old", "undated-1", "undated-2", "undated-3"},
		ids(s.ListAll()))
}

func TestStore_ListByOwner(t *testing.T) {
	s := New[*domain.Order]()
	s.Replace([]*domain.Order{
		newOrder("a1", "acme", at(0)),
		newOrder("g1", "globex", at(time.Hour)),
		newOrder("a2", "acme", at(time.Hour)),
		newOrder("a3", "Acme", at(2*time.Hour)),
		newOrder("a4", "acme", nil),
	})

	assert.Equal(t, []string{"a2", "a1", "a4"}, ids(s.ListByOwner("acme")))
	assert.Empty(t, s.ListByOwner("nobody"))
	assert.NotNil(t, s.ListByOwner(""))
	assert.Empty(t, s.ListByOwner("   "))
}

func TestStore_ReplaceClearsPriorContents(t *testing.T) {
	s := New[*domain.Order]()
	require.True(t, s.Create(newOrder("stale", "acme", nil)))

	s.Replace([]*domain.Order{newOrder("fresh", "acme", nil)})

	_, ok := s.Get("stale")
	assert.False(t, ok)
	_, ok = s.Get("fresh")
	assert.True(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestStore_ListByCustomComparator(t *testing.T) {
	s := New[*domain.Order]()
	s.Replace([]*domain.Order{
		newOrder("x", "acme", nil),
		newOrder("y", "acme", nil),
	})
	got := s.ListBy(nil, TimeDesc(func(o *domain.Order) *time.Time { return o.PayTime }))
	assert.Equal(t, []string{"x", "y"}, ids(got))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[*domain.Order]()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				s.Create(newOrder(id, "acme", nil))
				if o, ok := s.Get(id); ok {
					o.Description = "touched"
					s.Update(o)
				}
				_ = s.ListByOwner("acme")
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 400, s.Len())
	for _, o := range s.ListAll() {
		assert.Equal(t, "touched", o.Description)
	}
}
