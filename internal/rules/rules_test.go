package rules

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/orderdesk/domain"
)

func money(s string) *domain.Money {
	m := domain.MustMoney(s)
	return &m
}

func validOrder() *domain.Order {
	return &domain.Order{
		CID:               "12345",
		CustomerName:      "customer-a",
		ProductVersion:    domain.VariantLingmaExclusive,
		DevScale:          10,
		PurchasedLicCount: 2,
		TotalAmount:       money("318.00"),
		Status:            domain.OrderPending,
	}
}

func validInfluence() *domain.InfluenceEvent {
	at := time.Date(2025, 8, 1, 14, 0, 0, 0, time.UTC)
	return &domain.InfluenceEvent{
		ID:        "INF-1",
		Name:      "Partner SA training",
		Type:      domain.InfluenceSATraining,
		Status:    domain.InfluencePlanned,
		EventTime: &at,
		Link:      "https://example.com/events/sa-training",
	}
}

func requireInvalid(t *testing.T, err error, contains string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "expected INVALID, got %v", err)
	assert.Contains(t, err.Error(), contains)
}

func TestUnitPrice(t *testing.T) {
	price, ok := UnitPrice(domain.VariantLingmaExclusive)
	require.True(t, ok)
	assert.Equal(t, "159.00", price.String())

	for _, v := range domain.ProductVariants {
		_, ok := UnitPrice(v)
		assert.True(t, ok, "variant %s must be priced", v)
	}

	_, ok = UnitPrice("UNKNOWN")
	assert.False(t, ok)
}

func TestExpectedTotal(t *testing.T) {
	tests := []struct {
		variant domain.ProductVariant
		count   int
		want    string
	}{
		{domain.VariantLingmaExclusive, 1, "159.00"},
		{domain.VariantLingmaExclusive, 2, "318.00"},
		{domain.VariantLingmaExclusive, 10, "1590.00"},
		{domain.VariantQoder, 3, "420.00"},
		{domain.VariantLingmaEnterprise, 7, "553.00"},
	}
	for _, tt := range tests {
		got, err := ExpectedTotal(tt.variant, tt.count)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.String(), "%s x %d", tt.variant, tt.count)
	}

	_, err := ExpectedTotal(domain.VariantQoder, 0)
	requireInvalid(t, err, "positive")
}

func TestValidateOrder_PricingIsExact(t *testing.T) {
	o := validOrder()
	require.NoError(t, ValidateOrder(o, ModeCreate))

	o.TotalAmount = money("318")
	require.NoError(t, ValidateOrder(o, ModeCreate))

	o.PurchasedLicCount = 1
	o.TotalAmount = money("159.00")
	require.NoError(t, ValidateOrder(o, ModeCreate))

	o.PurchasedLicCount = 2
	o.TotalAmount = money("300.00")
	requireInvalid(t, ValidateOrder(o, ModeCreate), "expected 318.00")

	o.TotalAmount = money("318.001")
	requireInvalid(t, ValidateOrder(o, ModeCreate), "expected 318.00")
}

func TestValidateOrder_UpdateSkipsPricing(t *testing.T) {
	o := validOrder()
	o.TotalAmount = money("300.00")
	assert.NoError(t, ValidateOrder(o, ModeUpdate))
}

func TestValidateOrder_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(o *domain.Order)
		contains string
	}{
		{"missing cid", func(o *domain.Order) { o.CID = " " }, "cid is required"},
		{"missing customer", func(o *domain.Order) { o.CustomerName = "" }, "customerName is required"},
		{"missing variant", func(o *domain.Order) { o.ProductVersion = "" }, "productVersion is required"},
		{"missing amount", func(o *domain.Order) { o.TotalAmount = nil }, "totalAmount is required"},
		{"unknown variant", func(o *domain.Order) { o.ProductVersion = "LINGMA_FREE" }, "LINGMA_FREE"},
		{"unknown status", func(o *domain.Order) { o.Status = 9 }, "invalid status: 9"},
		{"zero dev scale", func(o *domain.Order) { o.DevScale = 0 }, "devScale"},
		{"negative lic count", func(o *domain.Order) { o.PurchasedLicCount = -1 }, "purchasedLicCount"},
		{"zero amount", func(o *domain.Order) { o.TotalAmount = money("0") }, "greater than 0"},
		{"long description", func(o *domain.Order) { o.Description = strings.Repeat("x", 2001) }, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(o)
			requireInvalid(t, ValidateOrder(o, ModeUpdate), tt.contains)
		})
	}
}

func TestValidateInfluence(t *testing.T) {
	require.NoError(t, ValidateInfluence(validInfluence()))

	tests := []struct {
		name     string
		mutate   func(e *domain.InfluenceEvent)
		contains string
	}{
		{"missing id", func(e *domain.InfluenceEvent) { e.ID = "" }, "id is required"},
		{"missing name", func(e *domain.InfluenceEvent) { e.Name = "\t" }, "name is required"},
		{"missing type", func(e *domain.InfluenceEvent) { e.Type = "" }, "type is required"},
		{"missing status", func(e *domain.InfluenceEvent) { e.Status = "" }, "status is required"},
		{"missing event time", func(e *domain.InfluenceEvent) { e.EventTime = nil }, "eventTime is required"},
		{"bad type", func(e *domain.InfluenceEvent) { e.Type = "WEBINAR" }, "WEBINAR"},
		{"bad status", func(e *domain.InfluenceEvent) { e.Status = "DONE" }, "DONE"},
		{"bad link", func(e *domain.InfluenceEvent) { e.Link = "not a url" }, "link"},
		{"long name", func(e *domain.InfluenceEvent) { e.Name = strings.Repeat("n", 201) }, "name must not exceed"},
		{"long remark", func(e *domain.InfluenceEvent) { e.Remark = strings.Repeat("r", 2001) }, "remark"},
		{"too many images", func(e *domain.InfluenceEvent) { e.ImageURLs = make([]string, 11) }, "images"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validInfluence()
			tt.mutate(e)
			requireInvalid(t, ValidateInfluence(e), tt.contains)
		})
	}
}

func TestValidateInfluence_Bounds(t *testing.T) {
	e := validInfluence()
	e.Name = strings.Repeat("名", 200)
	e.Remark = strings.Repeat("r", 2000)
	e.ImageURLs = make([]string, 10)
	e.Link = "  "
	assert.NoError(t, ValidateInfluence(e))
}

func TestValidURL(t *testing.T) {
	for _, ok := range []string{
		"https://example.com",
		"http://www.example.com/path/to/page",
		"example.org/a-b_c",
		"https://docs.example.com:8443/guide?lang=zh#setup",
	} {
		assert.True(t, ValidURL(ok), ok)
	}
	for _, bad := range []string{"not a url", "ftp://example.com", "https://", "localhost"} {
		assert.False(t, ValidURL(bad), bad)
	}
}
