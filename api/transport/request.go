package transport

import (
	"strings"
	"time"

	"github.com/fastygo/orderdesk/domain"
)

// OrderRequest is the order body accepted by create and update. Timestamps
// are text so that the legacy layouts are accepted alongside RFC 3339.
type OrderRequest struct {
	CID               string        `json:"cid"`
	CustomerName      string        `json:"customerName"`
	ProductVersion    string        `json:"productVersion"`
	DevScale          int           `json:"devScale"`
	PurchasedLicCount int           `json:"purchasedLicCount"`
	TotalAmount       *domain.Money `json:"totalAmount"`
	Status            int           `json:"status"`
	Description       string        `json:"description"`
	CreateTime        string        `json:"createTime"`
	PayTime           string        `json:"payTime"`
}

// ToDomain converts the request into an order. Server-managed fields
// (updateTime) are never taken from the client.
func (r OrderRequest) ToDomain() (*domain.Order, error) {
	created, err := optionalTime("createTime", r.CreateTime)
	if err != nil {
		return nil, err
	}
	paid, err := optionalTime("payTime", r.PayTime)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		CID:               r.CID,
		CustomerName:      r.CustomerName,
		ProductVersion:    domain.ProductVariant(r.ProductVersion),
		DevScale:          r.DevScale,
		PurchasedLicCount: r.PurchasedLicCount,
		TotalAmount:       r.TotalAmount,
		Status:            domain.OrderStatus(r.Status),
		Description:       r.Description,
		CreateTime:        created,
		PayTime:           paid,
	}, nil
}

// InfluenceRequest is the influence event body accepted by create and update.
type InfluenceRequest struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Status    string   `json:"status"`
	EventTime string   `json:"eventTime"`
	Link      string   `json:"link"`
	Remark    string   `json:"remark"`
	ImageURLs []string `json:"imageUrls"`
}

func (r InfluenceRequest) ToDomain() (*domain.InfluenceEvent, error) {
	eventTime, err := optionalTime("eventTime", r.EventTime)
	if err != nil {
		return nil, err
	}
	return &domain.InfluenceEvent{
		ID:        r.ID,
		Name:      r.Name,
		Type:      domain.InfluenceType(r.Type),
		Status:    domain.InfluenceStatus(r.Status),
		EventTime: eventTime,
		Link:      r.Link,
		Remark:    r.Remark,
		ImageURLs: r.ImageURLs,
	}, nil
}

func optionalTime(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := domain.ParseTimestamp(raw)
	if err != nil {
		return nil, domain.Invalidf("%s: unrecognised timestamp %q", field, raw)
	}
	return &t, nil
}
