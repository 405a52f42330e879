package repository

import "context"

// Table names shared by every sink backend.
const (
	TableOrders     = "orders"
	TableInfluences = "influences"
)

// OrderRow is the persisted layout of an order: one row per record, the
// amount as decimal text and timestamps as ISO-8601 text.
type OrderRow struct {
	CID               string  `json:"cid"`
	CustomerName      string  `json:"customer_name"`
	ProductVersion    string  `json:"product_version"`
	DevScale          int     `json:"dev_scale"`
	PurchasedLicCount int     `json:"purchased_lic_count"`
	TotalAmount       string  `json:"total_amount"`
	Status            int     `json:"status"`
	Description       *string `json:"description,omitempty"`
	CreateTime        *string `json:"create_time,omitempty"`
	PayTime           *string `json:"pay_time,omitempty"`
	UpdateTime        *string `json:"update_time,omitempty"`
}

func (r OrderRow) Key() string { return r.CID }

// InfluenceRow is the persisted layout of an influence event. ImageURLs holds
// the JSON-encoded list.
type InfluenceRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	EventTime  *string `json:"event_time,omitempty"`
	Link       *string `json:"link,omitempty"`
	Remark     *string `json:"remark,omitempty"`
	ImageURLs  *string `json:"image_urls,omitempty"`
	CreateTime *string `json:"create_time,omitempty"`
	UpdateTime *string `json:"update_time,omitempty"`
}

func (r InfluenceRow) Key() string { return r.ID }

// TableSink is a durable table that is only ever written wholesale.
type TableSink[Row any] interface {
	// Replace deletes every row and inserts rows in one batch.
	Replace(ctx context.Context, rows []Row) error
	// ReadAll returns every stored row.
	ReadAll(ctx context.Context) ([]Row, error)
}

// Sink is a storage backend holding both record tables.
type Sink interface {
	Orders() TableSink[OrderRow]
	Influences() TableSink[InfluenceRow]
	Driver() string
	Ping(ctx context.Context) error
	Close() error
}
