package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fastygo/orderdesk/domain"
	"github.com/fastygo/orderdesk/repository"
)

// FieldError describes a column that could not be decoded and was left empty.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

// Codec converts between in-memory records and persisted rows. Decode returns
// per-field problems that were tolerated, and an error when the row cannot be
// used at all.
type Codec[R any, Row any] interface {
	Encode(rec R) Row
	Decode(row Row) (R, []FieldError, error)
	Key(row Row) string
}

// OrderCodec maps orders to repository.OrderRow.
type OrderCodec struct{}

func (OrderCodec) Key(row repository.OrderRow) string { return row.CID }

func (OrderCodec) Encode(o *domain.Order) repository.OrderRow {
	row := repository.OrderRow{
		CID:               o.CID,
		CustomerName:      o.CustomerName,
		ProductVersion:    string(o.ProductVersion),
		DevScale:          o.DevScale,
		PurchasedLicCount: o.PurchasedLicCount,
		Status:            int(o.Status),
		Description:       optionalString(o.Description),
		CreateTime:        formatTime(o.CreateTime),
		PayTime:           formatTime(o.PayTime),
		UpdateTime:        formatTime(o.UpdateTime),
	}
	if o.TotalAmount != nil {
		row.TotalAmount = o.TotalAmount.String()
	}
	return row
}

func (OrderCodec) Decode(row repository.OrderRow) (*domain.Order, []FieldError, error) {
	amount, err := domain.ParseMoney(row.TotalAmount)
	if err != nil {
		return nil, nil, fmt.Errorf("order %s: total_amount: %w", row.CID, err)
	}

	var issues []FieldError
	o := &domain.Order{
		CID:               row.CID,
		CustomerName:      row.CustomerName,
		ProductVersion:    domain.ProductVariant(row.ProductVersion),
		DevScale:          row.DevScale,
		PurchasedLicCount: row.PurchasedLicCount,
		TotalAmount:       &amount,
		Status:            domain.OrderStatus(row.Status),
		Description:       deref(row.Description),
		CreateTime:        parseField("create_time", row.CreateTime, &issues),
		PayTime:           parseField("pay_time", row.PayTime, &issues),
		UpdateTime:        parseField("update_time", row.UpdateTime, &issues),
	}
	return o, issues, nil
}

// InfluenceCodec maps influence events to repository.InfluenceRow.
type InfluenceCodec struct{}

func (InfluenceCodec) Key(row repository.InfluenceRow) string { return row.ID }

func (InfluenceCodec) Encode(e *domain.InfluenceEvent) repository.InfluenceRow {
	urls := e.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	// a []string always marshals
	encoded, _ := json.Marshal(urls)
	images := string(encoded)

	return repository.InfluenceRow{
		ID:         e.ID,
		Name:       e.Name,
		Type:       string(e.Type),
		Status:     string(e.Status),
		EventTime:  formatTime(e.EventTime),
		Link:       optionalString(e.Link),
		Remark:     optionalString(e.Remark),
		ImageURLs:  &images,
		CreateTime: formatTime(e.CreateTime),
		UpdateTime: formatTime(e.UpdateTime),
	}
}

func (InfluenceCodec) Decode(row repository.InfluenceRow) (*domain.InfluenceEvent, []FieldError, error) {
	var issues []FieldError
	e := &domain.InfluenceEvent{
		ID:         row.ID,
		Name:       row.Name,
		Type:       domain.InfluenceType(row.Type),
		Status:     domain.InfluenceStatus(row.Status),
		EventTime:  parseField("event_time", row.EventTime, &issues),
		Link:       deref(row.Link),
		Remark:     deref(row.Remark),
		ImageURLs:  []string{},
		CreateTime: parseField("create_time", row.CreateTime, &issues),
		UpdateTime: parseField("update_time", row.UpdateTime, &issues),
	}
	if e.Status == "" {
		e.Status = domain.InfluencePlanned
	}
	if raw := deref(row.ImageURLs); raw != "" {
		var urls []string
		if err := json.Unmarshal([]byte(raw), &urls); err != nil {
			issues = append(issues, FieldError{Field: "image_urls", Value: raw, Err: err})
		} else if urls != nil {
			e.ImageURLs = urls
		}
	}
	return e, issues, nil
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := domain.FormatTimestamp(*t)
	return &s
}

func parseField(field string, raw *string, issues *[]FieldError) *time.Time {
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := domain.ParseTimestamp(*raw)
	if err != nil {
		*issues = append(*issues, FieldError{Field: field, Value: *raw, Err: err})
		return nil
	}
	return &t
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
