package domain

import "time"

// ProductVariant identifies the licensed product an order is for.
type ProductVariant string

const (
	VariantLingmaExclusive  ProductVariant = "LINGMA_EXCLUSIVE"
	VariantLingmaEnterprise ProductVariant = "LINGMA_ENTERPRISE"
	VariantQoder            ProductVariant = "QODER"
)

// ProductVariants lists every supported variant.
var ProductVariants = []ProductVariant{
	VariantLingmaExclusive,
	VariantLingmaEnterprise,
	VariantQoder,
}

func (v ProductVariant) Valid() bool {
	switch v {
	case VariantLingmaExclusive, VariantLingmaEnterprise, VariantQoder:
		return true
	}
	return false
}

// OrderStatus is persisted as its integer code.
type OrderStatus int

const (
	OrderPending   OrderStatus = 0
	OrderPaid      OrderStatus = 1
	OrderShipped   OrderStatus = 2
	OrderCompleted OrderStatus = 3
	OrderCancelled OrderStatus = 4
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "pending"
	case OrderPaid:
		return "paid"
	case OrderShipped:
		return "shipped"
	case OrderCompleted:
		return "completed"
	case OrderCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Order is a software-license order keyed by the customer-assigned CID.
type Order struct {
	CID               string         `json:"cid" yaml:"cid"`
	CustomerName      string         `json:"customerName" yaml:"customerName"`
	ProductVersion    ProductVariant `json:"productVersion" yaml:"productVersion"`
	DevScale          int            `json:"devScale" yaml:"devScale"`
	PurchasedLicCount int            `json:"purchasedLicCount" yaml:"purchasedLicCount"`
	TotalAmount       *Money         `json:"totalAmount" yaml:"totalAmount"`
	Status            OrderStatus    `json:"status" yaml:"status"`
	Description       string         `json:"description,omitempty" yaml:"description,omitempty"`
	CreateTime        *time.Time     `json:"createTime,omitempty" yaml:"createTime,omitempty"`
	PayTime           *time.Time     `json:"payTime,omitempty" yaml:"payTime,omitempty"`
	UpdateTime        *time.Time     `json:"updateTime,omitempty" yaml:"updateTime,omitempty"`
}

func (o *Order) RecordID() string { return o.CID }

func (o *Order) OwnerKey() string { return o.CustomerName }

func (o *Order) Created() *time.Time { return o.CreateTime }

// IsCompleted reports the terminal status.
func (o *Order) IsCompleted() bool {
	return o != nil && o.Status == OrderCompleted
}

// IsPaid reports the status that forbids deletion.
func (o *Order) IsPaid() bool {
	return o != nil && o.Status == OrderPaid
}

func (o *Order) StampCreated(now time.Time) {
	if o.CreateTime == nil {
		o.CreateTime = &now
	}
}

func (o *Order) SetCreated(t *time.Time) { o.CreateTime = t }

func (o *Order) StampUpdated(now time.Time) {
	o.UpdateTime = &now
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	out := *o
	out.TotalAmount = cloneMoney(o.TotalAmount)
	out.CreateTime = cloneTime(o.CreateTime)
	out.PayTime = cloneTime(o.PayTime)
	out.UpdateTime = cloneTime(o.UpdateTime)
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneMoney(m *Money) *Money {
	if m == nil {
		return nil
	}
	v := *m
	return &v
}
