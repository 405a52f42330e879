package rules

import (
	"github.com/fastygo/orderdesk/domain"
)

// unitPrices is the per-licence price list. It is static process-wide
// configuration; nothing mutates it after init.
var unitPrices = map[domain.ProductVariant]domain.Money{
	domain.VariantLingmaExclusive:  domain.MustMoney("159.00"),
	domain.VariantLingmaEnterprise: domain.MustMoney("79.00"),
	domain.VariantQoder:            domain.MustMoney("140.00"),
}

// UnitPrice returns the per-licence price of variant.
func UnitPrice(variant domain.ProductVariant) (domain.Money, bool) {
	price, ok := unitPrices[variant]
	return price, ok
}

// ExpectedTotal computes unitPrice(variant) × count exactly.
func ExpectedTotal(variant domain.ProductVariant, count int) (domain.Money, error) {
	price, ok := UnitPrice(variant)
	if !ok {
		return domain.Money{}, domain.Invalidf("invalid product version: %s", variant)
	}
	if count <= 0 {
		return domain.Money{}, domain.Invalidf("purchasedLicCount must be a positive integer, got %d", count)
	}
	total, err := price.MulInt(int64(count))
	if err != nil {
		return domain.Money{}, domain.WrapError(domain.ErrCodeInternal, "price computation failed", err)
	}
	return total, nil
}
