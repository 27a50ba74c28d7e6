package services

import (
	domain "github.com/kitzone/api/internal/domain"
)

// PricingRules hold the cart pricing parameters. Amounts are in cents.
type PricingRules struct {
	Currency              string
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// DefaultPricingRules mirror the storefront defaults: EUR, free shipping from
// 100.00 and a 9.99 flat fee below that.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		Currency:              "EUR",
		FreeShippingThreshold: 10000,
		FlatShippingFee:       999,
	}
}

// PricedLine is one cart line resolved against the current product price.
type PricedLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   int64
	Size        string
}

// Quote prices a set of lines with an optional percentage discount. The
// discount applies to the subtotal only and is rounded half-up to a cent;
// shipping is charged on the pre-discount subtotal.
func (r PricingRules) Quote(lines []PricedLine, discountPercent int) domain.OrderTotals {
	var subtotal int64
	for _, line := range lines {
		subtotal += line.UnitPrice * int64(line.Quantity)
	}

	var discount int64
	if discountPercent > 0 {
		discount = (subtotal*int64(discountPercent) + 50) / 100
	}

	shipping := r.FlatShippingFee
	if subtotal >= r.FreeShippingThreshold {
		shipping = 0
	}
	if subtotal == 0 {
		shipping = 0
	}

	return domain.OrderTotals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    subtotal - discount + shipping,
	}
}
