package services

import "testing"

func TestQuoteFreeShippingAtThreshold(t *testing.T) {
	rules := DefaultPricingRules()
	totals := rules.Quote([]PricedLine{{Quantity: 2, UnitPrice: 6000}}, 0)

	if totals.Subtotal != 12000 {
		t.Fatalf("expected subtotal 12000, got %d", totals.Subtotal)
	}
	if totals.Shipping != 0 {
		t.Fatalf("expected free shipping, got %d", totals.Shipping)
	}
	if totals.Total != 12000 {
		t.Fatalf("expected total 12000, got %d", totals.Total)
	}
}

func TestQuoteFlatFeeBelowThreshold(t *testing.T) {
	rules := DefaultPricingRules()
	totals := rules.Quote([]PricedLine{{Quantity: 1, UnitPrice: 8000}}, 0)

	if totals.Shipping != 999 {
		t.Fatalf("expected flat fee 999, got %d", totals.Shipping)
	}
	if totals.Total != 8999 {
		t.Fatalf("expected total 8999, got %d", totals.Total)
	}
}

func TestQuoteDiscountAppliesToSubtotalOnly(t *testing.T) {
	rules := DefaultPricingRules()
	totals := rules.Quote([]PricedLine{{Quantity: 1, UnitPrice: 20000}}, 20)

	if totals.Discount != 4000 {
		t.Fatalf("expected discount 4000, got %d", totals.Discount)
	}
	if totals.Shipping != 0 {
		t.Fatalf("shipping must be charged on the pre-discount subtotal, got %d", totals.Shipping)
	}
	if totals.Total != 16000 {
		t.Fatalf("expected total 16000, got %d", totals.Total)
	}
}

func TestQuoteDiscountRoundsHalfUp(t *testing.T) {
	rules := DefaultPricingRules()
	totals := rules.Quote([]PricedLine{{Quantity: 1, UnitPrice: 3333}}, 15)

	// 3333 * 15% = 499.95, rounds to 500.
	if totals.Discount != 500 {
		t.Fatalf("expected discount 500, got %d", totals.Discount)
	}
}

func TestQuoteEmptyCartHasNoShipping(t *testing.T) {
	rules := DefaultPricingRules()
	totals := rules.Quote(nil, 0)

	if totals.Subtotal != 0 || totals.Shipping != 0 || totals.Total != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestQuoteShippingKeptWhenDiscountDropsBelowThreshold(t *testing.T) {
	rules := DefaultPricingRules()
	totals := rules.Quote([]PricedLine{{Quantity: 1, UnitPrice: 10500}}, 10)

	// Subtotal 10500 clears the threshold even though the discounted amount
	// would not.
	if totals.Shipping != 0 {
		t.Fatalf("expected free shipping, got %d", totals.Shipping)
	}
	if totals.Total != 9450 {
		t.Fatalf("expected total 9450, got %d", totals.Total)
	}
}
