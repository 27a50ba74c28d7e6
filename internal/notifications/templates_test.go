package notifications

import (
	"strings"
	"testing"
	"time"

	domain "github.com/kitzone/api/internal/domain"
)

func sampleOrder() domain.Order {
	code := "SUMMER10"
	return domain.Order{
		ID:     "ord_01hxyzabcdef",
		Number: "KZ-2026-000042",
		UserID: "user-1",
		Status: domain.OrderStatusPending,
		Totals: domain.OrderTotals{
			Subtotal: 12000,
			Discount: 1200,
			Shipping: 999,
			Total:    11799,
		},
		Currency:      "EUR",
		DiscountCode:  &code,
		PaymentMethod: domain.PaymentMethodCard,
		ShippingAddress: domain.Address{
			FullName:   "Иван Петров",
			Street:     "ул. Витоша 1",
			City:       "София",
			PostalCode: "1000",
			Country:    "BG",
		},
		Items: []domain.OrderItem{
			{ProductName: "Домакински екип 2026", Quantity: 2, UnitPrice: 6000, Size: "L"},
		},
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestOrderConfirmationIncludesReferenceAndTotals(t *testing.T) {
	subject, html := OrderConfirmation(sampleOrder())

	if !strings.Contains(subject, "KZ-2026-000042") {
		t.Fatalf("subject missing order number: %q", subject)
	}
	if !strings.Contains(html, "Карта") {
		t.Fatalf("body missing payment label: %q", html)
	}
	if !strings.Contains(html, FormatAmount(11799)) {
		t.Fatalf("body missing total: %q", html)
	}
	if !strings.Contains(html, "Домакински екип 2026") {
		t.Fatalf("body missing item name: %q", html)
	}
}

func TestOrderReferenceFallsBackToIDPrefix(t *testing.T) {
	order := sampleOrder()
	order.Number = ""
	if got := OrderReference(order); got != "ORD_01HX" {
		t.Fatalf("expected uppercased id prefix, got %q", got)
	}
}

func TestReturnRequestedCarriesCustomerMessage(t *testing.T) {
	subject, html := ReturnRequested(sampleOrder(), domain.Profile{}, "Размерът не пасва")

	if !strings.Contains(subject, "KZ-2026-000042") {
		t.Fatalf("subject missing reference: %q", subject)
	}
	if !strings.Contains(html, "user-1") {
		t.Fatalf("body missing user id fallback: %q", html)
	}
	if !strings.Contains(html, "Размерът не пасва") {
		t.Fatalf("body missing customer message: %q", html)
	}
}

func TestReturnRequestedUsesProfileNameAndEmail(t *testing.T) {
	profile := domain.Profile{UID: "user-1", FullName: "Иван Петров", Email: "ivan@example.com"}
	_, html := ReturnRequested(sampleOrder(), profile, "")

	if !strings.Contains(html, "Иван Петров") {
		t.Fatalf("body missing customer name: %q", html)
	}
	if !strings.Contains(html, "ivan@example.com") {
		t.Fatalf("body missing customer email: %q", html)
	}
}

func TestReturnRequestedOmitsEmptyMessage(t *testing.T) {
	_, html := ReturnRequested(sampleOrder(), domain.Profile{}, "   ")
	if strings.Contains(html, "blockquote") {
		t.Fatalf("empty message should omit the quote block: %q", html)
	}
}

func TestContactMessageEscapesBody(t *testing.T) {
	_, html := ContactMessage("Мария", "maria@example.com", "<script>alert(1)</script>")
	if strings.Contains(html, "<script>") {
		t.Fatalf("body must be escaped: %q", html)
	}
	if !strings.Contains(html, "maria@example.com") {
		t.Fatalf("body missing sender email: %q", html)
	}
}

func TestPaymentMethodLabels(t *testing.T) {
	if got := PaymentMethodLabel(domain.PaymentMethodCash); got != "В брой" {
		t.Fatalf("unexpected cash label %q", got)
	}
	if got := PaymentMethodLabel(domain.PaymentMethodCard); got != "Карта" {
		t.Fatalf("unexpected card label %q", got)
	}
}
