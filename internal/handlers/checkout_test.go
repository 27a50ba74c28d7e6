package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/services"
)

func newCheckoutRouter(svc services.CheckoutService) chi.Router {
	handler := NewCheckoutHandlers(nil, svc)
	router := chi.NewRouter()
	handler.Routes(router)
	return router
}

func checkoutBody() []byte {
	payload, _ := json.Marshal(map[string]any{
		"shippingAddress": map[string]any{
			"street":     "ул. Витоша 15",
			"city":       "София",
			"postalCode": "1000",
		},
		"paymentMethod": "card",
		"discountCode":  "SUMMER10",
	})
	return payload
}

func TestCheckoutHandlers_SubmitCreatesOrder(t *testing.T) {
	svc := &stubCheckoutService{resp: handlerOrder("ord_1", "user-1", domain.OrderStatusPending)}
	router := newCheckoutRouter(svc)

	req := authenticate(httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(checkoutBody())), "user-1")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.cmd.UserID != "user-1" {
		t.Fatalf("expected command scoped to user-1, got %q", svc.cmd.UserID)
	}
	if svc.cmd.PaymentMethod != domain.PaymentMethodCard || svc.cmd.DiscountCode != "SUMMER10" {
		t.Fatalf("unexpected command: %+v", svc.cmd)
	}
	if svc.cmd.ShippingAddr.Street != "ул. Витоша 15" || svc.cmd.ShippingAddr.PostalCode != "1000" {
		t.Fatalf("unexpected address: %+v", svc.cmd.ShippingAddr)
	}
	var decoded struct {
		Order orderPayload `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Order.Status != "pending" {
		t.Fatalf("expected a pending order, got %q", decoded.Order.Status)
	}
}

func TestCheckoutHandlers_SubmitRequiresAuth(t *testing.T) {
	router := newCheckoutRouter(&stubCheckoutService{})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(checkoutBody()))
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestCheckoutHandlers_SubmitErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "empty cart", err: services.ErrCartEmpty, expected: http.StatusBadRequest},
		{name: "bad address", err: services.ErrCheckoutInvalidInput, expected: http.StatusBadRequest},
		{name: "vanished product", err: services.ErrCheckoutProductUnavailable, expected: http.StatusConflict},
		{name: "expired discount", err: services.ErrDiscountExpired, expected: http.StatusBadRequest},
		{name: "exhausted discount", err: services.ErrDiscountLimitReached, expected: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newCheckoutRouter(&stubCheckoutService{err: tc.err})

			req := authenticate(httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(checkoutBody())), "user-1")
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			if resp.Code != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, resp.Code)
			}
		})
	}
}
