package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/platform/auth"
	"github.com/kitzone/api/internal/services"
)

func handlerOrder(id, userID string, status domain.OrderStatus) services.Order {
	created := time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)
	return services.Order{
		ID:            id,
		Number:        "KZ-2026-000042",
		UserID:        userID,
		Status:        status,
		Totals:        domain.OrderTotals{Subtotal: 12000, Shipping: 0, Total: 12000},
		Currency:      "EUR",
		PaymentMethod: domain.PaymentMethodCard,
		ShippingAddress: domain.Address{
			Street:     "ул. Витоша 15",
			City:       "София",
			PostalCode: "1000",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func newOrderRouter(svc services.OrderService) chi.Router {
	handler := NewOrderHandlers(nil, svc)
	router := chi.NewRouter()
	handler.Routes(router)
	return router
}

func authenticate(req *http.Request, uid string, roles ...string) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UID: uid, Roles: roles}))
}

func TestOrderHandlers_CustomerActionCancel(t *testing.T) {
	svc := &stubOrderService{actionResp: handlerOrder("ord_1", "user-1", domain.OrderStatusCancelled)}
	router := newOrderRouter(svc)

	payload, _ := json.Marshal(map[string]any{"orderId": "ord_1", "action": "cancel"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/action", bytes.NewReader(payload)), "user-1")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var decoded orderActionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !decoded.OK {
		t.Fatal("expected ok true")
	}
	if decoded.Status != "cancelled" {
		t.Fatalf("expected status cancelled, got %q", decoded.Status)
	}
	if svc.actionCmd.UserID != "user-1" || svc.actionCmd.OrderID != "ord_1" || svc.actionCmd.Action != "cancel" {
		t.Fatalf("unexpected command: %+v", svc.actionCmd)
	}
}

func TestOrderHandlers_CustomerActionCarriesReturnMessage(t *testing.T) {
	svc := &stubOrderService{actionResp: handlerOrder("ord_1", "user-1", domain.OrderStatusReturnRequested)}
	router := newOrderRouter(svc)

	payload, _ := json.Marshal(map[string]any{"orderId": "ord_1", "action": "return", "message": "грешен размер"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/action", bytes.NewReader(payload)), "user-1")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.actionCmd.Message != "грешен размер" {
		t.Fatalf("expected message forwarded, got %q", svc.actionCmd.Message)
	}
}

func TestOrderHandlers_CustomerActionRequiresAuth(t *testing.T) {
	svc := &stubOrderService{}
	router := newOrderRouter(svc)

	payload, _ := json.Marshal(map[string]any{"orderId": "ord_1", "action": "cancel"})
	req := httptest.NewRequest(http.MethodPost, "/action", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if svc.actionCmd.OrderID != "" {
		t.Fatal("expected service to remain untouched")
	}
}

func TestOrderHandlers_CustomerActionStatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "missing order", err: services.ErrOrderNotFound, expected: http.StatusNotFound},
		{name: "policy rejection", err: services.ErrOrderActionNotAllowed, expected: http.StatusBadRequest},
		{name: "bad input", err: services.ErrOrderInvalidInput, expected: http.StatusBadRequest},
		{name: "backend failure", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newOrderRouter(&stubOrderService{actionErr: tc.err})

			payload, _ := json.Marshal(map[string]any{"orderId": "ord_1", "action": "cancel"})
			req := authenticate(httptest.NewRequest(http.MethodPost, "/action", bytes.NewReader(payload)), "user-1")
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			if resp.Code != tc.expected {
				t.Fatalf("expected %d, got %d", tc.expected, resp.Code)
			}
			var decoded orderActionResponse
			if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if decoded.OK {
				t.Fatal("expected ok false")
			}
			if decoded.Message == "" {
				t.Fatal("expected an explanatory message")
			}
		})
	}
}

func TestOrderHandlers_CustomerActionRejectsEmptyBody(t *testing.T) {
	router := newOrderRouter(&stubOrderService{})

	req := authenticate(httptest.NewRequest(http.MethodPost, "/action", nil), "user-1")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestOrderHandlers_ListMineScopesToCaller(t *testing.T) {
	svc := &stubOrderService{mineResp: domain.CursorPage[services.Order]{
		Items:         []services.Order{handlerOrder("ord_1", "user-1", domain.OrderStatusPending)},
		NextPageToken: "next",
	}}
	router := newOrderRouter(svc)

	req := authenticate(httptest.NewRequest(http.MethodGet, "/", nil), "user-1")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.mineUser != "user-1" {
		t.Fatalf("expected listing scoped to user-1, got %q", svc.mineUser)
	}
	var decoded struct {
		Orders        []orderPayload `json:"orders"`
		NextPageToken string         `json:"nextPageToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded.Orders) != 1 || decoded.Orders[0].ID != "ord_1" {
		t.Fatalf("unexpected orders payload: %+v", decoded.Orders)
	}
	if decoded.NextPageToken != "next" {
		t.Fatalf("expected next page token, got %q", decoded.NextPageToken)
	}
}

func TestOrderHandlers_GetOrderHidesForeignOrders(t *testing.T) {
	svc := &stubOrderService{getResp: handlerOrder("ord_1", "someone-else", domain.OrderStatusPending)}
	router := newOrderRouter(svc)

	req := authenticate(httptest.NewRequest(http.MethodGet, "/ord_1", nil), "user-1")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestOrderHandlers_GetOrderReturnsOwn(t *testing.T) {
	svc := &stubOrderService{getResp: handlerOrder("ord_1", "user-1", domain.OrderStatusShipped)}
	router := newOrderRouter(svc)

	req := authenticate(httptest.NewRequest(http.MethodGet, "/ord_1", nil), "user-1")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var decoded struct {
		Order orderPayload `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Order.Status != "shipped" || decoded.Order.Number != "KZ-2026-000042" {
		t.Fatalf("unexpected order payload: %+v", decoded.Order)
	}
}
