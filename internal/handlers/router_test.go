package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/services"
)

func TestNewRouter_HealthEndpoints(t *testing.T) {
	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /readyz, got %d", resp.Code)
	}
}

func TestNewRouter_UnconfiguredGroupAnswers501(t *testing.T) {
	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", resp.Code)
	}
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	router := NewRouter()

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	var decoded struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Error != "route_not_found" {
		t.Fatalf("unexpected error code: %q", decoded.Error)
	}
}

func TestNewRouter_MountsConfiguredGroups(t *testing.T) {
	catalog := &stubCatalogService{listResp: domain.CursorPage[services.Product]{}}
	orders := &stubOrderService{mineResp: domain.CursorPage[services.Order]{}}

	router := NewRouter(
		WithProductRoutes(NewCatalogHandlers(nil, catalog, nil).Routes),
		WithOrderRoutes(NewOrderHandlers(nil, orders).Routes),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from products, got %d: %s", resp.Code, resp.Body.String())
	}

	req = authenticate(httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil), "user-1")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from orders, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestNewRouter_CheckoutGroupMiddleware(t *testing.T) {
	var seen bool
	marker := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = true
			next.ServeHTTP(w, r)
		})
	}

	router := NewRouter(WithCheckoutRoutes(NewCheckoutHandlers(nil, &stubCheckoutService{}).Routes, marker))

	req := authenticate(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/", nil), "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if !seen {
		t.Fatal("expected checkout middleware to run")
	}
}
