package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/repositories"
	"github.com/kitzone/api/internal/services"
)

func handlerProduct() services.Product {
	now := time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)
	return services.Product{
		ID:        "prd_1",
		Slug:      "home-kit-2026",
		Name:      "Домакински екип 2026",
		Price:     8000,
		Category:  "kits",
		Sizes:     []string{"S", "M", "L"},
		Stock:     5,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newCatalogRouter(catalog services.CatalogService, reviews services.ReviewService) chi.Router {
	handler := NewCatalogHandlers(nil, catalog, reviews)
	router := chi.NewRouter()
	handler.Routes(router)
	return router
}

func TestCatalogHandlers_ListProductsParsesFilter(t *testing.T) {
	svc := &stubCatalogService{listResp: domain.CursorPage[services.Product]{
		Items:         []services.Product{handlerProduct()},
		NextPageToken: "next",
	}}
	router := newCatalogRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/?category=kits&q=домакински&featured=true&sort=price_asc&page_size=5", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	filter := svc.listFilter
	if filter.Category != "kits" || filter.Search != "домакински" {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if filter.Featured == nil || !*filter.Featured {
		t.Fatal("expected featured filter set")
	}
	if filter.Sort != repositories.ProductSortPriceAsc {
		t.Fatalf("unexpected sort: %v", filter.Sort)
	}
	if filter.Pagination.PageSize != 5 {
		t.Fatalf("unexpected page size: %d", filter.Pagination.PageSize)
	}
	var decoded struct {
		Products      []productPayload `json:"products"`
		NextPageToken string           `json:"nextPageToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(decoded.Products) != 1 || decoded.Products[0].Currency != "EUR" {
		t.Fatalf("unexpected products payload: %+v", decoded.Products)
	}
}

func TestCatalogHandlers_ListProductsRejectsUnknownSort(t *testing.T) {
	router := newCatalogRouter(&stubCatalogService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/?sort=sideways", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCatalogHandlers_GetProductMissing(t *testing.T) {
	router := newCatalogRouter(&stubCatalogService{getErr: services.ErrProductNotFound}, nil)

	req := httptest.NewRequest(http.MethodGet, "/prd_missing", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCatalogHandlers_GetProductBySlug(t *testing.T) {
	router := newCatalogRouter(&stubCatalogService{getResp: handlerProduct()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/slug/home-kit-2026", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestCatalogHandlers_SubmitReviewRequiresAuth(t *testing.T) {
	reviews := &stubReviewService{}
	router := newCatalogRouter(&stubCatalogService{}, reviews)

	payload, _ := json.Marshal(map[string]any{"rating": 5, "comment": "страхотно качество"})
	req := httptest.NewRequest(http.MethodPost, "/prd_1/reviews", bytes.NewReader(payload))
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestCatalogHandlers_SubmitReview(t *testing.T) {
	reviews := &stubReviewService{submitResp: services.Review{
		ID:        "rev_1",
		ProductID: "prd_1",
		Rating:    5,
		Comment:   "страхотно качество",
		Status:    domain.ReviewStatusPending,
	}}
	router := newCatalogRouter(&stubCatalogService{}, reviews)

	payload, _ := json.Marshal(map[string]any{"rating": 5, "comment": "страхотно качество"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/prd_1/reviews", bytes.NewReader(payload)), "user-1")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if reviews.submitCmd.ProductID != "prd_1" || reviews.submitCmd.UserID != "user-1" {
		t.Fatalf("unexpected command: %+v", reviews.submitCmd)
	}
	var decoded struct {
		Review reviewPayload `json:"review"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.Review.Status != "pending" {
		t.Fatalf("expected pending review, got %q", decoded.Review.Status)
	}
}
