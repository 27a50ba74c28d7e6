package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kitzone/api/internal/services"
)

func TestAdminCatalogHandlers_CreateProduct(t *testing.T) {
	svc := &stubCatalogService{upsertResp: handlerProduct()}
	router := newAdminRouter(AdminHandlersDeps{Catalog: svc})

	payload, _ := json.Marshal(map[string]any{
		"slug":     "home-kit-2026",
		"name":     "Домакински екип 2026",
		"price":    8000,
		"category": "kits",
		"sizes":    []string{"S", "M", "L"},
		"stock":    5,
	})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/products/", bytes.NewReader(payload)), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.upsertCmd.Slug != "home-kit-2026" || svc.upsertCmd.Price != 8000 {
		t.Fatalf("unexpected command: %+v", svc.upsertCmd)
	}
}

func TestAdminCatalogHandlers_CreateProductSlugTaken(t *testing.T) {
	router := newAdminRouter(AdminHandlersDeps{Catalog: &stubCatalogService{upsertErr: services.ErrProductSlugTaken}})

	payload, _ := json.Marshal(map[string]any{"slug": "home-kit-2026", "name": "Екип", "price": 8000})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/products/", bytes.NewReader(payload)), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestAdminCatalogHandlers_DeleteProduct(t *testing.T) {
	svc := &stubCatalogService{}
	router := newAdminRouter(AdminHandlersDeps{Catalog: svc})

	req := authenticate(httptest.NewRequest(http.MethodDelete, "/products/prd_1", nil), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.deletedID != "prd_1" {
		t.Fatalf("expected prd_1 deleted, got %q", svc.deletedID)
	}
}

func TestAdminCatalogHandlers_IssueImageUpload(t *testing.T) {
	svc := &stubMediaService{resp: services.SignedUpload{
		URL:        "https://storage.example.com/signed",
		Method:     http.MethodPut,
		ObjectPath: "media/products/prd_1/front.png",
		Headers:    map[string]string{"Content-Type": "image/png"},
		ExpiresAt:  time.Date(2026, time.March, 1, 10, 15, 0, 0, time.UTC),
	}}
	router := newAdminRouter(AdminHandlersDeps{Media: svc})

	payload, _ := json.Marshal(map[string]any{"fileName": "front.png", "contentType": "image/png"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/products/prd_1/image-upload", bytes.NewReader(payload)), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.cmd.ProductID != "prd_1" || svc.cmd.ContentType != "image/png" {
		t.Fatalf("unexpected command: %+v", svc.cmd)
	}
	var decoded struct {
		URL        string `json:"url"`
		ObjectPath string `json:"objectPath"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if decoded.ObjectPath != "media/products/prd_1/front.png" {
		t.Fatalf("unexpected object path: %q", decoded.ObjectPath)
	}
}

func TestAdminCatalogHandlers_IssueImageUploadBadContentType(t *testing.T) {
	router := newAdminRouter(AdminHandlersDeps{Media: &stubMediaService{err: services.ErrMediaInvalidInput}})

	payload, _ := json.Marshal(map[string]any{"fileName": "front.exe", "contentType": "application/octet-stream"})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/products/prd_1/image-upload", bytes.NewReader(payload)), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
