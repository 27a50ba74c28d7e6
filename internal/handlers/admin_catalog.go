package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/platform/httpx"
	"github.com/kitzone/api/internal/services"
)

const maxAdminProductRequestBody = 64 * 1024

func (h *AdminHandlers) productRoutes(r chi.Router) {
	r.Post("/", h.createProduct)
	r.Put("/{productId}", h.updateProduct)
	r.Delete("/{productId}", h.deleteProduct)
	r.Post("/{productId}/image-upload", h.issueImageUpload)
}

type upsertProductRequest struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Stock       int      `json:"stock"`
	ImageURL    string   `json:"imageUrl"`
	Featured    bool     `json:"featured"`
}

func (r upsertProductRequest) command() services.UpsertProductCommand {
	return services.UpsertProductCommand{
		Slug:        r.Slug,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Sizes:       r.Sizes,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Featured:    r.Featured,
	}
}

func (h *AdminHandlers) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}
	var req upsertProductRequest
	if !decodeJSONBody(w, r, maxAdminProductRequestBody, &req) {
		return
	}
	product, err := h.catalog.CreateProduct(ctx, req.command())
	if err != nil {
		h.writeAdminCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"product": buildProductPayload(product)})
}

func (h *AdminHandlers) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}
	var req upsertProductRequest
	if !decodeJSONBody(w, r, maxAdminProductRequestBody, &req) {
		return
	}
	product, err := h.catalog.UpdateProduct(ctx, chi.URLParam(r, "productId"), req.command())
	if err != nil {
		h.writeAdminCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"product": buildProductPayload(product)})
}

func (h *AdminHandlers) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}
	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "productId")); err != nil {
		h.writeAdminCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"ok": true})
}

type imageUploadRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
}

func (h *AdminHandlers) issueImageUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.media == nil {
		httpx.WriteError(ctx, w, httpx.NewError("media_unavailable", "media service is unavailable", http.StatusServiceUnavailable))
		return
	}
	var req imageUploadRequest
	if !decodeJSONBody(w, r, maxAdminProductRequestBody, &req) {
		return
	}
	upload, err := h.media.IssueProductImageUpload(ctx, services.ProductImageUploadCommand{
		ProductID:   chi.URLParam(r, "productId"),
		FileName:    req.FileName,
		ContentType: req.ContentType,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMediaInvalidInput):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("media_signing_failed", "failed to issue an upload URL", http.StatusInternalServerError))
		}
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"url":        upload.URL,
		"method":     upload.Method,
		"objectPath": upload.ObjectPath,
		"headers":    upload.Headers,
		"expiresAt":  formatTime(upload.ExpiresAt),
	})
}

func (h *AdminHandlers) writeAdminCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductSlugTaken):
		httpx.WriteError(ctx, w, httpx.NewError("slug_taken", "a product with this slug already exists", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "catalog operation failed", http.StatusInternalServerError))
	}
}
