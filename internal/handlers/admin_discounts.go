package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/platform/httpx"
	"github.com/kitzone/api/internal/services"
)

const maxAdminDiscountRequestBody = 8 * 1024

func (h *AdminHandlers) discountRoutes(r chi.Router) {
	r.Get("/", h.listDiscounts)
	r.Post("/", h.createDiscount)
	r.Put("/{codeId}", h.updateDiscount)
	r.Delete("/{codeId}", h.deleteDiscount)
}

type upsertDiscountRequest struct {
	Code       string `json:"code"`
	Percent    int    `json:"percent"`
	MaxUses    *int   `json:"maxUses"`
	ValidUntil string `json:"validUntil"`
	Active     bool   `json:"active"`
}

func (r upsertDiscountRequest) command() (services.UpsertDiscountCommand, error) {
	cmd := services.UpsertDiscountCommand{
		Code:    r.Code,
		Percent: r.Percent,
		MaxUses: r.MaxUses,
		Active:  r.Active,
	}
	if raw := strings.TrimSpace(r.ValidUntil); raw != "" {
		until, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return services.UpsertDiscountCommand{}, errors.New("validUntil must be an RFC 3339 timestamp")
		}
		cmd.ValidUntil = &until
	}
	return cmd, nil
}

func (h *AdminHandlers) listDiscounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.discounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("discounts_unavailable", "discount service is unavailable", http.StatusServiceUnavailable))
		return
	}

	page, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	filter := services.DiscountListFilter{Pagination: page}
	if raw := strings.TrimSpace(r.URL.Query().Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "active must be a boolean", http.StatusBadRequest))
			return
		}
		filter.Active = &active
	}

	listing, err := h.discounts.List(ctx, filter)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("discounts_error", "failed to load discount codes", http.StatusInternalServerError))
		return
	}

	codes := make([]discountPayload, 0, len(listing.Items))
	for _, code := range listing.Items {
		codes = append(codes, buildDiscountPayload(code))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"discounts":     codes,
		"nextPageToken": listing.NextPageToken,
	})
}

func (h *AdminHandlers) createDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.discounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("discounts_unavailable", "discount service is unavailable", http.StatusServiceUnavailable))
		return
	}
	var req upsertDiscountRequest
	if !decodeJSONBody(w, r, maxAdminDiscountRequestBody, &req) {
		return
	}
	cmd, err := req.command()
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	code, err := h.discounts.Create(ctx, cmd)
	if err != nil {
		h.writeAdminDiscountError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]any{"discount": buildDiscountPayload(code)})
}

func (h *AdminHandlers) updateDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.discounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("discounts_unavailable", "discount service is unavailable", http.StatusServiceUnavailable))
		return
	}
	var req upsertDiscountRequest
	if !decodeJSONBody(w, r, maxAdminDiscountRequestBody, &req) {
		return
	}
	cmd, err := req.command()
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	code, err := h.discounts.Update(ctx, chi.URLParam(r, "codeId"), cmd)
	if err != nil {
		h.writeAdminDiscountError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"discount": buildDiscountPayload(code)})
}

func (h *AdminHandlers) deleteDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.discounts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("discounts_unavailable", "discount service is unavailable", http.StatusServiceUnavailable))
		return
	}
	if err := h.discounts.Delete(ctx, chi.URLParam(r, "codeId")); err != nil {
		h.writeAdminDiscountError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *AdminHandlers) writeAdminDiscountError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrDiscountInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrDiscountNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("discount_not_found", "discount code not found", http.StatusNotFound))
	case errors.Is(err, services.ErrDiscountCodeTaken):
		httpx.WriteError(ctx, w, httpx.NewError("discount_code_taken", "a discount with this code already exists", http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("discounts_error", "discount operation failed", http.StatusInternalServerError))
	}
}
