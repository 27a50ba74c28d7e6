package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/platform/auth"
	"github.com/kitzone/api/internal/platform/httpx"
	"github.com/kitzone/api/internal/services"
)

const maxAdminReviewRequestBody = 4 * 1024

func (h *AdminHandlers) reviewRoutes(r chi.Router) {
	r.Get("/", h.listModerationQueue)
	r.Post("/{reviewId}/moderate", h.moderateReview)
	r.Delete("/{reviewId}", h.deleteReview)
}

func (h *AdminHandlers) listModerationQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.reviews == nil {
		httpx.WriteError(ctx, w, httpx.NewError("reviews_unavailable", "review service is unavailable", http.StatusServiceUnavailable))
		return
	}

	page, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}
	filter := services.ReviewModerationFilter{Pagination: page}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			filter.Status = append(filter.Status, domain.ReviewStatus(strings.TrimSpace(part)))
		}
	}

	listing, err := h.reviews.ListForModeration(ctx, filter)
	if err != nil {
		h.writeAdminReviewError(ctx, w, err)
		return
	}

	reviews := make([]reviewPayload, 0, len(listing.Items))
	for _, review := range listing.Items {
		reviews = append(reviews, buildReviewPayload(review))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"reviews":       reviews,
		"nextPageToken": listing.NextPageToken,
	})
}

type moderateReviewRequest struct {
	Approve bool `json:"approve"`
}

func (h *AdminHandlers) moderateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.reviews == nil {
		httpx.WriteError(ctx, w, httpx.NewError("reviews_unavailable", "review service is unavailable", http.StatusServiceUnavailable))
		return
	}
	var req moderateReviewRequest
	if !decodeJSONBody(w, r, maxAdminReviewRequestBody, &req) {
		return
	}

	var actorID string
	if identity, ok := auth.IdentityFromContext(ctx); ok && identity != nil {
		actorID = identity.UID
	}

	review, err := h.reviews.Moderate(ctx, services.ModerateReviewCommand{
		ReviewID: chi.URLParam(r, "reviewId"),
		Approve:  req.Approve,
		ActorID:  actorID,
	})
	if err != nil {
		h.writeAdminReviewError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"review": buildReviewPayload(review)})
}

func (h *AdminHandlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.reviews == nil {
		httpx.WriteError(ctx, w, httpx.NewError("reviews_unavailable", "review service is unavailable", http.StatusServiceUnavailable))
		return
	}
	if err := h.reviews.Delete(ctx, chi.URLParam(r, "reviewId")); err != nil {
		h.writeAdminReviewError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *AdminHandlers) writeAdminReviewError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrReviewInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrReviewNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("review_not_found", "review not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("reviews_error", "review operation failed", http.StatusInternalServerError))
	}
}
