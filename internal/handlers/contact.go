package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/platform/httpx"
	"github.com/kitzone/api/internal/services"
)

const maxContactRequestBody = 16 * 1024

// ContactHandlers exposes the anonymous contact form endpoint.
type ContactHandlers struct {
	contact services.ContactService
	limiter rateLimiter
}

// NewContactHandlers constructs the contact handlers with a per-IP rate limit
// so the form cannot be used as a mail relay.
func NewContactHandlers(contact services.ContactService, limit int, window time.Duration) *ContactHandlers {
	return &ContactHandlers{
		contact: contact,
		limiter: newSimpleRateLimiter(limit, window, nil),
	}
}

// Routes wires the /contact endpoint onto the provided router.
func (h *ContactHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.submit)
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (h *ContactHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.contact == nil {
		httpx.WriteError(ctx, w, httpx.NewError("contact_unavailable", "contact service is unavailable", http.StatusServiceUnavailable))
		return
	}

	if h.limiter != nil && !h.limiter.Allow(r.RemoteAddr) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many messages; try again later", http.StatusTooManyRequests))
		return
	}

	var req contactRequest
	if !decodeJSONBody(w, r, maxContactRequestBody, &req) {
		return
	}

	err := h.contact.Submit(ctx, services.ContactCommand{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrContactInvalidInput):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		case errors.Is(err, services.ErrContactDeliveryFailed):
			httpx.WriteError(ctx, w, httpx.NewError("contact_delivery_failed", "message could not be delivered", http.StatusBadGateway))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("contact_error", "failed to submit message", http.StatusInternalServerError))
		}
		return
	}

	writeJSONResponse(w, http.StatusAccepted, map[string]any{"ok": true})
}
