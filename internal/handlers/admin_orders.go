package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/platform/auth"
	"github.com/kitzone/api/internal/platform/httpx"
	"github.com/kitzone/api/internal/services"
)

const maxAdminOrderRequestBody = 8 * 1024

func (h *AdminHandlers) orderRoutes(r chi.Router) {
	r.Get("/", h.listOrders)
	r.Get("/{orderId}", h.getOrderAdmin)
	r.Post("/{orderId}/status", h.transitionOrder)
	r.Delete("/{orderId}", h.deleteOrder)
}

func (h *AdminHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	filter, err := parseOrderListFilter(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	if h.listTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.listTimeout)
		defer cancel()
	}

	listing, err := h.orders.ListOrders(ctx, filter)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			httpx.WriteError(ctx, w, httpx.NewError("orders_timeout", "order listing timed out", http.StatusGatewayTimeout))
			return
		}
		httpx.WriteError(ctx, w, httpx.NewError("orders_error", "failed to load orders", http.StatusInternalServerError))
		return
	}

	orders := make([]orderPayload, 0, len(listing.Items))
	for _, order := range listing.Items {
		orders = append(orders, buildOrderPayload(order))
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"orders":        orders,
		"nextPageToken": listing.NextPageToken,
	})
}

func parseOrderListFilter(r *http.Request) (services.OrderListFilter, error) {
	page, err := parsePagination(r)
	if err != nil {
		return services.OrderListFilter{}, err
	}
	filter := services.OrderListFilter{
		UserID:     strings.TrimSpace(r.URL.Query().Get("user_id")),
		Pagination: page,
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.OrderStatus(strings.TrimSpace(part))
			if !status.Valid() {
				return services.OrderListFilter{}, errors.New("unknown order status: " + string(status))
			}
			filter.Status = append(filter.Status, status)
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return services.OrderListFilter{}, errors.New("from must be an RFC 3339 timestamp")
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return services.OrderListFilter{}, errors.New("to must be an RFC 3339 timestamp")
		}
		filter.To = &to
	}
	return filter, nil
}

func (h *AdminHandlers) getOrderAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}
	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeAdminOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": buildOrderPayload(order)})
}

type adminTransitionRequest struct {
	Status string `json:"status"`
}

type adminTransitionResponse struct {
	OK      bool   `json:"ok"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// transitionOrder moves an order to the requested status. A locked order is
// not an error: the response reports ok false with the reason and the order
// keeps its current status.
func (h *AdminHandlers) transitionOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req adminTransitionRequest
	if !decodeJSONBody(w, r, maxAdminOrderRequestBody, &req) {
		return
	}

	var actorID string
	if identity, ok := auth.IdentityFromContext(ctx); ok && identity != nil {
		actorID = identity.UID
	}

	result, err := h.orders.AdminTransition(ctx, services.AdminTransitionCommand{
		OrderID: chi.URLParam(r, "orderId"),
		Target:  domain.OrderStatus(req.Status),
		ActorID: actorID,
	})
	if err != nil {
		h.writeAdminOrderError(ctx, w, err)
		return
	}

	resp := adminTransitionResponse{
		OK:     result.Applied,
		Status: string(result.Order.Status),
	}
	if !result.Applied {
		resp.Message = result.Message
	}
	writeJSONResponse(w, http.StatusOK, resp)
}

func (h *AdminHandlers) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}
	if err := h.orders.DeleteOrder(ctx, chi.URLParam(r, "orderId")); err != nil {
		h.writeAdminOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *AdminHandlers) writeAdminOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderActionNotAllowed):
		httpx.WriteError(ctx, w, httpx.NewError("transition_not_allowed", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("orders_error", "order operation failed", http.StatusInternalServerError))
	}
}
