package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/platform/auth"
	"github.com/kitzone/api/internal/platform/httpx"
	"github.com/kitzone/api/internal/services"
)

const maxOrderActionRequestBody = 8 * 1024

// OrderHandlers exposes order reads and customer self-service actions.
type OrderHandlers struct {
	authn  *auth.Authenticator
	orders services.OrderService
}

// NewOrderHandlers constructs order handlers guarded by Firebase authentication.
func NewOrderHandlers(authn *auth.Authenticator, orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{
		authn:  authn,
		orders: orders,
	}
}

// Routes wires the /orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth())
	}
	r.Get("/", h.listMine)
	r.Get("/{orderId}", h.getOrder)
	r.Post("/action", h.customerAction)
}

func (h *OrderHandlers) listMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	page, err := parsePagination(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	listing, err := h.orders.ListMine(ctx, identity.UID, page)
	if err != nil {
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

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("orders_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
		case errors.Is(err, services.ErrOrderInvalidInput):
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		default:
			httpx.WriteError(ctx, w, httpx.NewError("orders_error", "failed to load order", http.StatusInternalServerError))
		}
		return
	}

	// Another user's order is indistinguishable from a missing one.
	if order.UserID != identity.UID && !identity.HasRole(auth.RoleAdmin) {
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"order": buildOrderPayload(order)})
}

type orderActionRequest struct {
	OrderID string `json:"orderId"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

type orderActionResponse struct {
	OK      bool   `json:"ok"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// customerAction lets a customer cancel an order or request a return. The
// response keeps the {ok, status, message} shape regardless of outcome.
func (h *OrderHandlers) customerAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		writeJSONResponse(w, http.StatusServiceUnavailable, orderActionResponse{OK: false, Message: "order service is unavailable"})
		return
	}

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok || identity == nil || identity.UID == "" {
		writeJSONResponse(w, http.StatusUnauthorized, orderActionResponse{OK: false, Message: "authentication required"})
		return
	}

	var req orderActionRequest
	if !decodeJSONBody(w, r, maxOrderActionRequestBody, &req) {
		return
	}

	order, err := h.orders.CustomerAction(ctx, services.CustomerOrderActionCommand{
		OrderID: req.OrderID,
		UserID:  identity.UID,
		Action:  req.Action,
		Message: req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			writeJSONResponse(w, http.StatusNotFound, orderActionResponse{OK: false, Message: "order not found"})
		case errors.Is(err, services.ErrOrderActionNotAllowed):
			writeJSONResponse(w, http.StatusBadRequest, orderActionResponse{OK: false, Message: "action not allowed for the current order status"})
		case errors.Is(err, services.ErrOrderInvalidInput):
			writeJSONResponse(w, http.StatusBadRequest, orderActionResponse{OK: false, Message: err.Error()})
		default:
			writeJSONResponse(w, http.StatusInternalServerError, orderActionResponse{OK: false, Message: "failed to update the order"})
		}
		return
	}

	writeJSONResponse(w, http.StatusOK, orderActionResponse{OK: true, Status: string(order.Status)})
}
