package handlers

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kitzone/api/internal/platform/auth"
	"github.com/kitzone/api/internal/services"
)

// AdminHandlers bundles the back-office surface: catalog maintenance, order
// transitions, discount codes, and review moderation. Every route requires the
// admin role.
type AdminHandlers struct {
	authn       *auth.Authenticator
	catalog     services.CatalogService
	media       services.MediaService
	orders      services.OrderService
	discounts   services.DiscountService
	reviews     services.ReviewService
	listTimeout time.Duration
}

// AdminHandlersDeps carries the services the admin surface is built from.
type AdminHandlersDeps struct {
	Authenticator *auth.Authenticator
	Catalog       services.CatalogService
	Media         services.MediaService
	Orders        services.OrderService
	Discounts     services.DiscountService
	Reviews       services.ReviewService
	ListTimeout   time.Duration
}

// NewAdminHandlers constructs the admin route group.
func NewAdminHandlers(deps AdminHandlersDeps) *AdminHandlers {
	return &AdminHandlers{
		authn:       deps.Authenticator,
		catalog:     deps.Catalog,
		media:       deps.Media,
		orders:      deps.Orders,
		discounts:   deps.Discounts,
		reviews:     deps.Reviews,
		listTimeout: deps.ListTimeout,
	}
}

// Routes wires the /admin endpoints onto the provided router.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireFirebaseAuth(auth.RoleAdmin))
	}
	r.Route("/products", h.productRoutes)
	r.Route("/orders", h.orderRoutes)
	r.Route("/discounts", h.discountRoutes)
	r.Route("/reviews", h.reviewRoutes)
}
