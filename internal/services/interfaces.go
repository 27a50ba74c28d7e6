package services

import (
	"context"
	"time"

	domain "github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/repositories"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	Pagination         = domain.Pagination
	Product            = domain.Product
	CartItem           = domain.CartItem
	CartEstimate       = domain.CartEstimate
	WishlistItem       = domain.WishlistItem
	Review             = domain.Review
	ReviewStatus       = domain.ReviewStatus
	Order              = domain.Order
	OrderItem          = domain.OrderItem
	OrderStatus        = domain.OrderStatus
	OrderTotals        = domain.OrderTotals
	PaymentMethod      = domain.PaymentMethod
	Address            = domain.Address
	DiscountCode       = domain.DiscountCode
	Profile            = domain.Profile
	SystemHealthReport = domain.SystemHealthReport
)

// CatalogService serves product listings and admin catalog maintenance.
type CatalogService interface {
	ListProducts(ctx context.Context, filter ProductListFilter) (domain.CursorPage[Product], error)
	GetProduct(ctx context.Context, productID string) (Product, error)
	GetProductBySlug(ctx context.Context, slug string) (Product, error)
	CreateProduct(ctx context.Context, cmd UpsertProductCommand) (Product, error)
	UpdateProduct(ctx context.Context, productID string, cmd UpsertProductCommand) (Product, error)
	DeleteProduct(ctx context.Context, productID string) error
}

// CartService manages per-user cart lines and priced estimates.
type CartService interface {
	ListItems(ctx context.Context, userID string) ([]CartItem, error)
	AddItem(ctx context.Context, cmd AddCartItemCommand) (CartItem, error)
	UpdateQuantity(ctx context.Context, cmd UpdateCartQuantityCommand) (CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) (int, error)
	Estimate(ctx context.Context, cmd EstimateCartCommand) (CartEstimate, error)
}

// WishlistService manages products a user has saved for later.
type WishlistService interface {
	List(ctx context.Context, userID string) ([]WishlistItem, error)
	Add(ctx context.Context, userID, productID string) (WishlistItem, error)
	Remove(ctx context.Context, userID, productID string) error
}

// ReviewService accepts customer reviews and drives their moderation flow.
type ReviewService interface {
	Submit(ctx context.Context, cmd SubmitReviewCommand) (Review, error)
	ListApproved(ctx context.Context, productID string, page Pagination) (domain.CursorPage[Review], error)
	ListForModeration(ctx context.Context, filter ReviewModerationFilter) (domain.CursorPage[Review], error)
	Moderate(ctx context.Context, cmd ModerateReviewCommand) (Review, error)
	Delete(ctx context.Context, reviewID string) error
}

// DiscountService resolves customer discount codes and maintains them for admins.
type DiscountService interface {
	Apply(ctx context.Context, code string) (AppliedDiscount, error)
	Create(ctx context.Context, cmd UpsertDiscountCommand) (DiscountCode, error)
	Update(ctx context.Context, codeID string, cmd UpsertDiscountCommand) (DiscountCode, error)
	Delete(ctx context.Context, codeID string) error
	List(ctx context.Context, filter DiscountListFilter) (domain.CursorPage[DiscountCode], error)
}

// OrderService owns the order lifecycle: customer self-service actions, the
// admin transition surface, and reads over both.
type OrderService interface {
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListMine(ctx context.Context, userID string, page Pagination) (domain.CursorPage[Order], error)
	ListOrders(ctx context.Context, filter OrderListFilter) (domain.CursorPage[Order], error)
	CustomerAction(ctx context.Context, cmd CustomerOrderActionCommand) (Order, error)
	AdminTransition(ctx context.Context, cmd AdminTransitionCommand) (AdminTransitionResult, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

// CheckoutService turns the authenticated user's cart into an order.
type CheckoutService interface {
	Submit(ctx context.Context, cmd CheckoutCommand) (Order, error)
}

// ContactService forwards storefront contact messages to staff.
type ContactService interface {
	Submit(ctx context.Context, cmd ContactCommand) error
}

// SystemService reports platform health and build metadata.
type SystemService interface {
	HealthReport(ctx context.Context) (SystemHealthReport, error)
}

// CounterService hands out formatted sequence numbers such as order references.
type CounterService interface {
	NextOrderNumber(ctx context.Context) (string, error)
}

// MediaService issues signed URLs for storefront media uploads.
type MediaService interface {
	IssueProductImageUpload(ctx context.Context, cmd ProductImageUploadCommand) (SignedUpload, error)
}

// OrderEventPublisher publishes order lifecycle events for downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, message OrderEventMessage) (string, error)
}

// OrderEventMessage is the payload delivered to event consumers via Pub/Sub.
type OrderEventMessage struct {
	Event          string    `json:"event"`
	OrderID        string    `json:"orderId"`
	OrderNumber    string    `json:"orderNumber,omitempty"`
	UserID         string    `json:"userId"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	ActorID        string    `json:"actorId,omitempty"`
	Total          int64     `json:"total"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Command and filter DTOs --------------------------------------------------

// ProductListFilter narrows catalog listings.
type ProductListFilter struct {
	Category   string
	Search     string
	Featured   *bool
	Sort       repositories.ProductSort
	Pagination Pagination
}

// UpsertProductCommand carries product fields for create and update calls.
type UpsertProductCommand struct {
	Slug        string
	Name        string
	Description string
	Price       int64
	Category    string
	Sizes       []string
	Stock       int
	ImageURL    string
	Featured    bool
}

// AddCartItemCommand adds a product line to the caller's cart.
type AddCartItemCommand struct {
	UserID    string
	ProductID string
	Quantity  int
	Size      string
}

// UpdateCartQuantityCommand changes the quantity of an existing cart line.
type UpdateCartQuantityCommand struct {
	UserID   string
	ItemID   string
	Quantity int
}

// EstimateCartCommand prices the caller's cart, optionally with a discount code.
type EstimateCartCommand struct {
	UserID       string
	DiscountCode string
}

// SubmitReviewCommand files a new review; it enters moderation as pending.
type SubmitReviewCommand struct {
	ProductID  string
	UserID     string
	AuthorName string
	Rating     int
	Title      string
	Comment    string
}

// ReviewModerationFilter narrows the moderation queue listing.
type ReviewModerationFilter struct {
	Status     []ReviewStatus
	Pagination Pagination
}

// ModerateReviewCommand approves or rejects a pending review.
type ModerateReviewCommand struct {
	ReviewID string
	Approve  bool
	ActorID  string
}

// AppliedDiscount is the accepted outcome of resolving a discount code.
type AppliedDiscount struct {
	ID      string
	Code    string
	Percent int
}

// UpsertDiscountCommand carries discount code fields for create and update calls.
type UpsertDiscountCommand struct {
	Code       string
	Percent    int
	MaxUses    *int
	ValidUntil *time.Time
	Active     bool
}

// DiscountListFilter narrows the admin discount listing.
type DiscountListFilter struct {
	Active     *bool
	Pagination Pagination
}

// OrderListFilter narrows the admin order listing.
type OrderListFilter struct {
	UserID     string
	Status     []OrderStatus
	From       *time.Time
	To         *time.Time
	Pagination Pagination
}

// CustomerOrderActionCommand is a customer's self-service request against one
// of their own orders.
type CustomerOrderActionCommand struct {
	OrderID string
	UserID  string
	Action  string
	Message string
}

// AdminTransitionCommand moves an order to a target status on behalf of staff.
type AdminTransitionCommand struct {
	OrderID string
	Target  OrderStatus
	ActorID string
}

// AdminTransitionResult reports whether the transition was applied. Locked
// terminal orders come back with Applied false and an explanatory message
// rather than an error.
type AdminTransitionResult struct {
	Order   Order
	Applied bool
	Message string
}

// CheckoutCommand carries everything needed to place an order from the cart.
type CheckoutCommand struct {
	UserID        string
	Email         string
	ShippingAddr  Address
	PaymentMethod PaymentMethod
	DiscountCode  string
}

// ProductImageUploadCommand requests a signed upload slot for a product image.
type ProductImageUploadCommand struct {
	ProductID   string
	FileName    string
	ContentType string
}

// SignedUpload is a time-limited upload grant for an object in the media bucket.
type SignedUpload struct {
	URL        string
	Method     string
	ObjectPath string
	Headers    map[string]string
	ExpiresAt  time.Time
}

// ContactCommand is a storefront contact-form submission.
type ContactCommand struct {
	Name    string
	Email   string
	Message string
}
