package domain

import (
	"time"
)

// Pagination defines standard cursor-based paging inputs for list operations.
type Pagination struct {
	PageSize  int
	PageToken string
}

// SortOrder indicates ascending or descending ordering for list queries.
type SortOrder string

const (
	// SortAsc sorts results in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts results in descending order.
	SortDesc SortOrder = "desc"
)

// RangeQuery represents inclusive range filters for numeric or timestamp fields.
type RangeQuery[T comparable] struct {
	From *T
	To   *T
}

// CursorPage wraps a page of results together with the opaque token for the
// next page. An empty NextPageToken means the listing is exhausted.
type CursorPage[T any] struct {
	Items         []T
	NextPageToken string
}

// OrderStatus enumerates the lifecycle states an order moves through.
type OrderStatus string

const (
	// OrderStatusPending marks a freshly placed order awaiting handling.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing marks an order being prepared for dispatch.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped marks an order handed to the carrier.
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered marks an order received by the customer.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled marks an order cancelled before fulfilment.
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusReturnRequested marks a delivered order the customer wants to send back.
	OrderStatusReturnRequested OrderStatus = "return_requested"
	// OrderStatusReturned marks a completed return.
	OrderStatusReturned OrderStatus = "returned"
)

// Valid reports whether the status is one of the defined lifecycle states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturnRequested,
		OrderStatusReturned:
		return true
	default:
		return false
	}
}

// PaymentMethod labels the payment choice made at checkout. No charge is
// taken through the API; the label is carried for display and notifications.
type PaymentMethod string

const (
	// PaymentMethodCard indicates the customer chose to pay by card.
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodCash indicates cash on delivery.
	PaymentMethodCash PaymentMethod = "cash"
)

// Address captures a shipping destination as free-text fields.
type Address struct {
	FullName   string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
}

// OrderTotals snapshots the priced amounts of an order in cents.
// Total = Subtotal - Discount + Shipping, fixed at creation time.
type OrderTotals struct {
	Subtotal int64
	Discount int64
	Shipping int64
	Total    int64
}

// Order is the persisted record of a completed checkout.
type Order struct {
	ID              string
	Number          string
	UserID          string
	Status          OrderStatus
	Totals          OrderTotals
	Currency        string
	DiscountCode    *string
	PaymentMethod   PaymentMethod
	ShippingAddress Address
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is an immutable line entry within an order. UnitPrice snapshots
// the product price at purchase time and never tracks later price changes.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   int64
	Size        string
}

// DiscountCode is a reusable, usage-limited, time-bounded percent-off token.
// Code is stored uppercased; lookups normalise before matching.
type DiscountCode struct {
	ID          string
	Code        string
	Percent     int
	MaxUses     *int
	CurrentUses int
	ValidUntil  *time.Time
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Usable reports whether the code may be applied at the given instant.
func (d DiscountCode) Usable(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return false
	}
	if d.MaxUses != nil && d.CurrentUses >= *d.MaxUses {
		return false
	}
	return true
}

// Product is a catalog entry. Price is the current price in cents; order
// items copy it at checkout time.
type Product struct {
	ID          string
	Slug        string
	Name        string
	Description string
	Price       int64
	Category    string
	Sizes       []string
	Stock       int
	ImageURL    string
	Featured    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CartItem is one line of a user's cart.
type CartItem struct {
	ID        string
	UserID    string
	ProductID string
	Quantity  int
	Size      string
	AddedAt   time.Time
}

// CartEstimate is the priced breakdown of a cart, in cents.
type CartEstimate struct {
	Currency     string
	Subtotal     int64
	Discount     int64
	Shipping     int64
	Total        int64
	DiscountCode *string
	FreeShipping bool
}

// WishlistItem records a product saved by a user.
type WishlistItem struct {
	ID        string
	UserID    string
	ProductID string
	AddedAt   time.Time
}

// ReviewStatus tracks the moderation state of a product review.
type ReviewStatus string

const (
	// ReviewStatusPending marks a review awaiting moderation.
	ReviewStatusPending ReviewStatus = "pending"
	// ReviewStatusApproved marks a review visible on the storefront.
	ReviewStatusApproved ReviewStatus = "approved"
	// ReviewStatusRejected marks a review hidden by a moderator.
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Review is a customer product review subject to moderation.
type Review struct {
	ID         string
	ProductID  string
	UserID     string
	AuthorName string
	Rating     int
	Title      string
	Comment    string
	Status     ReviewStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Profile holds the slice of account data the API needs for notifications
// and role checks. Authentication itself lives with the identity provider.
type Profile struct {
	UID       string
	Email     string
	FullName  string
	Role      string
	CreatedAt time.Time
}
