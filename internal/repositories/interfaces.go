package repositories

import (
	"context"
	"time"

	domain "github.com/kitzone/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Carts() CartRepository
	Wishlists() WishlistRepository
	Reviews() ReviewRepository
	Orders() OrderRepository
	Discounts() DiscountRepository
	Profiles() ProfileRepository
	Counters() CounterRepository
	Health() HealthRepository
	UnitOfWork
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// UnitOfWork allows grouping repository operations in a transactional boundary when supported.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductRepository persists catalog entries.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	Delete(ctx context.Context, productID string) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (domain.Product, error)
	List(ctx context.Context, filter ProductListFilter) (domain.CursorPage[domain.Product], error)
}

// CartRepository stores per-user cart lines. Lines are scoped by user and
// never contended across users.
type CartRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	Upsert(ctx context.Context, item domain.CartItem) (domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (domain.CartItem, error)
	Remove(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) (int, error)
}

// WishlistRepository stores per-user saved products.
type WishlistRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Add(ctx context.Context, item domain.WishlistItem) (domain.WishlistItem, error)
	Remove(ctx context.Context, userID, productID string) error
}

// ReviewRepository stores product reviews and their moderation state.
type ReviewRepository interface {
	Insert(ctx context.Context, review domain.Review) (domain.Review, error)
	FindByID(ctx context.Context, reviewID string) (domain.Review, error)
	ListByProduct(ctx context.Context, productID string, filter ReviewListFilter) (domain.CursorPage[domain.Review], error)
	List(ctx context.Context, filter ReviewListFilter) (domain.CursorPage[domain.Review], error)
	UpdateStatus(ctx context.Context, reviewID string, status domain.ReviewStatus, update ReviewModerationUpdate) (domain.Review, error)
	Delete(ctx context.Context, reviewID string) error
}

// OrderRepository persists order headers and the immutable line items beneath
// them. Status writes are plain last-writer-wins updates; no version check is
// applied before a status write.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	InsertItems(ctx context.Context, orderID string, items []domain.OrderItem) error
	UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, updatedAt time.Time) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	List(ctx context.Context, filter OrderListFilter) (domain.CursorPage[domain.Order], error)
	Delete(ctx context.Context, orderID string) error
}

// DiscountRepository maintains discount code definitions and usage counters.
// ConsumeUse re-checks usability and increments the usage counter inside one
// store transaction, so a near-limit code cannot be driven past its cap by
// concurrent checkouts.
type DiscountRepository interface {
	Insert(ctx context.Context, code domain.DiscountCode) error
	Update(ctx context.Context, code domain.DiscountCode) error
	Delete(ctx context.Context, codeID string) error
	FindByID(ctx context.Context, codeID string) (domain.DiscountCode, error)
	FindByCode(ctx context.Context, code string) (domain.DiscountCode, error)
	List(ctx context.Context, filter DiscountListFilter) (domain.CursorPage[domain.DiscountCode], error)
	ConsumeUse(ctx context.Context, codeID string, now time.Time) (domain.DiscountCode, error)
}

// ProfileRepository stores the account profile slice used for notifications.
type ProfileRepository interface {
	FindByUID(ctx context.Context, uid string) (domain.Profile, error)
	Upsert(ctx context.Context, profile domain.Profile) (domain.Profile, error)
}

// CounterRepository provides transaction-safe sequence numbers.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, step int64) (int64, error)
}

// HealthRepository exposes status of downstream dependencies for health checks.
type HealthRepository interface {
	Collect(ctx context.Context) (domain.SystemHealthReport, error)
}

// Filter DTOs shared across repositories ------------------------------------

// ProductSort selects the ordering applied to catalog listings.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
)

type ProductListFilter struct {
	Category   string
	Search     string
	Featured   *bool
	Sort       ProductSort
	Pagination domain.Pagination
}

type OrderListFilter struct {
	UserID     string
	Status     []domain.OrderStatus
	DateRange  domain.RangeQuery[time.Time]
	Pagination domain.Pagination
}

type ReviewListFilter struct {
	Status     []domain.ReviewStatus
	Pagination domain.Pagination
}

type DiscountListFilter struct {
	Active     *bool
	Pagination domain.Pagination
}

// ReviewModerationUpdate carries moderation metadata for status transitions.
type ReviewModerationUpdate struct {
	ModeratedBy string
	ModeratedAt time.Time
}
