package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/kitzone/api/internal/domain"
	pfirestore "github.com/kitzone/api/internal/platform/firestore"
	"github.com/kitzone/api/internal/repositories"
)

type orderDocument struct {
	Number          string          `firestore:"number,omitempty"`
	UserID          string          `firestore:"userId"`
	Status          string          `firestore:"status"`
	Subtotal        int64           `firestore:"subtotal"`
	Discount        int64           `firestore:"discountAmount"`
	Shipping        int64           `firestore:"shippingFee"`
	Total           int64           `firestore:"total"`
	Currency        string          `firestore:"currency"`
	DiscountCode    *string         `firestore:"discountCode,omitempty"`
	PaymentMethod   string          `firestore:"paymentMethod,omitempty"`
	ShippingAddress addressDocument `firestore:"shippingAddress"`
	CreatedAt       time.Time       `firestore:"createdAt"`
	UpdatedAt       time.Time       `firestore:"updatedAt"`
}

type addressDocument struct {
	FullName   string `firestore:"fullName,omitempty"`
	Street     string `firestore:"street"`
	City       string `firestore:"city"`
	State      string `firestore:"state,omitempty"`
	PostalCode string `firestore:"postalCode"`
	Country    string `firestore:"country,omitempty"`
}

type orderItemDocument struct {
	OrderID     string `firestore:"orderId"`
	ProductID   string `firestore:"productId"`
	ProductName string `firestore:"productName,omitempty"`
	Quantity    int    `firestore:"quantity"`
	UnitPrice   int64  `firestore:"unitPrice"`
	Size        string `firestore:"size,omitempty"`
}

// OrderRepository persists order headers in one collection and their line
// items in a sibling collection keyed by orderId. The two writes are separate
// commits; callers sequence them and accept the partial-state window.
type OrderRepository struct {
	orders *pfirestore.BaseRepository[orderDocument]
	items  *pfirestore.BaseRepository[orderItemDocument]
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		orders: pfirestore.NewBaseRepository[orderDocument](provider, ordersCollection, nil, nil),
		items:  pfirestore.NewBaseRepository[orderItemDocument](provider, orderItemsCollection, nil, nil),
	}, nil
}

// Insert creates the order header with its initial status.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if strings.TrimSpace(order.ID) == "" {
		return errors.New("order repository: order id is required")
	}
	return r.orders.Create(ctx, order.ID, orderToDocument(order))
}

// InsertItems materialises the line items for an order. Each item commits
// independently; a failure leaves the earlier items in place.
func (r *OrderRepository) InsertItems(ctx context.Context, orderID string, items []domain.OrderItem) error {
	if strings.TrimSpace(orderID) == "" {
		return errors.New("order repository: order id is required")
	}
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return errors.New("order repository: order item id is required")
		}
		doc := orderItemDocument{
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Size:        item.Size,
		}
		if err := r.items.Create(ctx, item.ID, doc); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStatus writes the new status and timestamp. Last writer wins; no
// precondition guards concurrent customer and admin writes.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, updatedAt time.Time) error {
	return r.orders.Update(ctx, orderID, []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: updatedAt.UTC()},
	})
}

// FindByID loads the order header together with its items.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	doc, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order := orderFromDocument(doc.ID, doc.Data)
	items, err := r.ListItems(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

// ListItems returns the immutable line items of an order.
func (r *OrderRepository) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, errors.New("order repository: order id is required")
	}
	docs, err := r.items.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("orderId", "==", orderID)
	})
	if err != nil {
		return nil, err
	}
	items := make([]domain.OrderItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, domain.OrderItem{
			ID:          doc.ID,
			OrderID:     doc.Data.OrderID,
			ProductID:   doc.Data.ProductID,
			ProductName: doc.Data.ProductName,
			Quantity:    doc.Data.Quantity,
			UnitPrice:   doc.Data.UnitPrice,
			Size:        doc.Data.Size,
		})
	}
	return items, nil
}

// List returns a page of order headers matching the filter, newest first.
// Items are not hydrated on list reads.
func (r *OrderRepository) List(ctx context.Context, filter repositories.OrderListFilter) (domain.CursorPage[domain.Order], error) {
	pageSize := filter.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	docs, err := r.orders.Query(ctx, func(query firestore.Query) firestore.Query {
		if userID := strings.TrimSpace(filter.UserID); userID != "" {
			query = query.Where("userId", "==", userID)
		}
		if len(filter.Status) == 1 {
			query = query.Where("status", "==", string(filter.Status[0]))
		} else if len(filter.Status) > 1 {
			statuses := make([]string, 0, len(filter.Status))
			for _, status := range filter.Status {
				statuses = append(statuses, string(status))
			}
			query = query.Where("status", "in", statuses)
		}
		if filter.DateRange.From != nil {
			query = query.Where("createdAt", ">=", filter.DateRange.From.UTC())
		}
		if filter.DateRange.To != nil {
			query = query.Where("createdAt", "<=", filter.DateRange.To.UTC())
		}
		query = query.OrderBy("createdAt", firestore.Desc)
		withCursor, cursorErr := pageCursor(query, filter.Pagination.PageToken)
		if cursorErr == nil {
			query = withCursor
		}
		return query.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Order]{}, err
	}

	page := domain.CursorPage[domain.Order]{}
	for i, doc := range docs {
		if i == pageSize {
			page.NextPageToken = nextPageToken(docs[i-1].Data.CreatedAt)
			break
		}
		page.Items = append(page.Items, orderFromDocument(doc.ID, doc.Data))
	}
	return page, nil
}

// Delete removes an order, cascading to its items first so a failure cannot
// orphan line items without a parent.
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return errors.New("order repository: order id is required")
	}
	if _, err := r.items.DeleteWhere(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("orderId", "==", orderID)
	}); err != nil {
		return err
	}
	return r.orders.Delete(ctx, orderID)
}

func orderToDocument(order domain.Order) orderDocument {
	return orderDocument{
		Number:        order.Number,
		UserID:        order.UserID,
		Status:        string(order.Status),
		Subtotal:      order.Totals.Subtotal,
		Discount:      order.Totals.Discount,
		Shipping:      order.Totals.Shipping,
		Total:         order.Totals.Total,
		Currency:      order.Currency,
		DiscountCode:  order.DiscountCode,
		PaymentMethod: string(order.PaymentMethod),
		ShippingAddress: addressDocument{
			FullName:   order.ShippingAddress.FullName,
			Street:     order.ShippingAddress.Street,
			City:       order.ShippingAddress.City,
			State:      order.ShippingAddress.State,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
		},
		CreatedAt: order.CreatedAt.UTC(),
		UpdatedAt: order.UpdatedAt.UTC(),
	}
}

func orderFromDocument(id string, doc orderDocument) domain.Order {
	return domain.Order{
		ID:     id,
		Number: doc.Number,
		UserID: doc.UserID,
		Status: domain.OrderStatus(doc.Status),
		Totals: domain.OrderTotals{
			Subtotal: doc.Subtotal,
			Discount: doc.Discount,
			Shipping: doc.Shipping,
			Total:    doc.Total,
		},
		Currency:      doc.Currency,
		DiscountCode:  doc.DiscountCode,
		PaymentMethod: domain.PaymentMethod(doc.PaymentMethod),
		ShippingAddress: domain.Address{
			FullName:   doc.ShippingAddress.FullName,
			Street:     doc.ShippingAddress.Street,
			City:       doc.ShippingAddress.City,
			State:      doc.ShippingAddress.State,
			PostalCode: doc.ShippingAddress.PostalCode,
			Country:    doc.ShippingAddress.Country,
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
