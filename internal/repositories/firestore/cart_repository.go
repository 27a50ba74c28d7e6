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

type cartItemDocument struct {
	UserID    string    `firestore:"userId"`
	ProductID string    `firestore:"productId"`
	Quantity  int       `firestore:"quantity"`
	Size      string    `firestore:"size,omitempty"`
	AddedAt   time.Time `firestore:"addedAt"`
}

// CartRepository stores one document per cart line, keyed by line ID and
// scoped to the owning user.
type CartRepository struct {
	base *pfirestore.BaseRepository[cartItemDocument]
}

var _ repositories.CartRepository = (*CartRepository)(nil)

// NewCartRepository constructs a Firestore-backed cart repository.
func NewCartRepository(provider *pfirestore.Provider) (*CartRepository, error) {
	if provider == nil {
		return nil, errors.New("cart repository requires firestore provider")
	}
	return &CartRepository{
		base: pfirestore.NewBaseRepository[cartItemDocument](provider, cartItemsCollection, nil, nil),
	}, nil
}

// ListByUser returns the user's cart lines ordered by insertion time.
func (r *CartRepository) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("cart repository: user id is required")
	}
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("userId", "==", userID).OrderBy("addedAt", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	items := make([]domain.CartItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, cartItemFromDocument(doc.ID, doc.Data))
	}
	return items, nil
}

// Upsert writes the cart line document under its ID.
func (r *CartRepository) Upsert(ctx context.Context, item domain.CartItem) (domain.CartItem, error) {
	if strings.TrimSpace(item.ID) == "" {
		return domain.CartItem{}, errors.New("cart repository: item id is required")
	}
	if strings.TrimSpace(item.UserID) == "" {
		return domain.CartItem{}, errors.New("cart repository: user id is required")
	}
	doc := cartItemDocument{
		UserID:    item.UserID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Size:      strings.TrimSpace(item.Size),
		AddedAt:   item.AddedAt.UTC(),
	}
	if err := r.base.Set(ctx, item.ID, doc); err != nil {
		return domain.CartItem{}, err
	}
	return cartItemFromDocument(item.ID, doc), nil
}

// UpdateQuantity adjusts one line's quantity, verifying ownership first.
func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (domain.CartItem, error) {
	doc, err := r.base.Get(ctx, itemID)
	if err != nil {
		return domain.CartItem{}, err
	}
	if doc.Data.UserID != userID {
		return domain.CartItem{}, pfirestore.NotFoundError("cart_items.update_quantity", errors.New("cart item not found"))
	}
	if err := r.base.Update(ctx, itemID, []firestore.Update{
		{Path: "quantity", Value: quantity},
	}); err != nil {
		return domain.CartItem{}, err
	}
	doc.Data.Quantity = quantity
	return cartItemFromDocument(itemID, doc.Data), nil
}

// Remove deletes one line after an ownership check.
func (r *CartRepository) Remove(ctx context.Context, userID, itemID string) error {
	doc, err := r.base.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if doc.Data.UserID != userID {
		return pfirestore.NotFoundError("cart_items.remove", errors.New("cart item not found"))
	}
	return r.base.Delete(ctx, itemID)
}

// Clear bulk-deletes every line owned by the user and returns the count.
func (r *CartRepository) Clear(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, errors.New("cart repository: user id is required")
	}
	return r.base.DeleteWhere(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("userId", "==", userID)
	})
}

func cartItemFromDocument(id string, doc cartItemDocument) domain.CartItem {
	return domain.CartItem{
		ID:        id,
		UserID:    doc.UserID,
		ProductID: doc.ProductID,
		Quantity:  doc.Quantity,
		Size:      doc.Size,
		AddedAt:   doc.AddedAt,
	}
}
