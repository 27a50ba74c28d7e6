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

type wishlistItemDocument struct {
	UserID    string    `firestore:"userId"`
	ProductID string    `firestore:"productId"`
	AddedAt   time.Time `firestore:"addedAt"`
}

// WishlistRepository stores saved products, one document per (user, product).
type WishlistRepository struct {
	base *pfirestore.BaseRepository[wishlistItemDocument]
}

var _ repositories.WishlistRepository = (*WishlistRepository)(nil)

// NewWishlistRepository constructs a Firestore-backed wishlist repository.
func NewWishlistRepository(provider *pfirestore.Provider) (*WishlistRepository, error) {
	if provider == nil {
		return nil, errors.New("wishlist repository requires firestore provider")
	}
	return &WishlistRepository{
		base: pfirestore.NewBaseRepository[wishlistItemDocument](provider, wishlistCollection, nil, nil),
	}, nil
}

// ListByUser returns every saved product for the user, newest first.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.New("wishlist repository: user id is required")
	}
	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		return query.Where("userId", "==", userID).OrderBy("addedAt", firestore.Desc)
	})
	if err != nil {
		return nil, err
	}
	items := make([]domain.WishlistItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, domain.WishlistItem{
			ID:        doc.ID,
			UserID:    doc.Data.UserID,
			ProductID: doc.Data.ProductID,
			AddedAt:   doc.Data.AddedAt,
		})
	}
	return items, nil
}

// Add saves a product, keyed deterministically so repeat saves collapse into
// the same document.
func (r *WishlistRepository) Add(ctx context.Context, item domain.WishlistItem) (domain.WishlistItem, error) {
	if strings.TrimSpace(item.UserID) == "" || strings.TrimSpace(item.ProductID) == "" {
		return domain.WishlistItem{}, errors.New("wishlist repository: user id and product id are required")
	}
	id := wishlistDocID(item.UserID, item.ProductID)
	doc := wishlistItemDocument{
		UserID:    item.UserID,
		ProductID: item.ProductID,
		AddedAt:   item.AddedAt.UTC(),
	}
	if err := r.base.Set(ctx, id, doc); err != nil {
		return domain.WishlistItem{}, err
	}
	item.ID = id
	return item, nil
}

// Remove drops the saved product when present.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(productID) == "" {
		return errors.New("wishlist repository: user id and product id are required")
	}
	return r.base.Delete(ctx, wishlistDocID(userID, productID))
}

func wishlistDocID(userID, productID string) string {
	return userID + ":" + productID
}
