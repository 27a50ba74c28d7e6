package firestore

import (
	"time"

	"cloud.google.com/go/firestore"

	"github.com/kitzone/api/internal/platform/pagination"
)

// Collection names shared by the Firestore-backed repositories.
const (
	productsCollection   = "products"
	cartItemsCollection  = "cart_items"
	wishlistCollection   = "wishlist_items"
	reviewsCollection    = "reviews"
	ordersCollection     = "orders"
	orderItemsCollection = "order_items"
	discountsCollection  = "discount_codes"
	profilesCollection   = "profiles"
	countersCollection   = "counters"
)

// pageCursor applies an encoded page token to a query ordered by createdAt
// descending, and returns the query untouched when the token is empty.
func pageCursor(query firestore.Query, token string) (firestore.Query, error) {
	cursor, err := pagination.DecodeToken(token)
	if err != nil {
		return query, err
	}
	if len(cursor.StartAfter) > 0 {
		values := make([]any, 0, len(cursor.StartAfter))
		for _, raw := range cursor.StartAfter {
			// Timestamp boundaries round-trip through the token as strings.
			if text, ok := raw.(string); ok {
				if ts, err := time.Parse(time.RFC3339Nano, text); err == nil {
					values = append(values, ts)
					continue
				}
			}
			values = append(values, raw)
		}
		query = query.StartAfter(values...)
	}
	return query, nil
}

// nextPageToken builds the token pointing after the given createdAt boundary.
func nextPageToken(boundary time.Time) string {
	token, err := pagination.EncodeToken(pagination.Cursor{
		StartAfter: []any{boundary.Format(time.RFC3339Nano)},
	})
	if err != nil {
		return ""
	}
	return token
}

func optionalTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	utc := value.UTC()
	return &utc
}
