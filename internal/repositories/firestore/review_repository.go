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

type reviewDocument struct {
	ProductID   string     `firestore:"productId"`
	UserID      string     `firestore:"userId"`
	AuthorName  string     `firestore:"authorName,omitempty"`
	Rating      int        `firestore:"rating"`
	Title       string     `firestore:"title,omitempty"`
	Comment     string     `firestore:"comment,omitempty"`
	Status      string     `firestore:"status"`
	ModeratedBy string     `firestore:"moderatedBy,omitempty"`
	ModeratedAt *time.Time `firestore:"moderatedAt,omitempty"`
	CreatedAt   time.Time  `firestore:"createdAt"`
	UpdatedAt   time.Time  `firestore:"updatedAt"`
}

// ReviewRepository persists product reviews and their moderation state.
type ReviewRepository struct {
	base *pfirestore.BaseRepository[reviewDocument]
}

var _ repositories.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository constructs a Firestore-backed review repository.
func NewReviewRepository(provider *pfirestore.Provider) (*ReviewRepository, error) {
	if provider == nil {
		return nil, errors.New("review repository requires firestore provider")
	}
	return &ReviewRepository{
		base: pfirestore.NewBaseRepository[reviewDocument](provider, reviewsCollection, nil, nil),
	}, nil
}

// Insert creates a review document.
func (r *ReviewRepository) Insert(ctx context.Context, review domain.Review) (domain.Review, error) {
	if strings.TrimSpace(review.ID) == "" {
		return domain.Review{}, errors.New("review repository: review id is required")
	}
	doc := reviewDocument{
		ProductID:  review.ProductID,
		UserID:     review.UserID,
		AuthorName: strings.TrimSpace(review.AuthorName),
		Rating:     review.Rating,
		Title:      strings.TrimSpace(review.Title),
		Comment:    review.Comment,
		Status:     string(review.Status),
		CreatedAt:  review.CreatedAt.UTC(),
		UpdatedAt:  review.UpdatedAt.UTC(),
	}
	if err := r.base.Create(ctx, review.ID, doc); err != nil {
		return domain.Review{}, err
	}
	return reviewFromDocument(review.ID, doc), nil
}

// FindByID loads a single review.
func (r *ReviewRepository) FindByID(ctx context.Context, reviewID string) (domain.Review, error) {
	doc, err := r.base.Get(ctx, reviewID)
	if err != nil {
		return domain.Review{}, err
	}
	return reviewFromDocument(doc.ID, doc.Data), nil
}

// ListByProduct returns reviews for a product, filtered by status when given.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string, filter repositories.ReviewListFilter) (domain.CursorPage[domain.Review], error) {
	if strings.TrimSpace(productID) == "" {
		return domain.CursorPage[domain.Review]{}, errors.New("review repository: product id is required")
	}
	return r.list(ctx, filter, func(query firestore.Query) firestore.Query {
		return query.Where("productId", "==", productID)
	})
}

// List returns reviews across products, for the moderation queue.
func (r *ReviewRepository) List(ctx context.Context, filter repositories.ReviewListFilter) (domain.CursorPage[domain.Review], error) {
	return r.list(ctx, filter, nil)
}

func (r *ReviewRepository) list(ctx context.Context, filter repositories.ReviewListFilter, scope pfirestore.QueryBuilder) (domain.CursorPage[domain.Review], error) {
	pageSize := filter.Pagination.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	docs, err := r.base.Query(ctx, func(query firestore.Query) firestore.Query {
		if scope != nil {
			query = scope(query)
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
		query = query.OrderBy("createdAt", firestore.Desc)
		withCursor, cursorErr := pageCursor(query, filter.Pagination.PageToken)
		if cursorErr == nil {
			query = withCursor
		}
		return query.Limit(pageSize + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Review]{}, err
	}

	page := domain.CursorPage[domain.Review]{}
	for i, doc := range docs {
		if i == pageSize {
			page.NextPageToken = nextPageToken(docs[i-1].Data.CreatedAt)
			break
		}
		page.Items = append(page.Items, reviewFromDocument(doc.ID, doc.Data))
	}
	return page, nil
}

// UpdateStatus applies a moderation decision.
func (r *ReviewRepository) UpdateStatus(ctx context.Context, reviewID string, status domain.ReviewStatus, update repositories.ReviewModerationUpdate) (domain.Review, error) {
	moderatedAt := update.ModeratedAt.UTC()
	err := r.base.Update(ctx, reviewID, []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "moderatedBy", Value: update.ModeratedBy},
		{Path: "moderatedAt", Value: moderatedAt},
		{Path: "updatedAt", Value: moderatedAt},
	})
	if err != nil {
		return domain.Review{}, err
	}
	return r.FindByID(ctx, reviewID)
}

// Delete removes the review outright.
func (r *ReviewRepository) Delete(ctx context.Context, reviewID string) error {
	return r.base.Delete(ctx, reviewID)
}

func reviewFromDocument(id string, doc reviewDocument) domain.Review {
	return domain.Review{
		ID:         id,
		ProductID:  doc.ProductID,
		UserID:     doc.UserID,
		AuthorName: doc.AuthorName,
		Rating:     doc.Rating,
		Title:      doc.Title,
		Comment:    doc.Comment,
		Status:     domain.ReviewStatus(doc.Status),
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}
