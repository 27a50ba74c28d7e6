package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/repositories"
)

const reviewIDPrefix = "rev_"

const (
	maxReviewTitleLen   = 120
	maxReviewCommentLen = 2000
)

var (
	// ErrReviewInvalidInput signals malformed review data.
	ErrReviewInvalidInput = errors.New("review: invalid input")
	// ErrReviewNotFound indicates the review could not be located.
	ErrReviewNotFound = errors.New("review: not found")
	// ErrReviewProductNotFound indicates the reviewed product does not exist.
	ErrReviewProductNotFound = errors.New("review: product not found")
)

// ReviewServiceDeps bundles collaborators required to construct the review service.
type ReviewServiceDeps struct {
	Reviews  repositories.ReviewRepository
	Products repositories.ProductRepository
	Clock    func() time.Time
	IDGen    func() string
}

type reviewService struct {
	reviews   repositories.ReviewRepository
	products  repositories.ProductRepository
	sanitizer *bluemonday.Policy
	clock     func() time.Time
	newID     func() string
}

var _ ReviewService = (*reviewService)(nil)

// NewReviewService wires dependencies into a concrete ReviewService implementation.
func NewReviewService(deps ReviewServiceDeps) (ReviewService, error) {
	if deps.Reviews == nil {
		return nil, errors.New("review service: review repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("review service: product repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &reviewService{
		reviews:   deps.Reviews,
		products:  deps.Products,
		sanitizer: bluemonday.StrictPolicy(),
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

// Submit files a review. All submissions enter the moderation queue as
// pending; nothing shows on the storefront until a moderator approves it.
func (s *reviewService) Submit(ctx context.Context, cmd SubmitReviewCommand) (Review, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return Review{}, fmt.Errorf("%w: user id is required", ErrReviewInvalidInput)
	}
	if strings.TrimSpace(cmd.ProductID) == "" {
		return Review{}, fmt.Errorf("%w: product id is required", ErrReviewInvalidInput)
	}
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return Review{}, fmt.Errorf("%w: rating must be between 1 and 5", ErrReviewInvalidInput)
	}

	title := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Title))
	comment := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Comment))
	author := strings.TrimSpace(s.sanitizer.Sanitize(cmd.AuthorName))
	if comment == "" {
		return Review{}, fmt.Errorf("%w: comment is required", ErrReviewInvalidInput)
	}
	if len(title) > maxReviewTitleLen {
		return Review{}, fmt.Errorf("%w: title too long", ErrReviewInvalidInput)
	}
	if len(comment) > maxReviewCommentLen {
		return Review{}, fmt.Errorf("%w: comment too long", ErrReviewInvalidInput)
	}

	if _, err := s.products.FindByID(ctx, cmd.ProductID); err != nil {
		if isRepoNotFound(err) {
			return Review{}, ErrReviewProductNotFound
		}
		return Review{}, err
	}

	now := s.clock()
	review := Review{
		ID:         reviewIDPrefix + s.newID(),
		ProductID:  cmd.ProductID,
		UserID:     cmd.UserID,
		AuthorName: author,
		Rating:     cmd.Rating,
		Title:      title,
		Comment:    comment,
		Status:     domain.ReviewStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s.reviews.Insert(ctx, review)
}

func (s *reviewService) ListApproved(ctx context.Context, productID string, page Pagination) (domain.CursorPage[Review], error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.CursorPage[Review]{}, fmt.Errorf("%w: product id is required", ErrReviewInvalidInput)
	}
	return s.reviews.ListByProduct(ctx, productID, repositories.ReviewListFilter{
		Status:     []domain.ReviewStatus{domain.ReviewStatusApproved},
		Pagination: page,
	})
}

func (s *reviewService) ListForModeration(ctx context.Context, filter ReviewModerationFilter) (domain.CursorPage[Review], error) {
	status := filter.Status
	if len(status) == 0 {
		status = []domain.ReviewStatus{domain.ReviewStatusPending}
	}
	return s.reviews.List(ctx, repositories.ReviewListFilter{
		Status:     status,
		Pagination: filter.Pagination,
	})
}

func (s *reviewService) Moderate(ctx context.Context, cmd ModerateReviewCommand) (Review, error) {
	reviewID := strings.TrimSpace(cmd.ReviewID)
	if reviewID == "" {
		return Review{}, fmt.Errorf("%w: review id is required", ErrReviewInvalidInput)
	}

	status := domain.ReviewStatusRejected
	if cmd.Approve {
		status = domain.ReviewStatusApproved
	}

	review, err := s.reviews.UpdateStatus(ctx, reviewID, status, repositories.ReviewModerationUpdate{
		ModeratedBy: cmd.ActorID,
		ModeratedAt: s.clock(),
	})
	if err != nil {
		if isRepoNotFound(err) {
			return Review{}, ErrReviewNotFound
		}
		return Review{}, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, reviewID string) error {
	reviewID = strings.TrimSpace(reviewID)
	if reviewID == "" {
		return fmt.Errorf("%w: review id is required", ErrReviewInvalidInput)
	}

	if _, err := s.reviews.FindByID(ctx, reviewID); err != nil {
		if isRepoNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}
	return s.reviews.Delete(ctx, reviewID)
}
