package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/kitzone/api/internal/domain"
)

func newTestReviewService(t *testing.T, reviews *stubReviewRepo, products *stubProductRepo) ReviewService {
	t.Helper()
	svc, err := NewReviewService(ReviewServiceDeps{
		Reviews:  reviews,
		Products: products,
		Clock:    func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewReviewService: %v", err)
	}
	return svc
}

func TestSubmitReviewEntersModerationQueue(t *testing.T) {
	reviews := newStubReviewRepo()
	svc := newTestReviewService(t, reviews, newStubProductRepo(cartTestProduct()))

	review, err := svc.Submit(context.Background(), SubmitReviewCommand{
		ProductID:  "prd_1",
		UserID:     "user-1",
		AuthorName: "Иван",
		Rating:     5,
		Title:      "Страхотен екип",
		Comment:    "Качеството е отлично.",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !strings.HasPrefix(review.ID, "rev_") {
		t.Fatalf("unexpected id %s", review.ID)
	}
	if review.Status != domain.ReviewStatusPending {
		t.Fatalf("expected pending, got %s", review.Status)
	}
}

func TestSubmitReviewStripsMarkup(t *testing.T) {
	reviews := newStubReviewRepo()
	svc := newTestReviewService(t, reviews, newStubProductRepo(cartTestProduct()))

	review, err := svc.Submit(context.Background(), SubmitReviewCommand{
		ProductID: "prd_1",
		UserID:    "user-1",
		Rating:    4,
		Comment:   `Добре <script>alert("x")</script> изглежда`,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if strings.Contains(review.Comment, "<script>") || strings.Contains(review.Comment, "alert") {
		t.Fatalf("markup must be stripped, got %q", review.Comment)
	}
}

func TestSubmitReviewValidatesRating(t *testing.T) {
	svc := newTestReviewService(t, newStubReviewRepo(), newStubProductRepo(cartTestProduct()))

	for _, rating := range []int{0, -1, 6} {
		if _, err := svc.Submit(context.Background(), SubmitReviewCommand{
			ProductID: "prd_1", UserID: "user-1", Rating: rating, Comment: "x",
		}); !errors.Is(err, ErrReviewInvalidInput) {
			t.Fatalf("rating %d: expected ErrReviewInvalidInput, got %v", rating, err)
		}
	}
}

func TestSubmitReviewUnknownProduct(t *testing.T) {
	svc := newTestReviewService(t, newStubReviewRepo(), newStubProductRepo())

	if _, err := svc.Submit(context.Background(), SubmitReviewCommand{
		ProductID: "prd_missing", UserID: "user-1", Rating: 5, Comment: "x",
	}); !errors.Is(err, ErrReviewProductNotFound) {
		t.Fatalf("expected ErrReviewProductNotFound, got %v", err)
	}
}

func TestListApprovedFiltersStatus(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	reviews := newStubReviewRepo(
		domain.Review{ID: "rev_1", ProductID: "prd_1", Status: domain.ReviewStatusApproved, CreatedAt: now},
		domain.Review{ID: "rev_2", ProductID: "prd_1", Status: domain.ReviewStatusPending, CreatedAt: now.Add(time.Hour)},
		domain.Review{ID: "rev_3", ProductID: "prd_2", Status: domain.ReviewStatusApproved, CreatedAt: now},
	)
	svc := newTestReviewService(t, reviews, newStubProductRepo())

	page, err := svc.ListApproved(context.Background(), "prd_1", Pagination{})
	if err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "rev_1" {
		t.Fatalf("expected only approved reviews of prd_1, got %+v", page.Items)
	}
}

func TestModerationQueueDefaultsToPending(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	reviews := newStubReviewRepo(
		domain.Review{ID: "rev_1", Status: domain.ReviewStatusApproved, CreatedAt: now},
		domain.Review{ID: "rev_2", Status: domain.ReviewStatusPending, CreatedAt: now},
	)
	svc := newTestReviewService(t, reviews, newStubProductRepo())

	page, err := svc.ListForModeration(context.Background(), ReviewModerationFilter{})
	if err != nil {
		t.Fatalf("ListForModeration: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "rev_2" {
		t.Fatalf("expected pending queue, got %+v", page.Items)
	}
}

func TestModerateApproveAndReject(t *testing.T) {
	reviews := newStubReviewRepo(domain.Review{ID: "rev_1", Status: domain.ReviewStatusPending})
	svc := newTestReviewService(t, reviews, newStubProductRepo())

	approved, err := svc.Moderate(context.Background(), ModerateReviewCommand{
		ReviewID: "rev_1", Approve: true, ActorID: "admin-1",
	})
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if approved.Status != domain.ReviewStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}

	rejected, err := svc.Moderate(context.Background(), ModerateReviewCommand{
		ReviewID: "rev_1", Approve: false, ActorID: "admin-1",
	})
	if err != nil {
		t.Fatalf("Moderate: %v", err)
	}
	if rejected.Status != domain.ReviewStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
}

func TestModerateMissingReview(t *testing.T) {
	svc := newTestReviewService(t, newStubReviewRepo(), newStubProductRepo())

	if _, err := svc.Moderate(context.Background(), ModerateReviewCommand{
		ReviewID: "rev_missing", Approve: true,
	}); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}

func TestDeleteMissingReview(t *testing.T) {
	svc := newTestReviewService(t, newStubReviewRepo(), newStubProductRepo())

	if err := svc.Delete(context.Background(), "rev_missing"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("expected ErrReviewNotFound, got %v", err)
	}
}
