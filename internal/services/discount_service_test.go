package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/kitzone/api/internal/domain"
)

func testDiscount(id, code string, percent int) domain.DiscountCode {
	return domain.DiscountCode{
		ID:        id,
		Code:      code,
		Percent:   percent,
		Active:    true,
		CreatedAt: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
	}
}

func newTestDiscountService(t *testing.T, repo *stubDiscountRepo) DiscountService {
	t.Helper()
	svc, err := NewDiscountService(DiscountServiceDeps{
		Discounts:   repo,
		Clock:       func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) },
		IDGenerator: func() string { return "01HXTESTDISCOUNT" },
	})
	if err != nil {
		t.Fatalf("NewDiscountService: %v", err)
	}
	return svc
}

func TestApplyNormalisesCode(t *testing.T) {
	repo := newStubDiscountRepo(testDiscount("dsc_1", "SUMMER10", 10))
	svc := newTestDiscountService(t, repo)

	applied, err := svc.Apply(context.Background(), "  summer10 ")
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if applied.ID != "dsc_1" || applied.Code != "SUMMER10" || applied.Percent != 10 {
		t.Fatalf("unexpected result %+v", applied)
	}
}

func TestApplyUnknownCodeInvalid(t *testing.T) {
	svc := newTestDiscountService(t, newStubDiscountRepo())

	if _, err := svc.Apply(context.Background(), "NOPE"); !errors.Is(err, ErrDiscountInvalid) {
		t.Fatalf("expected ErrDiscountInvalid, got %v", err)
	}
}

func TestApplyInactiveCodeInvalid(t *testing.T) {
	discount := testDiscount("dsc_1", "SUMMER10", 10)
	discount.Active = false
	svc := newTestDiscountService(t, newStubDiscountRepo(discount))

	if _, err := svc.Apply(context.Background(), "SUMMER10"); !errors.Is(err, ErrDiscountInvalid) {
		t.Fatalf("expected ErrDiscountInvalid, got %v", err)
	}
}

func TestApplyExpiredCode(t *testing.T) {
	discount := testDiscount("dsc_1", "SUMMER10", 10)
	discount.ValidUntil = valuePtr(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	svc := newTestDiscountService(t, newStubDiscountRepo(discount))

	if _, err := svc.Apply(context.Background(), "SUMMER10"); !errors.Is(err, ErrDiscountExpired) {
		t.Fatalf("expected ErrDiscountExpired, got %v", err)
	}
}

func TestApplyExhaustedCode(t *testing.T) {
	discount := testDiscount("dsc_1", "SUMMER10", 10)
	discount.MaxUses = valuePtr(5)
	discount.CurrentUses = 5
	svc := newTestDiscountService(t, newStubDiscountRepo(discount))

	if _, err := svc.Apply(context.Background(), "SUMMER10"); !errors.Is(err, ErrDiscountLimitReached) {
		t.Fatalf("expected ErrDiscountLimitReached, got %v", err)
	}
}

func TestApplyEmptyCodeRejected(t *testing.T) {
	svc := newTestDiscountService(t, newStubDiscountRepo())

	if _, err := svc.Apply(context.Background(), "   "); !errors.Is(err, ErrDiscountInvalidInput) {
		t.Fatalf("expected ErrDiscountInvalidInput, got %v", err)
	}
}

func TestCreateDiscountUppercasesAndPrefixesID(t *testing.T) {
	repo := newStubDiscountRepo()
	svc := newTestDiscountService(t, repo)

	created, err := svc.Create(context.Background(), UpsertDiscountCommand{
		Code: "welcome5", Percent: 5, Active: true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Code != "WELCOME5" {
		t.Fatalf("expected uppercase code, got %s", created.Code)
	}
	if created.ID != "dsc_01HXTESTDISCOUNT" {
		t.Fatalf("unexpected id %s", created.ID)
	}
}

func TestCreateDiscountRejectsDuplicateCode(t *testing.T) {
	repo := newStubDiscountRepo(testDiscount("dsc_1", "WELCOME5", 5))
	svc := newTestDiscountService(t, repo)

	if _, err := svc.Create(context.Background(), UpsertDiscountCommand{
		Code: "welcome5", Percent: 5, Active: true,
	}); !errors.Is(err, ErrDiscountCodeTaken) {
		t.Fatalf("expected ErrDiscountCodeTaken, got %v", err)
	}
}

func TestCreateDiscountValidatesPercent(t *testing.T) {
	svc := newTestDiscountService(t, newStubDiscountRepo())

	for _, percent := range []int{0, -1, 101} {
		if _, err := svc.Create(context.Background(), UpsertDiscountCommand{
			Code: "X", Percent: percent, Active: true,
		}); !errors.Is(err, ErrDiscountInvalidInput) {
			t.Fatalf("percent %d: expected ErrDiscountInvalidInput, got %v", percent, err)
		}
	}
}

func TestUpdateDiscountKeepsUsageCount(t *testing.T) {
	discount := testDiscount("dsc_1", "WELCOME5", 5)
	discount.CurrentUses = 3
	repo := newStubDiscountRepo(discount)
	svc := newTestDiscountService(t, repo)

	updated, err := svc.Update(context.Background(), "dsc_1", UpsertDiscountCommand{
		Code: "WELCOME5", Percent: 7, Active: true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Percent != 7 || updated.CurrentUses != 3 {
		t.Fatalf("unexpected update %+v", updated)
	}
}

func TestUpdateMissingDiscount(t *testing.T) {
	svc := newTestDiscountService(t, newStubDiscountRepo())

	if _, err := svc.Update(context.Background(), "dsc_missing", UpsertDiscountCommand{
		Code: "X", Percent: 5, Active: true,
	}); !errors.Is(err, ErrDiscountNotFound) {
		t.Fatalf("expected ErrDiscountNotFound, got %v", err)
	}
}

func TestDeleteMissingDiscount(t *testing.T) {
	svc := newTestDiscountService(t, newStubDiscountRepo())

	if err := svc.Delete(context.Background(), "dsc_missing"); !errors.Is(err, ErrDiscountNotFound) {
		t.Fatalf("expected ErrDiscountNotFound, got %v", err)
	}
}
