package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/repositories"
)

const discountIDPrefix = "dsc_"

var (
	// ErrDiscountInvalidInput signals malformed discount data on admin calls.
	ErrDiscountInvalidInput = errors.New("discount: invalid input")
	// ErrDiscountInvalid indicates the submitted code does not exist or was
	// deactivated.
	ErrDiscountInvalid = errors.New("discount: invalid code")
	// ErrDiscountExpired indicates the code's validity window has passed.
	ErrDiscountExpired = errors.New("discount: code expired")
	// ErrDiscountLimitReached indicates the code's usage limit is exhausted.
	ErrDiscountLimitReached = errors.New("discount: usage limit reached")
	// ErrDiscountNotFound indicates the code id could not be located.
	ErrDiscountNotFound = errors.New("discount: code not found")
	// ErrDiscountCodeTaken indicates another discount already uses the code.
	ErrDiscountCodeTaken = errors.New("discount: code already in use")
)

// DiscountServiceDeps bundles collaborators required to construct the discount service.
type DiscountServiceDeps struct {
	Discounts   repositories.DiscountRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type discountService struct {
	discounts repositories.DiscountRepository
	clock     func() time.Time
	newID     func() string
}

var _ DiscountService = (*discountService)(nil)

// NewDiscountService wires dependencies into a concrete DiscountService implementation.
func NewDiscountService(deps DiscountServiceDeps) (DiscountService, error) {
	if deps.Discounts == nil {
		return nil, errors.New("discount service: discount repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &discountService{
		discounts: deps.Discounts,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

// Apply validates a submitted code and returns the applicable percentage.
// Checks run in order: existence and active flag, validity window, usage
// limit. The counter is not incremented here; that happens when an order
// consuming the code is placed.
func (s *discountService) Apply(ctx context.Context, rawCode string) (AppliedDiscount, error) {
	code := strings.ToUpper(strings.TrimSpace(rawCode))
	if code == "" {
		return AppliedDiscount{}, fmt.Errorf("%w: code is required", ErrDiscountInvalidInput)
	}

	discount, err := s.discounts.FindByCode(ctx, code)
	if err != nil {
		if isRepoNotFound(err) {
			return AppliedDiscount{}, ErrDiscountInvalid
		}
		return AppliedDiscount{}, err
	}

	now := s.clock()
	if !discount.Active {
		return AppliedDiscount{}, ErrDiscountInvalid
	}
	if discount.ValidUntil != nil && now.After(*discount.ValidUntil) {
		return AppliedDiscount{}, ErrDiscountExpired
	}
	if discount.MaxUses != nil && discount.CurrentUses >= *discount.MaxUses {
		return AppliedDiscount{}, ErrDiscountLimitReached
	}

	return AppliedDiscount{
		ID:      discount.ID,
		Code:    discount.Code,
		Percent: discount.Percent,
	}, nil
}

func (s *discountService) Create(ctx context.Context, cmd UpsertDiscountCommand) (DiscountCode, error) {
	discount, err := s.buildDiscount(cmd)
	if err != nil {
		return DiscountCode{}, err
	}

	if _, err := s.discounts.FindByCode(ctx, discount.Code); err == nil {
		return DiscountCode{}, fmt.Errorf("%w: %q", ErrDiscountCodeTaken, discount.Code)
	} else if !isRepoNotFound(err) {
		return DiscountCode{}, err
	}

	now := s.clock()
	discount.ID = discountIDPrefix + s.newID()
	discount.CreatedAt = now
	discount.UpdatedAt = now

	if err := s.discounts.Insert(ctx, discount); err != nil {
		if isRepoConflict(err) {
			return DiscountCode{}, fmt.Errorf("%w: %v", ErrDiscountCodeTaken, err)
		}
		return DiscountCode{}, err
	}
	return discount, nil
}

func (s *discountService) Update(ctx context.Context, codeID string, cmd UpsertDiscountCommand) (DiscountCode, error) {
	codeID = strings.TrimSpace(codeID)
	if codeID == "" {
		return DiscountCode{}, fmt.Errorf("%w: code id is required", ErrDiscountInvalidInput)
	}

	existing, err := s.discounts.FindByID(ctx, codeID)
	if err != nil {
		if isRepoNotFound(err) {
			return DiscountCode{}, ErrDiscountNotFound
		}
		return DiscountCode{}, err
	}

	updated, err := s.buildDiscount(cmd)
	if err != nil {
		return DiscountCode{}, err
	}

	if updated.Code != existing.Code {
		if other, err := s.discounts.FindByCode(ctx, updated.Code); err == nil && other.ID != codeID {
			return DiscountCode{}, fmt.Errorf("%w: %q", ErrDiscountCodeTaken, updated.Code)
		} else if err != nil && !isRepoNotFound(err) {
			return DiscountCode{}, err
		}
	}

	updated.ID = existing.ID
	updated.CurrentUses = existing.CurrentUses
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.clock()

	if err := s.discounts.Update(ctx, updated); err != nil {
		return DiscountCode{}, err
	}
	return updated, nil
}

func (s *discountService) Delete(ctx context.Context, codeID string) error {
	codeID = strings.TrimSpace(codeID)
	if codeID == "" {
		return fmt.Errorf("%w: code id is required", ErrDiscountInvalidInput)
	}

	if _, err := s.discounts.FindByID(ctx, codeID); err != nil {
		if isRepoNotFound(err) {
			return ErrDiscountNotFound
		}
		return err
	}
	return s.discounts.Delete(ctx, codeID)
}

func (s *discountService) List(ctx context.Context, filter DiscountListFilter) (domain.CursorPage[DiscountCode], error) {
	return s.discounts.List(ctx, repositories.DiscountListFilter{
		Active:     filter.Active,
		Pagination: filter.Pagination,
	})
}

func (s *discountService) buildDiscount(cmd UpsertDiscountCommand) (DiscountCode, error) {
	code := strings.ToUpper(strings.TrimSpace(cmd.Code))
	if code == "" {
		return DiscountCode{}, fmt.Errorf("%w: code is required", ErrDiscountInvalidInput)
	}
	if cmd.Percent < 1 || cmd.Percent > 100 {
		return DiscountCode{}, fmt.Errorf("%w: percent must be between 1 and 100", ErrDiscountInvalidInput)
	}
	if cmd.MaxUses != nil && *cmd.MaxUses < 1 {
		return DiscountCode{}, fmt.Errorf("%w: max uses must be positive", ErrDiscountInvalidInput)
	}

	return DiscountCode{
		Code:       code,
		Percent:    cmd.Percent,
		MaxUses:    cmd.MaxUses,
		ValidUntil: cmd.ValidUntil,
		Active:     cmd.Active,
	}, nil
}
