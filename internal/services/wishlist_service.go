package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kitzone/api/internal/repositories"
)

const wishlistItemIDPrefix = "wsh_"

var (
	// ErrWishlistInvalidInput signals malformed wishlist data.
	ErrWishlistInvalidInput = errors.New("wishlist: invalid input")
	// ErrWishlistProductNotFound indicates the saved product does not exist.
	ErrWishlistProductNotFound = errors.New("wishlist: product not found")
)

// WishlistServiceDeps bundles collaborators required to construct the wishlist service.
type WishlistServiceDeps struct {
	Wishlists repositories.WishlistRepository
	Products  repositories.ProductRepository
	Clock     func() time.Time
	IDGen     func() string
}

type wishlistService struct {
	wishlists repositories.WishlistRepository
	products  repositories.ProductRepository
	clock     func() time.Time
	newID     func() string
}

var _ WishlistService = (*wishlistService)(nil)

// NewWishlistService wires dependencies into a concrete WishlistService implementation.
func NewWishlistService(deps WishlistServiceDeps) (WishlistService, error) {
	if deps.Wishlists == nil {
		return nil, errors.New("wishlist service: wishlist repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("wishlist service: product repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &wishlistService{
		wishlists: deps.Wishlists,
		products:  deps.Products,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

func (s *wishlistService) List(ctx context.Context, userID string) ([]WishlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrWishlistInvalidInput)
	}
	return s.wishlists.ListByUser(ctx, userID)
}

func (s *wishlistService) Add(ctx context.Context, userID, productID string) (WishlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return WishlistItem{}, fmt.Errorf("%w: user id is required", ErrWishlistInvalidInput)
	}
	if strings.TrimSpace(productID) == "" {
		return WishlistItem{}, fmt.Errorf("%w: product id is required", ErrWishlistInvalidInput)
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if isRepoNotFound(err) {
			return WishlistItem{}, ErrWishlistProductNotFound
		}
		return WishlistItem{}, err
	}

	return s.wishlists.Add(ctx, WishlistItem{
		ID:        wishlistItemIDPrefix + s.newID(),
		UserID:    userID,
		ProductID: productID,
		AddedAt:   s.clock(),
	})
}

func (s *wishlistService) Remove(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrWishlistInvalidInput)
	}
	if strings.TrimSpace(productID) == "" {
		return fmt.Errorf("%w: product id is required", ErrWishlistInvalidInput)
	}
	return s.wishlists.Remove(ctx, userID, productID)
}
