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

const cartItemIDPrefix = "itm_"

// Cart lines are capped per item to keep checkout quantities sane.
const maxCartQuantity = 20

var (
	// ErrCartInvalidInput signals malformed cart data.
	ErrCartInvalidInput = errors.New("cart: invalid input")
	// ErrCartItemNotFound indicates the cart line does not exist or belongs
	// to another user.
	ErrCartItemNotFound = errors.New("cart: item not found")
	// ErrCartProductNotFound indicates the product being added does not exist.
	ErrCartProductNotFound = errors.New("cart: product not found")
	// ErrCartInsufficientStock indicates the requested quantity exceeds stock.
	ErrCartInsufficientStock = errors.New("cart: insufficient stock")
)

// CartServiceDeps bundles collaborators required to construct the cart service.
type CartServiceDeps struct {
	Carts     repositories.CartRepository
	Products  repositories.ProductRepository
	Discounts DiscountService
	Pricing   PricingRules
	Clock     func() time.Time
	IDGen     func() string
}

type cartService struct {
	carts     repositories.CartRepository
	products  repositories.ProductRepository
	discounts DiscountService
	pricing   PricingRules
	clock     func() time.Time
	newID     func() string
}

var _ CartService = (*cartService)(nil)

// NewCartService wires dependencies into a concrete CartService implementation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Carts == nil {
		return nil, errors.New("cart service: cart repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("cart service: product repository is required")
	}

	pricing := deps.Pricing
	if pricing.Currency == "" {
		pricing = DefaultPricingRules()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGen
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &cartService{
		carts:     deps.Carts,
		products:  deps.Products,
		discounts: deps.Discounts,
		pricing:   pricing,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

func (s *cartService) ListItems(ctx context.Context, userID string) ([]CartItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	return s.carts.ListByUser(ctx, userID)
}

// AddItem appends a product line to the cart. Adding a product and size that
// is already in the cart merges into the existing line instead of creating a
// duplicate.
func (s *cartService) AddItem(ctx context.Context, cmd AddCartItemCommand) (CartItem, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return CartItem{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	if strings.TrimSpace(cmd.ProductID) == "" {
		return CartItem{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if cmd.Quantity < 1 || cmd.Quantity > maxCartQuantity {
		return CartItem{}, fmt.Errorf("%w: quantity must be between 1 and %d", ErrCartInvalidInput, maxCartQuantity)
	}

	product, err := s.products.FindByID(ctx, cmd.ProductID)
	if err != nil {
		if isRepoNotFound(err) {
			return CartItem{}, ErrCartProductNotFound
		}
		return CartItem{}, err
	}

	size := strings.TrimSpace(cmd.Size)
	if len(product.Sizes) > 0 && !containsSize(product.Sizes, size) {
		return CartItem{}, fmt.Errorf("%w: size %q not offered", ErrCartInvalidInput, size)
	}

	item := CartItem{
		ID:        cartItemIDPrefix + s.newID(),
		UserID:    cmd.UserID,
		ProductID: cmd.ProductID,
		Quantity:  cmd.Quantity,
		Size:      size,
		AddedAt:   s.clock(),
	}

	existing, err := s.carts.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return CartItem{}, err
	}
	for _, line := range existing {
		if line.ProductID == cmd.ProductID && line.Size == size {
			item.ID = line.ID
			item.Quantity = line.Quantity + cmd.Quantity
			item.AddedAt = line.AddedAt
			break
		}
	}

	if product.Stock < item.Quantity {
		return CartItem{}, fmt.Errorf("%w: %d available", ErrCartInsufficientStock, product.Stock)
	}

	return s.carts.Upsert(ctx, item)
}

func (s *cartService) UpdateQuantity(ctx context.Context, cmd UpdateCartQuantityCommand) (CartItem, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return CartItem{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	if strings.TrimSpace(cmd.ItemID) == "" {
		return CartItem{}, fmt.Errorf("%w: item id is required", ErrCartInvalidInput)
	}
	if cmd.Quantity < 1 || cmd.Quantity > maxCartQuantity {
		return CartItem{}, fmt.Errorf("%w: quantity must be between 1 and %d", ErrCartInvalidInput, maxCartQuantity)
	}

	item, err := s.carts.UpdateQuantity(ctx, cmd.UserID, cmd.ItemID, cmd.Quantity)
	if err != nil {
		if isRepoNotFound(err) {
			return CartItem{}, ErrCartItemNotFound
		}
		return CartItem{}, err
	}
	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: item id is required", ErrCartInvalidInput)
	}

	if err := s.carts.Remove(ctx, userID, itemID); err != nil {
		if isRepoNotFound(err) {
			return ErrCartItemNotFound
		}
		return err
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}
	return s.carts.Clear(ctx, userID)
}

// Estimate prices the current cart the same way checkout will, so the
// storefront can show totals before an order is placed.
func (s *cartService) Estimate(ctx context.Context, cmd EstimateCartCommand) (CartEstimate, error) {
	if strings.TrimSpace(cmd.UserID) == "" {
		return CartEstimate{}, fmt.Errorf("%w: user id is required", ErrCartInvalidInput)
	}

	items, err := s.carts.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return CartEstimate{}, err
	}

	var applied AppliedDiscount
	if cmd.DiscountCode != "" {
		if s.discounts == nil {
			return CartEstimate{}, fmt.Errorf("%w: discount codes are not accepted", ErrCartInvalidInput)
		}
		applied, err = s.discounts.Apply(ctx, cmd.DiscountCode)
		if err != nil {
			return CartEstimate{}, err
		}
	}

	lines := make([]PricedLine, 0, len(items))
	for _, item := range items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if isRepoNotFound(err) {
				continue
			}
			return CartEstimate{}, err
		}
		lines = append(lines, PricedLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Size:        item.Size,
		})
	}

	totals := s.pricing.Quote(lines, applied.Percent)
	return CartEstimate{
		Currency:     s.pricing.Currency,
		Subtotal:     totals.Subtotal,
		Discount:     totals.Discount,
		Shipping:     totals.Shipping,
		Total:        totals.Total,
		DiscountCode: optionalString(applied.Code),
		FreeShipping: totals.Subtotal > 0 && totals.Shipping == 0,
	}, nil
}

func containsSize(sizes []string, size string) bool {
	for _, candidate := range sizes {
		if strings.EqualFold(candidate, size) {
			return true
		}
	}
	return false
}
