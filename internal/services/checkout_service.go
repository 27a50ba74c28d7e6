package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/notifications"
	"github.com/kitzone/api/internal/repositories"
)

const (
	orderIDPrefix     = "ord_"
	orderItemIDPrefix = "itm_"
)

var (
	// ErrCheckoutInvalidInput signals missing or malformed checkout data.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCartEmpty indicates the user tried to check out an empty cart.
	ErrCartEmpty = errors.New("checkout: cart is empty")
	// ErrCheckoutProductUnavailable indicates a cart line references a product
	// that no longer exists in the catalog.
	ErrCheckoutProductUnavailable = errors.New("checkout: product no longer available")
)

// CheckoutServiceDeps bundles collaborators required to construct the checkout service.
type CheckoutServiceDeps struct {
	Carts     repositories.CartRepository
	Products  repositories.ProductRepository
	Orders    repositories.OrderRepository
	Discounts DiscountService
	Store     repositories.DiscountRepository
	Numbers   CounterService
	Mailer    notifications.Mailer
	Events    OrderEventPublisher
	Pricing   PricingRules
	Clock     func() time.Time
	IDGen     func() string
	Dispatch  func(func())
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type checkoutService struct {
	carts     repositories.CartRepository
	products  repositories.ProductRepository
	orders    repositories.OrderRepository
	discounts DiscountService
	store     repositories.DiscountRepository
	numbers   CounterService
	mailer    notifications.Mailer
	events    OrderEventPublisher
	pricing   PricingRules
	clock     func() time.Time
	newID     func() string
	dispatch  func(func())
	logger    func(context.Context, string, map[string]any)
}

var _ CheckoutService = (*checkoutService)(nil)

// NewCheckoutService wires dependencies into a concrete CheckoutService implementation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Carts == nil {
		return nil, errors.New("checkout service: cart repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("checkout service: product repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order repository is required")
	}
	if deps.Discounts == nil {
		return nil, errors.New("checkout service: discount service is required")
	}
	if deps.Store == nil {
		return nil, errors.New("checkout service: discount repository is required")
	}
	if deps.Numbers == nil {
		return nil, errors.New("checkout service: counter service is required")
	}
	if deps.Mailer == nil {
		deps.Mailer = notifications.NoopMailer{}
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
	dispatch := deps.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { go fn() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &checkoutService{
		carts:     deps.Carts,
		products:  deps.Products,
		orders:    deps.Orders,
		discounts: deps.Discounts,
		store:     deps.Store,
		numbers:   deps.Numbers,
		mailer:    deps.Mailer,
		events:    deps.Events,
		pricing:   pricing,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:    idGen,
		dispatch: dispatch,
		logger:   logger,
	}, nil
}

// Submit places an order from the caller's cart. The sequence is: validate
// input and the discount code, price the cart against current product prices,
// insert the order and its items, consume a discount use, clear the cart and
// dispatch the confirmation email. Writes after the order insert are not
// rolled back on failure.
func (s *checkoutService) Submit(ctx context.Context, cmd CheckoutCommand) (Order, error) {
	if err := s.validate(cmd); err != nil {
		return Order{}, err
	}

	cartItems, err := s.carts.ListByUser(ctx, cmd.UserID)
	if err != nil {
		return Order{}, fmt.Errorf("checkout: load cart: %w", err)
	}
	if len(cartItems) == 0 {
		return Order{}, ErrCartEmpty
	}

	var applied AppliedDiscount
	if cmd.DiscountCode != "" {
		applied, err = s.discounts.Apply(ctx, cmd.DiscountCode)
		if err != nil {
			return Order{}, err
		}
	}

	lines, err := s.priceLines(ctx, cartItems)
	if err != nil {
		return Order{}, err
	}
	totals := s.pricing.Quote(lines, applied.Percent)

	number, err := s.numbers.NextOrderNumber(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("checkout: order number: %w", err)
	}

	now := s.clock()
	order := Order{
		ID:              orderIDPrefix + s.newID(),
		Number:          number,
		UserID:          cmd.UserID,
		Status:          domain.OrderStatusPending,
		Totals:          totals,
		Currency:        s.pricing.Currency,
		DiscountCode:    optionalString(applied.Code),
		PaymentMethod:   cmd.PaymentMethod,
		ShippingAddress: cmd.ShippingAddr,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItem{
			ID:          orderItemIDPrefix + s.newID(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Size:        line.Size,
		})
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return Order{}, fmt.Errorf("checkout: insert order: %w", err)
	}
	if err := s.orders.InsertItems(ctx, order.ID, items); err != nil {
		return Order{}, fmt.Errorf("checkout: insert order items: %w", err)
	}
	order.Items = items

	if applied.ID != "" {
		if _, err := s.store.ConsumeUse(ctx, applied.ID, now); err != nil {
			// The discount was valid when priced; a failed increment does not
			// unwind an already placed order.
			s.logger(ctx, "checkout.discount.consume.failed", map[string]any{
				"order_id":    order.ID,
				"discount_id": applied.ID,
				"error":       err.Error(),
			})
		}
	}

	if _, err := s.carts.Clear(ctx, cmd.UserID); err != nil {
		s.logger(ctx, "checkout.cart.clear.failed", map[string]any{
			"order_id": order.ID,
			"user_id":  cmd.UserID,
			"error":    err.Error(),
		})
	}

	s.sendConfirmation(ctx, order, cmd.Email)
	s.publishCreated(ctx, order)

	return order, nil
}

func (s *checkoutService) validate(cmd CheckoutCommand) error {
	if strings.TrimSpace(cmd.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrCheckoutInvalidInput)
	}
	switch cmd.PaymentMethod {
	case domain.PaymentMethodCard, domain.PaymentMethodCash:
	default:
		return fmt.Errorf("%w: unknown payment method %q", ErrCheckoutInvalidInput, cmd.PaymentMethod)
	}
	if strings.TrimSpace(cmd.ShippingAddr.Street) == "" {
		return fmt.Errorf("%w: street is required", ErrCheckoutInvalidInput)
	}
	if strings.TrimSpace(cmd.ShippingAddr.City) == "" {
		return fmt.Errorf("%w: city is required", ErrCheckoutInvalidInput)
	}
	if strings.TrimSpace(cmd.ShippingAddr.PostalCode) == "" {
		return fmt.Errorf("%w: postal code is required", ErrCheckoutInvalidInput)
	}
	return nil
}

// priceLines resolves every cart line against the catalog so the order
// snapshots current prices, not the prices at the time items were added.
func (s *checkoutService) priceLines(ctx context.Context, cartItems []CartItem) ([]PricedLine, error) {
	lines := make([]PricedLine, 0, len(cartItems))
	for _, item := range cartItems {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			if isRepoNotFound(err) {
				return nil, fmt.Errorf("%w: %s", ErrCheckoutProductUnavailable, item.ProductID)
			}
			return nil, fmt.Errorf("checkout: load product %s: %w", item.ProductID, err)
		}
		lines = append(lines, PricedLine{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Size:        item.Size,
		})
	}
	return lines, nil
}

// sendConfirmation dispatches the confirmation email without blocking the
// request. Failures are logged and never surfaced to the caller.
func (s *checkoutService) sendConfirmation(ctx context.Context, order Order, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return
	}

	detached := context.WithoutCancel(ctx)
	s.dispatch(func() {
		subject, body := notifications.OrderConfirmation(order)
		if err := s.mailer.Send(detached, email, subject, body); err != nil {
			s.logger(detached, "checkout.confirmation.send.failed", map[string]any{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	})
}

func (s *checkoutService) publishCreated(ctx context.Context, order Order) {
	if s.events == nil {
		return
	}
	_, err := s.events.PublishOrderEvent(ctx, OrderEventMessage{
		Event:       orderEventCreated,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		UserID:      order.UserID,
		Status:      string(order.Status),
		Total:       order.Totals.Total,
		OccurredAt:  order.CreatedAt,
	})
	if err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}
