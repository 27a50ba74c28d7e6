package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/notifications"
	"github.com/kitzone/api/internal/repositories"
)

const (
	orderEventCreated       = "order.created"
	orderEventStatusChanged = "order.status_changed"

	// CustomerActionCancel asks to cancel an order before fulfilment.
	CustomerActionCancel = "cancel"
	// CustomerActionReturn asks to return a delivered order.
	CustomerActionReturn = "return"
)

var (
	// ErrOrderInvalidInput signals the caller provided invalid data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderNotFound indicates the order could not be located or does not
	// belong to the caller.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderActionNotAllowed indicates the order's current status does not
	// permit the requested customer action.
	ErrOrderActionNotAllowed = errors.New("order: action not allowed in current status")
)

// customerTransitions restrict what a customer may do with their own order.
// Cancelling is possible until fulfilment starts shipping; returning only
// from delivered.
var customerTransitions = map[string]map[domain.OrderStatus]domain.OrderStatus{
	CustomerActionCancel: {
		domain.OrderStatusPending:    domain.OrderStatusCancelled,
		domain.OrderStatusProcessing: domain.OrderStatusCancelled,
	},
	CustomerActionReturn: {
		domain.OrderStatusDelivered: domain.OrderStatusReturnRequested,
	},
}

// adminLockedStatuses are terminal for staff: once an order is delivered or
// returned, admin transitions are rejected informationally instead of erroring.
var adminLockedStatuses = map[domain.OrderStatus]string{
	domain.OrderStatusDelivered: "order is already delivered; its status can no longer be changed",
	domain.OrderStatusReturned:  "order is already returned; its status can no longer be changed",
}

// OrderServiceDeps bundles collaborators required to construct the order service.
type OrderServiceDeps struct {
	Orders     repositories.OrderRepository
	Profiles   repositories.ProfileRepository
	Mailer     notifications.Mailer
	StaffEmail string
	Events     OrderEventPublisher
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
	// Dispatch runs the staff notification; defaults to a goroutine.
	Dispatch func(func())
}

type orderService struct {
	orders     repositories.OrderRepository
	profiles   repositories.ProfileRepository
	mailer     notifications.Mailer
	staffEmail string
	events     OrderEventPublisher
	clock      func() time.Time
	logger     func(context.Context, string, map[string]any)
	dispatch   func(func())
}

var _ OrderService = (*orderService)(nil)

// NewOrderService wires dependencies into a concrete OrderService implementation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	mailer := deps.Mailer
	if mailer == nil {
		mailer = notifications.NoopMailer{}
	}
	dispatch := deps.Dispatch
	if dispatch == nil {
		dispatch = func(fn func()) { go fn() }
	}

	return &orderService{
		orders:     deps.Orders,
		profiles:   deps.Profiles,
		mailer:     mailer,
		staffEmail: strings.TrimSpace(deps.StaffEmail),
		events:     deps.Events,
		clock: func() time.Time {
			return clock().UTC()
		},
		logger:   logger,
		dispatch: dispatch,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if isRepoNotFound(err) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	return order, nil
}

func (s *orderService) ListMine(ctx context.Context, userID string, page Pagination) (domain.CursorPage[Order], error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.CursorPage[Order]{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	return s.orders.List(ctx, repositories.OrderListFilter{
		UserID:     userID,
		Pagination: page,
	})
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderListFilter) (domain.CursorPage[Order], error) {
	return s.orders.List(ctx, repositories.OrderListFilter{
		UserID:     strings.TrimSpace(filter.UserID),
		Status:     filter.Status,
		DateRange:  domain.RangeQuery[time.Time]{From: filter.From, To: filter.To},
		Pagination: filter.Pagination,
	})
}

// CustomerAction applies a customer's cancel or return request to their own
// order. An order owned by someone else is reported as not found rather than
// forbidden. A return request additionally notifies staff, best effort.
func (s *orderService) CustomerAction(ctx context.Context, cmd CustomerOrderActionCommand) (Order, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	userID := strings.TrimSpace(cmd.UserID)
	action := strings.ToLower(strings.TrimSpace(cmd.Action))

	if orderID == "" {
		return Order{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if userID == "" {
		return Order{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	table, ok := customerTransitions[action]
	if !ok {
		return Order{}, fmt.Errorf("%w: unknown action %q", ErrOrderInvalidInput, action)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if isRepoNotFound(err) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, err
	}
	if order.UserID != userID {
		return Order{}, ErrOrderNotFound
	}

	target, ok := table[order.Status]
	if !ok {
		return Order{}, fmt.Errorf("%w: cannot %s an order in status %q", ErrOrderActionNotAllowed, action, order.Status)
	}

	now := s.clock()
	if err := s.orders.UpdateStatus(ctx, order.ID, target, now); err != nil {
		return Order{}, err
	}

	previous := order.Status
	order.Status = target
	order.UpdatedAt = now

	if target == domain.OrderStatusReturnRequested {
		s.notifyReturnRequested(ctx, order, cmd.Message)
	}
	s.publishStatusChanged(ctx, order, previous, userID, now)

	return order, nil
}

// AdminTransition moves an order to the requested status on behalf of staff.
// Delivered and returned orders are locked: the attempt is reported back as
// not applied, with a message, instead of failing. From return_requested the
// only permitted target is returned; all other statuses transition freely.
func (s *orderService) AdminTransition(ctx context.Context, cmd AdminTransitionCommand) (AdminTransitionResult, error) {
	orderID := strings.TrimSpace(cmd.OrderID)
	if orderID == "" {
		return AdminTransitionResult{}, fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if !cmd.Target.Valid() {
		return AdminTransitionResult{}, fmt.Errorf("%w: unknown status %q", ErrOrderInvalidInput, cmd.Target)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if isRepoNotFound(err) {
			return AdminTransitionResult{}, ErrOrderNotFound
		}
		return AdminTransitionResult{}, err
	}

	if message, locked := adminLockedStatuses[order.Status]; locked {
		return AdminTransitionResult{Order: order, Applied: false, Message: message}, nil
	}
	if order.Status == domain.OrderStatusReturnRequested && cmd.Target != domain.OrderStatusReturned {
		return AdminTransitionResult{
			Order:   order,
			Applied: false,
			Message: "a requested return can only be approved as returned",
		}, nil
	}
	if cmd.Target == domain.OrderStatusReturnRequested {
		return AdminTransitionResult{}, fmt.Errorf("%w: return_requested is set by the customer", ErrOrderActionNotAllowed)
	}
	if cmd.Target == domain.OrderStatusReturned && order.Status != domain.OrderStatusReturnRequested {
		return AdminTransitionResult{}, fmt.Errorf("%w: only a requested return can be marked returned", ErrOrderActionNotAllowed)
	}

	now := s.clock()
	if err := s.orders.UpdateStatus(ctx, order.ID, cmd.Target, now); err != nil {
		return AdminTransitionResult{}, err
	}

	previous := order.Status
	order.Status = cmd.Target
	order.UpdatedAt = now

	if previous != cmd.Target {
		s.publishStatusChanged(ctx, order, previous, strings.TrimSpace(cmd.ActorID), now)
	}

	return AdminTransitionResult{Order: order, Applied: true}, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return fmt.Errorf("%w: order id is required", ErrOrderInvalidInput)
	}
	if err := s.orders.Delete(ctx, orderID); err != nil {
		if isRepoNotFound(err) {
			return ErrOrderNotFound
		}
		return err
	}
	return nil
}

// notifyReturnRequested emails staff about a return request. The send runs
// detached from the request so delivery never delays or fails the transition.
// The customer's profile, when stored, puts a name and email on the notice.
func (s *orderService) notifyReturnRequested(ctx context.Context, order Order, message string) {
	if s.staffEmail == "" {
		return
	}
	var customer domain.Profile
	if s.profiles != nil {
		if profile, err := s.profiles.FindByUID(ctx, order.UserID); err == nil {
			customer = profile
		}
	}
	subject, body := notifications.ReturnRequested(order, customer, message)
	detached := context.WithoutCancel(ctx)
	s.dispatch(func() {
		if err := s.mailer.Send(detached, s.staffEmail, subject, body); err != nil {
			s.logger(detached, "order.return.notify.failed", map[string]any{
				"orderId": order.ID,
				"error":   err.Error(),
			})
		}
	})
}

func (s *orderService) publishStatusChanged(ctx context.Context, order Order, previous domain.OrderStatus, actorID string, now time.Time) {
	if s.events == nil {
		return
	}
	_, err := s.events.PublishOrderEvent(ctx, OrderEventMessage{
		Event:          orderEventStatusChanged,
		OrderID:        order.ID,
		OrderNumber:    order.Number,
		UserID:         order.UserID,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		ActorID:        actorID,
		Total:          order.Totals.Total,
		OccurredAt:     now,
	})
	if err != nil {
		s.logger(ctx, "order.event.publish.failed", map[string]any{
			"orderId": order.ID,
			"status":  string(order.Status),
			"error":   err.Error(),
		})
	}
}
