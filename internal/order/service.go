package order

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"relytailors-be/internal/apperror"
	"relytailors-be/internal/logger"
	"relytailors-be/internal/product"
	"relytailors-be/internal/user"
	"relytailors-be/internal/utils"
	"relytailors-be/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 3

// OwnerDirectory is the part of the user store the order flow touches.
type OwnerDirectory interface {
	FindByID(ctx context.Context, id uint) (*user.User, error)
	ClearCart(ctx context.Context, userID uint) error
}

// Catalog resolves products referenced by order items.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error)
}

// Notifier hands order emails off for asynchronous delivery.
type Notifier interface {
	OrderPlaced(ctx context.Context, to string, o *Order) error
	StatusChanged(ctx context.Context, to string, o *Order) error
}

type Service interface {
	CreateOrder(ctx context.Context, ownerID uint, input CreateOrderInput) (*Order, error)
	GetOwnOrders(ctx context.Context, ownerID uint) ([]*Order, error)
	GetOrderByID(ctx context.Context, orderID string, requesterID uint) (*Order, error)
	GetOrderByIDAdmin(ctx context.Context, orderID string) (*Order, error)
	ListAllOrders(ctx context.Context) ([]*Order, error)
	SetOrderStatus(ctx context.Context, orderID string, status OrderStatus) (*Order, error)
	ConfirmOrder(ctx context.Context, orderID string) (*Order, error)
	CancelOrder(ctx context.Context, orderID string) (*Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
}

type service struct {
	repo     Repository
	owners   OwnerDirectory
	catalog  Catalog
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, owners OwnerDirectory, catalog Catalog, notifier Notifier) Service {
	return &service{
		repo:     repo,
		owners:   owners,
		catalog:  catalog,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, ownerID uint, input CreateOrderInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateOrder"),
		zap.Uint("user_id", ownerID),
	)

	if len(input.Items) == 0 {
		return nil, ErrNoOrderItems
	}

	for i := range input.Items {
		if input.Items[i].Quantity == 0 {
			input.Items[i].Quantity = 1
		}
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if err := s.checkCustomizations(ctx, input.Items); err != nil {
		log.Info("order rejected", zap.Error(err))
		return nil, err
	}

	now := s.now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		Owner:           Owner{ID: ownerID},
		Items:           input.Items,
		ShippingAddress: input.ShippingAddress,
		TotalPrice:      input.TotalPrice,
		OrderStatus:     StatusPendingConfirmation,
		PaymentStatus:   PaymentUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// The submitted total is trusted; a mismatch is only surfaced in logs.
	if sum := o.ItemsTotal(); math.Abs(sum-o.TotalPrice) > 0.005 {
		log.Warn("submitted total differs from item sum",
			zap.Float64("total_price", o.TotalPrice),
			zap.Float64("items_total", sum),
		)
	}

	for attempt := 1; ; attempt++ {
		o.OrderNumber = utils.GenerateOrderNumber(now)
		err := s.repo.Create(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, errOrderNumberTaken) || attempt == maxOrderNumberAttempts {
			return nil, err
		}
	}

	if err := s.owners.ClearCart(ctx, ownerID); err != nil {
		log.Warn("failed to clear cart", zap.Error(err))
	}

	if owner, err := s.owners.FindByID(ctx, ownerID); err != nil {
		log.Warn("owner lookup failed, skipping confirmation email", zap.Error(err))
	} else {
		o.Owner.Name = owner.Name
		o.Owner.Email = owner.Email
		if err := s.notifier.OrderPlaced(ctx, owner.Email, o); err != nil {
			log.Error("failed to enqueue order confirmation", zap.Error(err))
		}
	}

	log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
	)
	return o, nil
}

// checkCustomizations matches each item's selected options and measurements
// against what its product declares.
func (s *service) checkCustomizations(ctx context.Context, items []OrderItem) error {
	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.Product]; ok {
			continue
		}
		seen[it.Product] = struct{}{}
		ids = append(ids, it.Product)
	}

	products, err := s.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	for _, it := range items {
		p, ok := products[it.Product]
		if !ok {
			return rejectItem(ErrUnknownProduct, "%s", it.Product)
		}
		for option, value := range it.SelectedCustomizations {
			if !p.HasCustomization(option) {
				return rejectItem(ErrBadCustomization, "%s has no option %s", p.Name, option)
			}
			if !p.AllowsCustomization(option, value) {
				return rejectItem(ErrBadCustomization, "%s %q is not offered for %s", option, value, p.Name)
			}
		}
		for field := range it.Measurements {
			if !p.HasMeasurement(field) {
				return rejectItem(ErrBadMeasurement, "%s does not take %s", p.Name, field)
			}
		}
	}
	return nil
}

// rejectItem builds a client-facing error carrying the offending detail that
// still matches sentinel under errors.Is.
func rejectItem(sentinel *apperror.Error, format string, args ...any) error {
	return &apperror.Error{
		Kind:    sentinel.Kind,
		Message: sentinel.Message + ": " + fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

func (s *service) GetOwnOrders(ctx context.Context, ownerID uint) ([]*Order, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

func (s *service) GetOrderByID(ctx context.Context, orderID string, requesterID uint) (*Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Owner.ID != requesterID {
		logger.FromCtx(ctx).Info("order access denied",
			zap.String("layer", "service"),
			zap.String("method", "GetOrderByID"),
			zap.String("order_id", orderID),
			zap.Uint("owner_id", o.Owner.ID),
		)
		return nil, ErrNotOrderOwner
	}
	return o, nil
}

func (s *service) GetOrderByIDAdmin(ctx context.Context, orderID string) (*Order, error) {
	return s.load(ctx, orderID)
}

func (s *service) ListAllOrders(ctx context.Context) ([]*Order, error) {
	return s.repo.FindAll(ctx)
}

func (s *service) SetOrderStatus(ctx context.Context, orderID string, status OrderStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.transition(ctx, orderID, status, ActionSetStatus)
}

func (s *service) ConfirmOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.transition(ctx, orderID, StatusConfirmed, ActionConfirm)
}

func (s *service) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.transition(ctx, orderID, StatusCancelled, ActionCancel)
}

func (s *service) DeleteOrder(ctx context.Context, orderID string) error {
	if _, err := uuid.Parse(orderID); err != nil {
		return ErrOrderNotFound
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("order deleted",
		zap.String("layer", "service"),
		zap.String("method", "DeleteOrder"),
		zap.String("order_id", orderID),
	)
	return nil
}

func (s *service) transition(ctx context.Context, orderID string, to OrderStatus, action Action) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "transition"),
		zap.String("action", action.String()),
		zap.String("order_id", orderID),
	)

	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := o.OrderStatus
	if err := CheckTransition(from, to, action); err != nil {
		log.Info("transition rejected",
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return nil, err
	}

	applyStatus(o, to, s.now().UTC())
	if err := s.repo.UpdateStatus(ctx, o); err != nil {
		return nil, err
	}

	log.Info("order status changed",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	if shouldNotify(action, to) {
		s.notifyStatus(ctx, o)
	}
	return o, nil
}

func (s *service) notifyStatus(ctx context.Context, o *Order) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "notifyStatus"),
		zap.String("order_id", o.ID),
	)

	to := o.Owner.Email
	if to == "" {
		owner, err := s.owners.FindByID(ctx, o.Owner.ID)
		if err != nil {
			log.Warn("owner lookup failed, skipping status email", zap.Error(err))
			return
		}
		to = owner.Email
	}

	if err := s.notifier.StatusChanged(ctx, to, o); err != nil {
		log.Error("failed to enqueue status email", zap.Error(err))
	}
}

// load treats ids that are not UUIDs as unknown orders.
func (s *service) load(ctx context.Context, orderID string) (*Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, ErrOrderNotFound
	}
	return s.repo.FindByID(ctx, orderID)
}
