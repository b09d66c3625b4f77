package application

import (
	"context"
	"time"

	"github.com/pos-platform/inventory-service/internal/domain"
	"github.com/pos-platform/inventory-service/pkg/errors"
	"github.com/pos-platform/inventory-service/pkg/kafka"
	"github.com/pos-platform/inventory-service/pkg/logging"
	"github.com/pos-platform/inventory-service/pkg/metrics"
)

// HeldOrderService implements cart suspension use cases.
type HeldOrderService struct {
	orders    domain.HeldOrderRepository
	allocator *CodeAllocator
	publisher *EventPublisher
	metrics   *metrics.Metrics
	logger    *logging.Logger
}

func NewHeldOrderService(orders domain.HeldOrderRepository, allocator *CodeAllocator, publisher *EventPublisher, m *metrics.Metrics, logger *logging.Logger) *HeldOrderService {
	return &HeldOrderService{
		orders:    orders,
		allocator: allocator,
		publisher: publisher,
		metrics:   m,
		logger:    logger.WithComponent("heldorder-service"),
	}
}

// List returns held orders, newest first, optionally filtered by a
// case-insensitive search over code, table number and order type.
func (s *HeldOrderService) List(ctx context.Context, search string) ([]*domain.HeldOrder, error) {
	orders, err := s.orders.List(ctx, search)
	if err != nil {
		return nil, errors.ErrInternal("failed to list held orders").Wrap(err)
	}
	return orders, nil
}

// Get loads one held order by its hold code.
func (s *HeldOrderService) Get(ctx context.Context, code string) (*domain.HeldOrder, error) {
	order, err := s.orders.FindByCode(ctx, code)
	if err != nil {
		return nil, errors.ErrInternal("failed to load held order").Wrap(err)
	}
	if order == nil {
		return nil, errors.ErrNotFoundWithID("held order", code)
	}
	return order, nil
}

// Create parks a cart under a freshly allocated hold code. The display order
// number is derived from the running count of held orders and is not unique.
func (s *HeldOrderService) Create(ctx context.Context, cmd CreateHeldOrderCommand) (*domain.HeldOrder, error) {
	input := cmd.toInput()
	now := time.Now().UTC()

	// validate before burning an allocation attempt
	if _, err := domain.NewHeldOrder(domain.FormatHoldCode(1), "#0000", input, now); err != nil {
		return nil, translateDomainError(err)
	}

	count, err := s.orders.Count(ctx)
	if err != nil {
		return nil, errors.ErrInternal("failed to count held orders").Wrap(err)
	}
	orderNumber := domain.FormatOrderNumber(count + 1)

	var created *domain.HeldOrder
	code, err := s.allocator.Allocate(ctx, func(code string) error {
		order, err := domain.NewHeldOrder(code, orderNumber, input, now)
		if err != nil {
			return translateDomainError(err)
		}
		if err := s.orders.Insert(ctx, order); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return nil, appErr
		}
		s.logger.WithError(err).ErrorContext(ctx, "failed to create held order")
		return nil, errors.ErrInternal("failed to create held order").Wrap(err)
	}

	s.metrics.HeldOrdersCreated.Inc()
	s.logger.InfoContext(ctx, "order held",
		"code", code, "orderNumber", orderNumber, "items", len(created.Items), "total", created.Total)

	s.publisher.Publish(ctx, kafka.Topics.OrderEvents, code, &domain.OrderHeldEvent{
		Code:        code,
		OrderNumber: orderNumber,
		Total:       created.Total,
		HeldAt:      now,
	})

	return created, nil
}

// Remove discards a held order.
func (s *HeldOrderService) Remove(ctx context.Context, code string) error {
	found, err := s.orders.Delete(ctx, code)
	if err != nil {
		s.logger.WithError(err).ErrorContext(ctx, "failed to delete held order", "code", code)
		return errors.ErrInternal("failed to delete held order").Wrap(err)
	}
	if !found {
		return errors.ErrNotFoundWithID("held order", code)
	}

	s.metrics.HeldOrdersDeleted.Inc()
	s.logger.InfoContext(ctx, "held order discarded", "code", code)

	s.publisher.Publish(ctx, kafka.Topics.OrderEvents, code, &domain.OrderDiscardedEvent{
		Code:        code,
		DiscardedAt: time.Now().UTC(),
	})

	return nil
}
