package usecase

import (
	"context"
	"fmt"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/sirupsen/logrus"
)

type OrderUseCase interface {
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error)
}

var _ OrderUseCase = (*orderUseCase)(nil)

type orderUseCase struct {
	orderRepo domain.OrderRepository
	publisher domain.Publisher
	notify    *notifier
	log       *logrus.Logger
}

func NewOrderUseCase(repo domain.OrderRepository, publisher domain.Publisher, admin domain.AdminNotifier, logger *logrus.Logger) OrderUseCase {
	return &orderUseCase{
		orderRepo: repo,
		publisher: publisher,
		notify:    &notifier{admin: admin, log: logger},
		log:       logger,
	}
}

func (uc *orderUseCase) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := uc.orderRepo.List(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders: %v", err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	uc.log.Infof("Use Case: Retrieved %d orders", len(orders))
	return orders, nil
}

func (uc *orderUseCase) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID", domain.ErrValidation)
	}
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get order ID %d: %v", id, err)
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus accepts any status in the closed enumeration from any
// other. Leaving a terminal state is allowed but logged.
func (uc *orderUseCase) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid order ID for status update", domain.ErrValidation)
	}
	if !domain.IsValidStatus(status) {
		uc.log.Warnf("Use Case: Rejected status %q for order %d", status, id)
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}

	current, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Could not get current order %d for status update: %v", id, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Order %d status '%s' -> '%s'", id, current.Status, status)

	if current.Status.IsTerminal() && current.Status != status {
		uc.log.Warnf("Use Case: Order %d is leaving terminal status '%s' for '%s'", id, current.Status, status)
	}

	updated, err := uc.orderRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update status for order ID %d: %v", id, err)
		return nil, err
	}

	uc.publisher.Publish(domain.EventOrdersUpdate, updated)

	snapshot, previous := *updated, current.Status
	uc.notify.dispatch(ctx, fmt.Sprintf("status change for order %d", id), func(ctx context.Context, admin domain.AdminNotifier) error {
		return admin.NotifyStatusChange(ctx, &snapshot, previous)
	})

	uc.log.Infof("Use Case: Order status updated successfully for ID %d to %s", updated.ID, updated.Status)
	return updated, nil
}
