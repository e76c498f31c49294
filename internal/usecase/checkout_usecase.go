package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/pricing"

	"github.com/sirupsen/logrus"
)

type CheckoutRequest struct {
	CustomerName    string
	CustomerAddress string
	CustomerPhone   string
	Items           []pricing.RequestedItem
}

type CheckoutUseCase interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error)
}

var _ CheckoutUseCase = (*checkoutUseCase)(nil)

type checkoutUseCase struct {
	productRepo domain.ProductRepository
	orderRepo   domain.OrderRepository
	publisher   domain.Publisher
	notify      *notifier
	opts        pricing.Options
	log         *logrus.Logger
}

func NewCheckoutUseCase(
	productRepo domain.ProductRepository,
	orderRepo domain.OrderRepository,
	publisher domain.Publisher,
	admin domain.AdminNotifier,
	opts pricing.Options,
	logger *logrus.Logger,
) CheckoutUseCase {
	return &checkoutUseCase{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		notify:      &notifier{admin: admin, log: logger},
		opts:        opts,
		log:         logger,
	}
}

func validateCheckout(req *CheckoutRequest) error {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerAddress = strings.TrimSpace(req.CustomerAddress)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)

	if req.CustomerName == "" || req.CustomerAddress == "" || req.CustomerPhone == "" || len(req.Items) == 0 {
		return fmt.Errorf("%w: Missing required order information.", domain.ErrValidation)
	}
	return nil
}

// Checkout prices the cart from the catalog, writes the order and only then
// announces it. Nothing is published if pricing or the write fails.
func (uc *checkoutUseCase) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Order, error) {
	if err := validateCheckout(&req); err != nil {
		uc.log.Warnf("Use Case: Rejected checkout: %v", err)
		return nil, err
	}

	ids := pricing.DistinctIDs(req.Items)
	uc.log.Infof("Use Case: Pricing checkout for %q: %d lines, %d distinct products", req.CustomerName, len(req.Items), len(ids))

	catalog, err := uc.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to read catalog prices for checkout: %v", err)
		return nil, fmt.Errorf("failed to calculate order total: %w", err)
	}
	if missing := len(ids) - len(catalog); missing > 0 {
		uc.log.Warnf("Use Case: %d requested products are not in the catalog (strict=%t)", missing, uc.opts.Strict)
	}

	quote, err := pricing.Resolve(req.Items, catalog, uc.opts)
	if err != nil {
		uc.log.Warnf("Use Case: Pricing rejected checkout: %v", err)
		return nil, err
	}

	order := &domain.Order{
		CustomerName:    req.CustomerName,
		CustomerAddress: req.CustomerAddress,
		CustomerPhone:   req.CustomerPhone,
		Items:           quote.Items,
		Total:           quote.Display,
		TotalValue:      quote.Total,
		Status:          domain.StatusPending,
	}

	created, err := uc.orderRepo.Create(ctx, order)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to save order for %q: %v", req.CustomerName, err)
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	uc.log.Infof("Use Case: Order %d created, total %s", created.ID, created.Total)

	uc.publisher.Publish(domain.EventOrdersNew, created)

	snapshot := *created
	uc.notify.dispatch(ctx, fmt.Sprintf("new order %d", created.ID), func(ctx context.Context, admin domain.AdminNotifier) error {
		return admin.NotifyNewOrder(ctx, &snapshot)
	})

	return created, nil
}
