package clients

import (
	"context"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/sirupsen/logrus"
)

// NoopMailer only logs. Used when MAILER=none.
type NoopMailer struct {
	log *logrus.Logger
}

var _ domain.AdminNotifier = (*NoopMailer)(nil)

func NewNoopMailer(logger *logrus.Logger) *NoopMailer {
	return &NoopMailer{log: logger}
}

func (n *NoopMailer) NotifyNewOrder(_ context.Context, order *domain.Order) error {
	n.log.Debugf("Mailer disabled: not emailing about new order %d", order.ID)
	return nil
}

func (n *NoopMailer) NotifyStatusChange(_ context.Context, order *domain.Order, _ domain.OrderStatus) error {
	n.log.Debugf("Mailer disabled: not emailing about order %d status %s", order.ID, order.Status)
	return nil
}
