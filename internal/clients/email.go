package clients

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"

	"github.com/SparshM8/Farm-Technology/config"
	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/sirupsen/logrus"
)

// EmailMessage is a rendered admin notification.
type EmailMessage struct {
	Subject string
	HTML    string
	Text    string
}

// emailSender is the transport half of a mailer.
type emailSender interface {
	send(ctx context.Context, from, to string, msg EmailMessage) error
}

var newOrderTmpl = template.Must(template.New("new_order").Parse(`
<p>New order received (ID: {{.ID}})</p>
<p><strong>Total:</strong> {{.Total}}</p>
<p><strong>Customer:</strong> {{.CustomerName}} ({{.CustomerPhone}})</p>
<p><strong>Address:</strong> {{.CustomerAddress}}</p>
<p><strong>Items:</strong></p>
<ul>{{range .Items}}<li>{{.Quantity}} x {{.Title}} @ {{.UnitPrice}}</li>{{end}}</ul>
`))

var statusChangeTmpl = template.Must(template.New("status_change").Parse(`
<p>Order #{{.Order.ID}} status updated from {{.Previous}} to <strong>{{.Order.Status}}</strong></p>
<p><strong>Customer:</strong> {{.Order.CustomerName}} ({{.Order.CustomerPhone}})</p>
<p><strong>Total:</strong> {{.Order.Total}}</p>
<p>View order details on your admin panel.</p>
`))

func NewOrderMessage(order *domain.Order) (EmailMessage, error) {
	var html bytes.Buffer
	if err := newOrderTmpl.Execute(&html, order); err != nil {
		return EmailMessage{}, fmt.Errorf("render new order email: %w", err)
	}

	var text bytes.Buffer
	fmt.Fprintf(&text, "New order received (ID: %d)\nTotal: %s\nCustomer: %s (%s)\nAddress: %s\nItems:\n",
		order.ID, order.Total, order.CustomerName, order.CustomerPhone, order.CustomerAddress)
	for _, item := range order.Items {
		fmt.Fprintf(&text, "  %d x %s @ %s\n", item.Quantity, item.Title, item.UnitPrice)
	}

	return EmailMessage{
		Subject: fmt.Sprintf("New Order #%d - %s", order.ID, order.Total),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

func StatusChangeMessage(order *domain.Order, previous domain.OrderStatus) (EmailMessage, error) {
	var html bytes.Buffer
	data := struct {
		Order    *domain.Order
		Previous domain.OrderStatus
	}{order, previous}
	if err := statusChangeTmpl.Execute(&html, data); err != nil {
		return EmailMessage{}, fmt.Errorf("render status email: %w", err)
	}

	text := fmt.Sprintf("Order #%d status updated from %s to %s\nCustomer: %s (%s)\nTotal: %s\n",
		order.ID, previous, order.Status, order.CustomerName, order.CustomerPhone, order.Total)

	return EmailMessage{
		Subject: fmt.Sprintf("Order #%d status: %s", order.ID, order.Status),
		HTML:    html.String(),
		Text:    text,
	}, nil
}

// AdminMailer renders notifications and hands them to a transport.
type AdminMailer struct {
	sender emailSender
	from   string
	to     string
	log    *logrus.Logger
}

var _ domain.AdminNotifier = (*AdminMailer)(nil)

func newAdminMailer(sender emailSender, from, to string, logger *logrus.Logger) *AdminMailer {
	if from == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "localhost"
		}
		from = "no-reply@" + host
	}
	return &AdminMailer{sender: sender, from: from, to: to, log: logger}
}

func (m *AdminMailer) NotifyNewOrder(ctx context.Context, order *domain.Order) error {
	msg, err := NewOrderMessage(order)
	if err != nil {
		return err
	}
	if err := m.sender.send(ctx, m.from, m.to, msg); err != nil {
		m.log.Warnf("Failed to send new order email for order %d to %s: %v", order.ID, m.to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.log.Infof("New order email sent for order %d to %s", order.ID, m.to)
	return nil
}

func (m *AdminMailer) NotifyStatusChange(ctx context.Context, order *domain.Order, previous domain.OrderStatus) error {
	msg, err := StatusChangeMessage(order, previous)
	if err != nil {
		return err
	}
	if err := m.sender.send(ctx, m.from, m.to, msg); err != nil {
		m.log.Warnf("Failed to send status email for order %d to %s: %v", order.ID, m.to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	m.log.Infof("Status email sent for order %d (%s) to %s", order.ID, order.Status, m.to)
	return nil
}

// NewAdminNotifier picks the transport named by MAILER.
func NewAdminNotifier(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (domain.AdminNotifier, error) {
	switch cfg.Mailer {
	case "smtp":
		return NewSMTPMailer(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			Secure:   cfg.SMTPSecure,
		}, cfg.FromEmail, cfg.AdminNotificationEmail, logger)
	case "ses":
		return NewSESMailer(ctx, SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}, cfg.FromEmail, cfg.AdminNotificationEmail, logger)
	default:
		logger.Info("Admin email notifications disabled (MAILER=none)")
		return NewNoopMailer(logger), nil
	}
}
