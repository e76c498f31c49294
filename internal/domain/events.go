package domain

import "context"

const (
	EventProductsUpdate  = "products:update"
	EventOrdersNew       = "orders:new"
	EventOrdersUpdate    = "orders:update"
	EventContactReceived = "contact:received"
	EventNewsUpdate      = "news:update"
	EventChatMessage     = "chat message"
)

// Event is the envelope every real-time frame carries.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Publisher fans an event out to whoever listens. It never blocks on a slow
// subscriber and never reports delivery failures to the caller.
type Publisher interface {
	Publish(event string, data any)
}

// AdminNotifier sends out-of-band notices (email) to the shop administrator.
type AdminNotifier interface {
	NotifyNewOrder(ctx context.Context, order *Order) error
	NotifyStatusChange(ctx context.Context, order *Order, previous OrderStatus) error
}
