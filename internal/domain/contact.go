package domain

import "context"

type ContactMessage struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
	ReceivedAt int64  `json:"received_at"`
}

type ContactRepository interface {
	Create(ctx context.Context, msg *ContactMessage) (*ContactMessage, error)
	List(ctx context.Context) ([]ContactMessage, error)
}
