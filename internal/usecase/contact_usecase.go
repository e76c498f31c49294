package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/sirupsen/logrus"
)

type ContactUseCase interface {
	Submit(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error)
	ListMessages(ctx context.Context) ([]domain.ContactMessage, error)
}

type contactUseCase struct {
	contactRepo domain.ContactRepository
	publisher   domain.Publisher
	log         *logrus.Logger
}

func NewContactUseCase(repo domain.ContactRepository, publisher domain.Publisher, logger *logrus.Logger) ContactUseCase {
	return &contactUseCase{
		contactRepo: repo,
		publisher:   publisher,
		log:         logger,
	}
}

func (uc *contactUseCase) Submit(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return nil, fmt.Errorf("%w: All fields are required.", domain.ErrValidation)
	}

	saved, err := uc.contactRepo.Create(ctx, msg)
	if err != nil {
		uc.log.Errorf("Use Case: Could not save contact message: %v", err)
		return nil, err
	}

	uc.publisher.Publish(domain.EventContactReceived, saved)
	return saved, nil
}

func (uc *contactUseCase) ListMessages(ctx context.Context) ([]domain.ContactMessage, error) {
	messages, err := uc.contactRepo.List(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list contact messages: %v", err)
		return nil, fmt.Errorf("failed to retrieve contact messages: %w", err)
	}
	return messages, nil
}
