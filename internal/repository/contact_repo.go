package repository

import (
	"context"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/pkg/db"

	"github.com/sirupsen/logrus"
)

type contactRepository struct {
	db  *db.Database
	log *logrus.Logger
}

func NewContactRepository(database *db.Database, logger *logrus.Logger) domain.ContactRepository {
	return &contactRepository{
		db:  database,
		log: logger,
	}
}

func (r *contactRepository) Create(ctx context.Context, msg *domain.ContactMessage) (*domain.ContactMessage, error) {
	if msg.ReceivedAt == 0 {
		msg.ReceivedAt = nowMillis()
	}

	query := `
        INSERT INTO contacts (name, email, message, received_at)
        VALUES (?, ?, ?, ?)
        RETURNING id`
	err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query),
		msg.Name, msg.Email, msg.Message, msg.ReceivedAt,
	).Scan(&msg.ID)
	if err != nil {
		r.log.Errorf("Failed to store contact message from %s: %v", msg.Email, err)
		return nil, storageError("could not store contact message", err)
	}

	r.log.Infof("Contact message stored with ID: %d", msg.ID)
	return msg, nil
}

func (r *contactRepository) List(ctx context.Context) ([]domain.ContactMessage, error) {
	query := `
        SELECT id, name, email, message, received_at
        FROM contacts
        ORDER BY received_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list contact messages: %v", err)
		return nil, storageError("could not list contact messages", err)
	}
	defer rows.Close()

	messages := []domain.ContactMessage{}
	for rows.Next() {
		var m domain.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.ReceivedAt); err != nil {
			r.log.Errorf("Failed to scan contact row: %v", err)
			return nil, storageError("error scanning contact message", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating contact messages", err)
	}
	return messages, nil
}
