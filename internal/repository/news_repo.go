package repository

import (
	"context"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/pkg/db"

	"github.com/sirupsen/logrus"
)

type newsRepository struct {
	db  *db.Database
	log *logrus.Logger
}

func NewNewsRepository(database *db.Database, logger *logrus.Logger) domain.NewsRepository {
	return &newsRepository{
		db:  database,
		log: logger,
	}
}

func (r *newsRepository) Upsert(ctx context.Context, item *domain.NewsItem) (*domain.NewsItem, bool, error) {
	var existingID int64
	err := r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(`SELECT id FROM news WHERE title = ?`), item.Title).Scan(&existingID)
	switch {
	case err == nil:
		query := `UPDATE news SET excerpt = ?, link = ?, date = ? WHERE id = ?`
		if _, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), item.Excerpt, item.Link, item.Date, existingID); err != nil {
			r.log.Errorf("Failed to update news item %d: %v", existingID, err)
			return nil, false, storageError("could not update news item", err)
		}
		item.ID = existingID
		r.log.Infof("News item %d updated: %s", existingID, item.Title)
		return item, false, nil
	case !isNoRows(err):
		r.log.Errorf("Failed to look up news item %q: %v", item.Title, err)
		return nil, false, storageError("could not look up news item", err)
	}

	if item.CreatedAt == 0 {
		item.CreatedAt = nowMillis()
	}
	query := `
        INSERT INTO news (title, excerpt, link, date, created_at)
        VALUES (?, ?, ?, ?, ?)
        RETURNING id`
	err = r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query),
		item.Title, item.Excerpt, item.Link, item.Date, item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		r.log.Errorf("Failed to insert news item %q: %v", item.Title, err)
		return nil, false, storageError("could not insert news item", err)
	}

	r.log.Infof("News item created with ID: %d", item.ID)
	return item, true, nil
}

func (r *newsRepository) List(ctx context.Context) ([]domain.NewsItem, error) {
	query := `
        SELECT id, title, excerpt, link, date, created_at
        FROM news
        ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list news: %v", err)
		return nil, storageError("could not list news", err)
	}
	defer rows.Close()

	items := []domain.NewsItem{}
	for rows.Next() {
		var n domain.NewsItem
		if err := rows.Scan(&n.ID, &n.Title, &n.Excerpt, &n.Link, &n.Date, &n.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan news row: %v", err)
			return nil, storageError("error scanning news item", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating news", err)
	}
	return items, nil
}
