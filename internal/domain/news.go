package domain

import "context"

type NewsItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt"`
	Link      string `json:"link"`
	Date      string `json:"date"` // free-form label shown on the card
	CreatedAt int64  `json:"created_at"`
}

type NewsRepository interface {
	// Upsert matches on title. created reports whether a new row was inserted.
	Upsert(ctx context.Context, item *NewsItem) (saved *NewsItem, created bool, err error)
	List(ctx context.Context) ([]NewsItem, error)
}
