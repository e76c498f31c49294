package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

func init() {
	// prices go over the wire as numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Image       string              `json:"image"`
	Price       string              `json:"price"`       // display string, e.g. "₹1,299"
	PriceValue  decimal.NullDecimal `json:"price_value"` // authoritative, null on legacy rows
	Description string              `json:"description"`
	CreatedAt   int64               `json:"created_at"` // epoch ms
}

type ProductRepository interface {
	// Create inserts the product. A positive ID is kept as given.
	Create(ctx context.Context, product *Product) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	// GetByIDs is a single batch read. Unknown ids are simply absent from the map.
	GetByIDs(ctx context.Context, ids []int64) (map[int64]Product, error)
	GetByTitle(ctx context.Context, title string) (*Product, error)
	// Update applies a partial update keyed by column name
	// (title, image, price, price_value, description).
	Update(ctx context.Context, id int64, updates map[string]any) (*Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Product, error)
	Count(ctx context.Context) (int, error)
}
