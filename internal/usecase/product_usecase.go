package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, updates map[string]any) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type productUseCase struct {
	productRepo domain.ProductRepository
	publisher   domain.Publisher
	log         *logrus.Logger
}

func NewProductUseCase(repo domain.ProductRepository, publisher domain.Publisher, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo: repo,
		publisher:   publisher,
		log:         logger,
	}
}

// derivePriceValue keeps the numeric price in step with a display string when
// the caller did not supply one.
func derivePriceValue(display string) decimal.NullDecimal {
	if value, ok := pricing.ParseDisplayPrice(display); ok {
		return decimal.NewNullDecimal(value)
	}
	return decimal.NullDecimal{}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	product.Title = strings.TrimSpace(product.Title)
	if product.Title == "" {
		return nil, fmt.Errorf("%w: product title cannot be empty", domain.ErrValidation)
	}
	if product.PriceValue.Valid && product.PriceValue.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	if !product.PriceValue.Valid {
		product.PriceValue = derivePriceValue(product.Price)
	}
	// ids are assigned by the store
	product.ID = 0

	created, err := uc.productRepo.Create(ctx, product)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to create product '%s': %v", product.Title, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product created with ID %d", created.ID)
	publishCatalog(ctx, uc.productRepo, uc.publisher, uc.log)
	return created, nil
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrValidation)
	}
	return uc.productRepo.GetByID(ctx, id)
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, id int64, updates map[string]any) (*domain.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid product ID", domain.ErrValidation)
	}
	if title, ok := updates["title"].(string); ok {
		title = strings.TrimSpace(title)
		if title == "" {
			return nil, fmt.Errorf("%w: product title cannot be empty", domain.ErrValidation)
		}
		updates["title"] = title
	}
	if v, ok := updates["price_value"].(decimal.Decimal); ok && v.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", domain.ErrValidation)
	}
	if price, ok := updates["price"].(string); ok {
		if _, given := updates["price_value"]; !given {
			updates["price_value"] = derivePriceValue(price)
		}
	}

	uc.log.Infof("Use Case: Updating product ID %d with %d fields", id, len(updates))
	updated, err := uc.productRepo.Update(ctx, id, updates)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to update product ID %d: %v", id, err)
		return nil, err
	}

	publishCatalog(ctx, uc.productRepo, uc.publisher, uc.log)
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product ID", domain.ErrValidation)
	}
	if err := uc.productRepo.Delete(ctx, id); err != nil {
		uc.log.Errorf("Use Case: Failed to delete product ID %d: %v", id, err)
		return err
	}

	uc.log.Infof("Use Case: Product ID %d deleted", id)
	publishCatalog(ctx, uc.productRepo, uc.publisher, uc.log)
	return nil
}

func (uc *productUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := uc.productRepo.List(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to list products: %v", err)
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// publishCatalog broadcasts the full product list. A failed read only
// skips the broadcast; the write that triggered it already succeeded.
func publishCatalog(ctx context.Context, repo domain.ProductRepository, publisher domain.Publisher, log *logrus.Logger) {
	products, err := repo.List(ctx)
	if err != nil {
		log.Warnf("Use Case: Skipping %s broadcast, could not read catalog: %v", domain.EventProductsUpdate, err)
		return
	}
	publisher.Publish(domain.EventProductsUpdate, products)
}
