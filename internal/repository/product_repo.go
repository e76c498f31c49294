package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const productColumns = "id, title, image, price, price_value, description, created_at"

type productRepository struct {
	db  *db.Database
	log *logrus.Logger
}

func NewProductRepository(database *db.Database, logger *logrus.Logger) domain.ProductRepository {
	return &productRepository{
		db:  database,
		log: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Image,
		&product.Price,
		&product.PriceValue,
		&product.Description,
		&product.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.CreatedAt == 0 {
		product.CreatedAt = nowMillis()
	}

	var err error
	if product.ID > 0 {
		query := `
        INSERT INTO products (id, title, image, price, price_value, description, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
		_, err = r.db.ExecContext(ctx, r.db.Dialect.Rebind(query),
			product.ID, product.Title, product.Image, product.Price, product.PriceValue, product.Description, product.CreatedAt)
		if err == nil && r.db.Dialect == db.Postgres {
			// explicit ids leave the serial sequence behind
			_, err = r.db.ExecContext(ctx,
				`SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT MAX(id) FROM products))`)
		}
	} else {
		query := `
        INSERT INTO products (title, image, price, price_value, description, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        RETURNING id`
		err = r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query),
			product.Title, product.Image, product.Price, product.PriceValue, product.Description, product.CreatedAt,
		).Scan(&product.ID)
	}
	if err != nil {
		r.log.Errorf("Failed to create product '%s': %v", product.Title, err)
		return nil, storageError("could not create product", err)
	}

	r.log.Infof("Product created successfully with ID: %d, Title: %s", product.ID, product.Title)
	return product, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	product, err := scanProduct(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), id))
	if err != nil {
		if isNoRows(err) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, fmt.Errorf("%w: product with id %d", domain.ErrNotFound, id)
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, storageError("could not get product by id", err)
	}

	r.log.Debugf("Product retrieved successfully with ID: %d", id)
	return product, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	found := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + db.Placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		r.log.Errorf("Failed to batch read %d products: %v", len(ids), err)
		return nil, storageError("could not read products", err)
	}
	defer rows.Close()

	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, storageError("error scanning product", err)
		}
		found[product.ID] = *product
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error during product rows iteration: %v", err)
		return nil, storageError("error iterating products", err)
	}

	r.log.Debugf("Batch read resolved %d of %d product ids", len(found), len(ids))
	return found, nil
}

func (r *productRepository) GetByTitle(ctx context.Context, title string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE title = ? ORDER BY id LIMIT 1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), title))
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: product titled %q", domain.ErrNotFound, title)
		}
		r.log.Errorf("Failed to get product by title %q: %v", title, err)
		return nil, storageError("could not get product by title", err)
	}
	return product, nil
}

func (r *productRepository) Update(ctx context.Context, id int64, updates map[string]any) (*domain.Product, error) {
	if len(updates) == 0 {
		r.log.Infof("Repository: No fields provided for product update ID %d. Returning current product.", id)
		return r.GetByID(ctx, id)
	}

	// map iteration order is random; keep the statement stable
	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	setClauses := []string{}
	args := []any{}
	for _, key := range keys {
		value := updates[key]
		switch key {
		case "title", "image", "price", "description":
			if _, ok := value.(string); !ok {
				return nil, fmt.Errorf("%w: %s must be a string", domain.ErrValidation, key)
			}
		case "price_value":
			switch v := value.(type) {
			case decimal.NullDecimal:
			case decimal.Decimal:
				value = decimal.NewNullDecimal(v)
			case nil:
				value = decimal.NullDecimal{}
			default:
				return nil, fmt.Errorf("%w: price_value must be a decimal", domain.ErrValidation)
			}
		default:
			r.log.Warnf("Repository: Skipping unknown field '%s' provided for product update ID %d", key, id)
			continue
		}
		setClauses = append(setClauses, key+" = ?")
		args = append(args, value)
	}

	if len(setClauses) == 0 {
		r.log.Warnf("Repository: No valid known fields provided for product update ID %d. Returning current product.", id)
		return r.GetByID(ctx, id)
	}

	query := "UPDATE products SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), args...)
	if err != nil {
		r.log.Errorf("Failed to update product ID %d: %v", id, err)
		return nil, storageError("could not update product", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		r.log.Warnf("Attempted to update non-existent product ID %d", id)
		return nil, fmt.Errorf("%w: product with id %d", domain.ErrNotFound, id)
	}

	r.log.Infof("Product ID %d updated (%s)", id, strings.Join(keys, ", "))
	return r.GetByID(ctx, id)
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		r.log.Errorf("Failed to delete product ID %d: %v", id, err)
		return storageError("could not delete product", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting product ID %d: %v", id, err)
		return storageError("could not confirm product deletion", err)
	}
	if affected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %d", id)
		return fmt.Errorf("%w: product with id %d", domain.ErrNotFound, id)
	}

	r.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list products: %v", err)
		return nil, storageError("could not list products", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.log.Errorf("Failed to scan product row during list: %v", err)
			return nil, storageError("error scanning product", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error during product rows iteration: %v", err)
		return nil, storageError("error iterating products", err)
	}

	r.log.Debugf("Listed %d products", len(products))
	return products, nil
}

func (r *productRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, storageError("could not count products", err)
	}
	return count, nil
}
