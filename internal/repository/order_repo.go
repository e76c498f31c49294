package repository

import (
	"context"
	"fmt"

	"github.com/SparshM8/Farm-Technology/internal/domain"
	"github.com/SparshM8/Farm-Technology/pkg/db"

	"github.com/sirupsen/logrus"
)

const orderColumns = "id, customer_name, customer_address, customer_phone, total_price, total_value, status, order_date, updated_at"

type orderRepository struct {
	db  *db.Database
	log *logrus.Logger
}

func NewOrderRepository(database *db.Database, logger *logrus.Logger) domain.OrderRepository {
	return &orderRepository{
		db:  database,
		log: logger,
	}
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var status string
	err := row.Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerAddress,
		&order.CustomerPhone,
		&order.Total,
		&order.TotalValue,
		&status,
		&order.OrderDate,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) (created *domain.Order, err error) {
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	if order.OrderDate == 0 {
		order.OrderDate = nowMillis()
	}
	order.UpdatedAt = order.OrderDate

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin transaction: %v", err)
		return nil, storageError("could not start transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("Recovered from panic, rolling back transaction")
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			r.log.Warnf("Rolling back transaction due to error: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback transaction: %v", rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				r.log.Errorf("Failed to commit transaction: %v", cErr)
				created = nil
				err = storageError("failed to commit transaction", cErr)
			}
		}
	}()

	orderQuery := `
        INSERT INTO orders (customer_name, customer_address, customer_phone, total_price, total_value, status, order_date, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id`
	err = tx.QueryRowContext(ctx, r.db.Dialect.Rebind(orderQuery),
		order.CustomerName,
		order.CustomerAddress,
		order.CustomerPhone,
		order.Total,
		order.TotalValue,
		string(order.Status),
		order.OrderDate,
		order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		r.log.Errorf("Failed to insert order for %q: %v", order.CustomerName, err)
		return nil, storageError("could not create order entry", err)
	}
	r.log.Infof("Order entry created with ID: %d", order.ID)

	itemQuery := `
        INSERT INTO order_items (order_id, position, product_id, title, quantity, unit_price)
        VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, r.db.Dialect.Rebind(itemQuery))
	if err != nil {
		r.log.Errorf("Failed to prepare order item statement: %v", err)
		return nil, storageError("could not prepare item statement", err)
	}
	defer stmt.Close()

	for i, item := range order.Items {
		_, err = stmt.ExecContext(ctx, order.ID, i, item.ProductID, item.Title, item.Quantity, item.UnitPrice)
		if err != nil {
			r.log.Errorf("Failed to insert order item (product_id: %d, quantity: %d) for order %d: %v", item.ProductID, item.Quantity, order.ID, err)
			return nil, storageError(fmt.Sprintf("could not create order item (product_id: %d)", item.ProductID), err)
		}
	}

	r.log.Infof("Order %d created successfully with %d items.", order.ID, len(order.Items))
	return order, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, r.db.Dialect.Rebind(query), id))
	if err != nil {
		if isNoRows(err) {
			r.log.Warnf("Order with ID %d not found", id)
			return nil, fmt.Errorf("%w: order with id %d", domain.ErrNotFound, id)
		}
		r.log.Errorf("Failed to get order by ID %d: %v", id, err)
		return nil, storageError("could not retrieve order", err)
	}

	items, err := r.getOrderItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []domain.LineItem{}
	}

	r.log.Debugf("Order %d retrieved successfully with %d items.", order.ID, len(order.Items))
	return order, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.LineItem, error) {
	byOrder := make(map[int64][]domain.LineItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return byOrder, nil
	}

	itemsQuery := `
        SELECT order_id, product_id, title, quantity, unit_price
        FROM order_items
        WHERE order_id IN (` + db.Placeholders(len(orderIDs)) + `)
        ORDER BY order_id, position`
	args := make([]any, len(orderIDs))
	for i, id := range orderIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, r.db.Dialect.Rebind(itemsQuery), args...)
	if err != nil {
		r.log.Errorf("Failed to query order items for %d orders: %v", len(orderIDs), err)
		return nil, storageError("could not retrieve order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var item domain.LineItem
		if err := rows.Scan(&orderID, &item.ProductID, &item.Title, &item.Quantity, &item.UnitPrice); err != nil {
			r.log.Errorf("Failed to scan order item row: %v", err)
			return nil, storageError("error scanning order item", err)
		}
		byOrder[orderID] = append(byOrder[orderID], item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during order items iteration: %v", err)
		return nil, storageError("error iterating order items", err)
	}

	return byOrder, nil
}

func (r *orderRepository) List(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY order_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Errorf("Failed to list orders: %v", err)
		return nil, storageError("could not list orders", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	ids := []int64{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.log.Errorf("Failed to scan order row during list: %v", err)
			return nil, storageError("error scanning order", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error during order rows iteration: %v", err)
		return nil, storageError("error iterating orders", err)
	}
	// release the single sqlite connection before the items query
	rows.Close()

	items, err := r.getOrderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.LineItem{}
		}
	}

	r.log.Debugf("Listed %d orders", len(orders))
	return orders, nil
}

// UpdateStatus touches only status and updated_at. Line items and totals
// are never rewritten.
func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	query := `
        UPDATE orders
        SET status = ?, updated_at = ?
        WHERE id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Dialect.Rebind(query), string(status), nowMillis(), id)
	if err != nil {
		r.log.Errorf("UpdateStatus: Failed to update status for order ID %d: %v", id, err)
		return nil, storageError("could not update order status", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("UpdateStatus: Failed to get rows affected for order ID %d: %v", id, err)
		return nil, storageError("could not confirm order status update", err)
	}
	if affected == 0 {
		r.log.Warnf("UpdateStatus: Order with ID %d not found", id)
		return nil, fmt.Errorf("%w: order with id %d", domain.ErrNotFound, id)
	}

	r.log.Infof("Order %d status updated to '%s'", id, status)
	return r.GetByID(ctx, id)
}
