package domain

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusPacked     OrderStatus = "packed"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// AllStatuses lists the closed status enumeration in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusPending,
	StatusProcessing,
	StatusPacked,
	StatusShipped,
	StatusDelivered,
	StatusCancelled,
}

func IsValidStatus(status OrderStatus) bool {
	return slices.Contains(AllStatuses, status)
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// LineItem is frozen at checkout. Nothing updates it afterwards.
type LineItem struct {
	ProductID int64           `json:"id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

type Order struct {
	ID              int64           `json:"id"`
	CustomerName    string          `json:"customerName"`
	CustomerAddress string          `json:"customerAddress"`
	CustomerPhone   string          `json:"customerPhone"`
	Items           []LineItem      `json:"items"`
	Total           string          `json:"total"` // display string, e.g. "₹450.00"
	TotalValue      decimal.Decimal `json:"totalValue"`
	OrderDate       int64           `json:"orderDate"` // epoch ms
	UpdatedAt       int64           `json:"updatedAt"`
	Status          OrderStatus     `json:"status"`
}

type OrderRepository interface {
	// Create writes the order row and its line items in one transaction.
	Create(ctx context.Context, order *Order) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) (*Order, error)
}
