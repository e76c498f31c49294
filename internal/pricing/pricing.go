// Package pricing turns a requested cart into priced line items using only
// server-held catalog data. Prices or titles supplied by the caller are never
// consulted.
package pricing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SparshM8/Farm-Technology/internal/domain"

	"github.com/shopspring/decimal"
)

const DefaultCurrencySymbol = "₹"

var numericPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

type RequestedItem struct {
	ProductID int64
	Quantity  int
}

type Options struct {
	// Strict rejects ids missing from the catalog instead of pricing them at zero.
	Strict         bool
	CurrencySymbol string
}

type Quote struct {
	Items   []domain.LineItem
	Total   decimal.Decimal
	Display string
}

// DistinctIDs returns the requested product ids, first-seen order, no repeats.
func DistinctIDs(requested []RequestedItem) []int64 {
	seen := make(map[int64]struct{}, len(requested))
	ids := make([]int64, 0, len(requested))
	for _, item := range requested {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ParseDisplayPrice extracts the first number from a display string such as
// "₹1,299.50" or "Rs. 200 / kg". Thousands separators are dropped first.
func ParseDisplayPrice(display string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(display, ",", "")
	match := numericPattern.FindString(cleaned)
	if match == "" {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero, false
	}
	return value, true
}

// UnitPrice prefers the stored numeric value and falls back to the display string.
func UnitPrice(product domain.Product) (decimal.Decimal, bool) {
	if product.PriceValue.Valid {
		return product.PriceValue.Decimal, true
	}
	return ParseDisplayPrice(product.Price)
}

func ClampQuantity(qty int) int {
	if qty < 1 {
		return 1
	}
	return qty
}

func FormatTotal(symbol string, total decimal.Decimal) string {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return symbol + total.StringFixed(2)
}

// Resolve prices every requested line against catalog. Each request entry
// yields exactly one line, in request order. The total is the exact sum of
// line subtotals; rounding happens only in Display.
func Resolve(requested []RequestedItem, catalog map[int64]domain.Product, opts Options) (Quote, error) {
	items := make([]domain.LineItem, 0, len(requested))
	total := decimal.Zero

	for _, req := range requested {
		line := domain.LineItem{
			ProductID: req.ProductID,
			Quantity:  ClampQuantity(req.Quantity),
			UnitPrice: decimal.Zero,
		}

		product, ok := catalog[req.ProductID]
		if !ok {
			if opts.Strict {
				return Quote{}, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, req.ProductID)
			}
		} else {
			line.Title = product.Title
			if price, ok := UnitPrice(product); ok {
				line.UnitPrice = price
			}
		}

		total = total.Add(line.Subtotal())
		items = append(items, line)
	}

	return Quote{
		Items:   items,
		Total:   total,
		Display: FormatTotal(opts.CurrencySymbol, total),
	}, nil
}

// LocalizeUSD converts a "$25.00" style display price into local currency at
// rate, rounded to a whole unit, returning the new display string and value.
// ok is false when price is not a dollar amount.
func LocalizeUSD(price string, rate decimal.Decimal, symbol string) (display string, value decimal.Decimal, ok bool) {
	trimmed := strings.TrimSpace(price)
	if !strings.HasPrefix(trimmed, "$") {
		return price, decimal.Zero, false
	}
	usd, parsed := ParseDisplayPrice(trimmed)
	if !parsed {
		return price, decimal.Zero, false
	}
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	value = usd.Mul(rate).Round(0)
	return symbol + value.String(), value, true
}
