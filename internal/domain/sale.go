package domain

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const SaleStatusCompleted = "Completed"

// MaxSaleTotal keeps stored totals exact to the cent in a float64 column.
const MaxSaleTotal = 1e13

var ErrSaleTotalOutOfRange = errors.New("sale total must be between 0 and 10000000000000")

type Sale struct {
	ID           uint      `json:"id"`
	ProductID    uint      `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	ProductImage *string   `json:"product_image"`
	Quantity     int       `json:"quantity"`
	Price        float64   `json:"price"`
	Total        float64   `json:"total"`
	Status       string    `json:"status"`
	Date         time.Time `json:"date"`
}

type SaleStats struct {
	TotalSales  int64   `json:"total_sales"`
	TotalItems  int64   `json:"total_items"`
	TotalAmount float64 `json:"total_amount"`
}

type SalesSummary struct {
	Sales []Sale    `json:"sales"`
	Stats SaleStats `json:"stats"`
}

// NewSale snapshots the product's title, first image and unit price at the
// moment of purchase. The total is computed once here and never recomputed.
func NewSale(product Product, quantity int, at time.Time) (Sale, error) {
	total, err := SaleTotal(product.Price, quantity)
	if err != nil {
		return Sale{}, err
	}
	return Sale{
		ProductID:    product.ID,
		ProductTitle: product.Title,
		ProductImage: product.FirstImage(),
		Quantity:     quantity,
		Price:        product.Price,
		Total:        total,
		Status:       SaleStatusCompleted,
		Date:         at,
	}, nil
}

// SaleTotal multiplies in decimal and rejects totals that are negative,
// not finite, or above MaxSaleTotal.
func SaleTotal(price float64, quantity int) (float64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 || quantity < 0 {
		return 0, ErrSaleTotalOutOfRange
	}
	total := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
	if total.GreaterThan(decimal.NewFromFloat(MaxSaleTotal)) {
		return 0, ErrSaleTotalOutOfRange
	}
	return total.InexactFloat64(), nil
}
