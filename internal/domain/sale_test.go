package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewSaleSnapshotsProduct(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p := Product{ID: 7, Title: "AirPods Pro", Price: 4500, Images: []string{"https://img/1", "https://img/2"}}

	sale, err := NewSale(p, 3, at)
	if err != nil {
		t.Fatalf("new sale: %v", err)
	}
	if sale.ProductID != 7 || sale.ProductTitle != "AirPods Pro" {
		t.Fatalf("unexpected snapshot: %+v", sale)
	}
	if sale.ProductImage == nil || *sale.ProductImage != "https://img/1" {
		t.Fatalf("expected first image snapshot, got %v", sale.ProductImage)
	}
	if sale.Total != 13500 || sale.Price != 4500 || sale.Quantity != 3 {
		t.Fatalf("unexpected totals: %+v", sale)
	}
	if sale.Status != SaleStatusCompleted || !sale.Date.Equal(at) {
		t.Fatalf("unexpected status/date: %+v", sale)
	}

	p.Images[0] = "https://img/changed"
	if *sale.ProductImage != "https://img/1" {
		t.Fatal("sale image must not alias product images")
	}
}

func TestNewSaleWithoutImages(t *testing.T) {
	sale, err := NewSale(Product{ID: 1, Title: "Bare", Price: 1}, 1, time.Now())
	if err != nil {
		t.Fatalf("new sale: %v", err)
	}
	if sale.ProductImage != nil {
		t.Fatalf("expected nil image, got %q", *sale.ProductImage)
	}
}

func TestSaleTotalUsesDecimalArithmetic(t *testing.T) {
	cases := []struct {
		price float64
		qty   int
		want  float64
	}{
		{19.99, 3, 59.97},
		{0.1, 3, 0.3},
		{10200, 1, 10200},
		{0, 5, 0},
	}
	for _, tc := range cases {
		got, err := SaleTotal(tc.price, tc.qty)
		if err != nil {
			t.Fatalf("SaleTotal(%v,%d): %v", tc.price, tc.qty, err)
		}
		if got != tc.want {
			t.Fatalf("SaleTotal(%v,%d)=%v want %v", tc.price, tc.qty, got, tc.want)
		}
	}
}

func TestSaleTotalRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		price float64
		qty   int
	}{
		{"overflows float64", 1e308, 10},
		{"above max total", 1e9, 10_001},
		{"infinite price", math.Inf(1), 1},
		{"nan price", math.NaN(), 1},
		{"negative price", -1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := SaleTotal(tc.price, tc.qty); !errors.Is(err, ErrSaleTotalOutOfRange) {
				t.Fatalf("expected ErrSaleTotalOutOfRange, got %v", err)
			}
		})
	}

	if got, err := SaleTotal(1e9, 10_000); err != nil || got != MaxSaleTotal {
		t.Fatalf("expected the max total to be accepted, got %v err=%v", got, err)
	}
}

func TestNewSaleRejectsOverflowingTotal(t *testing.T) {
	_, err := NewSale(Product{ID: 3, Title: "Yacht", Price: 1e308}, 10, time.Now())
	if !errors.Is(err, ErrSaleTotalOutOfRange) {
		t.Fatalf("expected ErrSaleTotalOutOfRange, got %v", err)
	}
}
