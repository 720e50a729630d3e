package repository

import (
	"encoding/json"
	"time"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
)

// Timestamps are stored at microsecond resolution, the finest PostgreSQL keeps.
const timeResolution = time.Microsecond

// ProductRecord is the persisted shape of a product. Images and features are
// stored as serialized JSON text and decoded at this edge only.
type ProductRecord struct {
	ID          uint    `gorm:"primaryKey"`
	Title       string  `gorm:"size:255;not null;index"`
	Description *string `gorm:"type:text"`
	Price       float64 `gorm:"not null"`
	Category    string  `gorm:"size:100;not null;index"`
	Brand       *string `gorm:"size:100"`
	Rating      float64 `gorm:"not null"`
	Stock       int     `gorm:"not null"`
	Images      *string `gorm:"type:text"`
	Features    *string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ProductRecord) TableName() string { return "products" }

type SaleRecord struct {
	ID           uint      `gorm:"primaryKey"`
	ProductID    uint      `gorm:"not null;index"`
	ProductTitle string    `gorm:"size:255;not null"`
	ProductImage *string   `gorm:"type:text"`
	Quantity     int       `gorm:"not null"`
	Price        float64   `gorm:"not null"`
	Total        float64   `gorm:"not null"`
	Status       string    `gorm:"size:50;not null"`
	Date         time.Time `gorm:"not null;index"`
}

func (SaleRecord) TableName() string { return "sales" }

// Models lists every persisted record type for schema creation.
func Models() []any {
	return []any{&ProductRecord{}, &SaleRecord{}}
}

func (r ProductRecord) toDomain() domain.Product {
	return domain.Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Brand:       r.Brand,
		Rating:      r.Rating,
		Stock:       r.Stock,
		Images:      decodeStringList(r.Images),
		Features:    decodeStringList(r.Features),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func productRecordFromDomain(p *domain.Product) ProductRecord {
	return ProductRecord{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Brand:       p.Brand,
		Rating:      p.Rating,
		Stock:       p.Stock,
		Images:      encodeStringList(p.Images),
		Features:    encodeStringList(p.Features),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (r SaleRecord) toDomain() domain.Sale {
	return domain.Sale{
		ID:           r.ID,
		ProductID:    r.ProductID,
		ProductTitle: r.ProductTitle,
		ProductImage: r.ProductImage,
		Quantity:     r.Quantity,
		Price:        r.Price,
		Total:        r.Total,
		Status:       r.Status,
		Date:         r.Date,
	}
}

func saleRecordFromDomain(s domain.Sale) SaleRecord {
	return SaleRecord{
		ID:           s.ID,
		ProductID:    s.ProductID,
		ProductTitle: s.ProductTitle,
		ProductImage: s.ProductImage,
		Quantity:     s.Quantity,
		Price:        s.Price,
		Total:        s.Total,
		Status:       s.Status,
		Date:         s.Date,
	}
}

func encodeStringList(items []string) *string {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		empty := "[]"
		return &empty
	}
	out := string(raw)
	return &out
}

// decodeStringList never fails: NULL or malformed text yields an empty list.
func decodeStringList(raw *string) []string {
	out := []string{}
	if raw == nil || *raw == "" {
		return out
	}
	var items []string
	if err := json.Unmarshal([]byte(*raw), &items); err != nil || items == nil {
		return out
	}
	return items
}

func productsToDomain(records []ProductRecord) []domain.Product {
	out := make([]domain.Product, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDomain())
	}
	return out
}

func salesToDomain(records []SaleRecord) []domain.Sale {
	out := make([]domain.Sale, 0, len(records))
	for _, r := range records {
		out = append(out, r.toDomain())
	}
	return out
}

// nextUpdatedAt keeps updated_at strictly increasing for a row even when the
// clock does not advance between two writes.
func nextUpdatedAt(prev, now time.Time) time.Time {
	next := now.UTC().Truncate(timeResolution)
	if !next.After(prev) {
		next = prev.UTC().Truncate(timeResolution).Add(timeResolution)
	}
	return next
}
