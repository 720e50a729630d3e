package domain

import "time"

type Product struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Brand       *string   `json:"brand"`
	Rating      float64   `json:"rating"`
	Stock       int       `json:"stock"`
	Images      []string  `json:"images"`
	Features    []string  `json:"features"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FirstImage returns nil when the product has no images.
func (p Product) FirstImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	img := p.Images[0]
	return &img
}

// ProductPatch carries a partial update. Only fields with Set=true are applied.
type ProductPatch struct {
	Title       Optional[string]   `json:"title"`
	Description Optional[string]   `json:"description"`
	Price       Optional[float64]  `json:"price"`
	Category    Optional[string]   `json:"category"`
	Brand       Optional[string]   `json:"brand"`
	Rating      Optional[float64]  `json:"rating"`
	Stock       Optional[int]      `json:"stock"`
	Images      Optional[[]string] `json:"images"`
	Features    Optional[[]string] `json:"features"`
}

func (p ProductPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Price.Set && !p.Category.Set &&
		!p.Brand.Set && !p.Rating.Set && !p.Stock.Set && !p.Images.Set && !p.Features.Set
}
