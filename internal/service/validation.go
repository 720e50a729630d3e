package service

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sandeepkv93/bazar-universal-api/internal/domain"
)

const (
	maxTitleLength    = 255
	maxCategoryLength = 100
	maxBrandLength    = 100
	maxRating         = 5.0
	maxPrice          = 1_000_000_000
)

var (
	ErrProductInvalidTitle     = errors.New("title must be between 1 and 255 characters")
	ErrProductInvalidCategory  = errors.New("category must be between 1 and 100 characters")
	ErrProductInvalidBrand     = errors.New("brand must be at most 100 characters")
	ErrProductInvalidPrice     = errors.New("price must be between 0 and 1000000000")
	ErrProductInvalidRating    = errors.New("rating must be between 0 and 5")
	ErrProductInvalidStock     = errors.New("stock must be greater than or equal to 0")
	ErrProductFieldNotNullable = errors.New("field may not be null")
	ErrSearchQueryRequired     = errors.New("search query is required")
	ErrSaleInvalidQuantity     = errors.New("quantity must be greater than or equal to 1")
	ErrSaleTotalOutOfRange     = domain.ErrSaleTotalOutOfRange
)

var validationErrors = []error{
	ErrProductInvalidTitle,
	ErrProductInvalidCategory,
	ErrProductInvalidBrand,
	ErrProductInvalidPrice,
	ErrProductInvalidRating,
	ErrProductInvalidStock,
	ErrProductFieldNotNullable,
	ErrSearchQueryRequired,
	ErrSaleInvalidQuantity,
	ErrSaleTotalOutOfRange,
}

// IsValidationError reports whether err was caused by caller input.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func notNullable(field string) error {
	return fmt.Errorf("%s: %w", field, ErrProductFieldNotNullable)
}

func normalizeTitle(v string) (string, error) {
	title := strings.TrimSpace(v)
	if title == "" || utf8.RuneCountInString(title) > maxTitleLength {
		return "", ErrProductInvalidTitle
	}
	return title, nil
}

func normalizeCategory(v string) (string, error) {
	category := strings.TrimSpace(v)
	if category == "" || utf8.RuneCountInString(category) > maxCategoryLength {
		return "", ErrProductInvalidCategory
	}
	return category, nil
}

// normalizeBrand keeps nil as nil; an empty brand is stored as absent.
func normalizeBrand(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	brand := strings.TrimSpace(*v)
	if brand == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(brand) > maxBrandLength {
		return nil, ErrProductInvalidBrand
	}
	return &brand, nil
}

// normalizeDescription stores a blank description as absent. Non-blank text
// is kept verbatim.
func normalizeDescription(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	description := *v
	return &description
}

func validatePrice(v float64) error {
	if math.IsNaN(v) || v < 0 || v > maxPrice {
		return ErrProductInvalidPrice
	}
	return nil
}

func validateRating(v float64) error {
	if v < 0 || v > maxRating {
		return ErrProductInvalidRating
	}
	return nil
}

func validateStock(v int) error {
	if v < 0 {
		return ErrProductInvalidStock
	}
	return nil
}
