package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCategory is a product category. Unknown values are tolerated by the
// creation flow; only the known ones activate category-specific behavior.
type ProductCategory string

const (
	CategoryElectronics ProductCategory = "Electronics"
	CategoryClothing    ProductCategory = "Clothing"
	CategoryBooks       ProductCategory = "Books"
	CategoryHome        ProductCategory = "Home"
	CategoryToys        ProductCategory = "Toys"
	CategorySports      ProductCategory = "Sports"
)

// Product is the canonical persisted catalog entry. Price and ImageURL are
// stored exactly as submitted; category-specific display adjustments happen
// at view-building time only.
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Brand         string          `json:"brand" db:"brand"`
	SKU           string          `json:"sku" db:"sku"`
	Category      ProductCategory `json:"category" db:"category"`
	Price         decimal.Decimal `json:"price" db:"price"`
	ReleaseDate   time.Time       `json:"release_date" db:"release_date"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	ImageURL      string          `json:"image_url,omitempty" db:"image_url"`
	IsAvailable   bool            `json:"is_available" db:"is_available"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty" db:"updated_at"`
}

// CreateProductRequest carries the fields of a creation attempt. It is never
// persisted as-is; the service builds the Product from it after validation.
type CreateProductRequest struct {
	Name          string
	Brand         string
	SKU           string
	Category      ProductCategory
	Price         decimal.Decimal
	ReleaseDate   time.Time
	StockQuantity int
	ImageURL      string
}
