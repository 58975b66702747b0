package mapping

import (
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductView is the response representation of a product. It carries the
// canonical fields plus display fields derived from them; it is rebuilt on
// every read and never stored.
type ProductView struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Brand               string          `json:"brand"`
	SKU                 string          `json:"sku"`
	Category            domain.ProductCategory `json:"category"`
	CategoryDisplayName string          `json:"category_display_name"`
	Price               decimal.Decimal `json:"price"`
	FormattedPrice      string          `json:"formatted_price"`
	ReleaseDate         time.Time       `json:"release_date"`
	CreatedAt           time.Time       `json:"created_at"`
	ImageURL            *string         `json:"image_url"`
	IsAvailable         bool            `json:"is_available"`
	StockQuantity       int             `json:"stock_quantity"`
	ProductAge          string          `json:"product_age"`
	BrandInitials       string          `json:"brand_initials"`
	AvailabilityStatus  string          `json:"availability_status"`
}

// NewProductView derives the response view from a canonical product. The
// resolvers run in a fixed order; none of them mutate the product. Price and
// image both go through the same category adjustment used by FormattedPrice,
// so the two can never disagree.
func NewProductView(p *domain.Product, now time.Time) *ProductView {
	view := &ProductView{
		ID:                  p.ID,
		Name:                p.Name,
		Brand:               p.Brand,
		SKU:                 p.SKU,
		Category:            p.Category,
		CategoryDisplayName: CategoryDisplayName(p.Category),
		Price:               EffectivePrice(p.Category, p.Price),
		FormattedPrice:      FormattedPrice(p.Category, p.Price),
		ReleaseDate:         p.ReleaseDate,
		CreatedAt:           p.CreatedAt,
		IsAvailable:         p.IsAvailable,
		StockQuantity:       p.StockQuantity,
		ProductAge:          ProductAge(p.ReleaseDate, now),
		BrandInitials:       BrandInitials(p.Brand),
		AvailabilityStatus:  AvailabilityStatus(p.IsAvailable, p.StockQuantity),
	}

	if url := DisplayImageURL(p.Category, p.ImageURL); url != "" {
		view.ImageURL = &url
	}

	return view
}
