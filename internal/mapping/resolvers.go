package mapping

import (
	"fmt"
	"strings"
	"time"

	"product-catalog/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var homeDiscount = decimal.NewFromFloat(0.9)

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// CategoryDisplayName maps a category to its storefront label.
func CategoryDisplayName(category domain.ProductCategory) string {
	switch category {
	case domain.CategoryElectronics:
		return "Electronics & Technology"
	case domain.CategoryClothing:
		return "Clothing & Fashion"
	case domain.CategoryBooks:
		return "Books & Media"
	case domain.CategoryHome:
		return "Home & Garden"
	default:
		return "Uncategorized"
	}
}

// EffectivePrice is the price shown to customers: Home products get a 10%
// discount rounded half-up to two decimals, every other category shows the
// stored price unchanged. The stored price is never touched.
func EffectivePrice(category domain.ProductCategory, price decimal.Decimal) decimal.Decimal {
	if category == domain.CategoryHome {
		return price.Mul(homeDiscount).Round(2)
	}
	return price
}

// FormattedPrice renders the effective price as localized currency text.
func FormattedPrice(category domain.ProductCategory, price decimal.Decimal) string {
	amount, _ := EffectivePrice(category, price).Float64()
	return currencyPrinter.Sprintf("$%v", number.Decimal(amount, number.Scale(2)))
}

// ProductAge buckets the time since release into a display label. Age is
// measured in fractional UTC days.
func ProductAge(releaseDate, now time.Time) string {
	ageDays := now.Sub(releaseDate).Hours() / 24

	if ageDays < 30 {
		return "New Release"
	}
	if ageDays < 365 {
		return fmt.Sprintf("%d months old", int(ageDays/30))
	}
	if ageDays < 1825 {
		return fmt.Sprintf("%d years old", int(ageDays/365))
	}
	// Only reachable at ageDays >= 1825, so this catches the day either side
	// of the five-year mark.
	if diff := ageDays - 1825; diff < 1 && diff > -1 {
		return "Classic"
	}
	return "Vintage"
}

// BrandInitials derives up to two uppercase initials from the brand name:
// first character of the first and last whitespace-separated tokens, a single
// character for one token, "?" for none.
func BrandInitials(brand string) string {
	parts := strings.Fields(brand)
	if len(parts) == 0 {
		return "?"
	}
	first := []rune(parts[0])
	if len(parts) == 1 {
		return strings.ToUpper(string(first[0]))
	}
	last := []rune(parts[len(parts)-1])
	return strings.ToUpper(string(first[0]) + string(last[0]))
}

// AvailabilityStatus maps availability and stock level to a display label.
// The zero-quantity branch under isAvailable is unreachable when availability
// is derived as quantity > 0 at construction; it is kept for parity with the
// declared status table.
func AvailabilityStatus(isAvailable bool, stockQuantity int) string {
	if !isAvailable {
		return "Out of Stock"
	}
	switch {
	case stockQuantity == 0:
		return "Unavailable"
	case stockQuantity == 1:
		return "Last Item"
	case stockQuantity <= 5:
		return "Limited Stock"
	default:
		return "In Stock"
	}
}

// DisplayImageURL suppresses the image for Home products and passes the
// stored value through for everything else.
func DisplayImageURL(category domain.ProductCategory, imageURL string) string {
	if category == domain.CategoryHome {
		return ""
	}
	return imageURL
}
