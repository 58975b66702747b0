package validation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxNameLength     = 200
	minBrandLength    = 2
	maxBrandLength    = 100
	maxStockQuantity  = 100000
	dailyCreationCap  = 500
	highValueMaxStock = 20
)

var (
	maxPrice           = decimal.NewFromInt(10000)
	highValuePrice     = decimal.NewFromInt(100)
	electronicsMin     = decimal.NewFromInt(50)
	homeMax            = decimal.NewFromInt(200)
	earliestRelease    = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)
	electronicsMaxAge  = 5 // years
	brandPattern       = regexp.MustCompile(`^[a-zA-Z0-9\s\-'.]+$`)
	skuPattern         = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)
	imageExtensions    = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	urlValidate        = validator.New()
	prohibitedNameTerm = []string{
		"scam", "fraud", "fake", "replica", "counterfeit",
		"illegal", "banned", "stolen", "pirated", "warez",
		"xxx", "adult", "porn", "nsfw", "nude",
		"hate", "racist", "kill", "murder", "weapon",
	}
	technologyKeywords = []string{
		"Smart", "Digital", "Electric", "Pro", "Tech",
		"Wireless", "Bluetooth", "WiFi", "Connect", "5G",
		"Ultra", "Turbo", "Power", "Hyper", "Mega", "Giga",
		"Cyber", "Nano", "Quantum", "AI", "Intelligent", "Robot",
		"Sonic", "Laser", "Vision", "HD", "Pixel",
	}
	inappropriateForHome = []string{
		"Industrial", "Toxic", "Hazard",
		"Commercial", "Factory", "Warehouse", "Bulk", "Heavy-Duty",
		"Poison", "Lethal", "Explosive", "Radioactive", "Biohazard",
		"Corrosive", "Acid", "Flammable", "Combustible",
		"High-Voltage", "Asbestos", "Medical", "Surgical", "Waste",
	}
)

// buildRules declares the full rule table in evaluation/reporting order.
func (e *Engine) buildRules() []rule {
	isElectronics := func(req *domain.CreateProductRequest) bool {
		return req.Category == domain.CategoryElectronics
	}
	isHome := func(req *domain.CreateProductRequest) bool {
		return req.Category == domain.CategoryHome
	}
	hasName := func(req *domain.CreateProductRequest) bool { return req.Name != "" }
	hasBrand := func(req *domain.CreateProductRequest) bool { return req.Brand != "" }
	hasSKU := func(req *domain.CreateProductRequest) bool { return req.SKU != "" }
	hasImageURL := func(req *domain.CreateProductRequest) bool { return req.ImageURL != "" }

	return []rule{
		{field: "Name", check: pure(func(req *domain.CreateProductRequest) string {
			if req.Name == "" {
				return "Name is required"
			}
			return ""
		})},
		{field: "Name", when: hasName, check: pure(func(req *domain.CreateProductRequest) string {
			if len(req.Name) > maxNameLength {
				return "Name must not exceed 200 characters"
			}
			return ""
		})},
		{field: "Name", when: hasName, check: pure(func(req *domain.CreateProductRequest) string {
			if containsAnyFold(req.Name, prohibitedNameTerm) {
				return "Name contains inappropriate content"
			}
			return ""
		})},
		{field: "Brand", check: pure(func(req *domain.CreateProductRequest) string {
			if req.Brand == "" {
				return "Brand is required"
			}
			return ""
		})},
		{field: "Brand", when: hasBrand, check: pure(func(req *domain.CreateProductRequest) string {
			if len(req.Brand) < minBrandLength || len(req.Brand) > maxBrandLength {
				return "Brand must be between 2 and 100 characters"
			}
			return ""
		})},
		{field: "Brand", when: hasBrand, check: pure(func(req *domain.CreateProductRequest) string {
			if !brandPattern.MatchString(req.Brand) {
				return "Brand contains invalid characters"
			}
			return ""
		})},
		{field: "Price", check: pure(func(req *domain.CreateProductRequest) string {
			if !req.Price.IsPositive() {
				return "Price must be greater than 0"
			}
			return ""
		})},
		{field: "Price", check: pure(func(req *domain.CreateProductRequest) string {
			if req.Price.GreaterThanOrEqual(maxPrice) {
				return "Price must be less than 10000"
			}
			return ""
		})},
		{field: "StockQuantity", check: pure(func(req *domain.CreateProductRequest) string {
			if req.StockQuantity < 0 {
				return "StockQuantity must be greater than or equal to 0"
			}
			return ""
		})},
		{field: "StockQuantity", check: pure(func(req *domain.CreateProductRequest) string {
			if req.StockQuantity >= maxStockQuantity {
				return "StockQuantity must be less than 100000"
			}
			return ""
		})},
		{field: "ReleaseDate", check: pure(func(req *domain.CreateProductRequest) string {
			if req.ReleaseDate.After(time.Now().UTC()) {
				return "Release date cannot be in the future"
			}
			return ""
		})},
		{field: "ReleaseDate", check: pure(func(req *domain.CreateProductRequest) string {
			if !req.ReleaseDate.After(earliestRelease) {
				return "Release date cannot be before year 1900"
			}
			return ""
		})},
		{field: "ImageUrl", when: hasImageURL, check: pure(func(req *domain.CreateProductRequest) string {
			if !isValidImageURL(req.ImageURL) {
				return "ImageUrl must be a valid HTTP/HTTPS URL ending with an image extension (.jpg, .png, etc.)"
			}
			return ""
		})},
		{field: "SKU", check: pure(func(req *domain.CreateProductRequest) string {
			if req.SKU == "" {
				return "SKU is required"
			}
			return ""
		})},
		{field: "SKU", when: hasSKU, check: pure(func(req *domain.CreateProductRequest) string {
			if !skuPattern.MatchString(req.SKU) {
				return "SKU must be alphanumeric with hyphens"
			}
			return ""
		})},
		{field: "SKU", when: hasSKU, async: true, check: e.checkSKUUnique},
		{field: "Name", when: hasName, async: true, check: e.checkNameAndBrandUnique},
		{field: "Price", when: isElectronics, check: pure(func(req *domain.CreateProductRequest) string {
			if req.Price.LessThan(electronicsMin) {
				return "Electronics must cost at least $50.00"
			}
			return ""
		})},
		{field: "Name", when: isElectronics, check: pure(func(req *domain.CreateProductRequest) string {
			if !containsAnyFold(req.Name, technologyKeywords) {
				return "Electronics name must contain technology keywords"
			}
			return ""
		})},
		{field: "ReleaseDate", when: isElectronics, check: pure(func(req *domain.CreateProductRequest) string {
			if req.ReleaseDate.Before(time.Now().UTC().AddDate(-electronicsMaxAge, 0, 0)) {
				return "Electronics cannot be older than 5 years"
			}
			return ""
		})},
		{field: "Price", when: isHome, check: pure(func(req *domain.CreateProductRequest) string {
			if req.Price.GreaterThan(homeMax) {
				return "Home products cannot exceed $200.00"
			}
			return ""
		})},
		{field: "Name", when: isHome, check: pure(func(req *domain.CreateProductRequest) string {
			if containsAnyFold(req.Name, inappropriateForHome) {
				return "Name not appropriate for Home category"
			}
			return ""
		})},
		{field: "StockQuantity", check: func(_ context.Context, req *domain.CreateProductRequest) (string, error) {
			e.logger.Info("Performing stock validation",
				zap.Int("event_id", metrics.EventStockValidationPerformed),
				zap.String("sku", req.SKU),
				zap.Int("stock_quantity", req.StockQuantity),
			)
			if req.Price.GreaterThan(highValuePrice) && req.StockQuantity > highValueMaxStock {
				return "high-value products capped at 20 units", nil
			}
			return "", nil
		}},
		{field: "", async: true, check: e.checkDailyCreationCap},
	}
}

// pure wraps a store-free predicate as a checkFunc.
func pure(f func(req *domain.CreateProductRequest) string) checkFunc {
	return func(_ context.Context, req *domain.CreateProductRequest) (string, error) {
		return f(req), nil
	}
}

func (e *Engine) checkSKUUnique(ctx context.Context, req *domain.CreateProductRequest) (string, error) {
	e.logger.Info("Validating uniqueness for SKU",
		zap.Int("event_id", metrics.EventSKUValidationPerformed),
		zap.String("sku", req.SKU),
	)

	exists, err := e.store.SKUExists(ctx, req.SKU)
	if err != nil {
		return "", fmt.Errorf("sku uniqueness check: %w", err)
	}
	if exists {
		return "SKU already exists in the system", nil
	}
	return "", nil
}

func (e *Engine) checkNameAndBrandUnique(ctx context.Context, req *domain.CreateProductRequest) (string, error) {
	e.logger.Info("Checking uniqueness for name and brand",
		zap.String("name", req.Name),
		zap.String("brand", req.Brand),
	)

	exists, err := e.store.NameAndBrandExists(ctx, req.Name, req.Brand)
	if err != nil {
		return "", fmt.Errorf("name and brand uniqueness check: %w", err)
	}
	if exists {
		return "This product name already exists for this brand", nil
	}
	return "", nil
}

func (e *Engine) checkDailyCreationCap(ctx context.Context, _ *domain.CreateProductRequest) (string, error) {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	count, err := e.store.CountCreatedSince(ctx, startOfDay)
	if err != nil {
		return "", fmt.Errorf("daily creation count: %w", err)
	}
	if count >= dailyCreationCap {
		e.logger.Warn("Daily product limit reached", zap.Int64("count", count))
		return "Daily product creation limit (500) reached", nil
	}
	return "", nil
}

// containsAnyFold reports whether s contains any of the terms,
// case-insensitively.
func containsAnyFold(s string, terms []string) bool {
	lower := strings.ToLower(s)
	for _, term := range terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// isValidImageURL accepts absolute http/https URLs ending in a known image
// extension. The scheme/shape check leans on the validator library; the
// extension check is a case-insensitive suffix match.
func isValidImageURL(raw string) bool {
	if err := urlValidate.Var(raw, "http_url"); err != nil {
		return false
	}
	lower := strings.ToLower(raw)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
