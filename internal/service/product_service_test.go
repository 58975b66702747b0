package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/metrics"
	"product-catalog/internal/repository"
	"product-catalog/internal/validation"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// mockRepository is an in-memory ProductRepository. It also serves as the
// validation engine's store, so the engine's uniqueness checks see the same
// data the inserts write.
type mockRepository struct {
	products  map[uuid.UUID]*domain.Product
	insertErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{products: make(map[uuid.UUID]*domain.Product)}
}

func (m *mockRepository) Insert(ctx context.Context, product *domain.Product) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, p := range m.products {
		if p.SKU == product.SKU {
			return repository.ErrDuplicateSKU
		}
	}
	copied := *product
	m.products[product.ID] = &copied
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockRepository) SKUExists(ctx context.Context, sku string) (bool, error) {
	for _, p := range m.products {
		if p.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) NameAndBrandExists(ctx context.Context, name, brand string) (bool, error) {
	for _, p := range m.products {
		if p.Name == name && p.Brand == brand {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	for _, p := range m.products {
		if !p.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) Health(ctx context.Context) error {
	return nil
}

type mockCache struct {
	invalidated []string
	err         error
}

func (m *mockCache) Invalidate(ctx context.Context, key string) error {
	if m.err != nil {
		return m.err
	}
	m.invalidated = append(m.invalidated, key)
	return nil
}

func newTestService(repo *mockRepository, invalidator *mockCache) ProductService {
	logger := zap.NewNop()
	recorder := metrics.NewRecorder(logger, prometheus.NewRegistry())
	validator := validation.NewEngine(repo, logger)
	return NewProductService(repo, validator, invalidator, recorder, logger)
}

func electronicsRequest() *domain.CreateProductRequest {
	return &domain.CreateProductRequest{
		Name:          "Ultra Smart Watch Pro",
		Brand:         "TechGiant",
		SKU:           "SMART-WATCH-001",
		Category:      domain.CategoryElectronics,
		Price:         decimal.RequireFromString("150.00"),
		ReleaseDate:   time.Now().UTC().AddDate(0, 0, -29),
		StockQuantity: 15,
		ImageURL:      "https://example.com/watch.png",
	}
}

func TestCreateSuccess(t *testing.T) {
	repo := newMockRepository()
	invalidator := &mockCache{}
	svc := newTestService(repo, invalidator)

	view, failures, err := svc.Create(context.Background(), electronicsRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if failures != nil {
		t.Fatalf("Create returned failures: %v", failures)
	}
	if view == nil {
		t.Fatal("Create returned no view")
	}

	if view.ID == uuid.Nil {
		t.Error("view ID not assigned")
	}
	if view.CategoryDisplayName != "Electronics & Technology" {
		t.Errorf("CategoryDisplayName = %q", view.CategoryDisplayName)
	}
	if view.BrandInitials != "T" {
		t.Errorf("BrandInitials = %q", view.BrandInitials)
	}
	if view.ProductAge != "New Release" {
		t.Errorf("ProductAge = %q", view.ProductAge)
	}
	if view.AvailabilityStatus != "In Stock" {
		t.Errorf("AvailabilityStatus = %q", view.AvailabilityStatus)
	}
	if !strings.HasPrefix(view.FormattedPrice, "$") {
		t.Errorf("FormattedPrice = %q", view.FormattedPrice)
	}

	stored, err := repo.FindByID(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("product not persisted: %v", err)
	}
	if !stored.IsAvailable {
		t.Error("product with stock should be available")
	}
	if stored.UpdatedAt != nil {
		t.Error("UpdatedAt should start nil")
	}
	if stored.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	if len(invalidator.invalidated) != 1 || invalidator.invalidated[0] != "all_products" {
		t.Errorf("cache invalidation = %v, want [all_products]", invalidator.invalidated)
	}
}

func TestCreateZeroStockIsUnavailable(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockCache{})

	req := electronicsRequest()
	req.StockQuantity = 0

	view, failures, err := svc.Create(context.Background(), req)
	if err != nil || failures != nil {
		t.Fatalf("Create = (%v, %v)", failures, err)
	}

	stored, _ := repo.FindByID(context.Background(), view.ID)
	if stored.IsAvailable {
		t.Error("zero stock product should not be available")
	}
	if view.AvailabilityStatus != "Out of Stock" {
		t.Errorf("AvailabilityStatus = %q", view.AvailabilityStatus)
	}
}

func TestCreateValidationRejection(t *testing.T) {
	repo := newMockRepository()
	invalidator := &mockCache{}
	svc := newTestService(repo, invalidator)

	req := electronicsRequest()
	req.Price = decimal.RequireFromString("0")

	view, failures, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("rejection must not be an error: %v", err)
	}
	if view != nil {
		t.Error("rejected request must not produce a view")
	}
	if len(failures) == 0 {
		t.Fatal("expected failures")
	}
	if len(repo.products) != 0 {
		t.Error("rejected request must not persist")
	}
	if len(invalidator.invalidated) != 0 {
		t.Error("rejected request must not touch the cache")
	}
}

func TestCreateDuplicateSKURejected(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockCache{})

	if _, failures, err := svc.Create(context.Background(), electronicsRequest()); err != nil || failures != nil {
		t.Fatalf("first create failed: (%v, %v)", failures, err)
	}

	second := electronicsRequest()
	second.Name = "Ultra Smart Watch Pro II"

	view, failures, err := svc.Create(context.Background(), second)
	if err != nil {
		t.Fatalf("duplicate must be a rejection, not an error: %v", err)
	}
	if view != nil {
		t.Error("duplicate must not produce a view")
	}

	found := false
	for _, f := range failures {
		if f.Field == "SKU" && f.Message == "SKU already exists in the system" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate sku failure, got %v", failures)
	}
}

func TestCreateConcurrentDuplicateFromInsert(t *testing.T) {
	// The pre-check passes but the insert hits the unique index, as happens
	// when two requests race. The collision must come back as a rejection.
	repo := newMockRepository()
	repo.insertErr = repository.ErrDuplicateSKU
	svc := newTestService(repo, &mockCache{})

	view, failures, err := svc.Create(context.Background(), electronicsRequest())
	if err != nil {
		t.Fatalf("index collision must be a rejection, not an error: %v", err)
	}
	if view != nil {
		t.Error("collision must not produce a view")
	}
	if len(failures) != 1 || failures[0].Field != "SKU" || failures[0].Message != "SKU already exists in the system" {
		t.Errorf("failures = %v", failures)
	}
}

func TestCreateInsertFault(t *testing.T) {
	repo := newMockRepository()
	repo.insertErr = errors.New("connection reset")
	invalidator := &mockCache{}
	svc := newTestService(repo, invalidator)

	view, failures, err := svc.Create(context.Background(), electronicsRequest())
	if err == nil {
		t.Fatal("expected an error from a failing insert")
	}
	if view != nil || failures != nil {
		t.Errorf("fault must not produce a view or failures: (%v, %v)", view, failures)
	}
	if len(invalidator.invalidated) != 0 {
		t.Error("failed insert must not invalidate the cache")
	}
}

func TestCreateCacheFailureIsIgnored(t *testing.T) {
	repo := newMockRepository()
	invalidator := &mockCache{err: errors.New("redis down")}
	svc := newTestService(repo, invalidator)

	view, failures, err := svc.Create(context.Background(), electronicsRequest())
	if err != nil || failures != nil {
		t.Fatalf("cache failure must not fail creation: (%v, %v)", failures, err)
	}
	if view == nil {
		t.Fatal("expected a view despite cache failure")
	}
	if len(repo.products) != 1 {
		t.Error("product should still be persisted")
	}
}

func TestCreateHomeViewAdjustments(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockCache{})

	req := &domain.CreateProductRequest{
		Name:          "Garden Chair",
		Brand:         "Comfy Living",
		SKU:           "CHAIR-001",
		Category:      domain.CategoryHome,
		Price:         decimal.RequireFromString("100.00"),
		ReleaseDate:   time.Now().UTC().AddDate(0, -2, 0),
		StockQuantity: 3,
		ImageURL:      "https://example.com/chair.jpg",
	}

	view, failures, err := svc.Create(context.Background(), req)
	if err != nil || failures != nil {
		t.Fatalf("Create = (%v, %v)", failures, err)
	}

	if !view.Price.Equal(decimal.RequireFromString("90")) {
		t.Errorf("view price = %s, want 90", view.Price)
	}
	if view.ImageURL != nil {
		t.Errorf("Home image should be suppressed, got %v", view.ImageURL)
	}

	stored, _ := repo.FindByID(context.Background(), view.ID)
	if !stored.Price.Equal(decimal.RequireFromString("100.00")) {
		t.Errorf("stored price = %s, want untouched 100.00", stored.Price)
	}
	if stored.ImageURL != "https://example.com/chair.jpg" {
		t.Errorf("stored image = %q, want untouched", stored.ImageURL)
	}
}

func TestGetByID(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, &mockCache{})

	created, _, err := svc.Create(context.Background(), electronicsRequest())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	view, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if view.SKU != "SMART-WATCH-001" {
		t.Errorf("SKU = %q", view.SKU)
	}

	_, err = svc.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Errorf("missing product error = %v, want ErrProductNotFound", err)
	}
}
