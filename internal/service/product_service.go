package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/domain"
	"product-catalog/internal/mapping"
	"product-catalog/internal/metrics"
	"product-catalog/internal/repository"
	"product-catalog/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Validator evaluates a creation request against the business rule set.
type Validator interface {
	Validate(ctx context.Context, req *domain.CreateProductRequest) ([]validation.Failure, error)
}

// ProductService defines the catalog business operations. Create returns
// exactly one of: a view (created), a failure list (rejected), or an error
// (infrastructure fault, never converted into a rejection).
type ProductService interface {
	Create(ctx context.Context, req *domain.CreateProductRequest) (*mapping.ProductView, []validation.Failure, error)
	GetByID(ctx context.Context, id uuid.UUID) (*mapping.ProductView, error)
}

type productService struct {
	repo      repository.ProductRepository
	validator Validator
	cache     cache.Invalidator
	recorder  *metrics.Recorder
	logger    *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	repo repository.ProductRepository,
	validator Validator,
	invalidator cache.Invalidator,
	recorder *metrics.Recorder,
	logger *zap.Logger,
) ProductService {
	return &productService{
		repo:      repo,
		validator: validator,
		cache:     invalidator,
		recorder:  recorder,
		logger:    logger,
	}
}

// Create runs the full creation pipeline: validate, build the canonical
// entity, persist, invalidate the aggregate cache, derive the response view,
// emit metrics. Exactly one metrics record is emitted per invocation, on
// every path out.
func (s *productService) Create(ctx context.Context, req *domain.CreateProductRequest) (*mapping.ProductView, []validation.Failure, error) {
	totalStart := time.Now()
	operationID := newOperationID()

	var validationDuration, persistenceDuration time.Duration

	log := s.logger.With(
		zap.String("operation_id", operationID),
		zap.String("sku", req.SKU),
		zap.String("product_name", req.Name),
	)

	log.Info("Starting product creation",
		zap.Int("event_id", metrics.EventProductCreationStarted),
		zap.String("brand", req.Brand),
		zap.String("category", string(req.Category)),
	)

	emit := func(success bool, errorReason string) {
		s.recorder.RecordCreation(metrics.CreationMetrics{
			OperationID:         operationID,
			ProductName:         req.Name,
			SKU:                 req.SKU,
			Category:            req.Category,
			ValidationDuration:  validationDuration,
			PersistenceDuration: persistenceDuration,
			TotalDuration:       time.Since(totalStart),
			Success:             success,
			ErrorReason:         errorReason,
		})
	}

	validationStart := time.Now()
	failures, err := s.validator.Validate(ctx, req)
	validationDuration = time.Since(validationStart)

	if err != nil {
		log.Error("Validation could not run", zap.Error(err))
		emit(false, err.Error())
		return nil, nil, fmt.Errorf("failed to validate product: %w", err)
	}

	if len(failures) > 0 {
		log.Warn("Product validation failed",
			zap.Int("event_id", metrics.EventProductValidationFailed),
			zap.String("errors", joinFailures(failures)),
		)
		emit(false, metrics.ReasonValidationFailed)
		return nil, failures, nil
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          req.Name,
		Brand:         req.Brand,
		SKU:           req.SKU,
		Category:      req.Category,
		Price:         req.Price,
		ReleaseDate:   req.ReleaseDate,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		IsAvailable:   req.StockQuantity > 0,
		CreatedAt:     now,
	}

	log.Info("Saving product to database",
		zap.Int("event_id", metrics.EventDatabaseOperationStarted),
	)

	persistenceStart := time.Now()
	err = s.repo.Insert(ctx, product)
	persistenceDuration = time.Since(persistenceStart)

	if err != nil {
		// The unique index is the final authority on sku uniqueness: a
		// concurrent insert that slipped past the pre-check comes back as a
		// rejection, not a fault.
		if errors.Is(err, repository.ErrDuplicateSKU) {
			failures = []validation.Failure{{Field: "SKU", Message: "SKU already exists in the system"}}
			log.Warn("Product validation failed",
				zap.Int("event_id", metrics.EventProductValidationFailed),
				zap.String("errors", joinFailures(failures)),
			)
			emit(false, metrics.ReasonValidationFailed)
			return nil, failures, nil
		}

		log.Error("Unexpected error creating product", zap.Error(err))
		emit(false, err.Error())
		return nil, nil, fmt.Errorf("failed to create product: %w", err)
	}

	log.Info("Database save completed",
		zap.Int("event_id", metrics.EventDatabaseOperationDone),
		zap.String("product_id", product.ID.String()),
	)

	// Best effort: a failed invalidation is logged by the cache itself and
	// never fails the creation.
	if err := s.cache.Invalidate(ctx, cache.AllProductsKey); err == nil {
		log.Info("Cache invalidated",
			zap.Int("event_id", metrics.EventCacheOperationPerformed),
			zap.String("key", cache.AllProductsKey),
		)
	}

	view := mapping.NewProductView(product, time.Now().UTC())

	emit(true, "")
	return view, nil, nil
}

// GetByID loads a product and derives a fresh view from it.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*mapping.ProductView, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return mapping.NewProductView(product, time.Now().UTC()), nil
}

// newOperationID returns a short id correlating all log entries of one
// creation attempt.
func newOperationID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

func joinFailures(failures []validation.Failure) string {
	msgs := make([]string, len(failures))
	for i, f := range failures {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, ", ")
}
