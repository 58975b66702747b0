package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"product-catalog/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSKU    = errors.New("product with this sku already exists")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// ProductRepository defines the store operations the catalog core depends on.
// The unique index on sku is the authoritative guard against concurrent
// inserts that both passed the uniqueness pre-check.
type ProductRepository interface {
	Insert(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	SKUExists(ctx context.Context, sku string) (bool, error)
	NameAndBrandExists(ctx context.Context, name, brand string) (bool, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	Health(ctx context.Context) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Insert persists a new product using parameterized queries. A sku collision
// surfaces as ErrDuplicateSKU.
func (r *productRepository) Insert(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, brand, sku, category, price, release_date, stock_quantity, image_url, is_available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Brand,
		product.SKU,
		product.Category,
		product.Price,
		product.ReleaseDate,
		product.StockQuantity,
		product.ImageURL,
		product.IsAvailable,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateSKU
		}
		return fmt.Errorf("failed to insert product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, brand, sku, category, price, release_date, stock_quantity, image_url, is_available, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	var imageURL sql.NullString
	var updatedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Brand,
		&product.SKU,
		&product.Category,
		&product.Price,
		&product.ReleaseDate,
		&product.StockQuantity,
		&imageURL,
		&product.IsAvailable,
		&product.CreatedAt,
		&updatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	product.ImageURL = imageURL.String
	if updatedAt.Valid {
		product.UpdatedAt = &updatedAt.Time
	}

	return product, nil
}

// SKUExists reports whether any product already carries the given sku.
func (r *productRepository) SKUExists(ctx context.Context, sku string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, sku).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check sku existence: %w", err)
	}

	return exists, nil
}

// NameAndBrandExists reports whether the name/brand combination is taken.
func (r *productRepository) NameAndBrandExists(ctx context.Context, name, brand string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND brand = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, name, brand).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check name and brand existence: %w", err)
	}

	return exists, nil
}

// CountCreatedSince counts products created at or after the given instant.
func (r *productRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM products WHERE created_at >= $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recent products: %w", err)
	}

	return count, nil
}

// Health pings the database with a short deadline.
func (r *productRepository) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}
