package validation

import (
	"context"
	"fmt"
	"time"

	"product-catalog/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Failure is a single failed business rule, tagged with the request field it
// concerns. An empty Field marks a request-level failure.
type Failure struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// StoreQuery is the read capability the store-backed rules need. The engine
// never writes.
type StoreQuery interface {
	SKUExists(ctx context.Context, sku string) (bool, error)
	NameAndBrandExists(ctx context.Context, name, brand string) (bool, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// checkFunc evaluates one rule. A non-empty message means the rule failed; a
// non-nil error means the check itself could not run (infrastructure fault).
type checkFunc func(ctx context.Context, req *domain.CreateProductRequest) (string, error)

// rule is one entry of the declared rule table. when is the activation
// predicate (nil means unconditional); async rules issue store queries and
// are dispatched concurrently.
type rule struct {
	field string
	when  func(req *domain.CreateProductRequest) bool
	check checkFunc
	async bool
}

// Engine validates creation requests against the declared rule table.
type Engine struct {
	store  StoreQuery
	logger *zap.Logger
	rules  []rule
}

// NewEngine creates a validation engine backed by the given store.
func NewEngine(store StoreQuery, logger *zap.Logger) *Engine {
	e := &Engine{
		store:  store,
		logger: logger,
	}
	e.rules = e.buildRules()
	return e
}

// Validate evaluates every applicable rule and returns the failures in rule
// declaration order. All applicable rules run; one field failing never stops
// checks on other fields. Store-backed rules run concurrently since they are
// independent reads. A store error aborts validation with an error rather
// than a failure list.
func (e *Engine) Validate(ctx context.Context, req *domain.CreateProductRequest) ([]Failure, error) {
	results := make([]string, len(e.rules))

	var syncErr error
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range e.rules {
		if r.when != nil && !r.when(req) {
			continue
		}
		if r.async {
			g.Go(func() error {
				msg, err := r.check(gctx, req)
				if err != nil {
					return err
				}
				results[i] = msg
				return nil
			})
			continue
		}
		msg, err := r.check(ctx, req)
		if err != nil {
			if syncErr == nil {
				syncErr = fmt.Errorf("rule check for field %q: %w", r.field, err)
			}
			continue
		}
		results[i] = msg
	}

	// Drain the async rules even when a sync check errored, so no goroutine
	// writes into results after we return.
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("store-backed rule check: %w", err)
	}
	if syncErr != nil {
		return nil, syncErr
	}

	var failures []Failure
	for i, msg := range results {
		if msg == "" {
			continue
		}
		failures = append(failures, Failure{Field: e.rules[i].field, Message: msg})
	}

	if len(failures) > 0 {
		e.logger.Debug("Validation produced failures",
			zap.String("sku", req.SKU),
			zap.Int("failure_count", len(failures)),
		)
	}

	return failures, nil
}
