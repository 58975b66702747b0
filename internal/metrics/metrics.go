package metrics

import (
	"time"

	"product-catalog/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Stable event ids carried on structured log entries so operators can filter
// the creation pipeline's stages.
const (
	EventProductCreationStarted   = 2001
	EventProductValidationFailed  = 2002
	EventProductCreationCompleted = 2003
	EventDatabaseOperationStarted = 2004
	EventDatabaseOperationDone    = 2005
	EventCacheOperationPerformed  = 2006
	EventSKUValidationPerformed   = 2007
	EventStockValidationPerformed = 2008
)

// Creation outcome labels on the prometheus counter.
const (
	OutcomeSuccess          = "success"
	OutcomeValidationFailed = "validation_failed"
	OutcomeError            = "error"
)

// ReasonValidationFailed is the ErrorReason a rejected creation carries. The
// outcome mapping keys off it, so emitters must use this constant.
const ReasonValidationFailed = "Validation Failed"

// CreationMetrics is the per-invocation record of a creation attempt. It is
// emitted exactly once per call and never read back.
type CreationMetrics struct {
	OperationID         string
	ProductName         string
	SKU                 string
	Category            domain.ProductCategory
	ValidationDuration  time.Duration
	PersistenceDuration time.Duration
	TotalDuration       time.Duration
	Success             bool
	ErrorReason         string
}

// Recorder emits one structured event per creation attempt and mirrors the
// timings into prometheus collectors.
type Recorder struct {
	logger              *zap.Logger
	creations           *prometheus.CounterVec
	validationDuration  prometheus.Histogram
	persistenceDuration prometheus.Histogram
	totalDuration       prometheus.Histogram
}

// NewRecorder registers the collectors on reg and returns the recorder.
func NewRecorder(logger *zap.Logger, reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		logger: logger,
		creations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "product_creations_total",
			Help: "Product creation attempts by outcome.",
		}, []string{"outcome"}),
		validationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "product_creation_validation_seconds",
			Help:    "Time spent validating a creation request.",
			Buckets: prometheus.DefBuckets,
		}),
		persistenceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "product_creation_persistence_seconds",
			Help:    "Time spent persisting a product.",
			Buckets: prometheus.DefBuckets,
		}),
		totalDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "product_creation_total_seconds",
			Help:    "End-to-end time of a creation attempt.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(r.creations, r.validationDuration, r.persistenceDuration, r.totalDuration)
	return r
}

// RecordCreation emits the metrics record for one invocation.
func (r *Recorder) RecordCreation(m CreationMetrics) {
	r.creations.WithLabelValues(m.outcome()).Inc()
	r.validationDuration.Observe(m.ValidationDuration.Seconds())
	r.persistenceDuration.Observe(m.PersistenceDuration.Seconds())
	r.totalDuration.Observe(m.TotalDuration.Seconds())

	r.logger.Info("Product creation metrics",
		zap.Int("event_id", EventProductCreationCompleted),
		zap.String("operation_id", m.OperationID),
		zap.String("product_name", m.ProductName),
		zap.String("sku", m.SKU),
		zap.String("category", string(m.Category)),
		zap.Duration("validation_duration", m.ValidationDuration),
		zap.Duration("persistence_duration", m.PersistenceDuration),
		zap.Duration("total_duration", m.TotalDuration),
		zap.Bool("success", m.Success),
		zap.String("error_reason", m.ErrorReason),
	)
}

func (m CreationMetrics) outcome() string {
	switch {
	case m.Success:
		return OutcomeSuccess
	case m.ErrorReason == ReasonValidationFailed:
		return OutcomeValidationFailed
	default:
		return OutcomeError
	}
}
