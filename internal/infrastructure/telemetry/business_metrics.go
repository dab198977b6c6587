package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Dispatch and load outcomes used as metric labels.
const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeValidation = "validation"
	OutcomeRejected   = "rejected"
)

// BusinessMetrics tracks catalog loads, catalog size, dispatches and view
// sessions.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	catalogLoadTotal *Counter
	catalogProducts  *Gauge

	dispatchTotal    *Counter
	dispatchDuration *Histogram

	sessionCreatedTotal *Counter
	viewActionTotal     *Counter
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	bm.catalogLoadTotal, err = NewCounter(cfg.Meter,
		"catalog_load_total",
		"Total number of catalog load attempts",
		"{loads}",
	)
	if err != nil {
		return nil, err
	}

	bm.catalogProducts, err = NewGauge(cfg.Meter,
		"catalog_products",
		"Number of products in the current catalog",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	bm.dispatchTotal, err = NewCounter(cfg.Meter,
		"integration_dispatch_total",
		"Total number of integration dispatches",
		"{dispatches}",
	)
	if err != nil {
		return nil, err
	}

	bm.dispatchDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "integration_dispatch_duration_seconds",
		Description: "Duration of outbound integration calls",
		Unit:        "s",
		Boundaries:  DispatchDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	bm.sessionCreatedTotal, err = NewCounter(cfg.Meter,
		"view_session_created_total",
		"Total number of view sessions created",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	bm.viewActionTotal, err = NewCounter(cfg.Meter,
		"view_action_total",
		"Total number of view actions applied",
		"{actions}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Catalog Metrics
// =============================================================================

// RecordCatalogLoad records a load attempt and, on success, the product count
func (bm *BusinessMetrics) RecordCatalogLoad(ctx context.Context, source, outcome string, products int) {
	bm.catalogLoadTotal.Inc(ctx, AttrSource.String(source), AttrOutcome.String(outcome))
	if outcome == OutcomeSuccess {
		bm.catalogProducts.Record(ctx, int64(products))
	}
}

// =============================================================================
// Dispatch Metrics
// =============================================================================

// RecordDispatch records one dispatch and its duration
func (bm *BusinessMetrics) RecordDispatch(ctx context.Context, channel, action, outcome string, d time.Duration) {
	attrs := []attribute.KeyValue{AttrChannel.String(channel), AttrAction.String(action), AttrOutcome.String(outcome)}
	bm.dispatchTotal.Inc(ctx, attrs...)
	if outcome == OutcomeSuccess || outcome == OutcomeError {
		bm.dispatchDuration.RecordDuration(ctx, d, attrs...)
	}
}

// =============================================================================
// View Metrics
// =============================================================================

// RecordSessionCreated counts a new view session
func (bm *BusinessMetrics) RecordSessionCreated(ctx context.Context) {
	bm.sessionCreatedTotal.Inc(ctx)
}

// RecordViewAction counts an applied view action
func (bm *BusinessMetrics) RecordViewAction(ctx context.Context, action, outcome string) {
	bm.viewActionTotal.Inc(ctx, AttrAction.String(action), AttrOutcome.String(outcome))
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
