package telemetry

import (
	"context"
	"errors"

	"github.com/comanda/backend/internal/domain/catalog"
	"github.com/comanda/backend/internal/domain/shared"
	"github.com/comanda/backend/internal/domain/tab"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when no meter is configured
var ErrMeterNil = errors.New("NewBusinessMetrics: meter cannot be nil")

// OpenTabCounter reports how many tabs are currently open
type OpenTabCounter func() int

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	OpenTabs OpenTabCounter
}

// BusinessMetrics turns tab and catalog domain events into counters and histograms.
// It subscribes to the event bus like any other handler.
type BusinessMetrics struct {
	logger *zap.Logger

	tabsOpened     *Counter
	tabsClosed     *Counter
	itemsAdded     *Counter
	itemsRemoved   *Counter
	productChanges *Counter
	revenue        *FloatCounter
	tabValue       *Histogram
	tabDuration    *Histogram
}

// NewBusinessMetrics creates the instruments and registers the open tabs gauge
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{logger: logger}
	var err error

	if bm.tabsOpened, err = NewCounter(cfg.Meter, "comanda_tabs_opened_total", "Tabs opened", "{tabs}"); err != nil {
		return nil, err
	}
	if bm.tabsClosed, err = NewCounter(cfg.Meter, "comanda_tabs_closed_total", "Tabs closed by payment method", "{tabs}"); err != nil {
		return nil, err
	}
	if bm.itemsAdded, err = NewCounter(cfg.Meter, "comanda_tab_items_added_total", "Units added to tabs", "{units}"); err != nil {
		return nil, err
	}
	if bm.itemsRemoved, err = NewCounter(cfg.Meter, "comanda_tab_items_removed_total", "Lines removed from tabs", "{items}"); err != nil {
		return nil, err
	}
	if bm.productChanges, err = NewCounter(cfg.Meter, "comanda_catalog_changes_total", "Catalog changes by event type", "{events}"); err != nil {
		return nil, err
	}
	if bm.revenue, err = NewFloatCounter(cfg.Meter, "comanda_revenue_total", "Revenue of closed tabs", "BRL"); err != nil {
		return nil, err
	}
	if bm.tabValue, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "comanda_tab_value",
		Description: "Total of closed tabs",
		Unit:        "BRL",
		Boundaries:  TabValueBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.tabDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "comanda_tab_duration",
		Description: "Time between opening and closing a tab",
		Unit:        "min",
		Boundaries:  TabDurationBuckets,
	}); err != nil {
		return nil, err
	}

	if cfg.OpenTabs != nil {
		openTabs := cfg.OpenTabs
		_, err = cfg.Meter.Int64ObservableGauge("comanda_open_tabs",
			metric.WithDescription("Tabs currently open"),
			metric.WithUnit("{tabs}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(openTabs()))
				return nil
			}),
		)
		if err != nil {
			return nil, err
		}
	}

	return bm, nil
}

// EventTypes returns the events this handler records
func (bm *BusinessMetrics) EventTypes() []string {
	return []string{
		tab.EventTypeTabOpened,
		tab.EventTypeTabItemAdded,
		tab.EventTypeTabItemRemoved,
		tab.EventTypeTabClosed,
		catalog.EventTypeProductCreated,
		catalog.EventTypeProductUpdated,
		catalog.EventTypeProductPriceChanged,
		catalog.EventTypeProductDiscontinued,
		catalog.EventTypeProductDeleted,
	}
}

// Handle records one domain event
func (bm *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *tab.TabOpenedEvent:
		bm.tabsOpened.Inc(ctx)
	case *tab.TabItemAddedEvent:
		bm.itemsAdded.Add(ctx, int64(e.Quantity))
	case *tab.TabItemRemovedEvent:
		bm.itemsRemoved.Inc(ctx)
	case *tab.TabClosedEvent:
		bm.RecordTabClosed(ctx, e)
	default:
		if event.AggregateType() == catalog.AggregateTypeProduct {
			bm.productChanges.Inc(ctx, AttrEventType.String(event.EventType()))
		}
	}
	return nil
}

// RecordTabClosed records count, revenue, value and duration of a closed tab
func (bm *BusinessMetrics) RecordTabClosed(ctx context.Context, e *tab.TabClosedEvent) {
	method := AttrPaymentMethod.String(e.PaymentMethod.String())
	total := e.Total.InexactFloat64()

	bm.tabsClosed.Inc(ctx, method)
	bm.revenue.Add(ctx, total, method)
	bm.tabValue.Record(ctx, total, method)
	if !e.OpenedAt.IsZero() && e.ClosedAt.After(e.OpenedAt) {
		bm.tabDuration.Record(ctx, e.ClosedAt.Sub(e.OpenedAt).Minutes())
	}
}

// Ensure BusinessMetrics implements EventHandler
var _ shared.EventHandler = (*BusinessMetrics)(nil)
