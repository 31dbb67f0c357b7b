// Package telemetry exports controller metrics through OpenTelemetry and
// per-tick ship condition samples to InfluxDB.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Garsondee/Ship-Sense/internal/config"
)

const instrumentationName = "github.com/Garsondee/Ship-Sense/internal/ai"

// Metrics holds the controller's instruments. A nil *Metrics records nothing.
type Metrics struct {
	tickDuration metric.Float64Histogram
	dispatched   metric.Int64Counter
	targets      metric.Int64Counter
	routes       metric.Int64Counter
	messages     metric.Int64Counter
}

// New builds instruments from the global meter provider when telemetry is
// enabled, and from a no-op provider otherwise.
func New(cfg config.Telemetry) (*Metrics, error) {
	if !cfg.Enabled {
		return NewWithMeter(noop.NewMeterProvider().Meter(instrumentationName))
	}
	return NewWithMeter(otel.Meter(instrumentationName))
}

// NewWithMeter builds instruments from m.
func NewWithMeter(m metric.Meter) (*Metrics, error) {
	var (
		ms  Metrics
		err error
	)
	ms.tickDuration, err = m.Float64Histogram(
		"controller.tick.duration",
		metric.WithDescription("Wall time spent in one controller step"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick histogram: %w", err)
	}
	ms.dispatched, err = m.Int64Counter(
		"controller.ships.dispatched",
		metric.WithDescription("Ships given commands by the controller"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispatched counter: %w", err)
	}
	ms.targets, err = m.Int64Counter(
		"controller.targets.chosen",
		metric.WithDescription("Target selections that produced a ship"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating targets counter: %w", err)
	}
	ms.routes, err = m.Int64Counter(
		"controller.route.lookups",
		metric.WithDescription("Route cache lookups"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating route counter: %w", err)
	}
	ms.messages, err = m.Int64Counter(
		"controller.messages.posted",
		metric.WithDescription("Player-visible messages posted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages counter: %w", err)
	}
	return &ms, nil
}

// RecordTick records the duration of one step.
func (m *Metrics) RecordTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Record(context.Background(), float64(d.Microseconds())/1000)
}

// ShipsDispatched counts n ships handled in a step.
func (m *Metrics) ShipsDispatched(n int) {
	if m == nil || n == 0 {
		return
	}
	m.dispatched.Add(context.Background(), int64(n))
}

// TargetChosen counts one successful target selection.
func (m *Metrics) TargetChosen() {
	if m == nil {
		return
	}
	m.targets.Add(context.Background(), 1)
}

// RouteLookup counts one route cache lookup.
func (m *Metrics) RouteLookup(hit bool) {
	if m == nil {
		return
	}
	m.routes.Add(context.Background(), 1, metric.WithAttributes(attribute.Bool("hit", hit)))
}

// MessagePosted counts one message in category.
func (m *Metrics) MessagePosted(category string) {
	if m == nil {
		return
	}
	m.messages.Add(context.Background(), 1, metric.WithAttributes(attribute.String("category", category)))
}
