package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// metricByName ищет семейство метрик в выдаче custom registry.
func metricByName(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, family := range families {
		if family.GetName() == name {
			return family
		}
	}
	return nil
}

func TestNewOrderMetrics(t *testing.T) {
	metrics := NewOrderMetrics()

	if metrics == nil {
		t.Fatal("NewOrderMetrics should not return nil")
	}
	if metrics.ordersCreated == nil {
		t.Error("ordersCreated counter should not be nil")
	}
	if metrics.transitionsApplied == nil {
		t.Error("transitionsApplied counter vec should not be nil")
	}
	if metrics.transitionsNoop == nil {
		t.Error("transitionsNoop counter should not be nil")
	}
	if metrics.illegalTransitions == nil {
		t.Error("illegalTransitions counter should not be nil")
	}
	if metrics.versionConflicts == nil {
		t.Error("versionConflicts counter should not be nil")
	}
	if metrics.callbacksScheduled == nil {
		t.Error("callbacksScheduled counter should not be nil")
	}
	if metrics.transitionDuration == nil {
		t.Error("transitionDuration histogram should not be nil")
	}
}

func TestNewOrderMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(registry)
	second := newOrderMetricsWithRegisterer(registry)

	// Повторная регистрация должна вернуть уже существующие коллекторы.
	if first.ordersCreated != second.ordersCreated {
		t.Error("expected the same ordersCreated collector on re-registration")
	}
}

func TestOrderMetrics_Recording(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := newOrderMetricsWithRegisterer(registry)

	metrics.OrderCreated()
	metrics.TransitionApplied("VALIDATION_PENDING", 3*time.Millisecond)
	metrics.TransitionNoop()
	metrics.IllegalTransition()
	metrics.VersionConflict()
	metrics.CallbackScheduled()

	if got := counterValue(t, registry, "beerorders_orders_created_total"); got != 1 {
		t.Errorf("orders created: expected 1, got %v", got)
	}
	if got := counterValue(t, registry, "beerorders_status_transitions_noop_total"); got != 1 {
		t.Errorf("noop transitions: expected 1, got %v", got)
	}
	if got := counterValue(t, registry, "beerorders_callbacks_scheduled_total"); got != 1 {
		t.Errorf("callbacks scheduled: expected 1, got %v", got)
	}
}

func TestOrderMetrics_NilReceiverIsSafe(t *testing.T) {
	var metrics *OrderMetrics

	metrics.OrderCreated()
	metrics.TransitionApplied("READY", time.Millisecond)
	metrics.TransitionNoop()
	metrics.IllegalTransition()
	metrics.VersionConflict()
	metrics.CallbackScheduled()
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	family := metricByName(families, name)
	if family == nil {
		t.Fatalf("metric %s not found", name)
	}
	for _, metric := range family.GetMetric() {
		if metric.GetCounter() != nil {
			return metric.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s has no counter samples", name)
	return 0
}
