package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики операций над заказами.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated      prometheus.Counter
	transitionsApplied *prometheus.CounterVec
	transitionsNoop    prometheus.Counter
	illegalTransitions prometheus.Counter
	versionConflicts   prometheus.Counter

	// Счётчик запланированных callback-уведомлений
	callbacksScheduled prometheus.Counter

	// Гистограмма времени применения перехода
	transitionDuration prometheus.Histogram
}

// NewOrderMetrics создаёт новый экземпляр метрик заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "beerorders_orders_created_total",
			Help: "Total number of orders created",
		}),
		transitionsApplied: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "beerorders_status_transitions_total",
			Help: "Total number of applied status transitions grouped by target status",
		}, []string{"target"}),
		transitionsNoop: registerCounter(registerer, prometheus.CounterOpts{
			Name: "beerorders_status_transitions_noop_total",
			Help: "Total number of transition requests to the current status (no-op)",
		}),
		illegalTransitions: registerCounter(registerer, prometheus.CounterOpts{
			Name: "beerorders_status_transitions_illegal_total",
			Help: "Total number of transition requests rejected by the transition table",
		}),
		versionConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "beerorders_version_conflicts_total",
			Help: "Total number of writes rejected by the optimistic version check",
		}),
		callbacksScheduled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "beerorders_callbacks_scheduled_total",
			Help: "Total number of status callbacks scheduled for dispatch",
		}),
		transitionDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "beerorders_transition_duration_seconds",
			Help:    "Duration of status transition operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
	}
}

// OrderCreated учитывает созданный заказ.
func (m *OrderMetrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

// TransitionApplied учитывает успешный переход в target.
func (m *OrderMetrics) TransitionApplied(target string, duration time.Duration) {
	if m == nil {
		return
	}
	m.transitionsApplied.WithLabelValues(target).Inc()
	m.transitionDuration.Observe(duration.Seconds())
}

// TransitionNoop учитывает идемпотентный запрос перехода в текущий статус.
func (m *OrderMetrics) TransitionNoop() {
	if m == nil {
		return
	}
	m.transitionsNoop.Inc()
}

// IllegalTransition учитывает переход, отклонённый таблицей переходов.
func (m *OrderMetrics) IllegalTransition() {
	if m == nil {
		return
	}
	m.illegalTransitions.Inc()
}

// VersionConflict учитывает запись, отклонённую проверкой версии.
func (m *OrderMetrics) VersionConflict() {
	if m == nil {
		return
	}
	m.versionConflicts.Inc()
}

// CallbackScheduled учитывает поставленное в очередь уведомление.
func (m *OrderMetrics) CallbackScheduled() {
	if m == nil {
		return
	}
	m.callbacksScheduled.Inc()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
