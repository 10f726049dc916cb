package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Причины отклонения запроса для лейбла reason.
const (
	ReasonBadRequest     = "bad_request"
	ReasonCustomer       = "customer_not_found"
	ReasonEmptyCatalog   = "empty_catalog"
	ReasonUnknownProduct = "unknown_product"
	ReasonStock          = "stock_unavailable"
)

// OrderMetrics содержит метрики сценария оформления заказа.
type OrderMetrics struct {
	// Счётчики результатов
	ordersCreated prometheus.Counter
	orderRejected *prometheus.CounterVec

	// Гистограммы
	createDuration prometheus.Histogram
	itemsPerOrder  prometheus.Histogram
}

// NewOrderMetrics создаёт метрики заказов в default-реестре Prometheus.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "shop_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		orderRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_orders_rejected_total",
			Help: "Total number of order requests rejected by validation",
		}, []string{"reason"}),
		createDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_order_create_duration_seconds",
			Help:    "Duration of the order creation flow in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		itemsPerOrder: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "shop_order_items",
			Help:    "Number of line items per created order",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
	}
}

// RecordOrderCreated фиксирует успешно созданный заказ и число его позиций.
func (m *OrderMetrics) RecordOrderCreated(items int) {
	m.ordersCreated.Inc()
	m.itemsPerOrder.Observe(float64(items))
}

// RecordOrderRejected увеличивает счётчик отклонённых запросов по причине.
func (m *OrderMetrics) RecordOrderRejected(reason string) {
	m.orderRejected.WithLabelValues(reason).Inc()
}

// RecordCreateDuration записывает длительность сценария оформления.
func (m *OrderMetrics) RecordCreateDuration(duration time.Duration) {
	m.createDuration.Observe(duration.Seconds())
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
