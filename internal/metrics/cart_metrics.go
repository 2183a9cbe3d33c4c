package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Значения label result для метрики оформления.
const (
	CheckoutResultPlaced  = "placed"
	CheckoutResultInvalid = "invalid"
	CheckoutResultFailed  = "failed"
)

// CartMetrics содержит метрики корзины и её хранилища.
// Все методы безопасно вызывать на nil-указателе.
type CartMetrics struct {
	// Счётчики операций
	operations          *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	syncDropped         prometheus.Counter
	checkouts           *prometheus.CounterVec

	// Текущее состояние корзины
	cartItems  prometheus.Gauge
	cartAmount prometheus.Gauge
}

// NewCartMetrics создаёт метрики в реестре по умолчанию.
func NewCartMetrics() *CartMetrics {
	return NewCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCartMetricsWithRegisterer создаёт метрики в переданном реестре.
func NewCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sweetcart_cart_operations_total",
			Help: "Total number of cart store operations by kind",
		}, []string{"op"}),
		persistenceFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sweetcart_persistence_failures_total",
			Help: "Total number of absorbed cart persistence failures",
		}, []string{"op"}),
		syncDropped: registerCounter(registerer, prometheus.CounterOpts{
			Name: "sweetcart_sync_dropped_items_total",
			Help: "Total number of cart items dropped during catalog sync",
		}),
		checkouts: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "sweetcart_checkouts_total",
			Help: "Total number of checkout attempts by result",
		}, []string{"result"}),
		cartItems: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "sweetcart_cart_items",
			Help: "Number of units currently in the cart",
		}),
		cartAmount: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "sweetcart_cart_amount",
			Help: "Current cart total amount",
		}),
	}
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

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOperation увеличивает счётчик операций корзины.
func (m *CartMetrics) RecordOperation(op string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op).Inc()
}

// RecordPersistenceFailure учитывает проглоченную ошибку чтения или записи.
func (m *CartMetrics) RecordPersistenceFailure(op string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(op).Inc()
}

// RecordSyncDropped учитывает позиции, удалённые при синхронизации с каталогом.
func (m *CartMetrics) RecordSyncDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.syncDropped.Add(float64(n))
}

// RecordCheckout учитывает попытку оформления с результатом result.
func (m *CartMetrics) RecordCheckout(result string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(result).Inc()
}

// SetCartState выставляет gauge текущего состояния корзины.
func (m *CartMetrics) SetCartState(totalItems int, totalAmount decimal.Decimal) {
	if m == nil {
		return
	}
	m.cartItems.Set(float64(totalItems))
	m.cartAmount.Set(totalAmount.InexactFloat64())
}
