package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics содержит метрики транзакционных workflow (заказы,
// платежи, регистрации).
type WorkflowMetrics struct {
	// Счётчики операций
	ordersCreated        prometheus.Counter
	paymentsSettled      *prometheus.CounterVec
	paymentConflicts     prometheus.Counter
	registrationsCreated prometheus.Counter
	registrationRejects  *prometheus.CounterVec

	// Гистограммы времени выполнения
	chargeDuration   prometheus.Histogram
	workflowDuration *prometheus.HistogramVec

	// Счётчик событий outbox
	outboxEvents prometheus.Counter
}

// NewWorkflowMetrics создаёт новый экземпляр метрик workflow.
func NewWorkflowMetrics() *WorkflowMetrics {
	return newWorkflowMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newWorkflowMetricsWithRegisterer(registerer prometheus.Registerer) *WorkflowMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &WorkflowMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_orders_created_total",
			Help: "Total number of orders created",
		}),
		paymentsSettled: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "commerce_payments_settled_total",
			Help: "Total number of payment attempts settled grouped by final status",
		}, []string{"status"}),
		paymentConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_payment_conflicts_total",
			Help: "Total number of payment attempts rejected by the one-live-payment-per-order guard",
		}),
		registrationsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_registrations_created_total",
			Help: "Total number of registrations created",
		}),
		registrationRejects: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "commerce_registration_rejects_total",
			Help: "Total number of registrations rejected grouped by reason",
		}, []string{"reason"}),
		chargeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "commerce_gateway_charge_duration_seconds",
			Help:    "Duration of card gateway charge calls in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		workflowDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "commerce_workflow_duration_seconds",
			Help:    "Duration of workflow operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"workflow"}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "commerce_outbox_events_total",
			Help: "Total number of outbox events enqueued by workflows",
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

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderCreated увеличивает счётчик созданных заказов.
func (m *WorkflowMetrics) RecordOrderCreated() {
	m.ordersCreated.Inc()
}

// RecordPaymentSettled фиксирует финальный статус попытки оплаты.
func (m *WorkflowMetrics) RecordPaymentSettled(status string) {
	m.paymentsSettled.WithLabelValues(status).Inc()
}

// RecordPaymentConflict увеличивает счётчик сработавших idempotency-guard.
func (m *WorkflowMetrics) RecordPaymentConflict() {
	m.paymentConflicts.Inc()
}

// RecordRegistrationCreated увеличивает счётчик созданных регистраций.
func (m *WorkflowMetrics) RecordRegistrationCreated() {
	m.registrationsCreated.Inc()
}

// RecordRegistrationReject фиксирует отказ регистрации: conflict или quota.
func (m *WorkflowMetrics) RecordRegistrationReject(reason string) {
	m.registrationRejects.WithLabelValues(reason).Inc()
}

// RecordChargeDuration записывает время обращения к платёжному шлюзу.
func (m *WorkflowMetrics) RecordChargeDuration(duration time.Duration) {
	m.chargeDuration.Observe(duration.Seconds())
}

// RecordWorkflowDuration записывает время выполнения операции workflow.
func (m *WorkflowMetrics) RecordWorkflowDuration(workflow string, duration time.Duration) {
	m.workflowDuration.WithLabelValues(workflow).Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *WorkflowMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}
