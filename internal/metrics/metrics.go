// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "billify"

// Metrics groups every collector the service records into.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	invoicesCreated  prometheus.Counter
	invoiceTotal     prometheus.Histogram
	numberCollisions prometheus.Counter
	storeTimeouts    *prometheus.CounterVec
	businesses       prometheus.Counter
	cacheLookups     *prometheus.CounterVec
	eventsPublished  *prometheus.CounterVec
	emailsSent       *prometheus.CounterVec
	rateLimited      prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "Invoices persisted.",
		}),
		invoiceTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invoice_total_amount",
			Help:      "Total amount of created invoices in rupees.",
			Buckets:   []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
		}),
		numberCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_number_collisions_total",
			Help:      "Invoice numbers regenerated after a uniqueness conflict.",
		}),
		storeTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_store_timeouts_total",
			Help:      "Invoice inserts that hit their deadline, by confirmed outcome.",
		}, []string{"outcome"}),
		businesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "business_profiles_registered_total",
			Help:      "Business profiles registered.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by type and status.",
		}, []string{"type", "status"}),
		emailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_emails_total",
			Help:      "Invoice emails by status.",
		}, []string{"status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.invoicesCreated,
		m.invoiceTotal,
		m.numberCollisions,
		m.storeTimeouts,
		m.businesses,
		m.cacheLookups,
		m.eventsPublished,
		m.emailsSent,
		m.rateLimited,
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) InvoiceCreated(total float64) {
	if m == nil {
		return
	}
	m.invoicesCreated.Inc()
	m.invoiceTotal.Observe(total)
}

func (m *Metrics) NumberCollision() {
	if m == nil {
		return
	}
	m.numberCollisions.Inc()
}

// StoreTimeout records a deadline hit; landed reports whether the write
// was found afterwards.
func (m *Metrics) StoreTimeout(landed bool) {
	if m == nil {
		return
	}
	outcome := "failed"
	if landed {
		outcome = "landed"
	}
	m.storeTimeouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) BusinessRegistered() {
	if m == nil {
		return
	}
	m.businesses.Inc()
}

func (m *Metrics) CacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, status).Inc()
}

func (m *Metrics) EmailSent(err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.emailsSent.WithLabelValues(status).Inc()
}

func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
