package amazonfps

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "fpsgateway"

type Metrics struct {
	checkoutRedirects *prometheus.CounterVec
	payments          *prometheus.CounterVec
	providerFailures  *prometheus.CounterVec
}

// NewMetrics registers the gateway counters. Passing nil uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		checkoutRedirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "checkout_redirects_total",
			Help:      "Checkout redirect decisions by resulting state and outcome.",
		}, []string{"state", "outcome"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "payments_total",
			Help:      "Payment finalization results.",
		}, []string{"result"}),
		providerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "provider_failures_total",
			Help:      "Failed calls to the payment provider by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.checkoutRedirects, m.payments, m.providerFailures)

	return m
}

func (m *Metrics) redirect(state State, outcome string) {
	m.checkoutRedirects.WithLabelValues(string(state), outcome).Inc()
}

func (m *Metrics) payment(result string) {
	m.payments.WithLabelValues(result).Inc()
}

func (m *Metrics) providerFailure(kind string) {
	m.providerFailures.WithLabelValues(kind).Inc()
}
