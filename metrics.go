package fieldseal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the package's Prometheus collectors. Build one with
// NewMetrics and attach it to a Config through WithMetrics.
type Metrics struct {
	operations     *prometheus.CounterVec
	keyDerivations prometheus.Counter
}

// NewMetrics builds and registers the collectors with reg. A nil reg
// registers on the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldseal",
			Name:      "operations_total",
			Help:      "Encryption operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		keyDerivations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldseal",
			Name:      "key_derivations_total",
			Help:      "Password key derivations performed (cache misses).",
		}),
	}
}

func (m *Metrics) observe(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) derivationDone() {
	m.keyDerivations.Inc()
}
