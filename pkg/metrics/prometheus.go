package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus exports every recorded name as a label of one gauge vector,
// `<namespace>_gauge{metric="<name>"}`.
type Prometheus struct {
	gauge *prometheus.GaugeVec
}

// NewPrometheus creates the gauge vector and registers it with reg. A nil
// reg uses prometheus.DefaultRegisterer. If an identical collector is
// already registered, it is reused.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	if namespace == "" {
		namespace = "viewkit"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "gauge",
		Help:      "Last value recorded by the view lifecycle instrumentation hook.",
	}, []string{"metric"})
	if err := reg.Register(gauge); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.GaugeVec)
		if !ok {
			return nil, err
		}
		gauge = existing
	}
	return &Prometheus{gauge: gauge}, nil
}

// Record sets the gauge for name.
func (p *Prometheus) Record(name string, value float64) {
	p.gauge.WithLabelValues(name).Set(value)
}

// Collector exposes the underlying gauge vector.
func (p *Prometheus) Collector() prometheus.Collector {
	return p.gauge
}
