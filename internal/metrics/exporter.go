package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/orrery/internal/dynamo"
)

// Exporter publishes simulation progress as Prometheus metrics on its own
// registry. It implements dynamo.Observer.
type Exporter struct {
	registry *prometheus.Registry
	bodies   []string

	Steps   prometheus.Counter
	SimTime prometheus.Gauge
	Angles  *prometheus.GaugeVec
}

// NewExporter labels angle i of the state with bodies[i].
func NewExporter(bodies []string) *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		bodies:   append([]string(nil), bodies...),
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orrery_steps_total",
			Help: "Integration steps observed",
		}),
		SimTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orrery_sim_time_seconds",
			Help: "Current simulation time",
		}),
		Angles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "orrery_body_angle_radians",
			Help: "Current revolution angle of each body",
		}, []string{"body"}),
	}
	e.registry.MustRegister(e.Steps, e.SimTime, e.Angles)
	return e
}

func (e *Exporter) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	e.Steps.Inc()
	e.SimTime.Set(t)
	for i, name := range e.bodies {
		if i >= len(x) {
			break
		}
		e.Angles.WithLabelValues(name).Set(x[i])
	}
}

func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{Registry: e.registry})
}

var _ dynamo.Observer = (*Exporter)(nil)
