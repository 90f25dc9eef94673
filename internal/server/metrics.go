package server

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Metrics holds the service collectors.
type Metrics struct {
	requests *prometheus.HistogramVec
	compiles *prometheus.CounterVec
	renders  *prometheus.CounterVec
	issues   prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "formdef",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formdef",
			Name:      "compile_total",
			Help:      "Form compilations by outcome.",
		}, []string{"result"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formdef",
			Name:      "render_total",
			Help:      "Rendered forms by renderer.",
		}, []string{"renderer"}),
		issues: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "formdef",
			Name:      "validation_issues_total",
			Help:      "Validation issues reported for submissions.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.compiles, m.renders, m.issues} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// compiled counts a compile outcome. Lookups that never reached the
// compiler are not counted.
func (m *Metrics) compiled(err error) {
	switch {
	case err == nil:
		m.compiles.WithLabelValues("ok").Inc()
	case definitionError(err):
		m.compiles.WithLabelValues("error").Inc()
	}
}

func definitionError(err error) bool {
	return errors.Is(err, model.ErrConfiguration) || errors.Is(err, model.ErrReference) || errors.Is(err, model.ErrCycle)
}
