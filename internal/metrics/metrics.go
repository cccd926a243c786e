// Package metrics exposes Prometheus collectors for engine activity.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rossmatican/thoughtleaderai/internal/model"
)

const (
	namespace = "tlai"
	subsystem = "engine"
)

// Resolution kinds.
const (
	KindDismissed = "dismissed"
	KindResponded = "responded"
)

// Metrics implements session.Observer.
type Metrics struct {
	analyses         prometheus.Counter
	unscored         prometheus.Counter
	interventions    *prometheus.CounterVec
	resolutions      *prometheus.CounterVec
	cognitive        prometheus.Histogram
	analysisDuration prometheus.Histogram
	sessionsActive   prometheus.Gauge
}

// MustNew builds the collectors and registers them with reg, reusing any
// collector already registered under the same name. A nil reg selects the
// default registerer.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		analyses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "analyses_total",
			Help:      "Number of analysis passes over a draft.",
		}),
		unscored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "unscored_total",
			Help:      "Analysis passes on drafts too short to score.",
		}),
		interventions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "interventions_total",
			Help:      "Reflective prompts raised, by category.",
		}, []string{"category"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "resolutions_total",
			Help:      "Reflective prompts resolved, by kind.",
		}, []string{"kind"}),
		cognitive: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cognitive_score",
			Help:      "Cognitive independence score of scored drafts.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "analysis_duration_seconds",
			Help:      "Time spent in one analysis pass.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_active",
			Help:      "Sessions currently held in memory.",
		}),
	}
	m.analyses = register(reg, m.analyses)
	m.unscored = register(reg, m.unscored)
	m.interventions = register(reg, m.interventions)
	m.resolutions = register(reg, m.resolutions)
	m.cognitive = register(reg, m.cognitive)
	m.analysisDuration = register(reg, m.analysisDuration)
	m.sessionsActive = register(reg, m.sessionsActive)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveAnalysis records one analysis pass.
func (m *Metrics) ObserveAnalysis(snap model.Snapshot, took time.Duration) {
	if m == nil {
		return
	}
	m.analyses.Inc()
	m.analysisDuration.Observe(took.Seconds())
	if !snap.Scored {
		m.unscored.Inc()
		return
	}
	m.cognitive.Observe(float64(snap.CognitiveScore))
}

// ObserveIntervention counts a raised prompt.
func (m *Metrics) ObserveIntervention(iv model.Intervention) {
	if m == nil {
		return
	}
	m.interventions.WithLabelValues(iv.Category).Inc()
}

// ObserveResolution counts a dismissed or answered prompt.
func (m *Metrics) ObserveResolution(iv model.Intervention) {
	if m == nil {
		return
	}
	kind := KindResponded
	if iv.Dismissed {
		kind = KindDismissed
	}
	m.resolutions.WithLabelValues(kind).Inc()
}

// SetSessionsActive reports the size of the in-memory session set.
func (m *Metrics) SetSessionsActive(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}
