package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/rossmatican/thoughtleaderai/internal/model"
)

func TestObserveAnalysis(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())

	m.ObserveAnalysis(model.Snapshot{Scored: true, CognitiveScore: 85}, time.Millisecond)
	m.ObserveAnalysis(model.Snapshot{Scored: false, CognitiveScore: 100}, time.Millisecond)

	if got := testutil.ToFloat64(m.analyses); got != 2 {
		t.Fatalf("expected 2 analyses, got %v", got)
	}
	if got := testutil.ToFloat64(m.unscored); got != 1 {
		t.Fatalf("expected 1 unscored, got %v", got)
	}
	if got := testutil.CollectAndCount(m.cognitive); got != 1 {
		t.Fatalf("expected one cognitive series, got %d", got)
	}
}

func TestInterventionsAndResolutions(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())

	m.ObserveIntervention(model.Intervention{Category: model.CategoryHigh})
	m.ObserveIntervention(model.Intervention{Category: model.CategoryHigh})
	m.ObserveIntervention(model.Intervention{Category: model.CategoryMedium})
	m.ObserveResolution(model.Intervention{Dismissed: true})
	m.ObserveResolution(model.Intervention{Response: "because"})

	if got := testutil.ToFloat64(m.interventions.WithLabelValues(model.CategoryHigh)); got != 2 {
		t.Fatalf("expected 2 high interventions, got %v", got)
	}
	if got := testutil.ToFloat64(m.interventions.WithLabelValues(model.CategoryMedium)); got != 1 {
		t.Fatalf("expected 1 medium intervention, got %v", got)
	}
	if got := testutil.ToFloat64(m.resolutions.WithLabelValues(KindDismissed)); got != 1 {
		t.Fatalf("expected 1 dismissal, got %v", got)
	}
	if got := testutil.ToFloat64(m.resolutions.WithLabelValues(KindResponded)); got != 1 {
		t.Fatalf("expected 1 response, got %v", got)
	}
}

func TestMustNewReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustNew(reg)
	second := MustNew(reg)

	first.ObserveIntervention(model.Intervention{Category: model.CategoryLow})
	if got := testutil.ToFloat64(second.interventions.WithLabelValues(model.CategoryLow)); got != 1 {
		t.Fatalf("expected shared collector, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis(model.Snapshot{}, 0)
	m.ObserveIntervention(model.Intervention{})
	m.ObserveResolution(model.Intervention{})
	m.SetSessionsActive(3)
}

func TestSessionsActive(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())
	m.SetSessionsActive(4)
	if got := testutil.ToFloat64(m.sessionsActive); got != 4 {
		t.Fatalf("expected 4 sessions, got %v", got)
	}
}
