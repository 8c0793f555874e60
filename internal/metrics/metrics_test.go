package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration
	a := NewMetricsWith(prometheus.NewRegistry())
	b := NewMetricsWith(prometheus.NewRegistry())

	a.RecordGeneration("offer", "regenerate", "ok", 20*time.Millisecond)
	if got := testutil.ToFloat64(a.GenerationsTotal.WithLabelValues("offer", "regenerate", "ok")); got != 1 {
		t.Errorf("Expected 1 generation on a, got %v", got)
	}
	if got := testutil.ToFloat64(b.GenerationsTotal.WithLabelValues("offer", "regenerate", "ok")); got != 0 {
		t.Errorf("Expected 0 generations on b, got %v", got)
	}
}

func TestRecordHelpers(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry())

	m.RecordDrift("numeric", true)
	m.RecordDrift("cta", false)
	m.RecordOverride("overridden")
	m.RecordExportItem(true)
	m.RecordExportItem(false)
	m.RecordExportItem(true)
	m.SetVersions("logo", 3)

	if got := testutil.ToFloat64(m.DriftCorrectionsTotal.WithLabelValues("cta", "false")); got != 1 {
		t.Errorf("Expected 1 undetected cta drift, got %v", got)
	}
	if got := testutil.ToFloat64(m.ExportItemsTotal.WithLabelValues("ok")); got != 2 {
		t.Errorf("Expected 2 exported items, got %v", got)
	}
	if got := testutil.ToFloat64(m.VersionsRetained.WithLabelValues("logo")); got != 3 {
		t.Errorf("Expected 3 retained versions, got %v", got)
	}

	expected := `
# HELP copyforge_override_events_total Edit overlay transitions by outcome
# TYPE copyforge_override_events_total counter
copyforge_override_events_total{outcome="overridden"} 1
`
	if err := testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "copyforge_override_events_total"); err != nil {
		t.Errorf("Unexpected exposition: %v", err)
	}
}
