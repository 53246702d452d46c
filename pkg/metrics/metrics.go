// Package metrics exposes lead dashboard telemetry as Prometheus metrics.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadboard"

// Telemetry counts recorded events. It satisfies both leads.Telemetry and
// commands.Telemetry.
type Telemetry struct {
	events    *prometheus.CounterVec
	bulkLeads *prometheus.CounterVec
	exported  prometheus.Counter
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg prometheus.Registerer) (*Telemetry, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	t := &Telemetry{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Dashboard events by name.",
		}, []string{"event"}),
		bulkLeads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_leads_total",
			Help:      "Leads affected by bulk actions.",
		}, []string{"action"}),
		exported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_leads_total",
			Help:      "Leads written to CSV exports.",
		}),
	}
	for _, c := range []prometheus.Collector{t.events, t.bulkLeads, t.exported} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return t, nil
}

// Record increments the event counter and folds known payload counts into
// the bulk and export counters.
func (t *Telemetry) Record(_ context.Context, event string, payload map[string]any) {
	if t == nil || event == "" {
		return
	}
	t.events.WithLabelValues(event).Inc()
	count, ok := payload["count"].(int)
	if !ok || count <= 0 {
		return
	}
	switch {
	case strings.HasPrefix(event, "leads.bulk."):
		t.bulkLeads.WithLabelValues(strings.TrimPrefix(event, "leads.bulk.")).Add(float64(count))
	case event == "leads.export":
		t.exported.Add(float64(count))
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
