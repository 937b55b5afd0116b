package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry          *prometheus.Registry
	EventsTotal       *prometheus.CounterVec
	DiagnosticsTotal  *prometheus.CounterVec
	DebugFilesTotal   *prometheus.CounterVec
	ProcessingSeconds prometheus.Histogram
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crashview",
			Subsystem: "processor",
			Name:      "events_total",
			Help:      "Processed events by result",
		}, []string{"result"}),
		DiagnosticsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crashview",
			Subsystem: "processor",
			Name:      "diagnostics_total",
			Help:      "Diagnostics attached to reports by type",
		}, []string{"type"}),
		DebugFilesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crashview",
			Subsystem: "processor",
			Name:      "debug_files_total",
			Help:      "Processed debug files by result",
		}, []string{"result"}),
		ProcessingSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crashview",
			Subsystem: "processor",
			Name:      "event_processing_seconds",
			Help:      "Time spent processing one event",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	r.MustRegister(m.EventsTotal, m.DiagnosticsTotal, m.DebugFilesTotal, m.ProcessingSeconds)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
