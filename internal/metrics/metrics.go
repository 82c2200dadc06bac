package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics holds the manager's collectors. A nil *Metrics records nothing.
type Metrics struct {
	CuesRecorded  *prometheus.CounterVec
	CuesDuplicate prometheus.Counter
	TrackSwitches *prometheus.CounterVec
	FileLoads     *prometheus.CounterVec
	FileLoadTime  prometheus.Histogram
	CachedCues    prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CuesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subtrack_cues_recorded_total",
				Help: "Total number of distinct cues recorded",
			},
			[]string{"kind"},
		),
		CuesDuplicate: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "subtrack_cues_duplicate_total",
				Help: "Total number of redelivered cues dropped as duplicates",
			},
		),
		TrackSwitches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subtrack_track_switches_total",
				Help: "Total number of track activations",
			},
			[]string{"origin"},
		),
		FileLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "subtrack_file_loads_total",
				Help: "Total number of file track loads",
			},
			[]string{"result"},
		),
		FileLoadTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "subtrack_file_load_duration_seconds",
				Help:    "File track fetch and conversion latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
		),
		CachedCues: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "subtrack_cached_cues",
				Help: "Number of cues held in the cue cache",
			},
		),
	}
}

func (m *Metrics) RecordCue(kind string, isNew bool) {
	if m == nil {
		return
	}
	if !isNew {
		m.CuesDuplicate.Inc()
		return
	}
	m.CuesRecorded.WithLabelValues(kind).Inc()
	m.CachedCues.Inc()
}

func (m *Metrics) RecordSwitch(origin string) {
	if m == nil {
		return
	}
	m.TrackSwitches.WithLabelValues(origin).Inc()
}

// RecordFileLoad tracks one load; result is "ok", "cached" or "error".
func (m *Metrics) RecordFileLoad(result string, seconds float64) {
	if m == nil {
		return
	}
	m.FileLoads.WithLabelValues(result).Inc()
	if result != "cached" {
		m.FileLoadTime.Observe(seconds)
	}
}

func (m *Metrics) ResetCachedCues() {
	if m == nil {
		return
	}
	m.CachedCues.Set(0)
}

// WriteText dumps everything in g in the text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
