package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "signups_report"

// Recorder exposes report generation health to Prometheus. A nil *Recorder
// is valid and records nothing.
type Recorder struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
	counters *prometheus.GaugeVec
	rows     prometheus.Gauge
	window   prometheus.Gauge
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "section_duration_seconds",
			Help:      "Time spent computing each dashboard section.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"section"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed section or counter computations.",
		}, []string{"component"}),
		counters: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counter_value",
			Help:      "Last computed value of each dashboard counter.",
		}, []string{"counter"}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "company_rows",
			Help:      "Rows in the last company table.",
		}),
		window: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "window_signups",
			Help:      "Sign-ups in the trailing window of the last refresh.",
		}),
	}
	reg.MustRegister(r.duration, r.failures, r.counters, r.rows, r.window)
	return r
}

func (r *Recorder) ObserveSection(section string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(section).Observe(time.Since(start).Seconds())
	if err != nil {
		r.failures.WithLabelValues(section).Inc()
	}
}

func (r *Recorder) Counter(name string, value int64, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.failures.WithLabelValues("counter_" + name).Inc()
		return
	}
	r.counters.WithLabelValues(name).Set(float64(value))
}

func (r *Recorder) Companies(n int) {
	if r == nil {
		return
	}
	r.rows.Set(float64(n))
}

func (r *Recorder) WindowTotal(n int64) {
	if r == nil {
		return
	}
	r.window.Set(float64(n))
}
