package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 关押相关指标；nil 时所有方法为空操作
type Metrics struct {
	SuspensionsTotal  prometheus.Counter
	ReleasesTotal     *prometheus.CounterVec
	ActiveSuspensions prometheus.Gauge
	SweepDuration     prometheus.Histogram
	SweepErrors       prometheus.Counter
}

// NewMetrics 注册到 reg；reg 为 nil 时用默认 registry
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		SuspensionsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "jailbot_suspensions_total",
			Help: "Total number of suspensions started",
		}),
		ReleasesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jailbot_releases_total",
			Help: "Total number of releases by type",
		}, []string{"type"}),
		ActiveSuspensions: f.NewGauge(prometheus.GaugeOpts{
			Name: "jailbot_active_suspensions",
			Help: "Active suspensions seen by the last status refresh",
		}),
		SweepDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "jailbot_sweep_duration_seconds",
			Help:    "Duration of one expiry sweep tick",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SweepErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "jailbot_sweep_errors_total",
			Help: "Per-item failures during expiry sweeps",
		}),
	}
}

func (m *Metrics) IncSuspension() {
	if m == nil {
		return
	}
	m.SuspensionsTotal.Inc()
}

func (m *Metrics) IncRelease(releaseType string) {
	if m == nil {
		return
	}
	m.ReleasesTotal.WithLabelValues(releaseType).Inc()
}

func (m *Metrics) SetActive(n int) {
	if m == nil {
		return
	}
	m.ActiveSuspensions.Set(float64(n))
}

// ObserveSweep 传入 tick 开始时间
func (m *Metrics) ObserveSweep(start time.Time) {
	if m == nil {
		return
	}
	m.SweepDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) AddSweepErrors(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SweepErrors.Add(float64(n))
}
