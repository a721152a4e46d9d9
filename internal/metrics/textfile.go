// Package metrics exports the last tick as a node_exporter textfile.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"lte2mqtt/internal/traffic"
)

const namespace = "lte2mqtt"

// Textfile writes tick gauges to Path, replacing the previous content.
type Textfile struct {
	Path string

	reg *prometheus.Registry

	dailyGB   *prometheus.GaugeVec
	monthlyGB *prometheus.GaugeVec
	deltaGB   *prometheus.GaugeVec
	avgBps    *prometheus.GaugeVec
	anomaly   *prometheus.GaugeVec
	reset     *prometheus.GaugeVec
	lastTick  prometheus.Gauge
}

// NewTextfile returns an exporter writing to path.
func NewTextfile(path string) *Textfile {
	t := &Textfile{
		Path: path,
		reg:  prometheus.NewRegistry(),

		dailyGB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "daily_traffic_gigabytes",
			Help:      "Traffic since the last daily reset",
		}, []string{"direction"}),
		monthlyGB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monthly_traffic_gigabytes",
			Help:      "Traffic since the last monthly reset",
		}, []string{"direction"}),
		deltaGB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tick_traffic_gigabytes",
			Help:      "Traffic accounted in the last tick",
		}, []string{"direction"}),
		avgBps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "average_throughput",
			Help:      "Average throughput over the last tick interval, as published",
		}, []string{"direction"}),
		anomaly: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counter_anomaly",
			Help:      "1 if the router counter went backwards outside the reset window",
		}, []string{"direction"}),
		reset: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reset",
			Help:      "1 if the last tick performed a reset",
		}, []string{"kind"}),
		lastTick: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_tick_timestamp_seconds",
			Help:      "Unix time of the last completed tick",
		}),
	}
	t.reg.MustRegister(t.dailyGB, t.monthlyGB, t.deltaGB, t.avgBps, t.anomaly, t.reset, t.lastTick)
	return t
}

// Registry exposes the underlying registry (tests, ad-hoc gathering).
func (t *Textfile) Registry() *prometheus.Registry { return t.reg }

// Observe records the tick and rewrites the textfile.
func (t *Textfile) Observe(_ context.Context, at time.Time, res traffic.TickResult, d traffic.ResetDecision) error {
	t.dailyGB.WithLabelValues("download").Set(res.DailyDownloadGB)
	t.dailyGB.WithLabelValues("upload").Set(res.DailyUploadGB)
	t.monthlyGB.WithLabelValues("download").Set(res.MonthlyDownloadGB)
	t.monthlyGB.WithLabelValues("upload").Set(res.MonthlyUploadGB)
	t.deltaGB.WithLabelValues("download").Set(res.DeltaDownloadGB)
	t.deltaGB.WithLabelValues("upload").Set(res.DeltaUploadGB)
	t.avgBps.WithLabelValues("download").Set(res.AverageDownloadBps)
	t.avgBps.WithLabelValues("upload").Set(res.AverageUploadBps)
	t.anomaly.WithLabelValues("download").Set(b2f(res.DownloadAnomaly))
	t.anomaly.WithLabelValues("upload").Set(b2f(res.UploadAnomaly))
	t.reset.WithLabelValues("daily").Set(b2f(d.DailyReset))
	t.reset.WithLabelValues("monthly").Set(b2f(d.MonthlyReset))
	t.lastTick.Set(float64(at.Unix()))

	if t.Path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(t.Path, t.reg)
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
