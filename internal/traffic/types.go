package traffic

import "time"

// DefaultInterval is the nominal distance between two ticks.
const DefaultInterval = 5 * time.Minute

// Counters are the router's cumulative byte counters since its last reset.
type Counters struct {
	DownloadBytes float64
	UploadBytes   float64
}

// Baseline is the counter value (GB) observed at the previous tick.
type Baseline struct {
	DownloadGB float64
	UploadGB   float64
}

// MonthlyTotal is the running month-to-date traffic (GB).
type MonthlyTotal struct {
	DownloadGB float64
	UploadGB   float64
}

// TickResult is the outcome of one accounting pass.
type TickResult struct {
	AverageDownloadBps float64 `json:"avg_dl_bps"`
	AverageUploadBps   float64 `json:"avg_ul_bps"`
	DailyDownloadGB    float64 `json:"daily_dl_gb"`
	DailyUploadGB      float64 `json:"daily_ul_gb"`
	MonthlyDownloadGB  float64 `json:"monthly_dl_gb"`
	MonthlyUploadGB    float64 `json:"monthly_ul_gb"`
	DeltaDownloadGB    float64 `json:"delta_dl_gb"`
	DeltaUploadGB      float64 `json:"delta_ul_gb"`

	// DownloadAnomaly/UploadAnomaly are set when the counter went backwards
	// since the previous tick without a scheduled reset.
	DownloadAnomaly bool `json:"dl_anomaly,omitempty"`
	UploadAnomaly   bool `json:"ul_anomaly,omitempty"`

	ResetOccurred bool `json:"reset,omitempty"`
}

// Baseline returns the values to persist as the next tick's baseline.
func (r TickResult) Baseline() Baseline {
	return Baseline{DownloadGB: r.DailyDownloadGB, UploadGB: r.DailyUploadGB}
}

// Monthly returns the values to persist as the new monthly total.
func (r TickResult) Monthly() MonthlyTotal {
	return MonthlyTotal{DownloadGB: r.MonthlyDownloadGB, UploadGB: r.MonthlyUploadGB}
}

// Anomaly reports whether either direction went backwards.
func (r TickResult) Anomaly() bool { return r.DownloadAnomaly || r.UploadAnomaly }

// ApplyReset overwrites the published totals the way a reset tick reports them.
func (r TickResult) ApplyReset(d ResetDecision) TickResult {
	if !d.DailyReset {
		return r
	}
	r.ResetOccurred = true
	r.DailyDownloadGB, r.DailyUploadGB = 0, 0
	if d.MonthlyReset {
		r.MonthlyDownloadGB, r.MonthlyUploadGB = 0, 0
	}
	return r
}
