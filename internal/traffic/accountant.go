package traffic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const bytesPerGB = 1024 * 1024 * 1024

// averageScale converts a GB delta into the dashboard's "bytes" unit.
// It is 1024*1024, not 1024^3; existing dashboards depend on this scale.
const averageScale = 1024 * 1024

// NegativeDeltaPolicy controls what happens when the router counter is lower
// than the stored baseline (router reboot or external counter clear).
type NegativeDeltaPolicy string

const (
	// NegativeDeltaRebase treats the current counter as accrued since the
	// previous tick: the router restarted counting from zero.
	NegativeDeltaRebase NegativeDeltaPolicy = "rebase"
	// NegativeDeltaClamp records no traffic for the tick.
	NegativeDeltaClamp NegativeDeltaPolicy = "clamp"
	// NegativeDeltaPassthrough propagates the negative delta unchanged; the
	// monthly total still stops at zero.
	NegativeDeltaPassthrough NegativeDeltaPolicy = "passthrough"
)

// ParseNegativeDeltaPolicy accepts "", "rebase", "clamp" and "passthrough".
func ParseNegativeDeltaPolicy(s string) (NegativeDeltaPolicy, error) {
	switch p := NegativeDeltaPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return NegativeDeltaRebase, nil
	case NegativeDeltaRebase, NegativeDeltaClamp, NegativeDeltaPassthrough:
		return p, nil
	default:
		return "", fmt.Errorf("unknown negative delta policy %q", s)
	}
}

// Accountant computes tick results. The zero value uses DefaultInterval and
// NegativeDeltaRebase.
type Accountant struct {
	Interval      time.Duration
	NegativeDelta NegativeDeltaPolicy
}

// ComputeTick converts the counters to GB, derives the delta against the
// baseline and accumulates it into the monthly total.
func (a Accountant) ComputeTick(c Counters, prev Baseline, month MonthlyTotal) (TickResult, error) {
	if err := checkValue("download_bytes", c.DownloadBytes); err != nil {
		return TickResult{}, err
	}
	if err := checkValue("upload_bytes", c.UploadBytes); err != nil {
		return TickResult{}, err
	}
	if err := checkValue("baseline_download_gb", prev.DownloadGB); err != nil {
		return TickResult{}, err
	}
	if err := checkValue("baseline_upload_gb", prev.UploadGB); err != nil {
		return TickResult{}, err
	}
	if err := checkValue("monthly_download_gb", month.DownloadGB); err != nil {
		return TickResult{}, err
	}
	if err := checkValue("monthly_upload_gb", month.UploadGB); err != nil {
		return TickResult{}, err
	}

	seconds := a.interval().Seconds()

	var r TickResult
	r.DailyDownloadGB = BytesToGB(c.DownloadBytes)
	r.DailyUploadGB = BytesToGB(c.UploadBytes)

	r.DeltaDownloadGB, r.DownloadAnomaly = a.delta(r.DailyDownloadGB, prev.DownloadGB)
	r.DeltaUploadGB, r.UploadAnomaly = a.delta(r.DailyUploadGB, prev.UploadGB)

	r.AverageDownloadBps = AverageBps(r.DeltaDownloadGB, seconds)
	r.AverageUploadBps = AverageBps(r.DeltaUploadGB, seconds)

	// A passed-through negative delta may not drive the stored total below
	// zero: the next tick would refuse to read it back.
	r.MonthlyDownloadGB = math.Max(0, round(month.DownloadGB+r.DeltaDownloadGB, 3))
	r.MonthlyUploadGB = math.Max(0, round(month.UploadGB+r.DeltaUploadGB, 3))
	return r, nil
}

func (a Accountant) interval() time.Duration {
	if a.Interval <= 0 {
		return DefaultInterval
	}
	return a.Interval
}

func (a Accountant) delta(gb, prevGB float64) (float64, bool) {
	d := round(gb-prevGB, 3)
	if d >= 0 {
		return d, false
	}
	switch a.NegativeDelta {
	case NegativeDeltaClamp:
		return 0, true
	case NegativeDeltaPassthrough:
		return d, true
	default:
		return gb, true
	}
}

// BytesToGB converts bytes to GiB rounded to 3 decimals.
func BytesToGB(b float64) float64 {
	return round(b/bytesPerGB, 3)
}

// AverageBps is round(deltaGB*1024*1024/seconds, 2).
func AverageBps(deltaGB, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return round(deltaGB*averageScale/seconds, 2)
}

// ParseGB parses a stored GB value. Anything after the first space is a unit
// suffix and is ignored ("10.500 GB").
func ParseGB(name, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, invalidValue(name, strconv.Quote(raw))
	}
	if err := checkValue(name, v); err != nil {
		return 0, err
	}
	return v, nil
}

// FormatGB renders a value the way the bus expects it: shortest decimal form.
func FormatGB(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func checkValue(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalidValue(name, v)
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
