package traffic

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gib = 1024 * 1024 * 1024

func TestBytesToGB(t *testing.T) {
	assert.Equal(t, 3.0, BytesToGB(3221225472))
	assert.Equal(t, 0.0, BytesToGB(0))
	assert.Equal(t, 1.5, BytesToGB(1.5*gib))
	// 1 MiB is below the 3-decimal resolution.
	assert.Equal(t, 0.001, BytesToGB(1024*1024))
}

func TestAverageBps(t *testing.T) {
	tests := []struct {
		name  string
		delta float64
		want  float64
	}{
		{name: "zero", delta: 0, want: 0},
		{name: "half gb", delta: 0.5, want: 1747.63},
		{name: "tenth gb", delta: 0.1, want: 349.53},
		{name: "one mb resolution", delta: 0.001, want: 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AverageBps(tt.delta, 300)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, math.Round(tt.delta*1024*1024/300*100)/100, got)
		})
	}
	assert.Equal(t, 0.0, AverageBps(1, 0))
}

func TestComputeTickSteadyState(t *testing.T) {
	acc := Accountant{Interval: 300 * time.Second}
	r, err := acc.ComputeTick(
		Counters{DownloadBytes: 10.5 * gib, UploadBytes: 2.1 * gib},
		Baseline{DownloadGB: 10.0, UploadGB: 2.0},
		MonthlyTotal{DownloadGB: 120.0, UploadGB: 30.0},
	)
	require.NoError(t, err)

	assert.Equal(t, 10.5, r.DailyDownloadGB)
	assert.Equal(t, 2.1, r.DailyUploadGB)
	assert.Equal(t, 0.5, r.DeltaDownloadGB)
	assert.Equal(t, 0.1, r.DeltaUploadGB)
	assert.Equal(t, 1747.63, r.AverageDownloadBps)
	assert.Equal(t, 349.53, r.AverageUploadBps)
	assert.Equal(t, 120.5, r.MonthlyDownloadGB)
	assert.Equal(t, 30.1, r.MonthlyUploadGB)
	assert.False(t, r.ResetOccurred)
	assert.False(t, r.Anomaly())

	assert.Equal(t, Baseline{DownloadGB: 10.5, UploadGB: 2.1}, r.Baseline())
	assert.Equal(t, MonthlyTotal{DownloadGB: 120.5, UploadGB: 30.1}, r.Monthly())
}

func TestComputeTickMonthlyAccumulates(t *testing.T) {
	var acc Accountant
	month := MonthlyTotal{}
	prev := Baseline{}
	counter := 0.0
	for _, d := range []float64{0.1, 0.2, 0.3} {
		counter += d
		r, err := acc.ComputeTick(Counters{DownloadBytes: counter * gib}, prev, month)
		require.NoError(t, err)
		prev, month = r.Baseline(), r.Monthly()
	}
	assert.InDelta(t, 0.6, month.DownloadGB, 1e-9)
	assert.Equal(t, 0.0, month.UploadGB)
}

func TestComputeTickZeroDelta(t *testing.T) {
	r, err := Accountant{}.ComputeTick(
		Counters{DownloadBytes: 4 * gib, UploadBytes: 1 * gib},
		Baseline{DownloadGB: 4, UploadGB: 1},
		MonthlyTotal{DownloadGB: 7, UploadGB: 3},
	)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.AverageDownloadBps)
	assert.Equal(t, 0.0, r.AverageUploadBps)
	assert.Equal(t, 7.0, r.MonthlyDownloadGB)
}

func TestComputeTickNegativeDelta(t *testing.T) {
	counters := Counters{DownloadBytes: 0.25 * gib, UploadBytes: 3 * gib}
	prev := Baseline{DownloadGB: 8, UploadGB: 2}
	month := MonthlyTotal{DownloadGB: 50, UploadGB: 10}

	tests := []struct {
		policy    NegativeDeltaPolicy
		wantDelta float64
		wantMonth float64
	}{
		{policy: NegativeDeltaRebase, wantDelta: 0.25, wantMonth: 50.25},
		{policy: NegativeDeltaClamp, wantDelta: 0, wantMonth: 50},
		{policy: NegativeDeltaPassthrough, wantDelta: -7.75, wantMonth: 42.25},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			r, err := Accountant{NegativeDelta: tt.policy}.ComputeTick(counters, prev, month)
			require.NoError(t, err)
			assert.True(t, r.DownloadAnomaly)
			assert.False(t, r.UploadAnomaly)
			assert.Equal(t, tt.wantDelta, r.DeltaDownloadGB)
			assert.Equal(t, tt.wantMonth, r.MonthlyDownloadGB)
			assert.Equal(t, AverageBps(tt.wantDelta, 300), r.AverageDownloadBps)
			// Upload is unaffected.
			assert.Equal(t, 1.0, r.DeltaUploadGB)
		})
	}
}

func TestComputeTickPassthroughKeepsMonthlyReadable(t *testing.T) {
	a := Accountant{NegativeDelta: NegativeDeltaPassthrough}

	r1, err := a.ComputeTick(
		Counters{DownloadBytes: 0.25 * gib},
		Baseline{DownloadGB: 8},
		MonthlyTotal{DownloadGB: 1},
	)
	require.NoError(t, err)
	assert.True(t, r1.DownloadAnomaly)
	assert.Equal(t, -7.75, r1.DeltaDownloadGB)
	assert.Equal(t, 0.0, r1.MonthlyDownloadGB)
	assert.False(t, math.Signbit(r1.MonthlyDownloadGB))

	// The published total must be accepted when read back on the next tick.
	month, err := ParseGB("monthly_download_gb", FormatGB(r1.MonthlyDownloadGB))
	require.NoError(t, err)

	r2, err := a.ComputeTick(
		Counters{DownloadBytes: 0.5 * gib},
		r1.Baseline(),
		MonthlyTotal{DownloadGB: month},
	)
	require.NoError(t, err)
	assert.False(t, r2.DownloadAnomaly)
	assert.Equal(t, 0.25, r2.MonthlyDownloadGB)
}

func TestComputeTickInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		counters Counters
		prev     Baseline
		month    MonthlyTotal
	}{
		{name: "negative counter", counters: Counters{DownloadBytes: -1}},
		{name: "nan counter", counters: Counters{UploadBytes: math.NaN()}},
		{name: "negative baseline", prev: Baseline{DownloadGB: -0.1}},
		{name: "inf baseline", prev: Baseline{UploadGB: math.Inf(1)}},
		{name: "negative month", month: MonthlyTotal{UploadGB: -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Accountant{}.ComputeTick(tt.counters, tt.prev, tt.month)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCounterValue))
		})
	}
}

func TestParseGB(t *testing.T) {
	v, err := ParseGB("prev", "10.500")
	require.NoError(t, err)
	assert.Equal(t, 10.5, v)

	v, err = ParseGB("month", "120.5 GB")
	require.NoError(t, err)
	assert.Equal(t, 120.5, v)

	for _, raw := range []string{"", "abc", "-1", "NaN", "Inf"} {
		_, err := ParseGB("prev", raw)
		assert.ErrorIs(t, err, ErrInvalidCounterValue, "raw=%q", raw)
	}
}

func TestFormatGB(t *testing.T) {
	assert.Equal(t, "30.1", FormatGB(30.1))
	assert.Equal(t, "0", FormatGB(0))
	assert.Equal(t, "349.53", FormatGB(349.53))
}

func TestParseNegativeDeltaPolicy(t *testing.T) {
	p, err := ParseNegativeDeltaPolicy("")
	require.NoError(t, err)
	assert.Equal(t, NegativeDeltaRebase, p)

	p, err = ParseNegativeDeltaPolicy(" Clamp ")
	require.NoError(t, err)
	assert.Equal(t, NegativeDeltaClamp, p)

	_, err = ParseNegativeDeltaPolicy("ignore")
	assert.Error(t, err)
}
