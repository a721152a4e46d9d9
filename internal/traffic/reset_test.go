package traffic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecideWindowBoundaries(t *testing.T) {
	p := ResetPolicy{Date: 5}
	tests := []struct {
		hhmm  int
		daily bool
	}{
		{hhmm: 0, daily: true},
		{hhmm: 4, daily: true},
		{hhmm: 5, daily: false},
		{hhmm: 1230, daily: false},
		{hhmm: 2359, daily: false},
	}
	for _, tt := range tests {
		d := p.Decide(tt.hhmm, 12)
		assert.Equal(t, tt.daily, d.DailyReset, "hhmm=%04d", tt.hhmm)
		assert.False(t, d.MonthlyReset, "hhmm=%04d", tt.hhmm)
	}
}

func TestDecideMonthly(t *testing.T) {
	p := ResetPolicy{Date: 5}
	assert.Equal(t, ResetDecision{DailyReset: true, MonthlyReset: true}, p.Decide(3, 5))
	assert.Equal(t, ResetDecision{DailyReset: true, MonthlyReset: false}, p.Decide(3, 6))
	assert.Equal(t, ResetDecision{}, p.Decide(1200, 5))
}

func TestDecideDefaults(t *testing.T) {
	var p ResetPolicy
	assert.Equal(t, ResetDecision{DailyReset: true, MonthlyReset: true}, p.Decide(2, DefaultResetDate))
	assert.False(t, p.Decide(5, DefaultResetDate).DailyReset)
}

func TestDecideAtUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	p := ResetPolicy{Date: 5, Location: loc}

	// 21:02 UTC on the 4th is 00:02 on the 5th at UTC+3.
	d := p.DecideAt(time.Date(2026, 3, 4, 21, 2, 0, 0, time.UTC))
	assert.Equal(t, ResetDecision{DailyReset: true, MonthlyReset: true}, d)

	d = p.DecideAt(time.Date(2026, 3, 4, 21, 5, 0, 0, time.UTC))
	assert.Equal(t, ResetDecision{}, d)
}

func TestResetPolicyValidate(t *testing.T) {
	assert.NoError(t, ResetPolicy{Date: 5, Window: 5 * time.Minute}.Validate())
	assert.Error(t, ResetPolicy{Date: 0, Window: 5 * time.Minute}.Validate())
	assert.Error(t, ResetPolicy{Date: 31, Window: 5 * time.Minute}.Validate())
	assert.Error(t, ResetPolicy{Date: 5, Window: 30 * time.Second}.Validate())
}

func TestApplyReset(t *testing.T) {
	r := TickResult{DailyDownloadGB: 9, DailyUploadGB: 1, MonthlyDownloadGB: 90, MonthlyUploadGB: 10, AverageDownloadBps: 5}

	assert.Equal(t, r, r.ApplyReset(ResetDecision{}))

	daily := r.ApplyReset(ResetDecision{DailyReset: true})
	assert.True(t, daily.ResetOccurred)
	assert.Equal(t, 0.0, daily.DailyDownloadGB)
	assert.Equal(t, 90.0, daily.MonthlyDownloadGB)
	assert.Equal(t, 5.0, daily.AverageDownloadBps)

	monthly := r.ApplyReset(ResetDecision{DailyReset: true, MonthlyReset: true})
	assert.Equal(t, 0.0, monthly.MonthlyDownloadGB)
	assert.Equal(t, 0.0, monthly.MonthlyUploadGB)
}
