package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVariants(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 10, 18, 12, 31, 0, 0, time.UTC)
	tests := []struct {
		name     string
		raw      string
		kind     SpecKind
		source   string
		interval time.Duration
	}{
		{name: "default cron", raw: Default, kind: SpecCron, source: "cron", interval: 5 * time.Minute},
		{name: "prefixed cron", raw: "cron:*/10 * * * *", kind: SpecCron, source: "cron", interval: 10 * time.Minute},
		{name: "descriptor", raw: "@every 5m", kind: SpecCron, source: "cron", interval: 5 * time.Minute},
		{name: "hourly", raw: "@hourly", kind: SpecCron, source: "cron", interval: time.Hour},
		{name: "duration", raw: "5m", kind: SpecInterval, source: "duration", interval: 5 * time.Minute},
		{name: "prefixed interval", raw: "interval:90s", kind: SpecInterval, source: "duration", interval: 90 * time.Second},
		{name: "every prefix", raw: "every:00:15", kind: SpecInterval, source: "hhmm", interval: 15 * time.Minute},
		{name: "hhmm", raw: "00:05", kind: SpecInterval, source: "hhmm", interval: 5 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.source, got.Source)
			assert.Equal(t, tt.interval, got.Interval(now))
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "not-a-schedule", "cron:", "61 * * * *", "00:75", "-5m", "interval:0s"} {
		_, err := Parse(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}
