package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	setGlobals()
	l := FromZerolog(zerolog.New(&buf)).With(String("run_id", "abc"))

	l.Info("tick done", Float64("daily_dl_gb", 10.5), Err(errors.New("boom")))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "tick done", m["message"])
	assert.Equal(t, "abc", m["run_id"])
	assert.Equal(t, 10.5, m["daily_dl_gb"])
	assert.Equal(t, "boom", m["err"])
	assert.Contains(t, m["caller"], "logging_test.go:")
}

func TestLoggerTypedFields(t *testing.T) {
	var buf bytes.Buffer
	setGlobals()
	l := FromZerolog(zerolog.New(&buf).Level(zerolog.InfoLevel))

	assert.False(t, l.Enabled(LevelDebug))
	assert.True(t, l.Enabled(zerolog.WarnLevel))

	at := time.Date(2024, 3, 5, 0, 2, 0, 0, time.UTC)
	l.Info("tick done",
		Time("at", at),
		Duration("interval", 5*time.Minute),
		Uint64("total_dl_bytes", 11274289152),
	)

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, "2024-03-05T00:02:00.000Z", m["at"])
	assert.Equal(t, 300000.0, m["interval"])
	assert.Equal(t, 11274289152.0, m["total_dl_bytes"])
}

func TestNewConsoleLevel(t *testing.T) {
	assert.True(t, NewConsole("debug").Enabled(LevelDebug))
	assert.False(t, NewConsole("").Enabled(LevelDebug))
}

func TestZeroLoggerIsNoop(t *testing.T) {
	var l Logger
	assert.True(t, l.IsZero())
	l.Info("dropped")
	assert.False(t, Nop().IsZero())
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel(""))
	assert.True(t, ValidLevel("warning"))
	assert.True(t, ValidLevel("DEBUG"))
	assert.False(t, ValidLevel("loud"))
}

func TestJournalWriterFields(t *testing.T) {
	var gotMsg string
	var gotPri journal.Priority
	var gotVars map[string]string
	w := &journalWriter{identifier: "lte2mqtt", send: func(msg string, pri journal.Priority, vars map[string]string) error {
		gotMsg, gotPri, gotVars = msg, pri, vars
		return nil
	}}

	line := []byte(`{"level":"warn","time":"x","message":"negative delta","direction":"download","delta.gb":-1.5}`)
	n, err := w.WriteLevel(zerolog.WarnLevel, line)
	require.NoError(t, err)
	assert.Equal(t, len(line), n)
	assert.Equal(t, "negative delta", gotMsg)
	assert.Equal(t, journal.PriWarning, gotPri)
	assert.Equal(t, "download", gotVars["DIRECTION"])
	assert.Equal(t, "-1.5", gotVars["DELTA_GB"])
	assert.Equal(t, "lte2mqtt", gotVars["SYSLOG_IDENTIFIER"])
	assert.NotContains(t, gotVars, "TIME")
}
