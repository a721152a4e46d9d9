package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lte2mqtt/internal/domoticz"
	"lte2mqtt/internal/storage"
	"lte2mqtt/internal/traffic"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	se := &domoticz.StatusError{StatusCode: 500}
	assert.Equal(t, ExitStateStatus, ExitCode(fmt.Errorf("read baseline: %w", se)))
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
domoticz: {url: "http://127.0.0.1:8080"}
mqtt: {broker: "tcp://127.0.0.1:1883"}
`), 0o600))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", "-c", path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "VALID")
	assert.Contains(t, out.String(), "backend domoticz")
}

func TestValidateCommandInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mqtt": {}}`), 0o600))

	assert.Equal(t, ExitFailure, Execute(context.Background(), []string{"validate", "-c", path}))
}

func TestPrintHistory(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 10, 0, 0, time.UTC)
	recs := []storage.TickRecord{
		{
			At:    now.Add(-8 * time.Minute),
			Reset: traffic.ResetDecision{DailyReset: true, MonthlyReset: true},
			TickResult: traffic.TickResult{
				MonthlyDownloadGB: 0, AverageDownloadBps: 1747.63, ResetOccurred: true,
			},
		},
		{
			At:         now.Add(-13 * time.Minute),
			TickResult: traffic.TickResult{DailyDownloadGB: 10.5, UploadAnomaly: true},
		},
	}
	var out bytes.Buffer
	require.NoError(t, printHistory(&out, recs, now))
	s := out.String()
	assert.Contains(t, s, "8 minutes ago")
	assert.Contains(t, s, "1747.63")
	assert.Contains(t, s, "10.5")
	assert.Contains(t, s, "M")
	assert.Contains(t, s, "!")
}
