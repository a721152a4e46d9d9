package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

const minimalJSON = `{
  "router": {"url": "http://192.168.8.1", "username": "admin", "password": "secret"},
  "domoticz": {"url": "http://127.0.0.1:8080"},
  "mqtt": {"broker": "tcp://127.0.0.1:1883"}
}`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "c.json", minimalJSON))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Devices.RSRQ)
	assert.Equal(t, 24, cfg.Devices.CellID)
	assert.Equal(t, 26, cfg.Devices.DailyDownload)
	assert.Equal(t, 29, cfg.Devices.MonthlyUpload)
	assert.Equal(t, 177, cfg.Devices.AverageDownload)
	assert.Equal(t, 178, cfg.Devices.AverageUpload)
	assert.Equal(t, 7, cfg.Variables.BaselineDownload)
	assert.Equal(t, 8, cfg.Variables.BaselineUpload)
	assert.Equal(t, 5, cfg.Accounting.ResetDate)
	assert.Equal(t, "*/5 * * * *", cfg.Tick.Schedule)
	assert.Equal(t, BackendDomoticz, cfg.State.Backend)
	assert.Equal(t, 4, cfg.PasswordType())
	require.NotNil(t, cfg.Logging.Console)
	assert.True(t, *cfg.Logging.Console)
}

func TestLoadYAMLAndTOML(t *testing.T) {
	yml := `
router: {url: "http://r", password: x}
domoticz: {url: "http://d"}
mqtt: {broker: "tcp://b:1883", publish_interval: 0s}
accounting: {reset_date: 1, negative_delta: clamp}
`
	cfg, err := Load(writeConfig(t, "c.yaml", yml))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Accounting.ResetDate)
	assert.Equal(t, "clamp", cfg.Accounting.NegativeDelta)
	assert.Zero(t, cfg.PublishInterval())

	tml := `
[router]
url = "http://r"
[domoticz]
url = "http://d"
[mqtt]
broker = "tcp://b:1883"
[tick]
schedule = "10m"
`
	cfg, err = Load(writeConfig(t, "c.toml", tml))
	require.NoError(t, err)
	assert.Equal(t, "10m", cfg.Tick.Schedule)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(writeConfig(t, "c.json", `{"mqtt": {"brokr": "x"}}`))
	require.Error(t, err)
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := Parse(writeConfig(t, "c.json", `{} {}`))
	require.Error(t, err)
}

func TestEnvOverridesPasswords(t *testing.T) {
	cfg := &Config{}
	env := map[string]string{
		EnvRouterPassword:   "r",
		EnvDomoticzPassword: "d",
		EnvMQTTPassword:     "m",
	}
	applyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "r", cfg.Router.Password)
	assert.Equal(t, "d", cfg.Domoticz.Password)
	assert.Equal(t, "m", cfg.MQTT.Password)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := &Config{}
	cfg.Devices.DailyDownload = 21 // collides with rsrp default
	cfg.Accounting.ResetDate = 31
	cfg.Accounting.NegativeDelta = "ignore"
	cfg.MQTT.QoS = 3
	cfg.Tick.Schedule = "every tuesday"
	applyDefaults(cfg)

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"domoticz.url is required",
		"mqtt.broker is required",
		"mqtt.qos",
		"devices.daily_download: idx 21 already used by devices.rsrp",
		"reset date must be within 1..28",
		"accounting.negative_delta",
		"tick.schedule",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestValidateLocalBackendNeedsStorage(t *testing.T) {
	cfg := &Config{}
	cfg.MQTT.Broker = "tcp://b:1883"
	cfg.State.Backend = BackendLocal
	applyDefaults(cfg)
	require.ErrorContains(t, cfg.Validate(), "storage.driver is required")

	cfg.Storage = &StorageConfig{Driver: "file", Path: t.TempDir()}
	require.NoError(t, cfg.Validate())
}

func TestValidateResetWindowAgainstInterval(t *testing.T) {
	tests := []struct {
		schedule string
		window   string
		wantErr  bool
	}{
		{schedule: "2m", window: "5m", wantErr: true},
		{schedule: "*/5 * * * *", window: "10m", wantErr: true},
		{schedule: "*/5 * * * *", window: "5m"},
		{schedule: "0,30 * * * *", window: "10m"},
		{schedule: "@every 3m", window: "4m", wantErr: true},
		{schedule: "00:10", window: "10m"},
	}
	for _, tt := range tests {
		t.Run(tt.schedule+"/"+tt.window, func(t *testing.T) {
			cfg := &Config{}
			cfg.Domoticz.URL = "http://d"
			cfg.MQTT.Broker = "tcp://b:1883"
			cfg.Tick.Schedule = tt.schedule
			cfg.Accounting.ResetWindow = tt.window
			cfg.Accounting.Timezone = "UTC"
			applyDefaults(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorContains(t, err, "must not exceed the tick interval")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSummaryOmitsSecrets(t *testing.T) {
	cfg, err := Load(writeConfig(t, "c.json", minimalJSON))
	require.NoError(t, err)
	fields := Summary(cfg)
	assert.NotEmpty(t, fields)
	assert.Nil(t, Summary(nil))
}
