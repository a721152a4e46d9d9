package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"

	"lte2mqtt/internal/schedule"
	"lte2mqtt/internal/traffic"
	logx "lte2mqtt/pkg/logx"
)

// Environment variables that override secrets from the file.
const (
	EnvRouterPassword   = "LTE2MQTT_ROUTER_PASSWORD"
	EnvDomoticzPassword = "LTE2MQTT_DOMOTICZ_PASSWORD"
	EnvMQTTPassword     = "LTE2MQTT_MQTT_PASSWORD"
)

const (
	BackendDomoticz = "domoticz"
	BackendLocal    = "local"
)

// Load reads, defaults and validates the config at path.
func Load(path string) (*Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg, os.LookupEnv)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes the file strictly, without defaults or validation.
func Parse(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, _, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvRouterPassword); ok {
		cfg.Router.Password = v
	}
	if v, ok := lookup(EnvDomoticzPassword); ok {
		cfg.Domoticz.Password = v
	}
	if v, ok := lookup(EnvMQTTPassword); ok {
		cfg.MQTT.Password = v
	}
}

func applyDefaults(cfg *Config) {
	setInt(&cfg.Devices.RSRQ, 20)
	setInt(&cfg.Devices.RSRP, 21)
	setInt(&cfg.Devices.RSSI, 22)
	setInt(&cfg.Devices.SINR, 23)
	setInt(&cfg.Devices.CellID, 24)
	setInt(&cfg.Devices.DailyDownload, 26)
	setInt(&cfg.Devices.DailyUpload, 27)
	setInt(&cfg.Devices.MonthlyDownload, 28)
	setInt(&cfg.Devices.MonthlyUpload, 29)
	setInt(&cfg.Devices.AverageDownload, 177)
	setInt(&cfg.Devices.AverageUpload, 178)

	setInt(&cfg.Variables.BaselineDownload, 7)
	setInt(&cfg.Variables.BaselineUpload, 8)

	setInt(&cfg.Accounting.ResetDate, traffic.DefaultResetDate)
	if strings.TrimSpace(cfg.Tick.Schedule) == "" {
		cfg.Tick.Schedule = schedule.Default
	}
	if strings.TrimSpace(cfg.State.Backend) == "" {
		cfg.State.Backend = BackendDomoticz
	}
	if strings.TrimSpace(cfg.Router.URL) == "" {
		cfg.Router.URL = "http://192.168.8.1"
	}
	if cfg.Router.PasswordType == nil {
		pt := 4
		cfg.Router.PasswordType = &pt
	}
	if cfg.Logging.Console == nil {
		on := true
		cfg.Logging.Console = &on
	}
}

func setInt(p *int, def int) {
	if *p == 0 {
		*p = def
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs error
	add := func(err error) { errs = multierr.Append(errs, err) }

	if c.State.Backend != BackendDomoticz && c.State.Backend != BackendLocal {
		add(fmt.Errorf("state.backend: unknown backend %q", c.State.Backend))
	}
	if c.State.Backend == BackendDomoticz && strings.TrimSpace(c.Domoticz.URL) == "" {
		add(fmt.Errorf("domoticz.url is required when state.backend=domoticz"))
	}
	if c.State.Backend == BackendLocal && !c.StorageEnabled() {
		add(fmt.Errorf("storage.driver is required when state.backend=local"))
	}
	if strings.TrimSpace(c.MQTT.Broker) == "" {
		add(fmt.Errorf("mqtt.broker is required"))
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		add(fmt.Errorf("mqtt.qos must be 0, 1 or 2"))
	}
	if pt := c.PasswordType(); pt != 0 && pt != 4 {
		add(fmt.Errorf("router.password_type must be 0 or 4"))
	}

	for _, d := range []struct{ path, raw string }{
		{"router.timeout", c.Router.Timeout},
		{"domoticz.timeout", c.Domoticz.Timeout},
		{"mqtt.timeout", c.MQTT.Timeout},
		{"mqtt.publish_interval", c.MQTT.PublishInterval},
	} {
		if _, err := parseDuration(d.path, d.raw, 0); err != nil {
			add(err)
		}
	}
	if c.Storage != nil {
		if _, err := parseDuration("storage.busy_timeout", c.Storage.BusyTimeout, 0); err != nil {
			add(err)
		}
	}

	spec, specErr := schedule.Parse(c.Tick.Schedule)
	if specErr != nil {
		add(fmt.Errorf("tick.schedule: %w", specErr))
	}
	window, err := parsePositiveDuration("accounting.reset_window", c.Accounting.ResetWindow, traffic.DefaultResetWindow)
	if err != nil {
		add(err)
	} else {
		if err := (traffic.ResetPolicy{Date: c.Accounting.ResetDate, Window: window}).Validate(); err != nil {
			add(fmt.Errorf("accounting: %w", err))
		}
		if specErr == nil {
			if iv := c.midnightInterval(spec, time.Now()); iv > 0 && window > iv {
				add(fmt.Errorf("accounting.reset_window (%s) must not exceed the tick interval (%s)", window, iv))
			}
		}
	}
	if _, err := traffic.ParseNegativeDeltaPolicy(c.Accounting.NegativeDelta); err != nil {
		add(fmt.Errorf("accounting.negative_delta: %w", err))
	}
	if _, err := c.Location(); err != nil {
		add(fmt.Errorf("accounting.timezone: %w", err))
	}
	if !logx.ValidLevel(c.Logging.Level) {
		add(fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}

	add(c.validateIdx())
	return errs
}

func (c *Config) validateIdx() error {
	ids := []struct {
		name string
		idx  int
	}{
		{"devices.rsrq", c.Devices.RSRQ},
		{"devices.rsrp", c.Devices.RSRP},
		{"devices.rssi", c.Devices.RSSI},
		{"devices.sinr", c.Devices.SINR},
		{"devices.cell_id", c.Devices.CellID},
		{"devices.daily_download", c.Devices.DailyDownload},
		{"devices.daily_upload", c.Devices.DailyUpload},
		{"devices.monthly_download", c.Devices.MonthlyDownload},
		{"devices.monthly_upload", c.Devices.MonthlyUpload},
		{"devices.average_download", c.Devices.AverageDownload},
		{"devices.average_upload", c.Devices.AverageUpload},
	}
	var errs error
	seen := map[int]string{}
	for _, id := range ids {
		if id.idx <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("%s: idx must be > 0", id.name))
			continue
		}
		if prev, ok := seen[id.idx]; ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: idx %d already used by %s", id.name, id.idx, prev))
			continue
		}
		seen[id.idx] = id.name
	}
	// User variables have their own idx space in Domoticz.
	if c.Variables.BaselineDownload <= 0 || c.Variables.BaselineUpload <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("variables: idx must be > 0"))
	} else if c.Variables.BaselineDownload == c.Variables.BaselineUpload {
		errs = multierr.Append(errs, fmt.Errorf("variables: baseline_download and baseline_upload must differ"))
	}
	return errs
}

// midnightInterval is the gap between the first two ticks of the day, the
// ones the reset window has to tell apart.
func (c *Config) midnightInterval(spec schedule.ParsedSpec, now time.Time) time.Duration {
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	now = now.In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	return spec.Interval(midnight.Add(-time.Second))
}

// StorageEnabled reports whether a storage driver is configured.
func (c *Config) StorageEnabled() bool {
	if c.Storage == nil {
		return false
	}
	d := strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	return d != "" && d != "none"
}

// Location returns the timezone for the reset window.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Accounting.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}
