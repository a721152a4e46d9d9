package config

// Config is the on-disk configuration (JSON, YAML or TOML).
//
// Durations are Go duration strings (e.g. "500ms", "10s", "5m").
// Zero values are replaced by defaults in applyDefaults.
type Config struct {
	Router   RouterConfig   `json:"router"`
	Domoticz DomoticzConfig `json:"domoticz"`
	MQTT     MQTTConfig     `json:"mqtt"`

	// Devices and Variables bind each published quantity to a Domoticz idx.
	Devices   DevicesConfig   `json:"devices"`
	Variables VariablesConfig `json:"variables"`

	Accounting AccountingConfig `json:"accounting"`
	Tick       TickConfig       `json:"tick"`
	State      StateConfig      `json:"state"`
	Storage    *StorageConfig   `json:"storage,omitempty"`
	Metrics    MetricsConfig    `json:"metrics"`
	Logging    LoggingConfig    `json:"logging"`
}

type RouterConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"` // do not log
	// PasswordType is 4 (SHA-256 challenge, default) or 0 (base64) for old firmware.
	PasswordType *int   `json:"password_type,omitempty"`
	Timeout      string `json:"timeout,omitempty"`
}

type DomoticzConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"` // do not log
	Timeout  string `json:"timeout,omitempty"`
}

type MQTTConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"` // do not log
	Topic    string `json:"topic,omitempty"`
	QoS      int    `json:"qos,omitempty"`
	Retain   bool   `json:"retain,omitempty"`
	Timeout  string `json:"timeout,omitempty"`
	// PublishInterval spaces consecutive publishes. "0s" disables pacing.
	PublishInterval string `json:"publish_interval,omitempty"`
}

type DevicesConfig struct {
	RSRQ   int `json:"rsrq"`
	RSRP   int `json:"rsrp"`
	RSSI   int `json:"rssi"`
	SINR   int `json:"sinr"`
	CellID int `json:"cell_id"`

	DailyDownload   int `json:"daily_download"`
	DailyUpload     int `json:"daily_upload"`
	MonthlyDownload int `json:"monthly_download"`
	MonthlyUpload   int `json:"monthly_upload"`
	AverageDownload int `json:"average_download"`
	AverageUpload   int `json:"average_upload"`
}

type VariablesConfig struct {
	BaselineDownload int `json:"baseline_download"`
	BaselineUpload   int `json:"baseline_upload"`
}

type AccountingConfig struct {
	// ResetDate is the day of month (1..28) when monthly totals restart.
	ResetDate   int    `json:"reset_date"`
	ResetWindow string `json:"reset_window,omitempty"`
	// NegativeDelta is "rebase" (default), "clamp" or "passthrough".
	NegativeDelta string `json:"negative_delta,omitempty"`
	// Timezone for the reset window (IANA name). Empty means local time.
	Timezone string `json:"timezone,omitempty"`
}

// TickConfig describes how often the external scheduler runs us.
//
// Schedule accepts a cron expression ("*/5 * * * *"), a Go duration ("5m")
// or HH:MM ("00:05"); the gap between two activations is the interval used
// for average throughput.
type TickConfig struct {
	Schedule string `json:"schedule"`
}

// StateConfig selects where baselines and monthly totals live.
//
// Backend values:
//   - "domoticz": user variables and device values on the Domoticz server
//   - "local": the storage section (requires storage.driver)
type StateConfig struct {
	Backend string `json:"backend"`
}

// StorageConfig controls the optional persistence layer.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./lte2mqtt.db" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite
	HistorySize int    `json:"history_size,omitempty"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// Textfile is written after every tick when set (node_exporter textfile collector).
	Textfile string `json:"textfile,omitempty"`
}

type LoggingConfig struct {
	Level   string         `json:"level"`
	Console *bool          `json:"console,omitempty"`
	File    LoggingFile    `json:"file"`
	Journal LoggingJournal `json:"journal"`
}

type LoggingFile struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty"`
}

type LoggingJournal struct {
	Enabled    bool   `json:"enabled"`
	Identifier string `json:"identifier,omitempty"`
}
