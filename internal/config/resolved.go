package config

import (
	"time"

	"lte2mqtt/internal/traffic"
)

// The accessors below assume Validate succeeded; invalid values fall back to
// their defaults.

func (c *Config) RouterTimeout() time.Duration {
	d, _ := parseDuration("router.timeout", c.Router.Timeout, 10*time.Second)
	return d
}

func (c *Config) DomoticzTimeout() time.Duration {
	d, _ := parseDuration("domoticz.timeout", c.Domoticz.Timeout, 10*time.Second)
	return d
}

func (c *Config) MQTTTimeout() time.Duration {
	d, _ := parseDuration("mqtt.timeout", c.MQTT.Timeout, 10*time.Second)
	return d
}

func (c *Config) PublishInterval() time.Duration {
	d, _ := parseDuration("mqtt.publish_interval", c.MQTT.PublishInterval, 100*time.Millisecond)
	return d
}

func (c *Config) ResetWindow() time.Duration {
	d, err := parsePositiveDuration("accounting.reset_window", c.Accounting.ResetWindow, traffic.DefaultResetWindow)
	if err != nil {
		return traffic.DefaultResetWindow
	}
	return d
}

func (c *Config) StorageBusyTimeout() time.Duration {
	if c.Storage == nil {
		return 0
	}
	d, _ := parseDuration("storage.busy_timeout", c.Storage.BusyTimeout, 0)
	return d
}

func (c *Config) PasswordType() int {
	if c.Router.PasswordType == nil {
		return 4
	}
	return *c.Router.PasswordType
}
