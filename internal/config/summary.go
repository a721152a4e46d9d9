package config

import (
	"strings"

	logx "lte2mqtt/pkg/logx"
)

// Summary returns safe structured attrs describing the effective config.
// Passwords are reported only as "set"/"unset".
func Summary(c *Config) []logx.Field {
	if c == nil {
		return nil
	}
	fields := []logx.Field{
		logx.String("router.url", c.Router.URL),
		logx.String("router.username", c.Router.Username),
		logx.Bool("router.password_set", c.Router.Password != ""),
		logx.String("mqtt.broker", c.MQTT.Broker),
		logx.String("mqtt.topic", c.MQTT.Topic),
		logx.Bool("mqtt.password_set", c.MQTT.Password != ""),
		logx.String("state.backend", c.State.Backend),
		logx.String("tick.schedule", c.Tick.Schedule),
		logx.Int("accounting.reset_date", c.Accounting.ResetDate),
		logx.String("accounting.negative_delta", c.Accounting.NegativeDelta),
	}
	if c.State.Backend == BackendDomoticz {
		fields = append(fields,
			logx.String("domoticz.url", c.Domoticz.URL),
			logx.Bool("domoticz.password_set", c.Domoticz.Password != ""),
		)
	}
	if c.StorageEnabled() {
		fields = append(fields,
			logx.String("storage.driver", strings.ToLower(c.Storage.Driver)),
			logx.String("storage.path", c.Storage.Path),
		)
	}
	if c.Metrics.Textfile != "" {
		fields = append(fields, logx.String("metrics.textfile", c.Metrics.Textfile))
	}
	return fields
}
