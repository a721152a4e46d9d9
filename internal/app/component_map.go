package app

import (
	"fmt"
	"time"

	"lte2mqtt/internal/config"
	"lte2mqtt/internal/domoticz"
	"lte2mqtt/internal/mqttbus"
	"lte2mqtt/internal/pipeline"
	"lte2mqtt/internal/router"
	"lte2mqtt/internal/schedule"
	"lte2mqtt/internal/traffic"
	logx "lte2mqtt/pkg/logx"
)

func mapLoggingConfig(cfg *config.Config) logx.Config {
	lc := cfg.Logging
	console := true
	if lc.Console != nil {
		console = *lc.Console
	}
	return logx.Config{
		Level:   lc.Level,
		Console: console,
		File: logx.FileConfig{
			Enabled:    lc.File.Enabled,
			Path:       lc.File.Path,
			MaxSizeMB:  lc.File.MaxSizeMB,
			MaxBackups: lc.File.MaxBackups,
			MaxAgeDays: lc.File.MaxAgeDays,
			Compress:   lc.File.Compress,
		},
		Journal: logx.JournalConfig{
			Enabled:    lc.Journal.Enabled,
			Identifier: lc.Journal.Identifier,
		},
	}
}

func mapRouterConfig(cfg *config.Config) router.Config {
	return router.Config{
		BaseURL:      cfg.Router.URL,
		Username:     cfg.Router.Username,
		Password:     cfg.Router.Password,
		PasswordType: cfg.PasswordType(),
		Timeout:      cfg.RouterTimeout(),
	}
}

func mapDomoticzConfig(cfg *config.Config) domoticz.Config {
	return domoticz.Config{
		BaseURL:  cfg.Domoticz.URL,
		Username: cfg.Domoticz.Username,
		Password: cfg.Domoticz.Password,
		Timeout:  cfg.DomoticzTimeout(),
	}
}

func mapMQTTConfig(cfg *config.Config) mqttbus.Config {
	return mqttbus.Config{
		Broker:          cfg.MQTT.Broker,
		ClientID:        cfg.MQTT.ClientID,
		Username:        cfg.MQTT.Username,
		Password:        cfg.MQTT.Password,
		Topic:           cfg.MQTT.Topic,
		QoS:             byte(cfg.MQTT.QoS),
		Retain:          cfg.MQTT.Retain,
		Timeout:         cfg.MQTTTimeout(),
		PublishInterval: cfg.PublishInterval(),
	}
}

func mapPipelineConfig(cfg *config.Config) (pipeline.Config, error) {
	return mapPipelineConfigAt(cfg, time.Now())
}

func mapPipelineConfigAt(cfg *config.Config, now time.Time) (pipeline.Config, error) {
	spec, err := schedule.Parse(cfg.Tick.Schedule)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("tick.schedule: %w", err)
	}
	policy, err := traffic.ParseNegativeDeltaPolicy(cfg.Accounting.NegativeDelta)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("accounting.negative_delta: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("accounting.timezone: %w", err)
	}

	d := cfg.Devices
	return pipeline.Config{
		Devices: pipeline.Devices{
			RSRQ:            d.RSRQ,
			RSRP:            d.RSRP,
			RSSI:            d.RSSI,
			SINR:            d.SINR,
			CellID:          d.CellID,
			DailyDownload:   d.DailyDownload,
			DailyUpload:     d.DailyUpload,
			MonthlyDownload: d.MonthlyDownload,
			MonthlyUpload:   d.MonthlyUpload,
			AverageDownload: d.AverageDownload,
			AverageUpload:   d.AverageUpload,
		},
		Variables: pipeline.Variables{
			BaselineDownload: cfg.Variables.BaselineDownload,
			BaselineUpload:   cfg.Variables.BaselineUpload,
		},
		Accountant: traffic.Accountant{
			Interval:      spec.Interval(now.In(loc)),
			NegativeDelta: policy,
		},
		Reset: traffic.ResetPolicy{
			Date:     cfg.Accounting.ResetDate,
			Window:   cfg.ResetWindow(),
			Location: loc,
		},
	}, nil
}
