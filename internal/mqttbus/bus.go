// Package mqttbus publishes Domoticz payloads to an MQTT broker.
package mqttbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/time/rate"

	logx "lte2mqtt/pkg/logx"
)

const (
	DefaultTopic           = "domoticz/in"
	DefaultPublishInterval = 100 * time.Millisecond

	defaultTimeout      = 10 * time.Second
	defaultKeepAlive    = 10 * time.Second
	disconnectQuiesceMs = 250
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqtt operation timed out")

// Config configures the broker connection.
type Config struct {
	// Broker is a URL such as "tcp://localhost:1883".
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
	Retain   bool
	Timeout  time.Duration
	// PublishInterval is the minimum gap between messages; 0 disables pacing.
	PublishInterval time.Duration
}

// publisher is the subset of mqtt.Client the bus uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Bus publishes metric and command payloads to a single topic.
type Bus struct {
	cfg     Config
	pub     publisher
	conn    mqtt.Client
	limiter *rate.Limiter
	log     logx.Logger
}

// Dial connects to the broker.
func Dial(ctx context.Context, cfg Config, log logx.Logger) (*Bus, error) {
	cfg = withDefaults(cfg)
	if strings.TrimSpace(cfg.Broker) == "" {
		return nil, errors.New("mqtt: broker is required")
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(defaultKeepAlive).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(false).
		SetCleanSession(true)

	c := mqtt.NewClient(opts)
	if err := wait(ctx, c.Connect(), cfg.Timeout); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	b := newBus(c, cfg, log)
	b.conn = c
	b.log.Debug("connected", logx.String("broker", cfg.Broker))
	return b, nil
}

func newBus(p publisher, cfg Config, log logx.Logger) *Bus {
	cfg = withDefaults(cfg)
	if log.IsZero() {
		log = logx.Nop()
	}
	var lim *rate.Limiter
	if cfg.PublishInterval > 0 {
		lim = rate.NewLimiter(rate.Every(cfg.PublishInterval), 1)
	}
	return &Bus{
		cfg:     cfg,
		pub:     p,
		limiter: lim,
		log:     log.With(logx.String("comp", "mqtt"), logx.String("topic", cfg.Topic)),
	}
}

func withDefaults(cfg Config) Config {
	if strings.TrimSpace(cfg.Topic) == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.PublishInterval < 0 {
		cfg.PublishInterval = 0
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "lte2mqtt"
	}
	return cfg
}

// PublishMetric sends {"idx", "RSSI": 0, "nvalue": 0, "svalue"}.
func (b *Bus) PublishMetric(ctx context.Context, idx int, svalue string) error {
	return b.publish(ctx, MetricPayload{Idx: idx, SValue: svalue})
}

// PublishCommand sends {"command", "idx", "value"}.
func (b *Bus) PublishCommand(ctx context.Context, command string, idx int, value string) error {
	return b.publish(ctx, CommandPayload{Command: command, Idx: idx, Value: value})
}

func (b *Bus) publish(ctx context.Context, payload any) error {
	msg, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if err := wait(ctx, b.pub.Publish(b.cfg.Topic, b.cfg.QoS, b.cfg.Retain, msg), b.cfg.Timeout); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	b.log.Trace("published", logx.String("payload", string(msg)))
	return nil
}

// Close disconnects from the broker.
func (b *Bus) Close() error {
	if b == nil || b.conn == nil {
		return nil
	}
	b.conn.Disconnect(disconnectQuiesceMs)
	b.conn = nil
	return nil
}

func wait(ctx context.Context, tok mqtt.Token, timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-tok.Done():
		return tok.Error()
	case <-t.C:
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
