package pipeline

import (
	"context"
	"time"

	"lte2mqtt/internal/signal"
	"lte2mqtt/internal/storage"
	"lte2mqtt/internal/traffic"
)

// Router is the subset of the router API a tick needs.
type Router interface {
	Signal(ctx context.Context) (signal.Sample, error)
	TrafficStatistics(ctx context.Context) (traffic.Counters, error)
	ClearTraffic(ctx context.Context) error
}

// StateStore holds the baseline user variables and the monthly device values.
type StateStore interface {
	Variable(ctx context.Context, idx int) (string, error)
	SetVariable(ctx context.Context, idx int, value string) error
	DeviceValue(ctx context.Context, idx int) (string, error)
}

// Publisher sends payloads to the home-automation bus.
type Publisher interface {
	PublishMetric(ctx context.Context, idx int, svalue string) error
	PublishCommand(ctx context.Context, command string, idx int, value string) error
}

// History records completed ticks.
type History interface {
	AppendTick(ctx context.Context, rec storage.TickRecord) error
}

// MetricsSink receives every completed tick.
type MetricsSink interface {
	Observe(ctx context.Context, at time.Time, res traffic.TickResult, d traffic.ResetDecision) error
}
