package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"lte2mqtt/internal/config"
	"lte2mqtt/internal/domoticz"
	"lte2mqtt/internal/metrics"
	"lte2mqtt/internal/mqttbus"
	"lte2mqtt/internal/pipeline"
	"lte2mqtt/internal/router"
	"lte2mqtt/internal/storage"
	"lte2mqtt/internal/traffic"
	logx "lte2mqtt/pkg/logx"
)

var (
	_ pipeline.Router      = (*router.Client)(nil)
	_ pipeline.StateStore  = (*domoticz.Store)(nil)
	_ pipeline.StateStore  = (storage.Store)(nil)
	_ pipeline.Publisher   = (*mqttbus.Bus)(nil)
	_ pipeline.Publisher   = storage.Mirror{}
	_ pipeline.History     = (storage.Store)(nil)
	_ pipeline.MetricsSink = (*metrics.Textfile)(nil)
)

// App owns every connection a single run needs.
type App struct {
	cfg *config.Config

	log  logx.Logger
	logs *logx.Service

	bus   *mqttbus.Bus
	store storage.Store
	pipe  *pipeline.Pipeline
}

// NewApp loads cfgPath and wires the app.
func NewApp(ctx context.Context, cfgPath string) (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// New wires the app from a validated config and connects to the broker.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logs, root := logx.New(mapLoggingConfig(cfg))
	a := &App{cfg: cfg, log: root.With(logx.String("comp", "app")), logs: logs}
	if err := a.wire(ctx, root); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, root logx.Logger) error {
	cfg := a.cfg
	a.log.Debug("config loaded", config.Summary(cfg)...)

	if sc, enabled, err := mapStorageConfig(cfg); err != nil {
		return err
	} else if enabled {
		st, err := storage.Open(sc, root)
		if err != nil {
			return err
		}
		a.store = st
		a.log.Info("storage enabled", logx.String("driver", sc.Driver))
	}

	rc, err := router.New(mapRouterConfig(cfg), root)
	if err != nil {
		return err
	}

	a.bus, err = mqttbus.Dial(ctx, mapMQTTConfig(cfg), root)
	if err != nil {
		return err
	}

	var (
		state pipeline.StateStore
		pub   pipeline.Publisher = a.bus
	)
	switch cfg.State.Backend {
	case config.BackendLocal:
		if a.store == nil {
			return errors.New("state.backend=local requires storage")
		}
		state = a.store
		pub = storage.Mirror{Next: a.bus, Store: a.store}
	default:
		api, err := domoticz.New(mapDomoticzConfig(cfg), root)
		if err != nil {
			return err
		}
		state = domoticz.NewStore(api, a.bus)
	}

	pc, err := mapPipelineConfig(cfg)
	if err != nil {
		return err
	}
	var opts []pipeline.Option
	if a.store != nil {
		opts = append(opts, pipeline.WithHistory(a.store))
	}
	if cfg.Metrics.Textfile != "" {
		opts = append(opts, pipeline.WithMetrics(metrics.NewTextfile(cfg.Metrics.Textfile)))
	}
	a.pipe = pipeline.New(pc, rc, state, pub, root, opts...)
	return nil
}

func (a *App) Logger() logx.Logger { return a.log }

// Tick runs one poll.
func (a *App) Tick(ctx context.Context) (pipeline.Report, error) {
	rep, err := a.pipe.Run(ctx)
	if err != nil {
		a.log.Error("tick failed", logx.String("run_id", rep.RunID), logx.Err(err))
	}
	return rep, err
}

// Reset zeroes the daily counters now, and the monthly ones too if monthly is set.
func (a *App) Reset(ctx context.Context, monthly bool) error {
	return a.pipe.Reset(ctx, traffic.ResetDecision{DailyReset: true, MonthlyReset: monthly})
}

// Close disconnects from the broker and flushes storage and logs.
func (a *App) Close() error {
	var err error
	if a.bus != nil {
		err = multierr.Append(err, a.bus.Close())
		a.bus = nil
	}
	if a.store != nil {
		err = multierr.Append(err, a.store.Close())
		a.store = nil
	}
	if a.logs != nil {
		err = multierr.Append(err, a.logs.Close())
		a.logs = nil
	}
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// OpenHistory opens the configured storage for read-only commands.
func OpenHistory(cfg *config.Config, log logx.Logger) (storage.Store, error) {
	sc, enabled, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, storage.ErrDisabled
	}
	return storage.Open(sc, log)
}
