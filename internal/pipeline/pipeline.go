package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"lte2mqtt/internal/signal"
	"lte2mqtt/internal/storage"
	"lte2mqtt/internal/traffic"
	logx "lte2mqtt/pkg/logx"
)

const zero = "0"

// Report describes one completed tick.
type Report struct {
	RunID    string
	At       time.Time
	Signal   []signal.Reading
	Counters traffic.Counters
	Baseline traffic.Baseline
	Monthly  traffic.MonthlyTotal
	Result   traffic.TickResult
	Reset    traffic.ResetDecision
}

type Option func(*Pipeline)

// WithHistory appends a record per tick.
func WithHistory(h History) Option { return func(p *Pipeline) { p.history = h } }

// WithMetrics reports every tick to m.
func WithMetrics(m MetricsSink) Option { return func(p *Pipeline) { p.metrics = m } }

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option { return func(p *Pipeline) { p.clock = c } }

// Pipeline runs a single tick. It keeps no state between runs.
type Pipeline struct {
	cfg     Config
	router  Router
	state   StateStore
	pub     Publisher
	history History
	metrics MetricsSink
	clock   clock.Clock
	log     logx.Logger
}

func New(cfg Config, r Router, state StateStore, pub Publisher, log logx.Logger, opts ...Option) *Pipeline {
	if log.IsZero() {
		log = logx.Nop()
	}
	p := &Pipeline{
		cfg:    cfg,
		router: r,
		state:  state,
		pub:    pub,
		clock:  clock.New(),
		log:    log.With(logx.String("comp", "pipeline")),
	}
	for _, o := range opts {
		if o != nil {
			o(p)
		}
	}
	return p
}

// Run executes one tick. Any error aborts the remaining steps.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	rep := Report{RunID: uuid.NewString(), At: p.clock.Now()}
	log := p.log.With(logx.String("run_id", rep.RunID))

	readings, err := p.publishSignal(ctx)
	if err != nil {
		return rep, err
	}
	rep.Signal = readings
	if log.Enabled(logx.LevelDebug) {
		fields := make([]logx.Field, 0, len(readings))
		for _, r := range readings {
			fields = append(fields, logx.String(r.Name, r.Value))
		}
		log.Debug("signal published", fields...)
	}

	counters, err := p.router.TrafficStatistics(ctx)
	if err != nil {
		return rep, fmt.Errorf("read traffic statistics: %w", err)
	}
	rep.Counters = counters
	if rep.Baseline, err = p.readBaseline(ctx); err != nil {
		return rep, err
	}
	if rep.Monthly, err = p.readMonthly(ctx); err != nil {
		return rep, err
	}

	res, err := p.cfg.Accountant.ComputeTick(counters, rep.Baseline, rep.Monthly)
	if err != nil {
		return rep, err
	}
	rep.Result = res
	if res.Anomaly() {
		log.Warn("router counter went backwards",
			logx.Float64("baseline_dl_gb", rep.Baseline.DownloadGB),
			logx.Float64("baseline_ul_gb", rep.Baseline.UploadGB),
			logx.Float64("daily_dl_gb", res.DailyDownloadGB),
			logx.Float64("daily_ul_gb", res.DailyUploadGB),
			logx.String("policy", string(p.cfg.Accountant.NegativeDelta)),
		)
	}

	if err := p.publishTick(ctx, res); err != nil {
		return rep, err
	}

	rep.Reset = p.cfg.Reset.DecideAt(rep.At)
	if rep.Reset.DailyReset {
		if err := p.applyReset(ctx, rep.Reset); err != nil {
			return rep, err
		}
		rep.Result = rep.Result.ApplyReset(rep.Reset)
		log.Info("counters reset",
			logx.Bool("daily", rep.Reset.DailyReset),
			logx.Bool("monthly", rep.Reset.MonthlyReset),
		)
	}

	if err := p.record(ctx, rep); err != nil {
		return rep, err
	}

	log.Info("tick done",
		logx.Time("at", rep.At),
		logx.Duration("interval", p.cfg.Accountant.Interval),
		logx.String("download", humanize.IBytes(uint64(counters.DownloadBytes))),
		logx.String("upload", humanize.IBytes(uint64(counters.UploadBytes))),
		logx.Float64("avg_dl", res.AverageDownloadBps),
		logx.Float64("avg_ul", res.AverageUploadBps),
		logx.Float64("monthly_dl_gb", rep.Result.MonthlyDownloadGB),
		logx.Float64("monthly_ul_gb", rep.Result.MonthlyUploadGB),
	)
	return rep, nil
}

// Reset applies the reset side effects without a tick.
func (p *Pipeline) Reset(ctx context.Context, d traffic.ResetDecision) error {
	if !d.DailyReset {
		return nil
	}
	if err := p.applyReset(ctx, d); err != nil {
		return err
	}
	p.log.Info("counters reset manually", logx.Bool("monthly", d.MonthlyReset))
	return nil
}

func (p *Pipeline) publishSignal(ctx context.Context) ([]signal.Reading, error) {
	sample, err := p.router.Signal(ctx)
	if err != nil {
		return nil, fmt.Errorf("read signal: %w", err)
	}
	readings := signal.Normalize(sample)
	for _, r := range readings {
		if err := p.pub.PublishMetric(ctx, p.cfg.Devices.signalIdx(r.Name), r.Value); err != nil {
			return nil, fmt.Errorf("publish %s: %w", r.Name, err)
		}
	}
	return readings, nil
}

func (p *Pipeline) readBaseline(ctx context.Context) (traffic.Baseline, error) {
	dl, err := p.readGB(ctx, "baseline_download", p.cfg.Variables.BaselineDownload, p.state.Variable)
	if err != nil {
		return traffic.Baseline{}, err
	}
	ul, err := p.readGB(ctx, "baseline_upload", p.cfg.Variables.BaselineUpload, p.state.Variable)
	if err != nil {
		return traffic.Baseline{}, err
	}
	return traffic.Baseline{DownloadGB: dl, UploadGB: ul}, nil
}

func (p *Pipeline) readMonthly(ctx context.Context) (traffic.MonthlyTotal, error) {
	dl, err := p.readGB(ctx, "monthly_download", p.cfg.Devices.MonthlyDownload, p.state.DeviceValue)
	if err != nil {
		return traffic.MonthlyTotal{}, err
	}
	ul, err := p.readGB(ctx, "monthly_upload", p.cfg.Devices.MonthlyUpload, p.state.DeviceValue)
	if err != nil {
		return traffic.MonthlyTotal{}, err
	}
	return traffic.MonthlyTotal{DownloadGB: dl, UploadGB: ul}, nil
}

func (p *Pipeline) readGB(ctx context.Context, name string, idx int, get func(context.Context, int) (string, error)) (float64, error) {
	raw, err := get(ctx, idx)
	if err != nil {
		return 0, fmt.Errorf("read %s (idx %d): %w", name, idx, err)
	}
	return traffic.ParseGB(name, raw)
}

func (p *Pipeline) publishTick(ctx context.Context, r traffic.TickResult) error {
	d := p.cfg.Devices
	for _, m := range []struct {
		idx   int
		value string
	}{
		{d.DailyDownload, traffic.FormatGB(r.DailyDownloadGB)},
		{d.DailyUpload, traffic.FormatGB(r.DailyUploadGB)},
		{d.AverageDownload, formatBps(r.AverageDownloadBps)},
		{d.AverageUpload, formatBps(r.AverageUploadBps)},
		{d.MonthlyDownload, traffic.FormatGB(r.MonthlyDownloadGB)},
		{d.MonthlyUpload, traffic.FormatGB(r.MonthlyUploadGB)},
	} {
		if err := p.pub.PublishMetric(ctx, m.idx, m.value); err != nil {
			return fmt.Errorf("publish idx %d: %w", m.idx, err)
		}
	}

	// The next tick's baseline; written right after the monthly totals.
	v := p.cfg.Variables
	if err := p.state.SetVariable(ctx, v.BaselineDownload, traffic.FormatGB(r.DailyDownloadGB)); err != nil {
		return fmt.Errorf("store baseline_download: %w", err)
	}
	if err := p.state.SetVariable(ctx, v.BaselineUpload, traffic.FormatGB(r.DailyUploadGB)); err != nil {
		return fmt.Errorf("store baseline_upload: %w", err)
	}
	return nil
}

func (p *Pipeline) applyReset(ctx context.Context, d traffic.ResetDecision) error {
	v := p.cfg.Variables
	for _, idx := range []int{v.BaselineDownload, v.BaselineUpload} {
		if err := p.state.SetVariable(ctx, idx, zero); err != nil {
			return fmt.Errorf("reset variable %d: %w", idx, err)
		}
	}
	idx := []int{p.cfg.Devices.DailyDownload, p.cfg.Devices.DailyUpload}
	if d.MonthlyReset {
		idx = append(idx, p.cfg.Devices.MonthlyDownload, p.cfg.Devices.MonthlyUpload)
	}
	for _, i := range idx {
		if err := p.pub.PublishMetric(ctx, i, zero); err != nil {
			return fmt.Errorf("reset device %d: %w", i, err)
		}
	}
	if err := p.router.ClearTraffic(ctx); err != nil {
		return fmt.Errorf("clear router traffic: %w", err)
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, rep Report) error {
	if p.history != nil {
		rec := storage.TickRecord{At: rep.At, RunID: rep.RunID, Reset: rep.Reset, TickResult: rep.Result}
		if err := p.history.AppendTick(ctx, rec); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}
	if p.metrics != nil {
		if err := p.metrics.Observe(ctx, rep.At, rep.Result, rep.Reset); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func formatBps(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
