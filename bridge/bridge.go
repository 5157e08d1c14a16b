// Package bridge composes the MirrorBlade sidecar behind a single facade:
// logging, runtime config with hot reload, the operation registry, the
// priority worker pool and the RPC server, booted in that order and shut
// down in reverse.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	mbconfig "github.com/OliviaAI-TGDK/MirrorBlade/internal/config"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/compound"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/fold"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/guard"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/impound"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/jitter"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/logging"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/metrics"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/ops"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/pool"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/rpc"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/scooty"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/smooth"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/telemetry"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/tracing"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/volphi"
)

// Version identifies the bridge build.
const Version = "1.2.0"

// Snapshot is a unified view of bridge state.
type Snapshot struct {
	Version          string            `json:"version"`
	StartedAt        time.Time         `json:"started_at"`
	Uptime           time.Duration     `json:"uptime"`
	Config           mbconfig.Snapshot `json:"config"`
	Pool             pool.Stats        `json:"pool"`
	Guards           []guard.State     `json:"guards,omitempty"`
	TelemetryPushed  uint64            `json:"telemetry_pushed"`
	TelemetryEvicted uint64            `json:"telemetry_evicted"`
	Capabilities     int               `json:"capabilities"`
}

// Bridge composes all subsystems behind a single facade.
type Bridge struct {
	cfg Config

	logSink *logging.Sink
	logger  *slog.Logger

	rec    metrics.Recorder
	tracer *tracing.DispatchTracer

	store    *mbconfig.Store
	appliers *mbconfig.Appliers
	watcher  *mbconfig.Watcher

	registry *ops.Registry
	pool     *pool.Pool
	server   *rpc.Server

	ring     *telemetry.Ring
	scooty   *scooty.Ring
	field    *fold.Field
	smoother *smooth.Smoother
	jitter   *jitter.Jitter
	compound *compound.Service
	impound  *impound.Service
	volphi   *volphi.Service
	guards   *guard.Guards

	started    atomic.Bool
	startedAt  time.Time
	bg         *errgroup.Group
	bgCancel   context.CancelFunc
	metricsSrv *http.Server
	socketPath string
}

// New constructs a stopped bridge from cfg.
func New(cfg Config) (*Bridge, error) {
	cfg.normalize()

	sink := logging.New(logging.Options{FilePath: cfg.LogFilePath, Level: cfg.LogLevel})
	logger := sink.Logger()

	b := &Bridge{
		cfg:     cfg,
		logSink: sink,
		logger:  logger,
	}

	b.rec = selectMetricsRecorder(cfg)
	b.tracer = tracing.NewDispatchTracer("mirrorblade", cfg.TracingEnabled)

	// Config store boots second: later subsystems read it.
	b.store = mbconfig.NewStore()
	configPath := cfg.RuntimeConfigPath()
	if err := b.store.LoadFile(configPath); err != nil {
		if errors.Is(err, mbconfig.ErrMissing) {
			logger.Debug("runtime config missing, using defaults", "path", configPath)
		} else {
			logger.Warn("runtime config unreadable, using defaults", "path", configPath, "err", err)
			b.store.Replace(mbconfig.Defaults())
		}
	}
	if cfg.PipeName != "" {
		b.store.SetIPCPipeName(cfg.PipeName)
	}

	b.appliers = mbconfig.NewAppliers()
	b.appliers.RegisterLog(sink)
	if cfg.Upscaler != nil {
		b.appliers.RegisterUpscaler(cfg.Upscaler)
	}
	if cfg.Traffic != nil {
		b.appliers.RegisterTraffic(cfg.Traffic)
	}

	// Evaluator state.
	b.ring = telemetry.NewRing(0, b.rec)
	b.scooty = scooty.New(0)
	b.field = fold.New()
	b.smoother = smooth.New(smooth.Defaults())
	b.jitter = jitter.New()
	b.compound = compound.New()
	b.impound = impound.New()
	b.volphi = volphi.New()
	b.guards = guard.New(logger)

	// Registry boots third, pool fourth, RPC last.
	b.registry = ops.NewRegistry(ops.Options{Logger: logger, Metrics: b.rec})
	b.RegisterAll()

	b.pool = pool.New(pool.Options{
		Workers:      cfg.Workers,
		WeightHigh:   cfg.WeightHigh,
		WeightNormal: cfg.WeightNormal,
		WeightLow:    cfg.WeightLow,
		WeightIO:     cfg.WeightIO,
		DrainOnStop:  cfg.DrainOnStop,
		Logger:       logger,
		Metrics:      b.rec,
	})

	b.watcher = mbconfig.NewWatcher(mbconfig.WatcherOptions{
		Path:         configPath,
		Store:        b.store,
		PollInterval: cfg.WatchPollInterval,
		StablePolls:  cfg.WatchStablePolls,
		Logger:       logger,
		Apply:        b.appliers.Apply,
	})

	b.socketPath = cfg.SocketPath
	if b.socketPath == "" {
		b.socketPath = rpc.SocketPathForPipe(b.store.IPCPipeName())
	}
	b.server = rpc.NewServer(rpc.Options{
		SocketPath: b.socketPath,
		Store:      b.store,
		Registry:   b.registry,
		Logger:     logger,
		Metrics:    b.rec,
		Tracer:     b.tracer,
	})

	return b, nil
}

// selectMetricsRecorder maps facade config onto a metrics backend.
func selectMetricsRecorder(cfg Config) metrics.Recorder {
	if !cfg.MetricsEnabled {
		return metrics.Nop()
	}
	switch strings.ToLower(cfg.MetricsBackend) {
	case "", "prom", "prometheus":
		return metrics.NewPrometheusRecorder(nil)
	case "otel", "opentelemetry":
		return metrics.NewOTelRecorder()
	case "noop":
		return metrics.Nop()
	default:
		return metrics.NewPrometheusRecorder(nil)
	}
}

// Logger exposes the bridge logger for embedders.
func (b *Bridge) Logger() *slog.Logger { return b.logger }

// SocketPath reports the bound endpoint.
func (b *Bridge) SocketPath() string { return b.socketPath }

// MetricsHandler returns the metrics HTTP handler, or nil when metrics are
// disabled or the backend has no handler.
func (b *Bridge) MetricsHandler() http.Handler {
	if hp, ok := b.rec.(metrics.HandlerProvider); ok {
		return hp.MetricsHandler()
	}
	return nil
}

// Start boots the subsystems: pool, watcher, RPC server, optional metrics
// listener, then the boot script replay. Idempotent.
func (b *Bridge) Start(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return nil
	}
	b.startedAt = time.Now()

	bgCtx, cancel := context.WithCancel(context.Background())
	b.bgCancel = cancel
	b.bg, _ = errgroup.WithContext(bgCtx)

	b.pool.Start()
	b.watcher.Start()
	b.server.Start(bgCtx)

	// Push current runtime state to sinks once at boot.
	b.appliers.Apply(b.store.Snapshot())

	if b.cfg.MetricsListenAddr != "" {
		if handler := b.MetricsHandler(); handler != nil {
			mux := http.NewServeMux()
			mux.Handle("/metrics", handler)
			srv := &http.Server{Handler: mux}
			ln, err := net.Listen("tcp", b.cfg.MetricsListenAddr)
			if err != nil {
				b.logger.Error("metrics listener failed", "addr", b.cfg.MetricsListenAddr, "err", err)
			} else {
				b.metricsSrv = srv
				b.bg.Go(func() error {
					if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
						b.logger.Error("metrics server exited", "err", err)
					}
					return nil
				})
			}
		}
	}

	b.bg.Go(func() error {
		b.runBootScript(bgCtx)
		return nil
	})

	b.logger.Info("bridge started",
		"endpoint", b.socketPath,
		"workers", b.pool.Stats().Workers,
		"config", b.cfg.RuntimeConfigPath())
	return nil
}

// Stop shuts the subsystems down in reverse boot order and joins every
// background loop. Idempotent.
func (b *Bridge) Stop(ctx context.Context) error {
	if !b.started.CompareAndSwap(true, false) {
		return nil
	}
	b.server.Stop()
	b.watcher.Stop()
	b.pool.Stop()
	if b.metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_ = b.metricsSrv.Shutdown(shutdownCtx)
		cancel()
		b.metricsSrv = nil
	}
	b.bgCancel()
	_ = b.bg.Wait()
	b.logger.Info("bridge stopped")
	return b.logSink.Close()
}

// Snapshot returns a unified view of bridge state.
func (b *Bridge) Snapshot() Snapshot {
	pushed, evicted := b.ring.Counters()
	var uptime time.Duration
	if b.started.Load() {
		uptime = time.Since(b.startedAt)
	}
	return Snapshot{
		Version:          Version,
		StartedAt:        b.startedAt,
		Uptime:           uptime,
		Config:           b.store.Snapshot(),
		Pool:             b.pool.Stats(),
		Guards:           b.guards.Snapshot(),
		TelemetryPushed:  pushed,
		TelemetryEvicted: evicted,
		Capabilities:     len(b.registry.Capabilities()),
	}
}

// Dispatch routes one operation through the registry (embedding surface).
func (b *Bridge) Dispatch(ctx context.Context, op string, args map[string]any) map[string]any {
	spanCtx, span := b.tracer.StartDispatch(ctx, op)
	body := b.registry.Dispatch(spanCtx, op, args)
	okVal, _ := body["ok"].(bool)
	msg := ""
	if e, ok := body["error"].(map[string]any); ok {
		msg, _ = e["msg"].(string)
	}
	b.tracer.FinishDispatch(span, op, okVal, msg)
	return body
}

// DispatchJSON is the string-in/string-out embedding surface. It never
// panics; internal failures yield {"ok":false,"error":"..."}.
func (b *Bridge) DispatchJSON(op, argsJSON string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = `{"ok":false,"error":"internal dispatch failure"}`
		}
	}()
	args := map[string]any{}
	if strings.TrimSpace(argsJSON) != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return fmt.Sprintf(`{"ok":false,"error":"bad args json: %s"}`, jsonEscape(err.Error()))
		}
	}
	body := b.Dispatch(context.Background(), op, args)
	data, err := json.Marshal(body)
	if err != nil {
		return `{"ok":false,"error":"reply marshal failed"}`
	}
	return string(data)
}

func jsonEscape(s string) string {
	data, _ := json.Marshal(s)
	if len(data) >= 2 {
		return string(data[1 : len(data)-1])
	}
	return ""
}
