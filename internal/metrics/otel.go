package metrics

// OpenTelemetry backend for deployments that already run an OTEL collector.
// Counts use Int64Counter, levels use the synchronous Float64Gauge; the
// lane/op/code dimensions become attributes on the fixed instruments.

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelRecorder implements Recorder on an OTEL MeterProvider. Construction
// is zero-config; embedders attach exporters to the SDK provider.
type OTelRecorder struct {
	mp *sdkmetric.MeterProvider

	taskEnqueued metric.Int64Counter
	taskDone     metric.Int64Counter
	taskPending  metric.Float64Gauge
	taskEWMA     metric.Float64Gauge

	sessions     metric.Int64Counter
	requests     metric.Int64Counter
	terminations metric.Int64Counter

	dispatched metric.Int64Counter
	opErrors   metric.Int64Counter

	eventsPushed  metric.Int64Counter
	eventsEvicted metric.Int64Counter
}

// NewOTelRecorder builds the recorder and its instrument set.
func NewOTelRecorder() *OTelRecorder {
	mp := sdkmetric.NewMeterProvider()
	meter := mp.Meter("mirrorblade")

	r := &OTelRecorder{mp: mp}
	r.taskEnqueued, _ = meter.Int64Counter("mirrorblade.pool.enqueued",
		metric.WithDescription("Tasks accepted per lane."))
	r.taskDone, _ = meter.Int64Counter("mirrorblade.pool.executed",
		metric.WithDescription("Tasks executed per lane, panics included."))
	r.taskPending, _ = meter.Float64Gauge("mirrorblade.pool.pending",
		metric.WithDescription("Pending tasks across all lanes."))
	r.taskEWMA, _ = meter.Float64Gauge("mirrorblade.pool.task_ewma_usec",
		metric.WithDescription("EWMA of per-task wallclock in microseconds."))

	r.sessions, _ = meter.Int64Counter("mirrorblade.rpc.sessions",
		metric.WithDescription("Client sessions served."))
	r.requests, _ = meter.Int64Counter("mirrorblade.rpc.requests",
		metric.WithDescription("Requests read off the wire."))
	r.terminations, _ = meter.Int64Counter("mirrorblade.rpc.session_terminations",
		metric.WithDescription("Sessions terminated by framing or transport faults."))

	r.dispatched, _ = meter.Int64Counter("mirrorblade.ops.dispatched",
		metric.WithDescription("Operations dispatched."))
	r.opErrors, _ = meter.Int64Counter("mirrorblade.ops.errors",
		metric.WithDescription("Dispatches that produced an error envelope."))

	r.eventsPushed, _ = meter.Int64Counter("mirrorblade.telem.pushed",
		metric.WithDescription("Telemetry events pushed."))
	r.eventsEvicted, _ = meter.Int64Counter("mirrorblade.telem.evicted",
		metric.WithDescription("Telemetry events evicted on overflow."))
	return r
}

func (r *OTelRecorder) TaskEnqueued(lane string, pending int) {
	ctx := context.Background()
	r.taskEnqueued.Add(ctx, 1, metric.WithAttributes(attribute.String("lane", lane)))
	r.taskPending.Record(ctx, float64(pending))
}

func (r *OTelRecorder) TaskDone(lane string, pending int, ewmaMicros float64) {
	ctx := context.Background()
	r.taskDone.Add(ctx, 1, metric.WithAttributes(attribute.String("lane", lane)))
	r.taskPending.Record(ctx, float64(pending))
	r.taskEWMA.Record(ctx, ewmaMicros)
}

func (r *OTelRecorder) SessionOpened() {
	r.sessions.Add(context.Background(), 1)
}

func (r *OTelRecorder) RequestRead() {
	r.requests.Add(context.Background(), 1)
}

func (r *OTelRecorder) SessionTerminated() {
	r.terminations.Add(context.Background(), 1)
}

func (r *OTelRecorder) OpDispatched(op string) {
	r.dispatched.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", op)))
}

func (r *OTelRecorder) OpFailed(code string) {
	r.opErrors.Add(context.Background(), 1, metric.WithAttributes(attribute.String("code", code)))
}

func (r *OTelRecorder) EventPushed(evicted bool) {
	ctx := context.Background()
	r.eventsPushed.Add(ctx, 1)
	if evicted {
		r.eventsEvicted.Add(ctx, 1)
	}
}
