package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder on a Prometheus registry. All
// instruments are created at construction; names are fixed under the
// mirrorblade_* prefix.
type PrometheusRecorder struct {
	reg     *prom.Registry
	handler http.Handler

	taskEnqueued *prom.CounterVec
	taskDone     *prom.CounterVec
	taskPending  prom.Gauge
	taskEWMA     prom.Gauge

	sessions     prom.Counter
	requests     prom.Counter
	terminations prom.Counter

	dispatched *prom.CounterVec
	opErrors   *prom.CounterVec

	eventsPushed  prom.Counter
	eventsEvicted prom.Counter
}

// NewPrometheusRecorder builds a recorder on reg (a fresh private registry
// when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		reg:     reg,
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),

		taskEnqueued: factory.NewCounterVec(prom.CounterOpts{
			Name: "mirrorblade_pool_enqueued_total",
			Help: "Tasks accepted per lane.",
		}, []string{"lane"}),
		taskDone: factory.NewCounterVec(prom.CounterOpts{
			Name: "mirrorblade_pool_executed_total",
			Help: "Tasks executed per lane, panics included.",
		}, []string{"lane"}),
		taskPending: factory.NewGauge(prom.GaugeOpts{
			Name: "mirrorblade_pool_pending",
			Help: "Pending tasks across all lanes.",
		}),
		taskEWMA: factory.NewGauge(prom.GaugeOpts{
			Name: "mirrorblade_pool_task_ewma_usec",
			Help: "EWMA of per-task wallclock in microseconds.",
		}),

		sessions: factory.NewCounter(prom.CounterOpts{
			Name: "mirrorblade_rpc_sessions_total",
			Help: "Client sessions served.",
		}),
		requests: factory.NewCounter(prom.CounterOpts{
			Name: "mirrorblade_rpc_requests_total",
			Help: "Requests read off the wire.",
		}),
		terminations: factory.NewCounter(prom.CounterOpts{
			Name: "mirrorblade_rpc_session_terminations_total",
			Help: "Sessions terminated by framing or transport faults.",
		}),

		dispatched: factory.NewCounterVec(prom.CounterOpts{
			Name: "mirrorblade_ops_dispatched_total",
			Help: "Operations dispatched.",
		}, []string{"op"}),
		opErrors: factory.NewCounterVec(prom.CounterOpts{
			Name: "mirrorblade_ops_errors_total",
			Help: "Dispatches that produced an error envelope.",
		}, []string{"code"}),

		eventsPushed: factory.NewCounter(prom.CounterOpts{
			Name: "mirrorblade_telem_pushed_total",
			Help: "Telemetry events pushed.",
		}),
		eventsEvicted: factory.NewCounter(prom.CounterOpts{
			Name: "mirrorblade_telem_evicted_total",
			Help: "Telemetry events evicted on overflow.",
		}),
	}
}

// MetricsHandler returns the scrape endpoint for this recorder's registry.
func (r *PrometheusRecorder) MetricsHandler() http.Handler { return r.handler }

func (r *PrometheusRecorder) TaskEnqueued(lane string, pending int) {
	r.taskEnqueued.WithLabelValues(lane).Inc()
	r.taskPending.Set(float64(pending))
}

func (r *PrometheusRecorder) TaskDone(lane string, pending int, ewmaMicros float64) {
	r.taskDone.WithLabelValues(lane).Inc()
	r.taskPending.Set(float64(pending))
	r.taskEWMA.Set(ewmaMicros)
}

func (r *PrometheusRecorder) SessionOpened()     { r.sessions.Inc() }
func (r *PrometheusRecorder) RequestRead()       { r.requests.Inc() }
func (r *PrometheusRecorder) SessionTerminated() { r.terminations.Inc() }

func (r *PrometheusRecorder) OpDispatched(op string) { r.dispatched.WithLabelValues(op).Inc() }
func (r *PrometheusRecorder) OpFailed(code string)   { r.opErrors.WithLabelValues(code).Inc() }

func (r *PrometheusRecorder) EventPushed(evicted bool) {
	r.eventsPushed.Inc()
	if evicted {
		r.eventsEvicted.Inc()
	}
}
