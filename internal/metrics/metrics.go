// Package metrics instruments the sidecar. Rather than a generic
// instrument factory, the surface is the fixed set of events the bridge
// actually emits: pool task flow, RPC session/request lifecycle, dispatch
// outcomes and telemetry-ring pressure. Backends register their instruments
// once at construction, so there is no name building or re-registration
// handling anywhere in the hot path.
package metrics

import "net/http"

// Recorder receives the sidecar's instrumentation events. Implementations
// must be safe for concurrent use; every method must be cheap enough for
// per-task and per-request call sites.
type Recorder interface {
	// TaskEnqueued fires when the pool accepts a task.
	TaskEnqueued(lane string, pending int)
	// TaskDone fires after each task completes (success or panic).
	TaskDone(lane string, pending int, ewmaMicros float64)

	// SessionOpened fires when the RPC server accepts a client.
	SessionOpened()
	// RequestRead fires for each framed request read off the wire.
	RequestRead()
	// SessionTerminated fires when a session dies to a framing or
	// transport fault rather than a clean disconnect.
	SessionTerminated()

	// OpDispatched fires per dispatch, before the handler runs.
	OpDispatched(op string)
	// OpFailed fires when a dispatch produces an error envelope.
	OpFailed(code string)

	// EventPushed fires per telemetry-ring push; evicted reports whether
	// the push displaced the oldest event.
	EventPushed(evicted bool)
}

// HandlerProvider is implemented by backends that expose an HTTP scrape
// endpoint.
type HandlerProvider interface {
	MetricsHandler() http.Handler
}

type nop struct{}

// Nop returns a recorder that discards everything. Consumers substitute it
// for a nil Recorder so call sites never branch.
func Nop() Recorder { return nop{} }

func (nop) TaskEnqueued(string, int)      {}
func (nop) TaskDone(string, int, float64) {}
func (nop) SessionOpened()                {}
func (nop) RequestRead()                  {}
func (nop) SessionTerminated()            {}
func (nop) OpDispatched(string)           {}
func (nop) OpFailed(string)               {}
func (nop) EventPushed(bool)              {}
