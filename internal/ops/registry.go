// Package ops holds the name-keyed operation registry and the dispatch
// path that converts handler failures into wire error envelopes.
package ops

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/OliviaAI-TGDK/MirrorBlade/internal/metrics"
)

// Wire error codes.
const (
	CodeBadJSON     = "BadJSON"
	CodeBadVersion  = "BadVersion"
	CodeBadArgs     = "BadArgs"
	CodeUnknownOp   = "UnknownOp"
	CodeException   = "Exception"
	CodeUnavailable = "Unavailable"
)

// Handler maps an arguments object to a response value. Handlers are
// stateless and idempotent; they must return in bounded time. A returned
// map that already carries an "ok" key is passed through as the full
// response body, anything else is wrapped into {ok:true, result:value}.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Error is a tagged handler failure carrying a wire code.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// BadArgs builds a CodeBadArgs error.
func BadArgs(format string, a ...any) *Error {
	return &Error{Code: CodeBadArgs, Msg: fmt.Sprintf(format, a...)}
}

// Envelope builds the wire error body for a code/message pair.
func Envelope(code, msg string) map[string]any {
	return map[string]any{"ok": false, "error": map[string]any{"code": code, "msg": msg}}
}

// Registry is the name -> handler dispatch table. Lookup runs under shared
// exclusion; handlers are invoked with the lock released.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *slog.Logger
	rec      metrics.Recorder
}

// Options configures a Registry.
type Options struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// NewRegistry builds an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	return &Registry{handlers: make(map[string]Handler), logger: opts.Logger, rec: opts.Metrics}
}

// Register inserts or replaces a handler. Names are case-sensitive,
// dot-separated ASCII.
func (r *Registry) Register(name string, h Handler) {
	if name == "" || h == nil {
		return
	}
	r.mu.Lock()
	r.handlers[name] = h
	r.mu.Unlock()
}

// Exists reports whether name is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Capabilities returns the sorted registered names.
func (r *Registry) Capabilities() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, name)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Dispatch locates the handler under shared exclusion, releases the lock,
// invokes it, and wraps the result. Handler panics and errors become
// {ok:false, error:{code,msg}} envelopes; they never propagate.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) map[string]any {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()

	r.rec.OpDispatched(name)
	if !ok {
		return r.fail(CodeUnknownOp, fmt.Sprintf("Unknown op: %s", name))
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := r.invoke(ctx, name, h, args)
	if err != nil {
		if oe, ok := err.(*Error); ok {
			return r.fail(oe.Code, oe.Msg)
		}
		return r.fail(CodeException, err.Error())
	}
	if m, ok := result.(map[string]any); ok {
		if _, has := m["ok"]; has {
			return m
		}
	}
	return map[string]any{"ok": true, "result": result}
}

func (r *Registry) invoke(ctx context.Context, name string, h Handler, args map[string]any) (result any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("handler panic", "op", name, "panic", rec)
			err = &Error{Code: CodeException, Msg: fmt.Sprintf("%v", rec)}
		}
	}()
	return h(ctx, args)
}

func (r *Registry) fail(code, msg string) map[string]any {
	r.rec.OpFailed(code)
	return Envelope(code, msg)
}
