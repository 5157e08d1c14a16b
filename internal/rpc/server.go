// Package rpc serves newline-delimited JSON requests over a local pipe
// endpoint: one client session at a time, sequential request processing,
// ordered replies, per-request error containment.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"

	"github.com/OliviaAI-TGDK/MirrorBlade/internal/config"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/metrics"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/ops"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/tracing"
)

// ProtocolVersion is the only accepted request version.
const ProtocolVersion = 1

// MaxLineBytes caps one framed request. Lines beyond terminate the session
// without a reply.
const MaxLineBytes = 1 << 20

// listenRetryDelay paces endpoint re-creation after a bind failure.
const listenRetryDelay = 500 * time.Millisecond

// request is the decoded wire shape. Pointer fields distinguish absent
// keys; the correlation id is kept raw so it echoes byte-identical.
type request struct {
	V    *int            `json:"v"`
	ID   json.RawMessage `json:"id"`
	Op   *string         `json:"op"`
	Args map[string]any  `json:"args"`
}

// Options wires a Server.
type Options struct {
	// SocketPath is the endpoint to bind. Resolved by the caller (typically
	// via SocketPathForPipe on the configured pipe name).
	SocketPath string
	Store      *config.Store
	Registry   *ops.Registry
	Logger     *slog.Logger
	Metrics    metrics.Recorder
	Tracer     *tracing.DispatchTracer
}

// Server owns the accept/session loop.
type Server struct {
	opts Options

	mu      sync.Mutex
	conn    net.Conn
	stopped chan struct{}
	cancel  context.CancelFunc

	rec metrics.Recorder
}

// NewServer builds a stopped server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop()
	}
	return &Server{opts: opts, rec: opts.Metrics}
}

// Start launches the accept loop. The loop exits when ctx is canceled.
func (s *Server) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.stopped = make(chan struct{})
	s.mu.Unlock()
	go s.acceptLoop(ctx)
}

// Stop cancels outstanding reads, closes the endpoint and joins the loop.
func (s *Server) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	stopped := s.stopped
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

// acceptLoop creates the endpoint, awaits one client, serves the session to
// disconnect, tears the endpoint down and loops. Endpoint creation failures
// back off ~500ms.
func (s *Server) acceptLoop(ctx context.Context) {
	defer close(s.stopped)

	retry := backoff.NewConstantBackOff(listenRetryDelay)
	for ctx.Err() == nil {
		ln, err := listen(s.opts.SocketPath)
		if err != nil {
			s.opts.Logger.Error("endpoint create failed", "path", s.opts.SocketPath, "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(retry.NextBackOff()):
			}
			continue
		}

		// Unblock Accept promptly on shutdown.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = ln.Close()
			case <-done:
			}
		}()

		conn, err := ln.Accept()
		if err != nil {
			close(done)
			_ = ln.Close()
			if ctx.Err() != nil {
				return
			}
			s.opts.Logger.Debug("accept failed", "err", err)
			continue
		}

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.rec.SessionOpened()

		s.serveSession(ctx, conn)

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		_ = conn.Close()
		close(done)
		_ = ln.Close()
	}
}

// serveSession reads framed requests sequentially and writes one reply per
// request, in order. Transport faults (overflow, invalid UTF-8, disconnect)
// end the session.
func (s *Server) serveSession(ctx context.Context, conn net.Conn) {
	// Cancel the blocking read on shutdown.
	sessionDone := make(chan struct{})
	defer close(sessionDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-sessionDone:
		}
	}()

	scanner := bufio.NewScanner(conn)
	// One extra byte leaves room for the terminator of a line at the limit.
	scanner.Buffer(make([]byte, 64*1024), MaxLineBytes+1)
	writer := bufio.NewWriter(conn)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !utf8.Valid(line) {
			s.opts.Logger.Warn("session terminated: non-UTF-8 request")
			s.rec.SessionTerminated()
			return
		}
		s.rec.RequestRead()
		reply := s.handleLine(ctx, line)
		data, err := json.Marshal(reply)
		if err != nil {
			data, _ = json.Marshal(ops.Envelope(ops.CodeException, "reply marshal failed"))
		}
		if _, err := writer.Write(data); err != nil {
			return
		}
		if err := writer.WriteByte('\n'); err != nil {
			return
		}
		if err := writer.Flush(); err != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		if err == bufio.ErrTooLong {
			s.opts.Logger.Warn("session terminated: frame overflow", "limit", MaxLineBytes)
			s.rec.SessionTerminated()
			return
		}
		if ctx.Err() == nil {
			s.opts.Logger.Debug("session read error", "err", err)
		}
	}
}

// handleLine validates one framed request and routes it through dispatch.
// The reply always echoes v and, when present, the correlation id.
func (s *Server) handleLine(ctx context.Context, line []byte) map[string]any {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		reply := ops.Envelope(ops.CodeBadJSON, "malformed request")
		reply["v"] = ProtocolVersion
		return reply
	}

	finish := func(body map[string]any) map[string]any {
		body["v"] = ProtocolVersion
		if len(req.ID) > 0 {
			body["id"] = req.ID
		}
		return body
	}

	if req.V == nil || *req.V != ProtocolVersion {
		return finish(ops.Envelope(ops.CodeBadVersion, "unsupported protocol version"))
	}
	if req.Op == nil || *req.Op == "" {
		return finish(ops.Envelope(ops.CodeBadArgs, "op required"))
	}
	if s.opts.Store != nil && !s.opts.Store.IPCEnabled() {
		return finish(ops.Envelope(ops.CodeUnavailable, "ipc disabled"))
	}

	op := *req.Op
	spanCtx, span := s.opts.Tracer.StartDispatch(ctx, op)
	body := s.opts.Registry.Dispatch(spanCtx, op, req.Args)
	okVal, _ := body["ok"].(bool)
	errMsg := ""
	if !okVal {
		if e, ok := body["error"].(map[string]any); ok {
			errMsg, _ = e["msg"].(string)
		}
	}
	s.opts.Tracer.FinishDispatch(span, op, okVal, errMsg)
	return finish(body)
}
