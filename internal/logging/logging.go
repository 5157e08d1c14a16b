package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls sink construction. Zero value logs to stderr at info.
type Options struct {
	// FilePath enables file output with size-based rotation when non-empty.
	FilePath string
	// MaxSizeMB is the rotation threshold per file (default 10).
	MaxSizeMB int
	// MaxBackups is the number of rotated files retained (default 5).
	MaxBackups int
	// Level is the initial minimum level name; unknown names fall back to info.
	Level string
	// AlsoStderr duplicates file output to stderr.
	AlsoStderr bool
}

// Sink owns the process logger and its dynamic level. All subsystems log
// through the *slog.Logger it produces; level changes apply to every call
// site without handler reconstruction.
type Sink struct {
	logger  *slog.Logger
	lvl     *slog.LevelVar
	mu      sync.Mutex
	rotator *lumberjack.Logger
}

// New builds a Sink. It never fails for file problems at construction time:
// lumberjack opens lazily on first write.
func New(opts Options) *Sink {
	lvl := &slog.LevelVar{}
	lvl.Set(ParseLevel(opts.Level))

	var w io.Writer = os.Stderr
	var rot *lumberjack.Logger
	if opts.FilePath != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := opts.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 5
		}
		rot = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}
		if opts.AlsoStderr {
			w = io.MultiWriter(rot, os.Stderr)
		} else {
			w = rot
		}
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Sink{logger: slog.New(handler), lvl: lvl, rotator: rot}
}

// Logger returns the structured logger backed by this sink.
func (s *Sink) Logger() *slog.Logger { return s.logger }

// SetLevel retargets the minimum level. Unknown names fall back to info.
func (s *Sink) SetLevel(name string) { s.lvl.Set(ParseLevel(name)) }

// Level reports the current minimum level.
func (s *Sink) Level() slog.Level { return s.lvl.Level() }

// Close flushes and closes the rotating file, if any.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rotator != nil {
		return s.rotator.Close()
	}
	return nil
}

// ParseLevel maps a level name onto slog levels. "trace" maps below debug;
// unknown names yield info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return slog.LevelDebug - 4
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelName is the inverse of ParseLevel for the recognized names.
func LevelName(l slog.Level) string {
	switch {
	case l < slog.LevelDebug:
		return "trace"
	case l < slog.LevelInfo:
		return "debug"
	case l < slog.LevelWarn:
		return "info"
	case l < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}
