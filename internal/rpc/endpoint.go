package rpc

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

// SocketPathForPipe maps the configured pipe identifier onto a local unix
// socket path. Windows-style pipe prefixes are stripped and the remainder
// sanitized into a filename under the runtime dir (fallback /tmp).
func SocketPathForPipe(pipeName string) string {
	name := pipeName
	name = strings.TrimPrefix(name, `\\.\pipe\`)
	name = strings.TrimPrefix(name, `\\.\PIPE\`)
	if name == "" {
		name = "MirrorBladeBridge"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, b.String()+".sock")
}

// listen binds the endpoint, replacing a stale socket file left by a
// previous process.
func listen(socketPath string) (net.Listener, error) {
	if _, err := os.Stat(socketPath); err == nil {
		// Refuse to steal a live endpoint; only unlink dead sockets.
		if conn, err := net.Dial("unix", socketPath); err == nil {
			_ = conn.Close()
			return nil, fmt.Errorf("endpoint %s already in use", socketPath)
		}
		_ = os.Remove(socketPath)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", socketPath, err)
	}
	return ln, nil
}

// Dial connects to a serving endpoint (client side).
func Dial(socketPath string) (net.Conn, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socketPath, err)
	}
	return conn, nil
}
