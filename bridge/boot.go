package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/OliviaAI-TGDK/MirrorBlade/internal/rpc"
)

// bootDoc is the optional config.json sibling of the runtime config.
type bootDoc struct {
	OnLoad []map[string]any `json:"onLoad"`
}

// runBootScript connects to the freshly started server as a client and
// replays the onLoad request list sequentially, best-effort reading one
// reply per entry. Failures are logged and ignored.
func (b *Bridge) runBootScript(ctx context.Context) {
	path := b.cfg.bootScriptPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			b.logger.Warn("boot script unreadable", "path", path, "err", err)
		}
		return
	}
	var doc bootDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		b.logger.Warn("boot script malformed", "path", path, "err", err)
		return
	}
	if len(doc.OnLoad) == 0 {
		return
	}

	conn := b.dialSelf(ctx)
	if conn == nil {
		b.logger.Warn("boot script: endpoint never came up", "path", path)
		return
	}
	defer func() { _ = conn.Close() }()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), rpc.MaxLineBytes)

	sent := 0
	for _, entry := range doc.OnLoad {
		if ctx.Err() != nil {
			return
		}
		if _, ok := entry["v"]; !ok {
			entry["v"] = rpc.ProtocolVersion
		}
		if _, ok := entry["id"]; !ok {
			entry["id"] = uuid.NewString()
		}
		line, err := json.Marshal(entry)
		if err != nil {
			b.logger.Warn("boot script entry unmarshalable", "err", err)
			continue
		}
		if _, err := conn.Write(append(line, '\n')); err != nil {
			b.logger.Warn("boot script write failed", "err", err)
			return
		}
		if !scanner.Scan() {
			b.logger.Warn("boot script: no reply", "err", scanner.Err())
			return
		}
		var reply map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &reply); err == nil {
			if ok, _ := reply["ok"].(bool); !ok {
				b.logger.Warn("boot script entry rejected", "op", entry["op"], "reply", string(scanner.Bytes()))
			}
		}
		sent++
	}
	b.logger.Info("boot script replayed", "path", path, "entries", sent)
}

// dialSelf retries the endpoint until it accepts, ctx expires, or 5 seconds
// pass.
func (b *Bridge) dialSelf(ctx context.Context) net.Conn {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) && ctx.Err() == nil {
		c, err := rpc.Dial(b.socketPath)
		if err == nil {
			return c
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}
