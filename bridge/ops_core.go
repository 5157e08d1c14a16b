package bridge

import (
	"context"
	"encoding/json"
	"errors"

	mbconfig "github.com/OliviaAI-TGDK/MirrorBlade/internal/config"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/ops"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/pool"
)

func (b *Bridge) opPing(ctx context.Context, args map[string]any) (any, error) {
	return "pong", nil
}

func (b *Bridge) opDiagDump(ctx context.Context, args map[string]any) (any, error) {
	data, err := json.Marshal(b.Snapshot())
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (b *Bridge) opCapabilities(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{"capabilities": b.registry.Capabilities()}, nil
}

func (b *Bridge) opPoolStats(ctx context.Context, args map[string]any) (any, error) {
	return b.pool.Stats(), nil
}

func (b *Bridge) opPoolFlush(ctx context.Context, args map[string]any) (any, error) {
	b.pool.Flush()
	return b.pool.Stats(), nil
}

// opDiagSelftest spreads no-op tasks across all four lanes and reports how
// many the pool accepted. Exercises the enqueue path end to end.
func (b *Bridge) opDiagSelftest(ctx context.Context, args map[string]any) (any, error) {
	n, err := ops.IntOr(args, "tasks", 16)
	if err != nil {
		return nil, err
	}
	if n < 1 || n > 4096 {
		return nil, ops.BadArgs("tasks must be in [1, 4096]")
	}
	lanes := []pool.Lane{pool.LaneHigh, pool.LaneNormal, pool.LaneLow, pool.LaneIO}
	accepted := 0
	for i := 0; i < n; i++ {
		if b.pool.Enqueue(lanes[i%len(lanes)], func() {}) {
			accepted++
		}
	}
	return map[string]any{"requested": n, "accepted": accepted}, nil
}

func (b *Bridge) opConfigReload(ctx context.Context, args map[string]any) (any, error) {
	path := b.cfg.RuntimeConfigPath()
	if err := b.store.LoadFile(path); err != nil && !errors.Is(err, mbconfig.ErrMissing) {
		return nil, err
	}
	b.appliers.Apply(b.store.Snapshot())
	return map[string]any{"ok": true}, nil
}

func (b *Bridge) opConfigSave(ctx context.Context, args map[string]any) (any, error) {
	if err := b.store.SaveFile(b.cfg.RuntimeConfigPath()); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (b *Bridge) opConfigGet(ctx context.Context, args map[string]any) (any, error) {
	key, err := ops.String(args, "key")
	if err != nil {
		return nil, err
	}
	value, err := b.store.Get(key)
	if err != nil {
		return nil, ops.BadArgs("%s", err.Error())
	}
	return map[string]any{"key": key, "value": value}, nil
}

func (b *Bridge) opConfigSet(ctx context.Context, args map[string]any) (any, error) {
	key, err := ops.String(args, "key")
	if err != nil {
		return nil, err
	}
	value, present := args["value"]
	if !present {
		return nil, ops.BadArgs("missing arg: value")
	}
	stored, err := b.store.Set(key, value)
	if err != nil {
		return nil, ops.BadArgs("%s", err.Error())
	}
	b.appliers.Apply(b.store.Snapshot())
	return map[string]any{"set": key, "value": stored}, nil
}

func (b *Bridge) opUpscalerEnable(ctx context.Context, args map[string]any) (any, error) {
	enabled, err := ops.Bool(args, "enabled")
	if err != nil {
		return nil, err
	}
	b.store.SetUpscalerEnabled(enabled)
	b.appliers.Apply(b.store.Snapshot())
	return map[string]any{"result": enabled}, nil
}

func (b *Bridge) opTrafficMul(ctx context.Context, args map[string]any) (any, error) {
	mult, err := ops.Float(args, "mult")
	if err != nil {
		return nil, err
	}
	stored := b.store.SetTrafficBoost(mult)
	b.appliers.Apply(b.store.Snapshot())
	return map[string]any{"result": stored}, nil
}
