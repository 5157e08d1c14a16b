package bridge

// Structured-echo stubs: host-side control surfaces that validate their
// inputs and return the normalized request. Whether a host wires them to a
// real sink is host-specific; the bridge only guarantees the contract.

import (
	"context"

	"github.com/OliviaAI-TGDK/MirrorBlade/internal/ops"
)

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func echo(action string, fields map[string]any) map[string]any {
	return map[string]any{"ok": true, "action": action, "echo": fields}
}

func (b *Bridge) opStubTrafficDensity(ctx context.Context, args map[string]any) (any, error) {
	density, err := ops.Float(args, "density")
	if err != nil {
		return nil, err
	}
	return echo("traffic.setDensity", map[string]any{"density": clampf(density, 0, 10)}), nil
}

func (b *Bridge) opStubVehicleSpawn(ctx context.Context, args map[string]any) (any, error) {
	record, err := ops.String(args, "record")
	if err != nil {
		return nil, err
	}
	if record == "" {
		return nil, ops.BadArgs("record must be non-empty")
	}
	count, err := ops.IntOr(args, "count", 1)
	if err != nil {
		return nil, err
	}
	if count < 1 || count > 64 {
		return nil, ops.BadArgs("count must be in [1, 64]")
	}
	if b.impound.IsImpounded(record) {
		return map[string]any{"ok": false, "error": map[string]any{"code": ops.CodeBadArgs, "msg": "record is impounded: " + record}}, nil
	}
	return echo("vehicle.spawn", map[string]any{"record": record, "count": count}), nil
}

func (b *Bridge) opStubVehicleDespawn(ctx context.Context, args map[string]any) (any, error) {
	id, err := ops.String(args, "id")
	if err != nil {
		return nil, err
	}
	return echo("vehicle.despawn", map[string]any{"id": id}), nil
}

func (b *Bridge) opStubNPCAggression(ctx context.Context, args map[string]any) (any, error) {
	level, err := ops.Float(args, "level")
	if err != nil {
		return nil, err
	}
	return echo("npc.setAggression", map[string]any{"level": clampf(level, 0, 1)}), nil
}

func (b *Bridge) opStubWorldWeather(ctx context.Context, args map[string]any) (any, error) {
	preset, err := ops.String(args, "preset")
	if err != nil {
		return nil, err
	}
	if preset == "" {
		return nil, ops.BadArgs("preset must be non-empty")
	}
	return echo("world.setWeather", map[string]any{"preset": preset}), nil
}

func (b *Bridge) opStubWorldTimeScale(ctx context.Context, args map[string]any) (any, error) {
	scale, err := ops.Float(args, "scale")
	if err != nil {
		return nil, err
	}
	return echo("world.setTimeScale", map[string]any{"scale": clampf(scale, 0.01, 100)}), nil
}

func (b *Bridge) opStubUINotify(ctx context.Context, args map[string]any) (any, error) {
	message, err := ops.String(args, "message")
	if err != nil {
		return nil, err
	}
	if message == "" {
		return nil, ops.BadArgs("message must be non-empty")
	}
	duration, err := ops.FloatOr(args, "duration", 3)
	if err != nil {
		return nil, err
	}
	return echo("ui.notify", map[string]any{"message": message, "duration": clampf(duration, 0.1, 60)}), nil
}

func (b *Bridge) opStubTimeSkip(ctx context.Context, args map[string]any) (any, error) {
	hours, err := ops.Float(args, "hours")
	if err != nil {
		return nil, err
	}
	if hours <= 0 || hours > 24 {
		return nil, ops.BadArgs("hours must be in (0, 24]")
	}
	return echo("time.skip", map[string]any{"hours": hours}), nil
}
