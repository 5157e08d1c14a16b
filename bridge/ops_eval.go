package bridge

import (
	"context"
	"encoding/json"

	"github.com/OliviaAI-TGDK/MirrorBlade/internal/curves"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/jitter"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/ops"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/telemetry"
	"github.com/OliviaAI-TGDK/MirrorBlade/internal/volphi"
)

// --- curves ---------------------------------------------------------------

func (b *Bridge) opLissajous(ctx context.Context, args map[string]any) (any, error) {
	t, err := ops.Float(args, "t")
	if err != nil {
		return nil, err
	}
	ax, err := ops.FloatOr(args, "ax", 1)
	if err != nil {
		return nil, err
	}
	ay, err := ops.FloatOr(args, "ay", 1)
	if err != nil {
		return nil, err
	}
	nx, err := ops.FloatOr(args, "nx", 1)
	if err != nil {
		return nil, err
	}
	ny, err := ops.FloatOr(args, "ny", 2)
	if err != nil {
		return nil, err
	}
	phase, err := ops.FloatOr(args, "phase", 0)
	if err != nil {
		return nil, err
	}
	p := curves.Lissajous(t, ax, ay, nx, ny, phase)
	return map[string]any{"x": p.X, "y": p.Y}, nil
}

func (b *Bridge) opBernoulli(ctx context.Context, args map[string]any) (any, error) {
	t, err := ops.Float(args, "t")
	if err != nil {
		return nil, err
	}
	a, err := ops.FloatOr(args, "a", 1)
	if err != nil {
		return nil, err
	}
	p := curves.Bernoulli(t, a)
	return map[string]any{"x": p.X, "y": p.Y}, nil
}

// --- scooty ---------------------------------------------------------------

func (b *Bridge) opScootyBump(ctx context.Context, args map[string]any) (any, error) {
	v, err := ops.Float(args, "v")
	if err != nil {
		return nil, err
	}
	b.scooty.Bump(v)
	return map[string]any{"ok": true, "count": b.scooty.Len()}, nil
}

func (b *Bridge) opScootySamples(ctx context.Context, args map[string]any) (any, error) {
	n, err := ops.IntOr(args, "n", 0)
	if err != nil {
		return nil, err
	}
	return b.scooty.FramedText(n), nil
}

func (b *Bridge) opScootySnapshot(ctx context.Context, args map[string]any) (any, error) {
	return b.scooty.Snapshot(), nil
}

// --- telemetry ------------------------------------------------------------

func (b *Bridge) opTelemPush(ctx context.Context, args map[string]any) (any, error) {
	name, err := ops.String(args, "name")
	if err != nil {
		return nil, err
	}
	a, err := ops.FloatOr(args, "a", 0)
	if err != nil {
		return nil, err
	}
	bb, err := ops.FloatOr(args, "b", 0)
	if err != nil {
		return nil, err
	}
	c, err := ops.FloatOr(args, "c", 0)
	if err != nil {
		return nil, err
	}
	tag, err := ops.StringOr(args, "tag", "")
	if err != nil {
		return nil, err
	}
	b.ring.Push(telemetry.Event{Name: name, A: a, B: bb, C: c, Tag: tag})
	return map[string]any{"ok": true}, nil
}

func (b *Bridge) opTelemSnapshot(ctx context.Context, args map[string]any) (any, error) {
	max, err := ops.IntOr(args, "max", 0)
	if err != nil {
		return nil, err
	}
	return map[string]any{"events": b.ring.Snapshot(max)}, nil
}

func (b *Bridge) opTelemTable(ctx context.Context, args map[string]any) (any, error) {
	max, err := ops.IntOr(args, "max", 0)
	if err != nil {
		return nil, err
	}
	title, err := ops.StringOr(args, "title", "")
	if err != nil {
		return nil, err
	}
	return b.ring.Table(max, title), nil
}

// --- compound loader ------------------------------------------------------

func envFromArgs(args map[string]any) (map[string]float64, error) {
	raw, ok := args["env"]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ops.BadArgs("arg env must be an object of numbers")
	}
	env := make(map[string]float64, len(obj))
	for k, v := range obj {
		n, ok := v.(float64)
		if !ok {
			return nil, ops.BadArgs("env entry %q must be a number", k)
		}
		env[k] = n
	}
	return env, nil
}

func (b *Bridge) opLoaderLoad(ctx context.Context, args map[string]any) (any, error) {
	cfg, err := ops.Object(args, "config")
	if err != nil {
		return nil, err
	}
	env, err := envFromArgs(args)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	if err := b.compound.LoadJSON(data, env); err != nil {
		return nil, err
	}
	return map[string]any{"loaded": len(b.compound.Snapshot())}, nil
}

func (b *Bridge) opLoaderLoadFile(ctx context.Context, args map[string]any) (any, error) {
	path, err := ops.String(args, "path")
	if err != nil {
		return nil, err
	}
	env, err := envFromArgs(args)
	if err != nil {
		return nil, err
	}
	if err := b.compound.LoadFile(path, env); err != nil {
		return nil, err
	}
	return map[string]any{"loaded": len(b.compound.Snapshot())}, nil
}

func (b *Bridge) opLoaderSnapshot(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{"entities": b.compound.Snapshot()}, nil
}

func (b *Bridge) opCompoundGet(ctx context.Context, args map[string]any) (any, error) {
	name, err := ops.String(args, "name")
	if err != nil {
		return nil, err
	}
	v, ok := b.compound.Get(name)
	if !ok {
		return nil, ops.BadArgs("unknown compound entity %q", name)
	}
	return map[string]any{"result": v}, nil
}

// --- impound --------------------------------------------------------------

func (b *Bridge) opImpoundCheck(ctx context.Context, args map[string]any) (any, error) {
	name, err := ops.String(args, "name")
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": b.impound.IsImpounded(name)}, nil
}

func (b *Bridge) opImpoundAdd(ctx context.Context, args map[string]any) (any, error) {
	name, err := ops.String(args, "name")
	if err != nil {
		return nil, err
	}
	b.impound.AddLiteral(name)
	return map[string]any{"ok": true}, nil
}

func (b *Bridge) opImpoundAddRule(ctx context.Context, args map[string]any) (any, error) {
	pattern, err := ops.String(args, "pattern")
	if err != nil {
		return nil, err
	}
	if err := b.impound.AddRule(pattern); err != nil {
		return nil, ops.BadArgs("%s", err.Error())
	}
	return map[string]any{"ok": true}, nil
}

func (b *Bridge) opImpoundRemove(ctx context.Context, args map[string]any) (any, error) {
	name, err := ops.String(args, "name")
	if err != nil {
		return nil, err
	}
	b.impound.Remove(name)
	return map[string]any{"ok": true}, nil
}

func (b *Bridge) opImpoundSnapshot(ctx context.Context, args map[string]any) (any, error) {
	literals, rules := b.impound.Snapshot()
	return map[string]any{"items": literals, "rules": rules}, nil
}

// --- volumetric phi -------------------------------------------------------

func volphiParamsFromArgs(base volphi.Params, args map[string]any) (volphi.Params, error) {
	p := base
	var err error
	if _, ok := args["enabled"]; ok {
		if p.Enabled, err = ops.Bool(args, "enabled"); err != nil {
			return p, err
		}
	}
	if p.DistanceMul, err = ops.FloatOr(args, "distance_mul", p.DistanceMul); err != nil {
		return p, err
	}
	if p.DensityMul, err = ops.FloatOr(args, "density_mul", p.DensityMul); err != nil {
		return p, err
	}
	if p.HorizonFade, err = ops.FloatOr(args, "horizon_fade", p.HorizonFade); err != nil {
		return p, err
	}
	if p.JitterStrength, err = ops.FloatOr(args, "jitter_strength", p.JitterStrength); err != nil {
		return p, err
	}
	if p.TemporalBlend, err = ops.FloatOr(args, "temporal_blend", p.TemporalBlend); err != nil {
		return p, err
	}
	return p, nil
}

func (b *Bridge) opVolphiGet(ctx context.Context, args map[string]any) (any, error) {
	return b.volphi.Params(), nil
}

func (b *Bridge) opVolphiSet(ctx context.Context, args map[string]any) (any, error) {
	p, err := volphiParamsFromArgs(b.volphi.Params(), args)
	if err != nil {
		return nil, err
	}
	b.volphi.Configure(p)
	return b.volphi.Apply(), nil
}

func (b *Bridge) opVolphiStage(ctx context.Context, args map[string]any) (any, error) {
	p, err := volphiParamsFromArgs(b.volphi.Staged(), args)
	if err != nil {
		return nil, err
	}
	b.volphi.Configure(p)
	return b.volphi.Staged(), nil
}

func (b *Bridge) opVolphiApply(ctx context.Context, args map[string]any) (any, error) {
	return b.volphi.Apply(), nil
}

// --- folding field --------------------------------------------------------

func (b *Bridge) opFoldConfigure(ctx context.Context, args map[string]any) (any, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	if err := b.field.ConfigureJSON(data); err != nil {
		return nil, ops.BadArgs("%s", err.Error())
	}
	return map[string]any{"creases": len(b.field.Snapshot())}, nil
}

func (b *Bridge) opFoldEvaluate(ctx context.Context, args map[string]any) (any, error) {
	if raw, ok := args["xs"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, ops.BadArgs("arg xs must be an array of numbers")
		}
		xs := make([]float64, len(list))
		for i, v := range list {
			n, ok := v.(float64)
			if !ok {
				return nil, ops.BadArgs("xs[%d] must be a number", i)
			}
			xs[i] = n
		}
		return map[string]any{"ys": b.field.EvaluateMany(xs)}, nil
	}
	x, err := ops.Float(args, "x")
	if err != nil {
		return nil, err
	}
	return map[string]any{"y": b.field.Evaluate(x)}, nil
}

func (b *Bridge) opFoldDerivative(ctx context.Context, args map[string]any) (any, error) {
	x, err := ops.Float(args, "x")
	if err != nil {
		return nil, err
	}
	return map[string]any{"dydx": b.field.Derivative(x)}, nil
}

func (b *Bridge) opFoldSnapshot(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{"creases": b.field.Snapshot()}, nil
}

// --- recovery smoother ----------------------------------------------------

func (b *Bridge) opSmoothStep(ctx context.Context, args map[string]any) (any, error) {
	dt, err := ops.Float(args, "dt")
	if err != nil {
		return nil, err
	}
	x, err := ops.Float(args, "x")
	if err != nil {
		return nil, err
	}
	return map[string]any{"y": b.smoother.Step(dt, x)}, nil
}

func (b *Bridge) opSmoothPeek(ctx context.Context, args map[string]any) (any, error) {
	dt, err := ops.Float(args, "dt")
	if err != nil {
		return nil, err
	}
	x, err := ops.Float(args, "x")
	if err != nil {
		return nil, err
	}
	return map[string]any{"y": b.smoother.PeekNext(dt, x)}, nil
}

func (b *Bridge) opSmoothConfigure(ctx context.Context, args map[string]any) (any, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	p := b.smoother.Params()
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, ops.BadArgs("bad smoother params: %s", err.Error())
	}
	b.smoother.Configure(p)
	return b.smoother.Params(), nil
}

func (b *Bridge) opSmoothReset(ctx context.Context, args map[string]any) (any, error) {
	b.smoother.Reset()
	return map[string]any{"ok": true}, nil
}

// --- volumetric jitter ----------------------------------------------------

func (b *Bridge) opJitterAdvance(ctx context.Context, args map[string]any) (any, error) {
	dt, err := ops.FloatOr(args, "dt", 0)
	if err != nil {
		return nil, err
	}
	b.jitter.Advance(dt)
	x, y := b.jitter.Current()
	return map[string]any{"index": b.jitter.Index(), "x": x, "y": y}, nil
}

func (b *Bridge) opJitterCurrent(ctx context.Context, args map[string]any) (any, error) {
	x, y := b.jitter.Current()
	return map[string]any{"index": b.jitter.Index(), "x": x, "y": y}, nil
}

func (b *Bridge) opJitterConfigure(ctx context.Context, args map[string]any) (any, error) {
	p := b.jitter.Params()
	var err error
	if _, ok := args["enabled"]; ok {
		if p.Enabled, err = ops.Bool(args, "enabled"); err != nil {
			return nil, err
		}
	}
	if p.Strength, err = ops.FloatOr(args, "strength", p.Strength); err != nil {
		return nil, err
	}
	b.jitter.Configure(jitter.Params{Enabled: p.Enabled, Strength: p.Strength})
	return b.jitter.Params(), nil
}

// --- feature guards -------------------------------------------------------

func (b *Bridge) opFeatureEnable(ctx context.Context, args map[string]any) (any, error) {
	name, err := ops.String(args, "name")
	if err != nil {
		return nil, err
	}
	enabled, err := ops.Bool(args, "enabled")
	if err != nil {
		return nil, err
	}
	b.guards.SetEnabled(name, enabled)
	return map[string]any{"name": name, "enabled": enabled}, nil
}

func (b *Bridge) opFeatureSnapshot(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{"features": b.guards.Snapshot()}, nil
}
