package bridge

// RegisterAll installs the full operation surface on the bridge registry.
// Called once from New; tests may construct a registry with only the ops
// under test by registering handlers directly.
func (b *Bridge) RegisterAll() {
	// Core.
	b.registry.Register("ping", b.opPing)
	b.registry.Register("diag.dump", b.opDiagDump)
	b.registry.Register("diag.selftest", b.opDiagSelftest)
	b.registry.Register("ops.capabilities", b.opCapabilities)
	b.registry.Register("pool.stats", b.opPoolStats)
	b.registry.Register("pool.flush", b.opPoolFlush)

	// Config lifecycle.
	b.registry.Register("config.reload", b.opConfigReload)
	b.registry.Register("config.save", b.opConfigSave)
	b.registry.Register("config.get", b.opConfigGet)
	b.registry.Register("config.set", b.opConfigSet)
	b.registry.Register("upscaler.enable", b.opUpscalerEnable)
	b.registry.Register("traffic.mul", b.opTrafficMul)

	// Curves.
	b.registry.Register("figure8.evalLissajous12", b.opLissajous)
	b.registry.Register("figure8.evalBernoulli", b.opBernoulli)

	// Scooty sample ring.
	b.registry.Register("scooty.bump", b.opScootyBump)
	b.registry.Register("scooty.samples", b.opScootySamples)
	b.registry.Register("scooty.snapshot", b.opScootySnapshot)

	// Telemetry ring.
	b.registry.Register("telem.push", b.opTelemPush)
	b.registry.Register("telem.snapshot", b.opTelemSnapshot)
	b.registry.Register("telem.table", b.opTelemTable)

	// Compound loader.
	b.registry.Register("loader.load", b.opLoaderLoad)
	b.registry.Register("loader.loadFile", b.opLoaderLoadFile)
	b.registry.Register("loader.snapshot", b.opLoaderSnapshot)
	b.registry.Register("compound.get", b.opCompoundGet)

	// Impound.
	b.registry.Register("impound.check", b.opImpoundCheck)
	b.registry.Register("impound.add", b.opImpoundAdd)
	b.registry.Register("impound.addRule", b.opImpoundAddRule)
	b.registry.Register("impound.remove", b.opImpoundRemove)
	b.registry.Register("impound.snapshot", b.opImpoundSnapshot)

	// Volumetric phi.
	b.registry.Register("volphi.get", b.opVolphiGet)
	b.registry.Register("volphi.set", b.opVolphiSet)
	b.registry.Register("volphi.stage", b.opVolphiStage)
	b.registry.Register("volphi.apply", b.opVolphiApply)

	// Folding field.
	b.registry.Register("fold.configure", b.opFoldConfigure)
	b.registry.Register("fold.evaluate", b.opFoldEvaluate)
	b.registry.Register("fold.derivative", b.opFoldDerivative)
	b.registry.Register("fold.snapshot", b.opFoldSnapshot)

	// Recovery smoother.
	b.registry.Register("smooth.step", b.opSmoothStep)
	b.registry.Register("smooth.peek", b.opSmoothPeek)
	b.registry.Register("smooth.configure", b.opSmoothConfigure)
	b.registry.Register("smooth.reset", b.opSmoothReset)

	// Volumetric jitter.
	b.registry.Register("jitter.advance", b.opJitterAdvance)
	b.registry.Register("jitter.current", b.opJitterCurrent)
	b.registry.Register("jitter.configure", b.opJitterConfigure)

	// Feature guards.
	b.registry.Register("feature.enable", b.opFeatureEnable)
	b.registry.Register("feature.snapshot", b.opFeatureSnapshot)

	// Structured-echo stubs for host-side control surfaces.
	b.registry.Register("traffic.setDensity", b.opStubTrafficDensity)
	b.registry.Register("vehicle.spawn", b.opStubVehicleSpawn)
	b.registry.Register("vehicle.despawn", b.opStubVehicleDespawn)
	b.registry.Register("npc.setAggression", b.opStubNPCAggression)
	b.registry.Register("world.setWeather", b.opStubWorldWeather)
	b.registry.Register("world.setTimeScale", b.opStubWorldTimeScale)
	b.registry.Register("ui.notify", b.opStubUINotify)
	b.registry.Register("time.skip", b.opStubTimeSkip)
}
