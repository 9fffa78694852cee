package pulse

import "pulsetrain/core"

// Device owns the configuration and run state of one pulse generator.
// Command context calls Configure/Start/Stop; the tick scheduler calls tick
// from interrupt context. Shared fields are touched from command context
// only with interrupts disabled.
type Device struct {
	ticker  core.TickScheduler
	outputs core.OutputBank

	cfg      Config
	segments Segments

	run     Run
	running bool
}

// NewDevice creates an idle device with the default configuration
func NewDevice(ticker core.TickScheduler, outputs core.OutputBank) *Device {
	d := &Device{
		ticker:  ticker,
		outputs: outputs,
	}
	d.cfg = DefaultConfig()
	d.segments = Resolve(d.cfg.CarrierPeriodUS, d.cfg.DutyPercent)
	ticker.SetHandler(d.tick)
	return d
}

// Configure clamps cfg and stores it together with its duty segments.
// It takes effect on the next Start; a run in progress is unaffected.
// The resolved configuration is returned.
func (d *Device) Configure(cfg Config) Config {
	cfg.Normalize()
	seg := Resolve(cfg.CarrierPeriodUS, cfg.DutyPercent)

	state := core.DisableInterrupts()
	d.cfg = cfg
	d.segments = seg
	core.RestoreInterrupts(state)

	core.RecordTiming(core.EvtConfigure, uint8(Idle), core.GetTime(), cfg.PulseUS, cfg.DutyPercent)
	core.DebugAsync("[PULSE] config pulse=" + core.Utoa(cfg.PulseUS) +
		" high=" + core.Utoa(seg.High) +
		" low=" + core.Utoa(seg.Low))
	return cfg
}

// Config returns the configuration the next Start will use
func (d *Device) Config() Config {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return d.cfg
}

// Segments returns the duty segments the next Start will use
func (d *Device) Segments() Segments {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return d.segments
}

// Start begins a new run. A run already in progress is stopped first.
func (d *Device) Start() {
	state := core.DisableInterrupts()
	if d.running {
		d.halt()
	}
	step := d.run.Begin(d.cfg, d.segments)
	d.running = true
	d.outputs.Apply(step.Levels)
	d.ticker.Start()
	d.ticker.ScheduleNext(step.DelayUS)
	cfg := d.run.Config
	phase := d.run.Phase
	core.RestoreInterrupts(state)

	core.RecordTiming(core.EvtStart, uint8(phase), core.GetTime(), cfg.PulsesPerTrain, cfg.Trains)
	core.DebugAsync("[PULSE] start n=" + core.Utoa(cfg.PulsesPerTrain) +
		" trains=" + core.Utoa(cfg.Trains))
}

// Stop forces Idle with all outputs low. Safe to call in any state.
func (d *Device) Stop() {
	state := core.DisableInterrupts()
	wasRunning := d.running
	d.halt()
	completed := d.run.TrainsCompleted
	core.RestoreInterrupts(state)

	if wasRunning {
		core.RecordTiming(core.EvtStop, uint8(Idle), core.GetTime(), completed, 0)
		core.DebugAsync("[PULSE] stop trains=" + core.Utoa(completed))
	}
}

// CompletedTrains returns the trains finished since the last Start
func (d *Device) CompletedTrains() uint32 {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return d.run.TrainsCompleted
}

// Phase returns the current state machine phase
func (d *Device) Phase() Phase {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return d.run.Phase
}

// Status is a consistent snapshot of the run state
type Status struct {
	Phase           Phase
	Running         bool
	CompletedTrains uint32
}

// Status returns phase, running flag and completed count taken together
func (d *Device) Status() Status {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return Status{
		Phase:           d.run.Phase,
		Running:         d.running,
		CompletedTrains: d.run.TrainsCompleted,
	}
}

// Running reports whether a run is in progress
func (d *Device) Running() bool {
	state := core.DisableInterrupts()
	defer core.RestoreInterrupts(state)
	return d.running
}

// halt must be called with interrupts disabled
func (d *Device) halt() {
	d.running = false
	d.ticker.Stop()
	d.run.Reset()
	d.outputs.Apply(core.AllLow)
}

// tick is the compare-match handler. It runs one transition and never
// blocks or allocates.
func (d *Device) tick() {
	if !d.running {
		return
	}

	step := d.run.Advance()
	d.outputs.Apply(step.Levels)

	if step.TrainDone {
		core.RecordTiming(core.EvtTrainDone, uint8(d.run.Phase), core.GetTime(),
			d.run.TrainsCompleted, d.run.TrainsRemaining)
	}
	if step.Done {
		d.running = false
		d.ticker.Stop()
		core.RecordTiming(core.EvtIdle, uint8(Idle), core.GetTime(), d.run.TrainsCompleted, 0)
		return
	}

	core.RecordTiming(core.EvtSchedule, uint8(d.run.Phase), core.GetTime(), step.DelayUS, d.run.WindowRemainingUS)
	d.ticker.ScheduleNext(step.DelayUS)
}
