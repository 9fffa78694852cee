package pulse

import "pulsetrain/core"

// Step is the outcome of one state machine transition
type Step struct {
	DelayUS   uint32      // Time until the next transition
	Levels    core.Levels // Output levels to drive now
	TrainDone bool        // A train completed on this transition
	Done      bool        // The run is over; nothing more to schedule
}

// Run is the state of one playback, captured at Begin.
// It is owned by the tick handler while a run is active.
type Run struct {
	Phase             Phase
	PulsesRemaining   uint32 // Pulses left in this train, including the active one
	WindowRemainingUS uint32 // Unscheduled time left in the active pulse window
	TrainsRemaining   uint32 // 0 means unbounded and is never decremented
	TrainsCompleted   uint32

	Config   Config
	Segments Segments
}

// Begin resets the run and enters the first pulse of the first train
func (r *Run) Begin(cfg Config, seg Segments) Step {
	r.Config = cfg
	r.Segments = seg
	r.TrainsCompleted = 0
	r.TrainsRemaining = cfg.Trains
	return r.beginTrain()
}

// Reset returns the run to Idle without touching the completed counter
func (r *Run) Reset() {
	r.Phase = Idle
	r.PulsesRemaining = 0
	r.WindowRemainingUS = 0
}

// Advance performs exactly one phase transition
func (r *Run) Advance() Step {
	switch r.Phase {
	case CarrierHigh:
		if r.WindowRemainingUS == 0 {
			return r.endWindow()
		}
		if r.Segments.Low > 0 {
			r.Phase = CarrierLow
			return r.segment(r.Segments.Low)
		}
		// 100% duty: stay high
		return r.segment(r.Segments.High)

	case CarrierLow:
		if r.WindowRemainingUS == 0 {
			return r.endWindow()
		}
		if r.Segments.High > 0 {
			r.Phase = CarrierHigh
			return r.segment(r.Segments.High)
		}
		// 0% duty: stay low
		return r.segment(r.Segments.Low)

	case BetweenPulses:
		return r.beginPulse()

	case BetweenTrains:
		return r.beginTrain()
	}

	return Step{Levels: core.AllLow, Done: true}
}

// Levels projects the phase onto the three output lines
func (r *Run) Levels() core.Levels {
	return core.Levels{
		Carrier: r.Phase == CarrierHigh,
		Window:  r.Phase.InWindow(),
		Train:   r.Phase.InTrain(),
	}
}

func (r *Run) beginTrain() Step {
	r.PulsesRemaining = r.Config.PulsesPerTrain
	if r.PulsesRemaining == 0 {
		r.PulsesRemaining = 1
	}
	return r.beginPulse()
}

func (r *Run) beginPulse() Step {
	r.WindowRemainingUS = r.Config.PulseUS
	if r.Segments.High == 0 {
		r.Phase = CarrierLow
		return r.segment(r.Segments.Low)
	}
	r.Phase = CarrierHigh
	return r.segment(r.Segments.High)
}

// segment schedules one carrier segment, truncated at the window boundary.
// The window is charged the scheduled length, so rounding inside the
// carrier never changes the total window duration.
func (r *Run) segment(length uint32) Step {
	if length == 0 {
		length = 1
	}
	if length > r.WindowRemainingUS {
		length = r.WindowRemainingUS
	}
	r.WindowRemainingUS -= length
	return Step{DelayUS: length, Levels: r.Levels()}
}

// endWindow closes the active pulse window. Closing the last window of a
// train completes the train here, so trains are separated by the ITI alone.
func (r *Run) endWindow() Step {
	if r.PulsesRemaining > 0 {
		r.PulsesRemaining--
	}
	if r.PulsesRemaining > 0 {
		r.Phase = BetweenPulses
		return Step{DelayUS: r.Config.IPIUS, Levels: r.Levels()}
	}

	r.TrainsCompleted++
	if r.TrainsRemaining > 0 {
		r.TrainsRemaining--
		if r.TrainsRemaining == 0 {
			r.Reset()
			return Step{Levels: core.AllLow, TrainDone: true, Done: true}
		}
	}

	r.Phase = BetweenTrains
	return Step{DelayUS: r.Config.ITIUS, Levels: r.Levels(), TrainDone: true}
}
