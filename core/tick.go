package core

// TickHandler is invoked once per compare-match event
type TickHandler func()

// TickScheduler is the single-shot event source the pulse engine runs on.
// Implementations convert microseconds to ticks with TicksFromUS and arm
// delays longer than MaxTimerSpan as a chain of spans, running the handler
// only when the last one fires.
type TickScheduler interface {
	// SetHandler installs the callback run for each event
	SetHandler(h TickHandler)

	// Start enables event delivery
	Start()

	// Stop disables event delivery and cancels any armed event
	Stop()

	// ScheduleNext arms exactly one event no earlier than delayUS from now.
	// Called from inside the handler, "now" is the deadline that just fired.
	ScheduleNext(delayUS uint32)
}

// SoftTicker implements TickScheduler on top of the soft timer list.
// Events are delivered from ProcessTimers, so it runs anywhere the main
// loop (or a test) advances the clock.
type SoftTicker struct {
	timer       Timer
	handler     TickHandler
	pending     uint64 // Ticks left to wait after the armed span
	running     bool
	firing      bool
	rescheduled bool
}

// NewSoftTicker creates a stopped soft ticker
func NewSoftTicker() *SoftTicker {
	s := &SoftTicker{}
	s.timer.Handler = s.fire
	return s
}

// SetHandler installs the event callback
func (s *SoftTicker) SetHandler(h TickHandler) {
	s.handler = h
}

// Start enables event delivery
func (s *SoftTicker) Start() {
	s.running = true
}

// Stop disables event delivery and removes the armed timer
func (s *SoftTicker) Stop() {
	s.running = false
	s.rescheduled = false
	s.pending = 0
	CancelTimer(&s.timer)
}

// Running reports whether the ticker is enabled
func (s *SoftTicker) Running() bool {
	return s.running
}

// Deadline returns the tick at which the armed event fires
func (s *SoftTicker) Deadline() uint32 {
	return s.timer.WakeTime
}

// ScheduleNext arms the next event delayUS microseconds out
func (s *SoftTicker) ScheduleNext(delayUS uint32) {
	if !s.running {
		return
	}
	s.pending = TicksFromUS(delayUS)
	ticks := NextSpan(&s.pending)
	if s.firing {
		// Measured from the deadline that fired; handed back to
		// TimerDispatch through SF_RESCHEDULE
		s.timer.WakeTime += ticks
		s.rescheduled = true
		return
	}
	s.timer.WakeTime = GetTime() + ticks
	ScheduleTimer(&s.timer)
}

// fire is the soft timer handler
func (s *SoftTicker) fire(t *Timer) uint8 {
	if !s.running || s.handler == nil {
		return SF_DONE
	}
	if s.pending > 0 {
		// Intermediate span of a long delay
		s.timer.WakeTime += NextSpan(&s.pending)
		return SF_RESCHEDULE
	}
	s.firing = true
	s.rescheduled = false
	s.handler()
	s.firing = false

	if s.rescheduled && s.running {
		s.rescheduled = false
		return SF_RESCHEDULE
	}
	return SF_DONE
}
