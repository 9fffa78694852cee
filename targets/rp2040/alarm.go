//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"

	"pulsetrain/core"
)

// The TinyGo runtime sleeps on ALARM0; the pulse engine owns ALARM1
const (
	alarmMask = 1 << 1

	// minLead is the shortest distance ahead of the counter an alarm is
	// armed at. The alarm matches on equality, so a target the counter has
	// already passed would not fire for another 2^32 us.
	minLead = 2
)

// AlarmTicker implements core.TickScheduler on TIMER ALARM1.
// Deadlines chain from the previous deadline, not from when the handler
// ran, so interrupt latency does not accumulate.
type AlarmTicker struct {
	handler  core.TickHandler
	deadline uint32
	pending  uint64 // Ticks left to wait after the armed span
	running  bool
	firing   bool
}

var alarm *AlarmTicker

// NewAlarmTicker installs the ALARM1 interrupt. Only one may exist.
func NewAlarmTicker() *AlarmTicker {
	if alarm != nil {
		return alarm
	}
	alarm = &AlarmTicker{}

	rp.TIMER.ARMED.Set(alarmMask)
	rp.TIMER.INTR.Set(alarmMask)

	intr := interrupt.New(rp.IRQ_TIMER_IRQ_1, alarmISR)
	intr.SetPriority(0x00)
	intr.Enable()
	return alarm
}

// SetHandler installs the event callback
func (a *AlarmTicker) SetHandler(h core.TickHandler) {
	a.handler = h
}

// Start enables the alarm interrupt
func (a *AlarmTicker) Start() {
	a.running = true
	rp.TIMER.INTE.SetBits(alarmMask)
}

// Stop disarms the alarm and masks its interrupt
func (a *AlarmTicker) Stop() {
	a.running = false
	a.pending = 0
	rp.TIMER.INTE.ClearBits(alarmMask)
	rp.TIMER.ARMED.Set(alarmMask) // write 1 to disarm
	rp.TIMER.INTR.Set(alarmMask)  // drop a latched match
}

// ScheduleNext arms ALARM1 delayUS microseconds after the last deadline
// when called from the handler, or after now otherwise
func (a *AlarmTicker) ScheduleNext(delayUS uint32) {
	if !a.running {
		return
	}

	a.pending = core.TicksFromUS(delayUS)
	ticks := core.NextSpan(&a.pending)
	now := rp.TIMER.TIMERAWL.Get()
	if a.firing {
		a.deadline += ticks
	} else {
		a.deadline = now + ticks
	}
	a.arm(now)
}

// arm loads the current deadline into ALARM1
func (a *AlarmTicker) arm(now uint32) {
	target := a.deadline
	if core.TimerBefore(target, now+minLead) {
		// Behind schedule: fire as soon as possible and keep the chain
		target = now + minLead
	}
	rp.TIMER.ALARM1.Set(target)
}

func (a *AlarmTicker) fire() {
	if !a.running || a.handler == nil {
		return
	}
	if a.pending > 0 {
		// Intermediate span of a long delay
		a.deadline += core.NextSpan(&a.pending)
		a.arm(rp.TIMER.TIMERAWL.Get())
		return
	}
	a.firing = true
	a.handler()
	a.firing = false
}

// alarmISR runs in interrupt context
func alarmISR(interrupt.Interrupt) {
	rp.TIMER.INTR.Set(alarmMask)
	UpdateSystemTime()
	alarm.fire()
}
