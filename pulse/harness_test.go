package pulse

import (
	"testing"

	"pulsetrain/core"
)

// edge is one output change observed by recordingBank
type edge struct {
	at     uint32
	levels core.Levels
}

// recordingBank is an OutputBank that records every change with the
// virtual clock time it was applied at
type recordingBank struct {
	edges []edge
	last  core.Levels
}

func (b *recordingBank) Configure() error { return nil }

func (b *recordingBank) Apply(l core.Levels) {
	if len(b.edges) > 0 && l == b.last {
		return
	}
	b.edges = append(b.edges, edge{at: core.GetTime(), levels: l})
	b.last = l
}

// rises returns the times a line went high
func (b *recordingBank) rises(line func(core.Levels) bool) []uint32 {
	var out []uint32
	prev := false
	for _, e := range b.edges {
		cur := line(e.levels)
		if cur && !prev {
			out = append(out, e.at)
		}
		prev = cur
	}
	return out
}

// falls returns the times a line went low
func (b *recordingBank) falls(line func(core.Levels) bool) []uint32 {
	var out []uint32
	prev := false
	for _, e := range b.edges {
		cur := line(e.levels)
		if !cur && prev {
			out = append(out, e.at)
		}
		prev = cur
	}
	return out
}

func carrierLine(l core.Levels) bool { return l.Carrier }
func windowLine(l core.Levels) bool  { return l.Window }
func trainLine(l core.Levels) bool   { return l.Train }

// newTestDevice builds a device on a 1MHz virtual clock so ticks equal
// microseconds
func newTestDevice(t *testing.T) (*Device, *recordingBank) {
	t.Helper()
	core.ResetTimers()
	core.SetTimerFreq(1000000)
	core.SetTime(0)
	t.Cleanup(func() {
		core.ResetTimers()
		core.SetTimerFreq(core.DefaultTimerFreq)
	})

	bank := &recordingBank{}
	return NewDevice(core.NewSoftTicker(), bank), bank
}

// runUntil delivers every event due at or before the given time
func runUntil(until uint32) {
	for {
		wake, ok := core.NextWakeTime()
		if !ok || core.TimerBefore(until, wake) {
			break
		}
		core.SetTime(wake)
		core.ProcessTimers()
	}
	core.SetTime(until)
}

// runToIdle delivers events until nothing is scheduled, with a safety limit
func runToIdle(t *testing.T, limit int) {
	t.Helper()
	for i := 0; i < limit; i++ {
		wake, ok := core.NextWakeTime()
		if !ok {
			return
		}
		core.SetTime(wake)
		core.ProcessTimers()
	}
	t.Fatalf("run did not reach idle within %d events", limit)
}

func equalTimes(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
