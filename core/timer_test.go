package core

import "testing"

func TestTimerFromUSCeiling(t *testing.T) {
	defer SetTimerFreq(DefaultTimerFreq)

	tests := []struct {
		freq uint32
		us   uint32
		want uint32
	}{
		{1000000, 0, 1},
		{1000000, 1, 1},
		{1000000, 500, 500},
		{12000000, 1, 12},
		{12000000, 1000, 12000},
		{32768, 1, 1},
		{32768, 30, 1},
		{32768, 31, 2},    // 1.0158 ticks rounds up
		{32768, 1000, 33}, // 32.768 ticks rounds up
		{250000, 3, 1},    // 0.75 ticks rounds up
		{250000, 5, 2},    // 1.25 ticks rounds up
	}

	for _, test := range tests {
		SetTimerFreq(test.freq)
		got := TimerFromUS(test.us)
		if got != test.want {
			t.Errorf("TimerFromUS(%d) at %d Hz = %d, want %d", test.us, test.freq, got, test.want)
		}
		// Never under-schedule
		if uint64(got)*1000000 < uint64(test.us)*uint64(test.freq) {
			t.Errorf("TimerFromUS(%d) at %d Hz under-schedules: %d ticks", test.us, test.freq, got)
		}
	}
}

func TestTimerFromUSLargeDelay(t *testing.T) {
	defer SetTimerFreq(DefaultTimerFreq)
	SetTimerFreq(12000000)

	// 0xFFFFFFFF us at 12MHz does not fit one span
	if got := TimerFromUS(0xFFFFFFFF); got != MaxTimerSpan {
		t.Errorf("Expected clamp to %#x, got %#x", MaxTimerSpan, got)
	}
	if got := TicksFromUS(0xFFFFFFFF); got != 0xFFFFFFFF*12 {
		t.Errorf("TicksFromUS(0xFFFFFFFF) = %d, want %d", got, uint64(0xFFFFFFFF)*12)
	}
}

func TestNextSpan(t *testing.T) {
	tests := []struct {
		ticks uint64
		want  []uint32
	}{
		{1, []uint32{1}},
		{MaxTimerSpan, []uint32{MaxTimerSpan}},
		{MaxTimerSpan + 1, []uint32{MaxTimerSpan, 1}},
		{0xFFFFFFFF, []uint32{MaxTimerSpan, MaxTimerSpan, 1}},
		{2400000000, []uint32{MaxTimerSpan, 252516353}},
	}

	for _, test := range tests {
		pending := test.ticks
		var got []uint32
		var total uint64
		for pending > 0 && len(got) < 8 {
			span := NextSpan(&pending)
			got = append(got, span)
			total += uint64(span)
		}
		if len(got) != len(test.want) {
			t.Errorf("NextSpan(%d) gave spans %v, want %v", test.ticks, got, test.want)
			continue
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("NextSpan(%d) span %d = %d, want %d", test.ticks, i, got[i], test.want[i])
			}
		}
		if total != test.ticks {
			t.Errorf("NextSpan(%d) spans sum to %d", test.ticks, total)
		}
	}
}

func TestTimerBeforeWraparound(t *testing.T) {
	if !TimerBefore(10, 20) {
		t.Error("10 should be before 20")
	}
	if TimerBefore(20, 10) {
		t.Error("20 should not be before 10")
	}
	if TimerBefore(5, 5) {
		t.Error("Equal ticks are not before each other")
	}
	// Across the rollover
	if !TimerBefore(0xFFFFFFF0, 0x10) {
		t.Error("0xFFFFFFF0 should be before 0x10 across wraparound")
	}
}

func TestUptime(t *testing.T) {
	SetTime(1000)
	TimerInit()
	SetTime(1500)
	if got := GetUptime(); got != 500 {
		t.Errorf("Expected uptime 500, got %d", got)
	}
}
