package core

// Default tick frequency used until a target calls SetTimerFreq
const (
	DefaultTimerFreq = 12000000 // 12MHz
)

var (
	timerFreq uint32 = DefaultTimerFreq
	bootTime  uint32 // Tick count captured by TimerInit
)

// SetTimerFreq selects the tick frequency of the running target
func SetTimerFreq(hz uint32) {
	if hz == 0 {
		hz = 1
	}
	timerFreq = hz
}

// TimerFreq returns the active tick frequency in Hz
func TimerFreq() uint32 {
	return timerFreq
}

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// GetUptime returns ticks elapsed since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// MaxTimerSpan is the furthest a single deadline may sit ahead of the
// counter. Deadlines are compared as signed differences.
const MaxTimerSpan = 0x7fffffff

// TicksFromUS converts microseconds to timer ticks, rounding up.
// A delay that converts to zero ticks is reported as one tick
// so an armed timer can never fire before it was asked to.
// The result may exceed MaxTimerSpan; see NextSpan.
func TicksFromUS(us uint32) uint64 {
	ticks := (uint64(us)*uint64(timerFreq) + 999999) / 1000000
	if ticks == 0 {
		return 1
	}
	return ticks
}

// TimerFromUS converts microseconds to a single armable span, clamped to
// MaxTimerSpan. Delays that may exceed it go through TicksFromUS and NextSpan.
func TimerFromUS(us uint32) uint32 {
	ticks := TicksFromUS(us)
	if ticks > MaxTimerSpan {
		return MaxTimerSpan
	}
	return uint32(ticks)
}

// NextSpan takes the next armable span off a pending tick count and
// returns it. Long delays are armed as a chain of spans.
func NextSpan(pending *uint64) uint32 {
	span := *pending
	if span > MaxTimerSpan {
		span = MaxTimerSpan
	}
	*pending -= span
	return uint32(span)
}

// TimerToUS converts timer ticks to microseconds (truncating)
func TimerToUS(ticks uint32) uint32 {
	return uint32((uint64(ticks) * 1000000) / uint64(timerFreq))
}

// TimerBefore reports whether tick a is earlier than tick b, tolerating
// 32-bit counter wraparound.
func TimerBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// TimerInit initializes the system timer
func TimerInit() {
	bootTime = GetTime()
}

// ProcessTimers processes scheduled soft timers
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
