//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"pulsetrain/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// TimerFreq is the RP2040 timer tick rate
const TimerFreq = 1000000 // 1MHz

// InitClock points the core clock at the RP2040 hardware timer
func InitClock() {
	core.SetTimerFreq(TimerFreq)
	UpdateSystemTime()
	core.TimerInit()
}

// GetHardwareTime reads the RP2040 hardware timer
// Returns the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime updates the core timer with hardware time
// Called from main loop and the alarm interrupt
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}
