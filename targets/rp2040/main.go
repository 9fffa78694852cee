//go:build rp2040

package main

import (
	"machine"
	"time"

	"pulsetrain/core"
	"pulsetrain/protocol"
	"pulsetrain/pulse"
	"pulsetrain/targets/pio"
)

var (
	dev    *pulse.Device
	interp *protocol.Interpreter

	// Debug counters
	linesReceived uint32
	msgerrors     uint32

	consecutiveWriteFailures uint32
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()
	InitClock()

	outputs := newOutputBank()
	dev = pulse.NewDevice(NewAlarmTicker(), outputs)
	interp = protocol.NewInterpreter(dev, usbWriter{})
	status := newStatusDisplay(dev)

	core.DebugPrintln("[MAIN] ready, " + core.Itoa(interp.Registry().Count()) + " commands")

	var rx [64]byte
	wasRunning := false

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					dev.Stop()
				}
			}()

			UpdateSystemTime()

			n := 0
			for n < len(rx) && USBAvailable() > 0 {
				b, err := USBRead()
				if err != nil {
					msgerrors++
					break
				}
				if b == '\n' || b == '\r' {
					linesReceived++
				}
				rx[n] = b
				n++
			}
			if n > 0 {
				if err := interp.Feed(rx[:n]); err != nil {
					msgerrors++
				}
			}

			// Outside any critical section; the I2C frame is slow
			status.poll()

			running := dev.Running()
			if wasRunning && !running && core.IsDebugEnabled() {
				dumpTiming()
			}
			wasRunning = running
		}()

		// Yield to other goroutines
		time.Sleep(10 * time.Microsecond)
	}
}

// newOutputBank prefers the PIO bank, which needs consecutive pins and a
// free state machine, and falls back to plain GPIO writes
func newOutputBank() core.OutputBank {
	if pio.Consecutive(carrierPin, windowPin, trainPin) {
		bank, err := pio.NewPIOOutputBank(carrierPin)
		if err == nil {
			err = bank.Configure()
		}
		logPIOAllocation()
		if err == nil {
			return bank
		}
		core.DebugPrintln("[MAIN] PIO outputs unavailable: " + err.Error())
	}

	core.SetGPIODriver(NewRPGPIODriver())
	bank := core.NewGPIOOutputBank(
		core.GPIOPin(carrierPin),
		core.GPIOPin(windowPin),
		core.GPIOPin(trainPin),
	)
	if err := bank.Configure(); err != nil {
		core.DebugPrintln("[MAIN] GPIO outputs: " + err.Error())
	}
	return bank
}

// logPIOAllocation prints the claimed state machines of each PIO block
func logPIOAllocation() {
	for n, sms := range pio.AllocationStatus() {
		line := "[PIO] pio" + core.Itoa(n) + " sm"
		for _, used := range sms {
			if used {
				line += " 1"
			} else {
				line += " 0"
			}
		}
		core.DebugPrintln(line)
	}
}
