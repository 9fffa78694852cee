//go:build rp2040

package main

import (
	"machine"

	"pulsetrain/core"
)

var debugUART *machine.UART

// InitDebugUART initializes UART0 for debug output at 115200 baud and
// routes core debug messages to it
func InitDebugUART() {
	debugUART = machine.UART0

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       debugTXPin,
		RX:       debugRXPin,
	})
	if err != nil {
		// Nothing could ever dump the ring
		core.SetTimingEnabled(false)
		return
	}

	core.SetDebugWriter(func(s string) {
		debugUART.Write([]byte(s))
		debugUART.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	core.DebugPrintln("=== pulsetrain debug UART ===")
	core.DebugPrintln("Baud: 115200, TX=gpio" + core.Itoa(int(debugTXPin)) +
		", RX=gpio" + core.Itoa(int(debugRXPin)))
}

// dumpTiming writes the timing ring to the debug UART
func dumpTiming() {
	if debugUART == nil {
		return
	}
	core.DumpTimingRing()
}
