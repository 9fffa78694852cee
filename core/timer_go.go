//go:build !tinygo

package core

// Host builds keep a virtual clock that only moves when a test or
// simulator sets it.
var virtualTicks uint32

func getSystemTicks() uint32 {
	return virtualTicks
}

func setSystemTicks(ticks uint32) {
	virtualTicks = ticks
}
