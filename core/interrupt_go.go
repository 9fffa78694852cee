//go:build !tinygo

package core

// IRQState is a placeholder for interrupt state on regular Go
type IRQState uintptr

// DisableInterrupts is a no-op on regular Go (for testing)
func DisableInterrupts() IRQState {
	return 0
}

// RestoreInterrupts is a no-op on regular Go (for testing)
func RestoreInterrupts(state IRQState) {
	// No-op
}
