package serial

import (
	"io"
)

// Port is the byte stream to the pulse generator. Native ports come from
// Open; tests substitute an in-memory loopback.
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// Defaults for DefaultConfig
const (
	DefaultBaud        = 115200
	DefaultReadTimeout = 500 // ms
)

// DefaultConfig returns the configuration used by the firmware's USB CDC port
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
	}
}
