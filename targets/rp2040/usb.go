//go:build rp2040

package main

import (
	"machine"
)

// InitUSB initializes USB serial communication
// On RP2040, machine.Serial is USB CDC-ACM set up by the TinyGo runtime
func InitUSB() {
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// USBAvailable returns the number of bytes available to read from USB
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBRead reads a single byte from USB
func USBRead() (byte, error) {
	return machine.Serial.ReadByte()
}

// usbWriter adapts USB CDC to io.Writer for the interpreter replies
type usbWriter struct{}

// Write writes all of data, stopping at the first error or stalled write
func (usbWriter) Write(data []byte) (int, error) {
	written := 0
	for written < len(data) {
		n, err := machine.Serial.Write(data[written:])
		if err != nil {
			consecutiveWriteFailures++
			return written, err
		}
		if n == 0 {
			consecutiveWriteFailures++
			return written, errUSBStalled
		}
		written += n
	}
	consecutiveWriteFailures = 0
	return written, nil
}
