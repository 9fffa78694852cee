//go:build rp2040

package main

import (
	"errors"
	"machine"
)

// Output pins. Carrier, window and train are consecutive so the PIO bank
// can drive them with a single instruction.
const (
	carrierPin = machine.GPIO2
	windowPin  = machine.GPIO3
	trainPin   = machine.GPIO4
)

// Debug UART0
const (
	debugTXPin = machine.GPIO0
	debugRXPin = machine.GPIO1
)

// Status display on I2C0
const (
	displaySDAPin  = machine.GPIO20
	displaySCLPin  = machine.GPIO21
	displayAddress = 0x3C
)

var (
	errPinNotConfigured = errors.New("pin not configured")
	errUSBStalled       = errors.New("usb write stalled")
)
