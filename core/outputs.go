package core

// Levels is the state of the three pulse output lines
type Levels struct {
	Carrier bool // Carrier, toggles inside a pulse window
	Window  bool // Pulse-window indicator
	Train   bool // Train indicator
}

// AllLow is the idle output state
var AllLow = Levels{}

// Bits packs the levels as carrier=bit0, window=bit1, train=bit2
func (l Levels) Bits() uint32 {
	var b uint32
	if l.Carrier {
		b |= 1 << 0
	}
	if l.Window {
		b |= 1 << 1
	}
	if l.Train {
		b |= 1 << 2
	}
	return b
}

// OutputBank drives the physical output lines.
// Apply is called from interrupt context and must not block.
type OutputBank interface {
	Configure() error
	Apply(l Levels)
}

// GPIOOutputBank drives each line through the registered GPIODriver
type GPIOOutputBank struct {
	CarrierPin GPIOPin
	WindowPin  GPIOPin
	TrainPin   GPIOPin

	last  Levels
	valid bool
}

// NewGPIOOutputBank creates an output bank over three GPIO pins
func NewGPIOOutputBank(carrier, window, train GPIOPin) *GPIOOutputBank {
	return &GPIOOutputBank{
		CarrierPin: carrier,
		WindowPin:  window,
		TrainPin:   train,
	}
}

// Configure sets all three pins as outputs, driven low
func (b *GPIOOutputBank) Configure() error {
	gpio := MustGPIO()
	for _, pin := range [...]GPIOPin{b.CarrierPin, b.WindowPin, b.TrainPin} {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return err
		}
	}
	b.valid = false
	b.Apply(AllLow)
	return nil
}

// Apply writes only the lines that changed since the last call
func (b *GPIOOutputBank) Apply(l Levels) {
	gpio := MustGPIO()
	if !b.valid || l.Carrier != b.last.Carrier {
		_ = gpio.SetPin(b.CarrierPin, l.Carrier)
	}
	if !b.valid || l.Window != b.last.Window {
		_ = gpio.SetPin(b.WindowPin, l.Window)
	}
	if !b.valid || l.Train != b.last.Train {
		_ = gpio.SetPin(b.TrainPin, l.Train)
	}
	b.last = l
	b.valid = true
}
