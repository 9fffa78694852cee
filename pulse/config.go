// Package pulse implements the pulse/train engine: configuration clamping,
// carrier duty resolution, the phase state machine and the Device that runs
// it from a timer interrupt.
package pulse

// Carrier frequency limits in Hz
const (
	MinCarrierHz = 1
	MaxCarrierHz = 1000000 // 1us period
)

// Config is the pulse train configuration. All durations are microseconds.
type Config struct {
	PulseUS         uint32 // Pulse window duration (>=1)
	IPIUS           uint32 // Inter-pulse interval
	PulsesPerTrain  uint32 // Pulses per train (>=1)
	ITIUS           uint32 // Inter-train interval
	DutyPercent     uint32 // Carrier duty, 0-100
	CarrierHz       uint32 // Carrier frequency, 1Hz-1MHz
	CarrierPeriodUS uint32 // Derived from CarrierHz (>=1)
	Trains          uint32 // Trains per run, 0 = until stopped
}

// DefaultConfig returns the power-on configuration
func DefaultConfig() Config {
	cfg := Config{
		PulseUS:        1000,
		IPIUS:          1000,
		PulsesPerTrain: 1,
		ITIUS:          1000,
		DutyPercent:    100,
		CarrierHz:      1000,
		Trains:         1,
	}
	cfg.Normalize()
	return cfg
}

// Normalize applies the corrective clamps so every field is usable by the
// state machine. Out-of-range values are coerced, never rejected.
func (c *Config) Normalize() {
	if c.PulseUS == 0 {
		c.PulseUS = 1
	}
	if c.PulsesPerTrain == 0 {
		c.PulsesPerTrain = 1
	}
	if c.DutyPercent > 100 {
		c.DutyPercent = 100
	}
	if c.CarrierHz < MinCarrierHz {
		c.CarrierHz = MinCarrierHz
	}
	if c.CarrierHz > MaxCarrierHz {
		c.CarrierHz = MaxCarrierHz
	}
	c.CarrierPeriodUS = PeriodFromHz(c.CarrierHz)
}

// Normalized returns a clamped copy of c
func (c Config) Normalized() Config {
	c.Normalize()
	return c
}

// Unbounded reports whether trains repeat until stopped
func (c Config) Unbounded() bool {
	return c.Trains == 0
}

// PeriodFromHz converts a carrier frequency to a period in microseconds,
// rounded to nearest and never below 1.
func PeriodFromHz(hz uint32) uint32 {
	if hz == 0 {
		hz = MinCarrierHz
	}
	period := (1000000 + hz/2) / hz
	if period == 0 {
		period = 1
	}
	return period
}
