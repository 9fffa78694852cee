package pulse

// Phase is the state of the pulse/train machine
type Phase uint8

const (
	Idle Phase = iota
	CarrierHigh
	CarrierLow
	BetweenPulses
	BetweenTrains
)

var phaseNames = [...]string{
	Idle:          "IDLE",
	CarrierHigh:   "CARRIER_HIGH",
	CarrierLow:    "CARRIER_LOW",
	BetweenPulses: "BETWEEN_PULSES",
	BetweenTrains: "BETWEEN_TRAINS",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "UNKNOWN"
}

// InWindow reports whether the phase is inside a pulse window
func (p Phase) InWindow() bool {
	return p == CarrierHigh || p == CarrierLow
}

// InTrain reports whether the train indicator is raised in this phase
func (p Phase) InTrain() bool {
	return p == CarrierHigh || p == CarrierLow || p == BetweenPulses
}
