//go:build rp2040

package pio

import (
	"errors"
	"machine"

	"pulsetrain/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// ErrNoStateMachine is returned when every PIO state machine is in use
var ErrNoStateMachine = errors.New("no free PIO state machine")

// outputCount is the number of consecutive pins driven: carrier, window, train
const outputCount = 3

// buildOutputProgram writes each FIFO word's low three bits to the pins in
// one instruction, so all three lines change on the same PIO cycle
func buildOutputProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                    // 0: pull block
		asm.Out(rp2pio.OutDestPins, outputCount).Encode(), // 1: out pins, 3
		// .wrap
	}
}

const (
	outputPIOOrigin = -1 // Any free offset; the program has no jumps
	applySpinLimit  = 64 // FIFO polls before Apply gives up on a stalled machine
)

// PIOOutputBank implements core.OutputBank on a PIO state machine.
// The carrier pin is the base; window and train follow it.
type PIOOutputBank struct {
	pio     *rp2pio.PIO
	sm      rp2pio.StateMachine
	base    machine.Pin
	pioNum  uint8
	smNum   uint8
	last    uint32
	started bool
}

// NewPIOOutputBank claims a state machine for the three pins starting at base
func NewPIOOutputBank(base machine.Pin) (*PIOOutputBank, error) {
	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return nil, ErrNoStateMachine
	}

	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}

	return &PIOOutputBank{
		pio:    pioHW,
		sm:     pioHW.StateMachine(smNum),
		base:   base,
		pioNum: pioNum,
		smNum:  smNum,
	}, nil
}

// Configure loads the program, hands the pins to PIO and drives them low
func (b *PIOOutputBank) Configure() error {
	if !b.sm.TryClaim() {
		releasePIO(b.pioNum, b.smNum)
		return ErrNoStateMachine
	}

	program := buildOutputProgram()
	offset, err := b.pio.AddProgram(program, outputPIOOrigin)
	if err != nil {
		b.sm.Unclaim()
		releasePIO(b.pioNum, b.smNum)
		return err
	}

	for i := machine.Pin(0); i < outputCount; i++ {
		(b.base + i).Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	}

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetOutPins(b.base, outputCount)

	// Shift right so the low bits go out first, explicit pull
	cfg.SetOutShift(true, false, 32)

	// TX only, 8 deep, so a burst of edges never blocks the interrupt
	cfg.SetFIFOJoin(rp2pio.FifoJoinTx)

	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0)

	b.sm.Init(offset, cfg)
	b.sm.SetPindirsConsecutive(b.base, outputCount, true)
	b.sm.SetPinsConsecutive(b.base, outputCount, false)
	b.sm.SetEnabled(true)

	b.last = 0
	b.started = true
	core.DebugPrintln("[PIO] outputs on pio" + core.Itoa(int(b.pioNum)) +
		" sm" + core.Itoa(int(b.smNum)) + " base gpio" + core.Itoa(int(b.base)))
	return nil
}

// Apply queues the new levels. Called from interrupt context.
func (b *PIOOutputBank) Apply(l core.Levels) {
	if !b.started {
		return
	}
	bits := l.Bits()
	if bits == b.last {
		return
	}
	// The program consumes a word every two cycles, so a slot frees almost
	// at once. Only a halted state machine exhausts the spin limit.
	for spins := 0; b.sm.IsTxFIFOFull(); spins++ {
		if spins >= applySpinLimit {
			return
		}
	}
	b.sm.TxPut(bits)
	b.last = bits
}

// Consecutive reports whether the pins are base, base+1, base+2 in
// carrier, window, train order, as the PIO bank requires
func Consecutive(carrier, window, train machine.Pin) bool {
	return window == carrier+1 && train == carrier+2
}
