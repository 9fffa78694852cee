package core

import "testing"

// MockGPIODriver is a test implementation of GPIODriver
type MockGPIODriver struct {
	pins   map[GPIOPin]bool
	writes int
}

func NewMockGPIODriver() *MockGPIODriver {
	return &MockGPIODriver{
		pins: make(map[GPIOPin]bool),
	}
}

func (m *MockGPIODriver) ConfigureOutput(pin GPIOPin) error {
	m.pins[pin] = false
	return nil
}

func (m *MockGPIODriver) SetPin(pin GPIOPin, value bool) error {
	m.pins[pin] = value
	m.writes++
	return nil
}

func (m *MockGPIODriver) GetPin(pin GPIOPin) (bool, error) {
	return m.pins[pin], nil
}

func TestGPIOOutputBank(t *testing.T) {
	mockDriver := NewMockGPIODriver()
	SetGPIODriver(mockDriver)
	defer SetGPIODriver(nil)

	bank := NewGPIOOutputBank(2, 3, 4)
	if err := bank.Configure(); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if mockDriver.writes != 3 {
		t.Errorf("Expected all 3 lines written low on configure, got %d writes", mockDriver.writes)
	}

	bank.Apply(Levels{Carrier: true, Window: true, Train: true})
	for _, pin := range []GPIOPin{2, 3, 4} {
		if state, _ := mockDriver.GetPin(pin); !state {
			t.Errorf("Expected pin %d high", pin)
		}
	}

	// Only the carrier changes
	before := mockDriver.writes
	bank.Apply(Levels{Carrier: false, Window: true, Train: true})
	if mockDriver.writes-before != 1 {
		t.Errorf("Expected 1 write for a carrier toggle, got %d", mockDriver.writes-before)
	}
	if state, _ := mockDriver.GetPin(2); state {
		t.Error("Expected carrier pin low")
	}

	bank.Apply(AllLow)
	for _, pin := range []GPIOPin{2, 3, 4} {
		if state, _ := mockDriver.GetPin(pin); state {
			t.Errorf("Expected pin %d low", pin)
		}
	}
}

func TestLevelsBits(t *testing.T) {
	tests := []struct {
		levels Levels
		want   uint32
	}{
		{AllLow, 0},
		{Levels{Carrier: true}, 1},
		{Levels{Window: true}, 2},
		{Levels{Train: true}, 4},
		{Levels{Carrier: true, Window: true, Train: true}, 7},
	}
	for _, test := range tests {
		if got := test.levels.Bits(); got != test.want {
			t.Errorf("%+v.Bits() = %d, want %d", test.levels, got, test.want)
		}
	}
}
