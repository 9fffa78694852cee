//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"pulsetrain/core"
	"pulsetrain/pulse"
)

const (
	statusRefreshUS = 200000
	statusLineStep  = 10
)

var white = color.RGBA{255, 255, 255, 255}

// statusDisplay shows the configuration and run state on an SSD1306.
// A frame takes tens of milliseconds over I2C, so it is polled from the
// main loop with interrupts enabled and never runs as a soft timer.
type statusDisplay struct {
	display ssd1306.Device
	dev     *pulse.Device
	next    uint32 // Tick of the next refresh

	shown  pulse.Status
	shownC pulse.Config
	drawn  bool
}

func newStatusDisplay(dev *pulse.Device) *statusDisplay {
	err := machine.I2C0.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       displaySDAPin,
		SCL:       displaySCLPin,
	})
	if err != nil {
		core.DebugPrintln("[STATUS] i2c: " + err.Error())
		return nil
	}

	s := &statusDisplay{
		display: ssd1306.NewI2C(machine.I2C0),
		dev:     dev,
	}
	s.display.Configure(ssd1306.Config{
		Width:    128,
		Height:   64,
		Address:  displayAddress,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	s.display.ClearDisplay()

	s.next = core.GetTime() + core.TimerFromUS(statusRefreshUS)
	return s
}

// poll refreshes the display once its period has elapsed
func (s *statusDisplay) poll() {
	if s == nil {
		return
	}
	now := core.GetTime()
	if core.TimerBefore(now, s.next) {
		return
	}
	s.next = now + core.TimerFromUS(statusRefreshUS)
	s.refresh()
}

// refresh redraws only when something shown has changed
func (s *statusDisplay) refresh() {
	st := s.dev.Status()
	cfg := s.dev.Config()
	if s.drawn && st == s.shown && cfg == s.shownC {
		return
	}

	running := "IDLE"
	if st.Running {
		running = "RUN"
	}
	trains := core.Utoa(cfg.Trains)
	if cfg.Unbounded() {
		trains = "inf"
	}

	lines := [...]string{
		"PULSETRAIN " + running,
		st.Phase.String(),
		"trains " + core.Utoa(st.CompletedTrains) + "/" + trains,
		"pulse " + core.Utoa(cfg.PulseUS) + " ipi " + core.Utoa(cfg.IPIUS),
		"n " + core.Utoa(cfg.PulsesPerTrain) + " iti " + core.Utoa(cfg.ITIUS),
		core.Utoa(cfg.DutyPercent) + "% @ " + core.Utoa(cfg.CarrierHz) + "Hz",
	}

	s.display.ClearBuffer()
	for i, line := range lines {
		y := int16((i + 1) * statusLineStep)
		tinyfont.WriteLine(&s.display, &proggy.TinySZ8pt7b, 0, y, line, white)
	}
	if err := s.display.Display(); err != nil {
		// Display absent or unplugged; keep quiet and retry next period
		return
	}

	s.shown = st
	s.shownC = cfg
	s.drawn = true
}
