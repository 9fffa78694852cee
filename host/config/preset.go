// Package config loads pulse train presets from YAML files.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pulsetrain/pulse"
)

// Preset is one named pulse train configuration as written in YAML.
// Omitted fields take the firmware defaults.
type Preset struct {
	Name           string  `yaml:"name"`
	PulseUS        *uint32 `yaml:"pulse_us"`         // Pulse window length
	IPIUS          *uint32 `yaml:"ipi_us"`           // Gap between pulses
	PulsesPerTrain *uint32 `yaml:"pulses_per_train"` // Pulses in each train
	ITIUS          *uint32 `yaml:"iti_us"`           // Gap between trains
	DutyPercent    *uint32 `yaml:"duty_percent"`     // Carrier duty
	CarrierHz      *uint32 `yaml:"carrier_hz"`       // Carrier frequency
	Trains         *uint32 `yaml:"trains"`           // 0 repeats until stopped
}

// Config returns the preset with defaults filled in
func (p Preset) Config() pulse.Config {
	cfg := pulse.DefaultConfig()
	pick := func(dst *uint32, src *uint32) {
		if src != nil {
			*dst = *src
		}
	}
	pick(&cfg.PulseUS, p.PulseUS)
	pick(&cfg.IPIUS, p.IPIUS)
	pick(&cfg.PulsesPerTrain, p.PulsesPerTrain)
	pick(&cfg.ITIUS, p.ITIUS)
	pick(&cfg.DutyPercent, p.DutyPercent)
	pick(&cfg.CarrierHz, p.CarrierHz)
	pick(&cfg.Trains, p.Trains)
	cfg.CarrierPeriodUS = pulse.PeriodFromHz(cfg.CarrierHz)
	return cfg
}

// LoadPreset parses a preset document
func LoadPreset(data []byte) (Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("invalid preset: %w", err)
	}
	applyDefaults(&p)
	return p, nil
}

// LoadPresetFile reads and parses a preset file
func LoadPresetFile(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to read preset %s: %w", path, err)
	}

	p, err := LoadPreset(data)
	if err != nil {
		return Preset{}, fmt.Errorf("%s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = path
	}
	return p, nil
}

func applyDefaults(p *Preset) {
	def := pulse.DefaultConfig()
	fill := func(dst **uint32, v uint32) {
		if *dst == nil {
			*dst = &v
		}
	}
	fill(&p.PulseUS, def.PulseUS)
	fill(&p.IPIUS, def.IPIUS)
	fill(&p.PulsesPerTrain, def.PulsesPerTrain)
	fill(&p.ITIUS, def.ITIUS)
	fill(&p.DutyPercent, def.DutyPercent)
	fill(&p.CarrierHz, def.CarrierHz)
	fill(&p.Trains, def.Trains)
}
