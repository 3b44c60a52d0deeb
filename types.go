package fftverify

import (
	"github.com/cwbudde/fftverify/device"
	"github.com/cwbudde/fftverify/internal/stimulus"
)

// Geometry is the device frame length and port widths.
// The canonical definition is in package device.
type Geometry = device.Geometry

// Mode is a stimulus waveform class.
// The canonical definition is in internal/stimulus.
type Mode = stimulus.Mode

// Stimulus modes.
const (
	ModePulse    = stimulus.Pulse
	ModeSinusoid = stimulus.Sinusoid
	ModeNoise    = stimulus.Noise
)

// ParseModes parses a comma-separated list such as "pulse,sinusoid,noise".
func ParseModes(s string) ([]Mode, error) {
	return stimulus.ParseModes(s)
}
