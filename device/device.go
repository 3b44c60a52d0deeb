package device

import (
	"errors"
	"fmt"

	"github.com/cwbudde/fftverify/internal/fixed"
)

// Sentinel errors returned when a geometry or model configuration is invalid.
var (
	// ErrInvalidLength is returned when the frame length is not a positive
	// power of two.
	ErrInvalidLength = errors.New("device: frame length is not a power of 2")

	// ErrInvalidWidth is returned for port widths outside [2, 62] or an
	// output narrower than the input.
	ErrInvalidWidth = errors.New("device: invalid port width")

	// ErrInvalidLatency is returned when the pipeline latency is below one cycle.
	ErrInvalidLatency = errors.New("device: invalid latency")
)

// Geometry is the read-only configuration of a device.
type Geometry struct {
	Len         int
	InputWidth  int
	OutputWidth int
}

// Stages returns ceil(log2(Len)), the number of radix-2 stages.
func (g Geometry) Stages() int {
	return int(fixed.CeilLog2(uint64(g.Len)))
}

// Validate checks the geometry invariants.
func (g Geometry) Validate() error {
	if !fixed.IsPowerOf2(g.Len) {
		return fmt.Errorf("%w: %d", ErrInvalidLength, g.Len)
	}

	if g.InputWidth < 2 || g.InputWidth > 62 || g.OutputWidth < 2 || g.OutputWidth > 62 {
		return fmt.Errorf("%w: in=%d out=%d", ErrInvalidWidth, g.InputWidth, g.OutputWidth)
	}

	if g.OutputWidth < g.InputWidth {
		return fmt.Errorf("%w: output (%d) narrower than input (%d)", ErrInvalidWidth, g.OutputWidth, g.InputWidth)
	}

	return nil
}

func (g Geometry) String() string {
	return fmt.Sprintf("len=%d in=%d out=%d", g.Len, g.InputWidth, g.OutputWidth)
}

// Inputs are the values driven onto the device ports for one cycle.
type Inputs struct {
	Init  bool
	Valid bool
	I, Q  uint64
}

// Outputs are the values sampled from the device ports after one cycle.
type Outputs struct {
	Valid    bool
	NewFrame bool
	Clip     bool
	I, Q     uint64
}

// Device is a synchronous streaming FFT block.
type Device interface {
	// Geometry reports the frame length and port widths.
	Geometry() Geometry
	// Tick applies in, advances the clock by one cycle and returns the
	// registered outputs.
	Tick(in Inputs) Outputs
}
