package device

import (
	"slices"

	"github.com/cwbudde/fftverify/internal/fixed"
)

// Faults describes misbehaviour injected by WithFaults. The zero value
// injects nothing. Cycle numbers count Tick calls starting at 1.
type Faults struct {
	// ClipCycles forces the clip strobe high on the listed cycles.
	ClipCycles []int64

	// SuppressFrameStart holds NewFrame low on bin 0 of every output frame.
	SuppressFrameStart bool

	// InvertFrameStart inverts NewFrame on every valid output.
	InvertFrameStart bool

	// CorruptDelta is added to the I component of output bin CorruptBin.
	CorruptBin   int
	CorruptDelta int64

	// SpuriousCycles asserts output valid on the listed cycles even when the
	// wrapped device has nothing to emit.
	SpuriousCycles []int64
}

type faulty struct {
	dev   Device
	f     Faults
	cycle int64
	bin   int
}

// WithFaults wraps dev so that its outputs exhibit the faults in f.
func WithFaults(dev Device, f Faults) Device {
	return &faulty{dev: dev, f: f}
}

func (d *faulty) Geometry() Geometry { return d.dev.Geometry() }

func (d *faulty) Tick(in Inputs) Outputs {
	d.cycle++

	out := d.dev.Tick(in)

	if in.Init {
		d.bin = 0
	}

	if slices.Contains(d.f.ClipCycles, d.cycle) {
		out.Clip = true
	}

	if !out.Valid {
		if slices.Contains(d.f.SpuriousCycles, d.cycle) {
			out.Valid = true
		}

		return out
	}

	g := d.dev.Geometry()

	if d.f.SuppressFrameStart && d.bin == 0 {
		out.NewFrame = false
	}

	if d.f.InvertFrameStart {
		out.NewFrame = !out.NewFrame
	}

	if d.f.CorruptDelta != 0 && d.bin == d.f.CorruptBin {
		v := fixed.TruncateSigned(out.I, g.OutputWidth) + d.f.CorruptDelta
		v, _ = fixed.Saturate(v, g.OutputWidth)
		out.I = fixed.Encode(v, g.OutputWidth)
	}

	d.bin = (d.bin + 1) % g.Len

	return out
}
