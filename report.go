package fftverify

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/fftverify/internal/cpu"
)

// MismatchKind classifies a recorded error.
type MismatchKind uint8

const (
	// MismatchData means the sample error exceeded the tolerance.
	MismatchData MismatchKind = iota
	// MismatchFraming means the frame-start flag disagreed with the bin index.
	MismatchFraming
)

func (k MismatchKind) String() string {
	switch k {
	case MismatchData:
		return "data"
	case MismatchFraming:
		return "framing"
	default:
		return "unknown"
	}
}

// Mismatch is a recorded recoverable error with its full context.
type Mismatch struct {
	Kind MismatchKind
	Comparison
}

// Report summarizes a run. Counts only grow during a run.
type Report struct {
	Seed      uint64
	Geometry  Geometry
	Reference string
	Tolerance float64

	FramesRequested int
	Frames          int
	Cycles          int64

	MaxError      float64
	DataErrors    int
	FramingErrors int
	ClipErrors    int

	// Mismatches holds the first Config.MaxRecorded errors.
	Mismatches []Mismatch
}

// Errors returns data and framing errors together.
func (r Report) Errors() int {
	return r.DataErrors + r.FramingErrors
}

// Passed reports whether the run saw no data, framing or clip errors.
func (r Report) Passed() bool {
	return r.Errors() == 0 && r.ClipErrors == 0
}

// MaxErrorBits returns log2 of the maximum error; -Inf for an exact run.
func (r Report) MaxErrorBits() float64 {
	return math.Log2(r.MaxError)
}

// WriteTo writes the human-readable summary. The format is for people and
// may change.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer

	for _, m := range r.Mismatches {
		switch m.Kind {
		case MismatchData:
			fmt.Fprintf(&b, "Error checking outs! fft index: %5d, FFT_BIN: %5d\n", m.Frame, m.Bin)
			fmt.Fprintf(&b, "\tExpected (I,Q): (%13.2f,%13.2f)\n", real(m.Expected), imag(m.Expected))
			fmt.Fprintf(&b, "\tOut      (I,Q): (%10.0f   ,%10.0f   )\n", real(m.Actual), imag(m.Actual))
		case MismatchFraming:
			state := "low when it should be high"
			if m.NewFrame {
				state = "high when it should be low"
			}

			fmt.Fprintf(&b, "o_new_fft is not as expected at fft index %d, bin %d (%s)\n", m.Frame, m.Bin, state)
		}
	}

	if hidden := r.Errors() - len(r.Mismatches); hidden > 0 {
		fmt.Fprintf(&b, "... %d more error%s not shown\n", hidden, plural(hidden))
	}

	widths := fmt.Sprintf("out of %d output bits, %d input bits", r.Geometry.OutputWidth, r.Geometry.InputWidth)

	if r.Passed() {
		fmt.Fprintf(&b, "Max error was: %g (%.2f bits) %s, which is acceptable\n", r.MaxError, r.MaxErrorBits(), widths)
		fmt.Fprintf(&b, "%d frames verified in %d cycles\nPASS!\n", r.Frames, r.Cycles)
	} else {
		fmt.Fprintf(&b, "%d data error%s! (%d framing)\n", r.Errors(), plural(r.Errors()), r.FramingErrors)
		fmt.Fprintf(&b, "Max error: %g (%.2f bits) %s\n", r.MaxError, r.MaxErrorBits(), widths)
		fmt.Fprintf(&b, "%d clip error%s!\n", r.ClipErrors, plural(r.ClipErrors))
		fmt.Fprintf(&b, "%d of %d frames verified in %d cycles\nFAIL!\n", r.Frames, r.FramesRequested, r.Cycles)
	}

	n, err := w.Write(b.Bytes())

	return int64(n), err
}

// WriteBanner writes the configuration block printed before a run so that
// it can be reproduced from the seed.
func (e *Engine) WriteBanner(w io.Writer) error {
	g := e.geom

	_, err := fmt.Fprintf(w, "FFT Test\nConfig:\n"+
		"\tSeed:               %X\n"+
		"\tFFT_Len:            %d\n"+
		"\tFFT_Stages:         %d\n"+
		"\tIn_Bits:            %d\n"+
		"\tOut_Bits:           %d\n"+
		"\tOut Bits - In Bits: %d\n"+
		"\tMax Allowed Error:  %g\n"+
		"\tReference:          %s\n"+
		"\tFrames:             %d\n"+
		"\tHost:               %s\n",
		e.cfg.Seed, g.Len, g.Stages(), g.InputWidth, g.OutputWidth,
		g.OutputWidth-g.InputWidth, e.tol, e.ref.Name(), e.cfg.Frames,
		cpu.DetectFeatures())

	return err
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}
