package fftverify

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cwbudde/fftverify/device"
	"github.com/cwbudde/fftverify/internal/fixed"
	"github.com/cwbudde/fftverify/internal/queue"
	"github.com/cwbudde/fftverify/internal/reference"
	"github.com/cwbudde/fftverify/internal/stimulus"
	"github.com/cwbudde/fftverify/internal/trace"
)

// Comparison is one output sample checked against its reference.
type Comparison struct {
	Cycle    int64
	Frame    int
	Bin      int
	Expected complex128
	Actual   complex128
	Error    float64
	NewFrame bool

	// DataOK is false when Error exceeds the tolerance.
	DataOK bool
	// FlagOK is false when NewFrame disagrees with Bin == 0.
	FlagOK bool
}

// Position is a snapshot of the stream counters.
type Position struct {
	Cycle    int64
	BinIn    int
	FrameIn  int
	BinOut   int
	FrameOut int
}

// Engine drives one device through one verification run.
// It is not safe for concurrent use; run independent engines instead.
type Engine struct {
	dev  device.Device
	geom Geometry
	cfg  Config
	tol  float64
	log  *slog.Logger

	ref      Transformer
	gen      *stimulus.Generator
	trace    *trace.Writer
	frame    []complex128
	spectrum []complex128
	pending  *queue.Deque[complex128]

	cycle  int64
	binIn  int
	fftIn  int
	binOut int
	fftOut int

	report Report
}

// New validates the device geometry and cfg and prepares a run.
// Configuration errors are returned here; nothing is clocked yet.
func New(dev device.Device, cfg Config) (*Engine, error) {
	if dev == nil {
		return nil, ErrNilDevice
	}

	geom := dev.Geometry()
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	tol := cfg.Tolerance(geom)
	if err := checkTolerance(tol); err != nil {
		return nil, err
	}

	ref, err := reference.New(cfg.Reference, geom.Len)
	if err != nil {
		return nil, err
	}

	gen, err := stimulus.New(stimulus.Options{
		Len:            geom.Len,
		Width:          geom.InputWidth,
		Seed:           cfg.Seed,
		Modes:          cfg.Modes,
		Period:         cfg.Period,
		NoiseAmplitude: cfg.NoiseAmplitude,
		GapPeriod:      cfg.GapPeriod,
		GapRate:        cfg.GapRate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Engine{
		dev:      dev,
		geom:     geom,
		cfg:      cfg,
		tol:      tol,
		log:      cfg.Logger.With("len", geom.Len, "seed", fmt.Sprintf("%X", cfg.Seed)),
		ref:      ref,
		gen:      gen,
		frame:    make([]complex128, geom.Len),
		spectrum: make([]complex128, geom.Len),
		pending:  queue.New[complex128](4 * geom.Len),
		report: Report{
			Seed:            cfg.Seed,
			Geometry:        geom,
			Reference:       ref.Name(),
			Tolerance:       tol,
			FramesRequested: cfg.Frames,
		},
	}

	if cfg.Trace != nil {
		e.trace, err = trace.NewWriter(cfg.Trace, "fft", e.traceSignals())
		if err != nil {
			return nil, fmt.Errorf("fftverify: trace header: %w", err)
		}
	}

	return e, nil
}

// Tolerance returns the resolved error bound.
func (e *Engine) Tolerance() float64 { return e.tol }

// Geometry returns the device geometry.
func (e *Engine) Geometry() Geometry { return e.geom }

// Pending returns the number of reference samples waiting for output.
func (e *Engine) Pending() int { return e.pending.Len() }

// Position returns the current stream counters.
func (e *Engine) Position() Position {
	return Position{
		Cycle:    e.cycle,
		BinIn:    e.binIn,
		FrameIn:  e.fftIn,
		BinOut:   e.binOut,
		FrameOut: e.fftOut,
	}
}

// Report returns the statistics accumulated so far.
func (e *Engine) Report() Report {
	r := e.report
	r.Cycles = e.cycle
	r.Frames = e.fftOut
	r.Mismatches = append([]Mismatch(nil), e.report.Mismatches...)

	return r
}

// Done reports whether the requested number of frames has been verified.
func (e *Engine) Done() bool { return e.fftOut >= e.cfg.Frames }

// Run clocks the device until Frames output frames have been verified.
// Recoverable errors are counted in the report. A non-nil error means the
// run could not complete (ErrDesync, ErrStalled or a trace write failure).
func (e *Engine) Run() (Report, error) {
	for !e.Done() {
		if err := e.Step(); err != nil {
			if e.trace != nil {
				_ = e.trace.Flush()
			}

			return e.Report(), err
		}
	}

	if e.trace != nil {
		if err := e.trace.Flush(); err != nil {
			return e.Report(), fmt.Errorf("fftverify: trace: %w", err)
		}
	}

	r := e.Report()
	e.log.Info("run complete",
		"frames", r.Frames, "cycles", r.Cycles, "max_error", r.MaxError,
		"data_errors", r.DataErrors, "framing_errors", r.FramingErrors,
		"clip_errors", r.ClipErrors, "passed", r.Passed())

	return r, nil
}

// Step advances the device by one clock cycle and checks whatever it emits.
func (e *Engine) Step() error {
	if e.cfg.MaxCycles > 0 && e.cycle >= e.cfg.MaxCycles {
		return fmt.Errorf("%w: %d cycles, %d of %d frames verified",
			ErrStalled, e.cycle, e.fftOut, e.cfg.Frames)
	}

	e.cycle++

	in := device.Inputs{Init: e.cycle <= int64(e.cfg.ResetCycles)}
	if !in.Init && e.gen.Valid(e.cycle) {
		i, q := e.gen.Next(e.binIn, e.fftIn)
		in.Valid = true
		in.I = fixed.Encode(i, e.geom.InputWidth)
		in.Q = fixed.Encode(q, e.geom.InputWidth)
	}

	out := e.dev.Tick(in)

	if err := e.dump(in, out); err != nil {
		return err
	}

	if out.Clip {
		e.report.ClipErrors++
		e.log.Warn("internal clip detected", "cycle", e.cycle, "frame", e.fftOut, "bin", e.binOut)
	}

	switch {
	case in.Init:
		e.restart()
	case in.Valid:
		if err := e.accept(in); err != nil {
			return err
		}
	}

	if out.Valid && !in.Init {
		return e.check(out)
	}

	return nil
}

func (e *Engine) restart() {
	e.pending.Clear()
	e.gen.Restart()
	e.binIn, e.fftIn = 0, 0
	e.binOut, e.fftOut = 0, 0
}

// accept appends the fed sample to the frame under assembly and, when the
// frame is full, queues its reference spectrum.
func (e *Engine) accept(in device.Inputs) error {
	e.frame[e.binIn] = complex(
		float64(fixed.TruncateSigned(in.I, e.geom.InputWidth)),
		float64(fixed.TruncateSigned(in.Q, e.geom.InputWidth)),
	)

	e.binIn = (e.binIn + 1) % e.geom.Len
	if e.binIn != 0 {
		return nil
	}

	e.gen.EndFrame()

	if err := e.ref.Forward(e.spectrum, e.frame); err != nil {
		return fmt.Errorf("fftverify: reference transform of frame %d: %w", e.fftIn, err)
	}

	for _, v := range e.spectrum {
		e.pending.PushBack(v)
	}

	e.fftIn++

	return nil
}

// check matches one device output against the oldest pending reference.
func (e *Engine) check(out device.Outputs) error {
	want, ok := e.pending.PopFront()
	if !ok {
		e.log.Error("output without pending reference", "cycle", e.cycle, "frame", e.fftOut, "bin", e.binOut)

		return fmt.Errorf("%w: cycle %d, output frame %d bin %d, %d input frames transformed",
			ErrDesync, e.cycle, e.fftOut, e.binOut, e.fftIn)
	}

	ow := e.geom.OutputWidth
	got := complex(
		float64(fixed.TruncateSigned(out.I, ow)),
		float64(fixed.TruncateSigned(out.Q, ow)),
	)

	errV := math.Max(math.Abs(real(want)-real(got)), math.Abs(imag(want)-imag(got)))
	e.report.MaxError = math.Max(e.report.MaxError, errV)

	cmp := Comparison{
		Cycle:    e.cycle,
		Frame:    e.fftOut,
		Bin:      e.binOut,
		Expected: want,
		Actual:   got,
		Error:    errV,
		NewFrame: out.NewFrame,
		DataOK:   errV <= e.tol,
		FlagOK:   out.NewFrame == (e.binOut == 0),
	}

	if !cmp.DataOK {
		e.report.DataErrors++
		e.record(MismatchData, cmp)
		e.log.Warn("output mismatch",
			"cycle", cmp.Cycle, "frame", cmp.Frame, "bin", cmp.Bin,
			"expected_i", real(want), "expected_q", imag(want),
			"actual_i", real(got), "actual_q", imag(got), "error", errV)
	}

	if !cmp.FlagOK {
		e.report.FramingErrors++
		e.record(MismatchFraming, cmp)
		e.log.Warn("frame-start flag mismatch",
			"cycle", cmp.Cycle, "frame", cmp.Frame, "bin", cmp.Bin, "new_frame", out.NewFrame)
	}

	if e.cfg.OnCompare != nil {
		e.cfg.OnCompare(cmp)
	}

	e.binOut = (e.binOut + 1) % e.geom.Len
	if e.binOut == 0 {
		e.fftOut++
	}

	return nil
}

func (e *Engine) record(kind MismatchKind, cmp Comparison) {
	if len(e.report.Mismatches) >= e.cfg.MaxRecorded {
		return
	}

	e.report.Mismatches = append(e.report.Mismatches, Mismatch{Kind: kind, Comparison: cmp})
}

func (e *Engine) traceSignals() []trace.Signal {
	iw, ow := e.geom.InputWidth, e.geom.OutputWidth

	return []trace.Signal{
		{Name: e.cfg.ClockName, Width: 1},
		{Name: "i_init", Width: 1},
		{Name: "i_vld", Width: 1},
		{Name: "i_I", Width: iw},
		{Name: "i_Q", Width: iw},
		{Name: "o_vld", Width: 1},
		{Name: "o_new_fft", Width: 1},
		{Name: "o_clip_strb", Width: 1},
		{Name: "o_I", Width: ow},
		{Name: "o_Q", Width: ow},
	}
}

// tracePeriod is one clock period in trace time units (picoseconds).
const tracePeriod = 10_000

// dump records the cycle as a rising edge carrying the registered outputs
// followed by the falling edge half a period later.
func (e *Engine) dump(in device.Inputs, out device.Outputs) error {
	if e.trace == nil {
		return nil
	}

	t := e.cycle * tracePeriod
	values := []uint64{
		1, bit(in.Init), bit(in.Valid), in.I, in.Q,
		bit(out.Valid), bit(out.NewFrame), bit(out.Clip), out.I, out.Q,
	}

	if err := e.trace.Dump(t, values...); err != nil {
		return err
	}

	values[0] = 0

	return e.trace.Dump(t+tracePeriod/2, values...)
}

func bit(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}
