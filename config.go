package fftverify

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/cwbudde/fftverify/internal/stimulus"
)

// Defaults applied by New to zero-valued Config fields.
const (
	DefaultFrames      = 30
	DefaultGapPeriod   = stimulus.DefaultGapPeriod
	DefaultResetCycles = 1
	DefaultMaxRecorded = 64
	DefaultClockName   = "clk"
)

// Config parameterizes a verification run. The device supplies the geometry;
// everything else lives here. The zero value is usable.
type Config struct {
	// Frames is the number of fully verified output frames after which the
	// run ends. Zero selects DefaultFrames.
	Frames int

	// Seed seeds the stimulus pseudo-random source.
	Seed uint64

	// Tolerance is the error policy. Nil selects GrowthTolerance.
	Tolerance ToleranceFunc

	// Reference names the reference engine. Empty selects ReferenceNative.
	Reference string

	// Modes is the round-robin stimulus order; pulse, sinusoid, noise when empty.
	Modes []Mode

	// Period pins the sinusoid period in samples. Zero redraws it uniformly
	// from [1, Len) at every input frame boundary.
	Period float64

	// NoiseAmplitude limits noise samples to [-A, A]. Zero is full scale.
	NoiseAmplitude int64

	// GapPeriod deasserts input valid once every GapPeriod cycles.
	// Zero selects DefaultGapPeriod, a negative value disables periodic gaps.
	GapPeriod int

	// GapRate is the probability of an additional random gap per cycle.
	GapRate float64

	// ResetCycles is the length of the initial reset pulse. Zero selects
	// DefaultResetCycles.
	ResetCycles int

	// MaxCycles aborts the run with ErrStalled. Zero means no limit.
	MaxCycles int64

	// MaxRecorded caps the retained mismatch details; counts are not capped.
	// Zero selects DefaultMaxRecorded, a negative value keeps none.
	MaxRecorded int

	// ClockName is the clock signal name in traces. Empty selects DefaultClockName.
	ClockName string

	// Trace receives a VCD dump of every port when non-nil.
	Trace io.Writer

	// Logger receives a record per recoverable error. Nil discards.
	Logger *slog.Logger

	// OnCompare, when set, observes every compared output sample.
	OnCompare func(Comparison)
}

func (c Config) withDefaults() Config {
	if c.Frames == 0 {
		c.Frames = DefaultFrames
	}

	if c.Tolerance == nil {
		c.Tolerance = GrowthTolerance
	}

	if c.Reference == "" {
		c.Reference = ReferenceNative
	}

	switch {
	case c.GapPeriod == 0:
		c.GapPeriod = DefaultGapPeriod
	case c.GapPeriod < 0:
		c.GapPeriod = 0
	}

	if c.ResetCycles == 0 {
		c.ResetCycles = DefaultResetCycles
	}

	switch {
	case c.MaxRecorded == 0:
		c.MaxRecorded = DefaultMaxRecorded
	case c.MaxRecorded < 0:
		c.MaxRecorded = 0
	}

	if c.ClockName == "" {
		c.ClockName = DefaultClockName
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	return c
}

func (c Config) validate() error {
	if c.Frames < 0 {
		return fmt.Errorf("%w: frames %d", ErrInvalidConfig, c.Frames)
	}

	if c.ResetCycles < 0 {
		return fmt.Errorf("%w: reset cycles %d", ErrInvalidConfig, c.ResetCycles)
	}

	if c.MaxCycles < 0 {
		return fmt.Errorf("%w: max cycles %d", ErrInvalidConfig, c.MaxCycles)
	}

	return nil
}

func checkTolerance(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: bound %v", ErrInvalidTolerance, v)
	}

	return nil
}
