// Package stimulus produces the synthetic input stream fed to the device:
// per-bin impulses, complex sinusoids and uniform noise, one full frame per
// mode, with periodic and optional random gaps in the valid signal.
package stimulus

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/cwbudde/fftverify/internal/fixed"
)

// Mode selects the waveform of one input frame.
type Mode int

const (
	// Pulse puts a single full-scale real impulse at bin frame%len.
	Pulse Mode = iota
	// Sinusoid is a full-scale complex exponential of period T samples.
	Sinusoid
	// Noise is uniform random data over the signed input range.
	Noise
)

// DefaultModes is the round-robin order used when none is configured.
var DefaultModes = []Mode{Pulse, Sinusoid, Noise}

// DefaultGapPeriod deasserts valid once every 7 cycles.
const DefaultGapPeriod = 7

const initialPeriod = 7.0

// pcgStream is the fixed second PCG seed word; the run seed supplies all
// 64 bits of the first.
const pcgStream = 0x9E3779B97F4A7C15

// ErrInvalidOptions is returned by New for inconsistent options.
var ErrInvalidOptions = errors.New("stimulus: invalid options")

func (m Mode) String() string {
	switch m {
	case Pulse:
		return "pulse"
	case Sinusoid:
		return "sinusoid"
	case Noise:
		return "noise"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pulse", "impulse":
		return Pulse, nil
	case "sinusoid", "sine", "tone":
		return Sinusoid, nil
	case "noise":
		return Noise, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidOptions, s)
	}
}

// ParseModes parses a comma-separated mode list.
func ParseModes(s string) ([]Mode, error) {
	var modes []Mode

	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}

		m, err := ParseMode(part)
		if err != nil {
			return nil, err
		}

		modes = append(modes, m)
	}

	return modes, nil
}

// Options configures a Generator.
type Options struct {
	// Len is the frame length.
	Len int
	// Width is the signed input width in bits.
	Width int
	// Seed seeds the pseudo-random source.
	Seed uint64
	// Modes is the round-robin mode order; DefaultModes when empty.
	Modes []Mode
	// Period pins the sinusoid period. Zero draws it uniformly from
	// [1, Len) at every frame boundary.
	Period float64
	// NoiseAmplitude limits noise to [-A, A]. Zero means full scale.
	NoiseAmplitude int64
	// GapPeriod deasserts valid when cycle%GapPeriod == GapPeriod-1.
	// Zero disables periodic gaps.
	GapPeriod int
	// GapRate is the probability of an extra random gap per cycle.
	GapRate float64
}

// Generator is the stateful stimulus source. It is not safe for concurrent use.
type Generator struct {
	opts   Options
	rng    *rand.Rand
	ampl   int64
	noise  int64
	modeIx int
	period float64
	sample int64
}

// New validates opts and returns a generator starting in the first mode.
func New(opts Options) (*Generator, error) {
	if !fixed.IsPowerOf2(opts.Len) {
		return nil, fmt.Errorf("%w: frame length %d", ErrInvalidOptions, opts.Len)
	}

	if opts.Width < 2 || opts.Width > 63 {
		return nil, fmt.Errorf("%w: input width %d", ErrInvalidOptions, opts.Width)
	}

	if len(opts.Modes) == 0 {
		opts.Modes = DefaultModes
	}

	if opts.Period < 0 || math.IsNaN(opts.Period) {
		return nil, fmt.Errorf("%w: period %v", ErrInvalidOptions, opts.Period)
	}

	if opts.GapPeriod < 0 || opts.GapPeriod == 1 {
		return nil, fmt.Errorf("%w: gap period %d", ErrInvalidOptions, opts.GapPeriod)
	}

	if opts.GapRate < 0 || opts.GapRate >= 1 {
		return nil, fmt.Errorf("%w: gap rate %v", ErrInvalidOptions, opts.GapRate)
	}

	ampl := fixed.MaxAmplitude(opts.Width)

	noise := opts.NoiseAmplitude
	if noise <= 0 || noise > ampl {
		noise = ampl
	}

	g := &Generator{
		opts:   opts,
		rng:    rand.New(rand.NewPCG(opts.Seed, pcgStream)),
		ampl:   ampl,
		noise:  noise,
		period: initialPeriod,
	}

	if opts.Period > 0 {
		g.period = opts.Period
	}

	return g, nil
}

// Mode returns the mode of the frame currently being generated.
func (g *Generator) Mode() Mode { return g.opts.Modes[g.modeIx] }

// Period returns the current sinusoid period in samples.
func (g *Generator) Period() float64 { return g.period }

// Amplitude returns the full-scale amplitude used for pulses and sinusoids.
func (g *Generator) Amplitude() int64 { return g.ampl }

// Valid reports whether the input-valid signal is asserted on cycle.
func (g *Generator) Valid(cycle int64) bool {
	if p := int64(g.opts.GapPeriod); p > 0 && cycle%p == p-1 {
		return false
	}

	if g.opts.GapRate > 0 && g.rng.Float64() < g.opts.GapRate {
		return false
	}

	return true
}

// Next returns the sample for position bin of input frame number frame.
func (g *Generator) Next(bin, frame int) (i, q int64) {
	switch g.Mode() {
	case Pulse:
		if bin%g.opts.Len == frame%g.opts.Len {
			i = g.ampl
		}
	case Sinusoid:
		phase := float64(g.sample) * 2 * math.Pi / g.period
		i = fixed.RoundHalfEven(float64(g.ampl) * math.Cos(phase))
		q = fixed.RoundHalfEven(float64(g.ampl) * math.Sin(phase))
	default:
		i = g.rng.Int64N(2*g.noise+1) - g.noise
		q = g.rng.Int64N(2*g.noise+1) - g.noise
	}

	g.sample++

	return i, q
}

// EndFrame advances to the next mode and draws a new sinusoid period.
func (g *Generator) EndFrame() {
	g.modeIx = (g.modeIx + 1) % len(g.opts.Modes)

	if g.opts.Period > 0 {
		return
	}

	g.period = 1 + g.rng.Float64()*float64(g.opts.Len-1)
}

// Restart rewinds the running sample counter used for the sinusoid phase.
// The mode and period are left untouched, like a device reset would.
func (g *Generator) Restart() {
	g.sample = 0
}
