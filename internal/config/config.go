// Package config turns command-line flags and the legacy testbench
// environment variables into verification settings.
package config

import (
	"crypto/rand"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/cwbudde/fftverify"
	"github.com/cwbudde/fftverify/device"
)

// Environment variables honoured when the matching flag is not given.
const (
	EnvSeed       = "SEED"
	EnvDumpTraces = "DUMPTRACES"
	EnvDumpAlt    = "DUMP_TRACES"
	EnvTraceFile  = "DUMP_F"
)

// Defaults for the device under test.
const (
	DefaultLen         = 64
	DefaultInputWidth  = 12
	DefaultOutputWidth = 19
)

var (
	// ErrInvalidSeed is returned for a seed that is not 1 to 16 hex digits.
	ErrInvalidSeed = errors.New("config: invalid seed")

	// ErrInvalidValue is returned for out-of-range settings.
	ErrInvalidValue = errors.New("config: invalid value")
)

// Config is the validated result of Parse.
type Config struct {
	Geometry     device.Geometry
	TwiddleWidth int
	Latency      int

	Frames    int
	Seed      uint64
	Runs      int
	Tolerance string
	Reference string
	Modes     []fftverify.Mode
	Period    float64
	Noise     int64
	GapPeriod int
	GapRate   float64
	MaxCycles int64

	Trace     bool
	TraceFile string
	Verbose   bool

	tolerance fftverify.ToleranceFunc
}

// Parse reads args (without the program name). getenv supplies the
// environment; flags take precedence over it. A seed is drawn from the
// system entropy source when neither -seed nor SEED is set.
func Parse(args []string, getenv func(string) string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("fftverify", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		length    = fs.Int("len", DefaultLen, "FFT frame length (power of two)")
		inWidth   = fs.Int("inw", DefaultInputWidth, "input sample width in bits")
		outWidth  = fs.Int("outw", DefaultOutputWidth, "output sample width in bits")
		twiddle   = fs.Int("twiddle", device.DefaultTwiddleWidth, "model twiddle width in bits")
		latency   = fs.Int("latency", device.DefaultLatency, "model pipeline latency in cycles")
		frames    = fs.Int("frames", fftverify.DefaultFrames, "output frames to verify per run")
		seed      = fs.String("seed", "", "stimulus seed in hex (env "+EnvSeed+")")
		tolerance = fs.String("tolerance", "growth", "error bound: growth, stages[:k], const:v or lua:<expr>")
		reference = fs.String("reference", fftverify.ReferenceNative,
			"reference engine: "+strings.Join(fftverify.ReferenceEngines(), ", "))
		modes     = fs.String("modes", "pulse,sinusoid,noise", "comma-separated stimulus modes")
		period    = fs.Float64("period", 0, "fixed sinusoid period in samples (0 draws one per frame)")
		noise     = fs.Int64("noise", 0, "noise amplitude (0 is full scale)")
		gap       = fs.Int("gap", fftverify.DefaultGapPeriod, "drop input valid every N cycles (0 disables)")
		gapRate   = fs.Float64("gap-rate", 0, "probability of an extra random input gap per cycle")
		runs      = fs.Int("runs", 1, "independent runs, executed in parallel with consecutive seeds")
		trace     = fs.Bool("trace", false, "write a VCD trace (env "+EnvDumpTraces+")")
		traceFile = fs.String("trace-file", "", "trace file name (env "+EnvTraceFile+")")
		maxCycles = fs.Int64("max-cycles", 0, "abort a run after this many cycles (0 is unlimited)")
		verbose   = fs.Bool("v", false, "log every mismatch")
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 0 {
		return nil, errors.Wrapf(ErrInvalidValue, "unexpected arguments %q", fs.Args())
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	c := &Config{
		Geometry:     device.Geometry{Len: *length, InputWidth: *inWidth, OutputWidth: *outWidth},
		TwiddleWidth: *twiddle,
		Latency:      *latency,
		Frames:       *frames,
		Runs:         *runs,
		Tolerance:    *tolerance,
		Reference:    *reference,
		Period:       *period,
		Noise:        *noise,
		GapPeriod:    *gap,
		GapRate:      *gapRate,
		MaxCycles:    *maxCycles,
		Trace:        *trace,
		TraceFile:    *traceFile,
		Verbose:      *verbose,
	}

	seedText := *seed
	if !set["seed"] {
		seedText = getenv(EnvSeed)
	}

	var err error

	if seedText == "" {
		c.Seed, err = RandomSeed()
	} else {
		c.Seed, err = ParseSeed(seedText)
	}

	if err != nil {
		return nil, err
	}

	if !set["trace"] {
		c.Trace = envFlag(getenv(EnvDumpTraces)) || envFlag(getenv(EnvDumpAlt))
	}

	if !set["trace-file"] {
		c.TraceFile = getenv(EnvTraceFile)
	}

	if c.TraceFile == "" {
		c.TraceFile = fmt.Sprintf("fft%d_trace.vcd", c.Geometry.Len)
	}

	c.Modes, err = fftverify.ParseModes(*modes)
	if err != nil {
		return nil, errors.Wrap(err, "config: -modes")
	}

	c.tolerance, err = fftverify.ParseTolerance(c.Tolerance)
	if err != nil {
		return nil, errors.Wrap(err, "config: -tolerance")
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return errors.Wrap(err, "config")
	}

	switch {
	case c.Frames <= 0:
		return errors.Wrapf(ErrInvalidValue, "frames %d", c.Frames)
	case c.Runs <= 0:
		return errors.Wrapf(ErrInvalidValue, "runs %d", c.Runs)
	case c.GapPeriod < 0 || c.GapPeriod == 1:
		return errors.Wrapf(ErrInvalidValue, "gap %d", c.GapPeriod)
	case c.MaxCycles < 0:
		return errors.Wrapf(ErrInvalidValue, "max cycles %d", c.MaxCycles)
	}

	return nil
}

// ModelConfig returns the settings of the behavioural device model.
func (c *Config) ModelConfig() device.ModelConfig {
	return device.ModelConfig{
		Geometry:     c.Geometry,
		TwiddleWidth: c.TwiddleWidth,
		Latency:      c.Latency,
	}
}

// RunSeed returns the seed of run i. Runs use consecutive seeds so that any
// failing run can be repeated alone with -seed.
func (c *Config) RunSeed(i int) uint64 {
	return c.Seed + uint64(i)
}

// TracePath returns the trace file of run i. With several runs the run
// index is inserted before the extension.
func (c *Config) TracePath(i int) string {
	if c.Runs <= 1 {
		return c.TraceFile
	}

	ext := filepath.Ext(c.TraceFile)

	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(c.TraceFile, ext), i, ext)
}

// Engine returns the engine configuration of run i. Trace and Logger are
// left for the caller.
func (c *Config) Engine(i int) fftverify.Config {
	gap := c.GapPeriod
	if gap == 0 {
		gap = -1
	}

	return fftverify.Config{
		Frames:         c.Frames,
		Seed:           c.RunSeed(i),
		Tolerance:      c.tolerance,
		Reference:      c.Reference,
		Modes:          c.Modes,
		Period:         c.Period,
		NoiseAmplitude: c.Noise,
		GapPeriod:      gap,
		GapRate:        c.GapRate,
		MaxCycles:      c.MaxCycles,
	}
}

// ParseSeed parses 1 to 16 hex digits with an optional 0x prefix.
func ParseSeed(s string) (uint64, error) {
	digits := strings.TrimSpace(s)
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		digits = digits[2:]
	}

	if digits == "" || len(digits) > 16 {
		return 0, errors.Wrapf(ErrInvalidSeed, "%q", s)
	}

	v, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidSeed, "%q", s)
	}

	return v, nil
}

// FormatSeed renders a seed the way ParseSeed reads it back.
func FormatSeed(seed uint64) string {
	return fmt.Sprintf("%X", seed)
}

// RandomSeed draws a seed from the system entropy source.
func RandomSeed() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, errors.Wrap(err, "config: entropy seed")
	}

	return binary.LittleEndian.Uint64(b[:]), nil
}

func envFlag(v string) bool {
	v = strings.TrimSpace(v)

	return v != "" && v != "0" && !strings.EqualFold(v, "false")
}
