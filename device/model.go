package device

import (
	"fmt"

	"github.com/cwbudde/fftverify/internal/fixed"
	m "github.com/cwbudde/fftverify/internal/math"
	"github.com/cwbudde/fftverify/internal/queue"
)

// Model defaults.
const (
	DefaultTwiddleWidth = 18
	DefaultLatency      = 4
)

// ModelConfig configures a behavioural FFT model.
type ModelConfig struct {
	Geometry

	// TwiddleWidth is the signed width of the twiddle ROM words.
	// Zero selects DefaultTwiddleWidth.
	TwiddleWidth int

	// Latency is the number of cycles between accepting the last sample of
	// a frame and presenting its first output. Zero selects DefaultLatency.
	Latency int
}

type outputSample struct {
	ready    int64
	i, q     int64
	newFrame bool
	clip     bool
}

// Model is a streaming radix-2 FFT computed in integer arithmetic.
//
// Samples are collected while valid is high. When a frame is complete it is
// transformed with a quantized twiddle ROM and convergent rounding after every
// multiply; each butterfly result is saturated to the output width, which
// raises the clip strobe when that sample leaves the device. Outputs stream in
// natural order, one per cycle, with NewFrame high on bin 0.
type Model struct {
	geom    Geometry
	latency int64
	shift   uint
	rom     *twiddleROM
	bitrev  []int

	re, im  []int64
	wr, wi  []int64
	clipped []bool
	fill    int
	cycle   int64
	pending *queue.Deque[outputSample]
}

// NewModel validates cfg and returns a model in its reset state.
func NewModel(cfg ModelConfig) (*Model, error) {
	if err := cfg.Geometry.Validate(); err != nil {
		return nil, err
	}

	if cfg.TwiddleWidth == 0 {
		cfg.TwiddleWidth = DefaultTwiddleWidth
	}

	if cfg.TwiddleWidth < 4 || cfg.OutputWidth+cfg.TwiddleWidth > 62 {
		return nil, fmt.Errorf("%w: twiddle width %d with output width %d", ErrInvalidWidth, cfg.TwiddleWidth, cfg.OutputWidth)
	}

	if cfg.Latency == 0 {
		cfg.Latency = DefaultLatency
	}

	if cfg.Latency < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLatency, cfg.Latency)
	}

	n := cfg.Len

	return &Model{
		geom:    cfg.Geometry,
		latency: int64(cfg.Latency),
		shift:   uint(cfg.TwiddleWidth - 2),
		rom:     newTwiddleROM(n, cfg.TwiddleWidth),
		bitrev:  m.ComputeBitReversalIndices(n),
		re:      make([]int64, n),
		im:      make([]int64, n),
		wr:      make([]int64, n),
		wi:      make([]int64, n),
		clipped: make([]bool, n),
		pending: queue.New[outputSample](2 * n),
	}, nil
}

// Geometry implements Device.
func (md *Model) Geometry() Geometry { return md.geom }

// Latency returns the configured pipeline latency in cycles.
func (md *Model) Latency() int { return int(md.latency) }

// Tick implements Device.
func (md *Model) Tick(in Inputs) Outputs {
	md.cycle++

	if in.Init {
		md.fill = 0
		md.pending.Clear()

		return Outputs{}
	}

	if in.Valid {
		md.re[md.fill] = fixed.TruncateSigned(in.I, md.geom.InputWidth)
		md.im[md.fill] = fixed.TruncateSigned(in.Q, md.geom.InputWidth)
		md.fill++

		if md.fill == md.geom.Len {
			md.fill = 0
			md.transform()
			md.schedule(md.cycle + md.latency)
		}
	}

	head, ok := md.pending.Front()
	if !ok || head.ready > md.cycle {
		return Outputs{}
	}

	md.pending.PopFront()

	return Outputs{
		Valid:    true,
		NewFrame: head.newFrame,
		Clip:     head.clip,
		I:        fixed.Encode(head.i, md.geom.OutputWidth),
		Q:        fixed.Encode(head.q, md.geom.OutputWidth),
	}
}

func (md *Model) schedule(ready int64) {
	for k := range md.geom.Len {
		md.pending.PushBack(outputSample{
			ready:    ready,
			i:        md.wr[k],
			q:        md.wi[k],
			newFrame: k == 0,
			clip:     md.clipped[k],
		})
	}
}

// transform runs the fixed-point DIT over re/im into wr/wi.
func (md *Model) transform() {
	n := md.geom.Len
	ow := md.geom.OutputWidth

	for k, j := range md.bitrev {
		md.wr[k] = md.re[j]
		md.wi[k] = md.im[j]
		md.clipped[k] = false
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := n / size

		for base := 0; base < n; base += size {
			for k := range half {
				c, s := md.rom.at(k * step)
				a, b := base+k, base+k+half

				tr := fixed.ShiftRoundHalfEven(c*md.wr[b]-s*md.wi[b], md.shift)
				ti := fixed.ShiftRoundHalfEven(c*md.wi[b]+s*md.wr[b], md.shift)
				ar, ai := md.wr[a], md.wi[a]

				md.store(a, ar+tr, ai+ti, ow)
				md.store(b, ar-tr, ai-ti, ow)
			}
		}
	}
}

func (md *Model) store(k int, re, im int64, w int) {
	var cr, ci bool

	md.wr[k], cr = fixed.Saturate(re, w)
	md.wi[k], ci = fixed.Saturate(im, w)
	md.clipped[k] = md.clipped[k] || cr || ci
}
