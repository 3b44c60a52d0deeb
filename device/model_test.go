package device

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/fftverify/internal/fixed"
	"github.com/cwbudde/fftverify/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, n, iw, ow, latency int) *Model {
	t.Helper()

	md, err := NewModel(ModelConfig{
		Geometry: Geometry{Len: n, InputWidth: iw, OutputWidth: ow},
		Latency:  latency,
	})
	require.NoError(t, err)

	return md
}

// feed pushes one frame without gaps and collects everything the model
// emits until the frame has drained.
func feed(md *Model, frame [][2]int64) []Outputs {
	g := md.Geometry()

	var outs []Outputs

	for _, s := range frame {
		out := md.Tick(Inputs{
			Valid: true,
			I:     fixed.Encode(s[0], g.InputWidth),
			Q:     fixed.Encode(s[1], g.InputWidth),
		})
		if out.Valid {
			outs = append(outs, out)
		}
	}

	for len(outs) < g.Len {
		if out := md.Tick(Inputs{}); out.Valid {
			outs = append(outs, out)
		}
	}

	return outs
}

func TestTwiddleROMMatchesUnitCircle(t *testing.T) {
	t.Parallel()

	for _, n := range []int{2, 4, 8, 16, 64, 1024} {
		rom := newTwiddleROM(n, DefaultTwiddleWidth)
		scale := float64(rom.scale)

		for k := range n / 2 {
			c, s := rom.at(k)
			angle := -2 * math.Pi * float64(k) / float64(n)

			// One-decimal convergent rounding treats [x.50, x.55) as a tie.
			assert.InDelta(t, scale*math.Cos(angle), float64(c), 0.55, "n=%d k=%d cos", n, k)
			assert.InDelta(t, scale*math.Sin(angle), float64(s), 0.55, "n=%d k=%d sin", n, k)

			if k > 0 && k < n/4 {
				assert.Equal(t, fixed.RoundHalfEven(scale*math.Cos(angle)), c, "n=%d k=%d cos word", n, k)
				assert.Equal(t, fixed.RoundHalfEven(scale*math.Sin(angle)), s, "n=%d k=%d sin word", n, k)
			}
		}
	}
}

func TestModelMatchesReference(t *testing.T) {
	t.Parallel()

	for _, n := range []int{2, 4, 8, 16, 64, 256} {
		stages := int(fixed.CeilLog2(uint64(n)))
		iw := 10
		ow := iw + stages + 1

		md := newTestModel(t, n, iw, ow, 0)
		plan, err := reference.New(reference.EngineDFT, n)
		require.NoError(t, err)

		rnd := rand.New(rand.NewSource(int64(n)))
		ampl := fixed.MaxAmplitude(iw)
		// Rounding noise doubles in variance per remaining stage.
		tol := math.Sqrt(float64(n)) + 2

		for range 3 {
			frame := make([][2]int64, n)
			src := make([]complex128, n)

			for k := range frame {
				frame[k] = [2]int64{rnd.Int63n(2*ampl+1) - ampl, rnd.Int63n(2*ampl+1) - ampl}
				src[k] = complex(float64(frame[k][0]), float64(frame[k][1]))
			}

			want := make([]complex128, n)
			require.NoError(t, plan.Forward(want, src))

			outs := feed(md, frame)
			require.Len(t, outs, n)

			for k, out := range outs {
				assert.Equal(t, k == 0, out.NewFrame, "n=%d bin %d NewFrame", n, k)
				assert.False(t, out.Clip, "n=%d bin %d clipped", n, k)

				gotI := float64(fixed.TruncateSigned(out.I, ow))
				gotQ := float64(fixed.TruncateSigned(out.Q, ow))
				assert.InDelta(t, real(want[k]), gotI, tol, "n=%d bin %d I", n, k)
				assert.InDelta(t, imag(want[k]), gotQ, tol, "n=%d bin %d Q", n, k)
			}
		}
	}
}

func TestModelLatency(t *testing.T) {
	t.Parallel()

	const n = 4

	for _, latency := range []int{1, 3, 10} {
		md := newTestModel(t, n, 8, 11, latency)
		require.Equal(t, latency, md.Latency())

		var first int

		for cycle := 1; cycle < 100; cycle++ {
			out := md.Tick(Inputs{Valid: cycle <= n, I: 1})
			if out.Valid {
				first = cycle
				break
			}
		}

		assert.Equal(t, n+latency, first, "latency %d", latency)
	}
}

func TestModelIgnoresGaps(t *testing.T) {
	t.Parallel()

	md := newTestModel(t, 4, 8, 11, 1)

	// Valid on alternate cycles: the frame completes on cycle 7.
	var got []Outputs

	for cycle := 1; cycle <= 20; cycle++ {
		in := Inputs{Valid: cycle%2 == 1 && cycle <= 7, I: fixed.Encode(10, 8)}
		if out := md.Tick(in); out.Valid {
			got = append(got, out)
		}
	}

	require.Len(t, got, 4)
	// Constant input of 10 concentrates 40 in the DC bin.
	assert.Equal(t, int64(40), fixed.TruncateSigned(got[0].I, 11))

	for _, out := range got[1:] {
		assert.Zero(t, fixed.TruncateSigned(out.I, 11))
		assert.Zero(t, fixed.TruncateSigned(out.Q, 11))
	}
}

func TestModelResetDropsState(t *testing.T) {
	t.Parallel()

	md := newTestModel(t, 4, 8, 11, 2)

	// Complete one frame, then reset before it drains.
	for range 4 {
		md.Tick(Inputs{Valid: true, I: 5})
	}

	md.Tick(Inputs{Init: true})

	for range 2 {
		md.Tick(Inputs{Valid: true, I: 5})
	}

	for range 20 {
		assert.False(t, md.Tick(Inputs{}).Valid, "output after reset")
	}
}

func TestModelClipsNarrowOutput(t *testing.T) {
	t.Parallel()

	// Output width equal to the input width cannot hold the growth of a
	// full-scale DC frame.
	md := newTestModel(t, 8, 8, 8, 1)
	frame := make([][2]int64, 8)

	for k := range frame {
		frame[k] = [2]int64{127, 0}
	}

	outs := feed(md, frame)
	require.Len(t, outs, 8)
	assert.True(t, outs[0].Clip)
	assert.Equal(t, int64(127), fixed.TruncateSigned(outs[0].I, 8))
}

func TestNewModelRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ModelConfig
		want error
	}{
		{"length", ModelConfig{Geometry: Geometry{Len: 6, InputWidth: 8, OutputWidth: 12}}, ErrInvalidLength},
		{"narrow output", ModelConfig{Geometry: Geometry{Len: 8, InputWidth: 12, OutputWidth: 8}}, ErrInvalidWidth},
		{"wide", ModelConfig{Geometry: Geometry{Len: 8, InputWidth: 8, OutputWidth: 63}}, ErrInvalidWidth},
		{"twiddle", ModelConfig{Geometry: Geometry{Len: 8, InputWidth: 8, OutputWidth: 50}, TwiddleWidth: 20}, ErrInvalidWidth},
		{"latency", ModelConfig{Geometry: Geometry{Len: 8, InputWidth: 8, OutputWidth: 12}, Latency: -1}, ErrInvalidLatency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewModel(tt.cfg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGeometryStages(t *testing.T) {
	t.Parallel()

	for k := range 13 {
		g := Geometry{Len: 1 << k, InputWidth: 8, OutputWidth: 8 + k + 1}
		assert.Equal(t, k, g.Stages())
		assert.NoError(t, g.Validate())
	}
}
