package device

import (
	"math"

	"github.com/cwbudde/fftverify/internal/fixed"
)

// twiddleROM stores a quarter wave of exp(-2πik/n) scaled by 2^(width-2)
// and rebuilds the rest of the half circle by symmetry, the way a
// synthesized ROM would.
type twiddleROM struct {
	n     int
	scale int64
	cos   []int64
	sin   []int64
}

func newTwiddleROM(n, width int) *twiddleROM {
	scale := int64(1) << (width - 2)

	quarter := n / 4
	rom := &twiddleROM{
		n:     n,
		scale: scale,
		cos:   make([]int64, quarter),
		sin:   make([]int64, quarter),
	}

	for j := range quarter {
		angle := -2 * math.Pi * float64(j) / float64(n)
		rom.cos[j] = fixed.RoundHalfEven(float64(scale) * math.Cos(angle))
		rom.sin[j] = fixed.RoundHalfEven(float64(scale) * math.Sin(angle))
	}

	return rom
}

// at returns the quantized W_n^k for k in [0, n/2).
func (r *twiddleROM) at(k int) (c, s int64) {
	quarter := r.n / 4

	switch {
	case k == 0:
		return r.scale, 0
	case k < quarter:
		return r.cos[k], r.sin[k]
	case k == quarter:
		return 0, -r.scale
	default:
		mirror := r.n/2 - k
		return -r.cos[mirror], r.sin[mirror]
	}
}
