// Package fixed holds the two's-complement helpers shared by the stimulus
// generator, the device model and the verification engine.
package fixed

import "math"

// RoundHalfEven converts x to an integer using convergent rounding at
// one-decimal granularity: x is scaled by 10 and rounded, and when the
// resulting tenths digit is exactly 5 the value is rounded to the even
// neighbour, for either sign. Everything else rounds to nearest.
//
// Example: RoundHalfEven(2.5) = 2, RoundHalfEven(3.5) = 4,
// RoundHalfEven(-2.5) = -2.
func RoundHalfEven(x float64) int64 {
	nr := int64(math.Round(x * 10))

	switch nr % 10 {
	case 5:
		if q := nr / 10; q%2 != 0 {
			return q + 1
		}

		return nr / 10
	case -5:
		if q := nr / 10; q%2 != 0 {
			return q - 1
		}

		return nr / 10
	}

	return int64(math.Round(x))
}

// TruncateSigned interprets the low w bits of u as a two's-complement value.
// Bit w-1 is the sign; bits above w are sign-extended when it is set and
// cleared otherwise. Panics if w is outside [1, 64].
func TruncateSigned(u uint64, w int) int64 {
	checkWidth(w)

	if w == 64 {
		return int64(u)
	}

	if (u>>(w-1))&1 == 1 {
		u |= ^uint64(0) << w
	} else {
		u &= (uint64(1) << w) - 1
	}

	return int64(u)
}

// Encode returns the w-bit two's-complement bit pattern of v. It is the
// inverse of TruncateSigned for values that fit in w bits.
func Encode(v int64, w int) uint64 {
	checkWidth(w)

	if w == 64 {
		return uint64(v)
	}

	return uint64(v) & ((uint64(1) << w) - 1)
}

// CeilLog2 returns the smallest k with 2^k >= n.
// For n == 0 it returns math.MinInt64.
func CeilLog2(n uint64) int64 {
	if n == 0 {
		return math.MinInt64
	}

	pow2 := n&(n-1) == 0

	var k int64
	for n>>1 >= 1 {
		n >>= 1
		k++
	}

	if !pow2 {
		k++
	}

	return k
}

// IsPowerOf2 reports whether n is a positive power of two.
func IsPowerOf2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// MaxAmplitude returns the largest positive value of a w-bit signed integer.
func MaxAmplitude(w int) int64 {
	checkWidth(w)

	if w == 64 {
		return math.MaxInt64
	}

	return int64(1)<<(w-1) - 1
}

// MinValue returns the most negative value of a w-bit signed integer.
func MinValue(w int) int64 {
	checkWidth(w)

	if w == 64 {
		return math.MinInt64
	}

	return -(int64(1) << (w - 1))
}

// Saturate clamps v into the w-bit signed range and reports whether it had to.
func Saturate(v int64, w int) (int64, bool) {
	hi, lo := MaxAmplitude(w), MinValue(w)

	switch {
	case v > hi:
		return hi, true
	case v < lo:
		return lo, true
	default:
		return v, false
	}
}

// ShiftRoundHalfEven is an arithmetic right shift by s with convergent
// rounding of the discarded bits.
func ShiftRoundHalfEven(v int64, s uint) int64 {
	if s == 0 {
		return v
	}

	if s >= 63 {
		return 0
	}

	q := v >> s
	r := v & (int64(1)<<s - 1)
	half := int64(1) << (s - 1)

	if r > half || (r == half && q&1 == 1) {
		q++
	}

	return q
}

func checkWidth(w int) {
	if w <= 0 || w > 64 {
		panic("fixed: width out of range [1, 64]")
	}
}
