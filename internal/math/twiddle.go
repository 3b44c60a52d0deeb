package math

import "math"

// ComputeTwiddleFactors returns the roots of unity W_n^k = exp(-2πik/n)
// for k = 0..n/2-1, which is all a radix-2 transform of size n needs.
func ComputeTwiddleFactors(n int) []complex128 {
	if n <= 1 {
		return nil
	}

	twiddle := make([]complex128, n/2)
	for k := range twiddle {
		angle := -TwoPi * float64(k) / float64(n)
		twiddle[k] = complex(math.Cos(angle), math.Sin(angle))
	}

	return twiddle
}
