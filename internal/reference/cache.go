package reference

import (
	"sync"

	m "github.com/cwbudde/fftverify/internal/math"
)

// radix2Tables holds the immutable per-size data of a radix-2 plan.
type radix2Tables struct {
	twiddle []complex128
	bitrev  []int
}

// tableCache shares radix2Tables between plans of the same size.
// Entries are never mutated after they are stored.
var tableCache sync.Map // map[int]*radix2Tables

func tablesFor(n int) *radix2Tables {
	if v, ok := tableCache.Load(n); ok {
		return v.(*radix2Tables)
	}

	t := &radix2Tables{
		twiddle: m.ComputeTwiddleFactors(n),
		bitrev:  m.ComputeBitReversalIndices(n),
	}

	actual, _ := tableCache.LoadOrStore(n, t)

	return actual.(*radix2Tables)
}
