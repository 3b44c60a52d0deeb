package reference

import (
	"math"
)

// dftPlan evaluates the DFT sum directly. It is O(n²) and only meant as
// ground truth for small sizes.
type dftPlan struct {
	n       int
	roots   []complex128
	scratch []complex128
}

func newDFTPlan(n int) *dftPlan {
	roots := make([]complex128, n)
	for k := range roots {
		angle := -2 * math.Pi * float64(k) / float64(n)
		roots[k] = complex(math.Cos(angle), math.Sin(angle))
	}

	return &dftPlan{n: n, roots: roots, scratch: make([]complex128, n)}
}

func (p *dftPlan) Name() string { return EngineDFT }

func (p *dftPlan) Len() int { return p.n }

func (p *dftPlan) Forward(dst, src []complex128) error {
	if err := validate(p.n, dst, src); err != nil {
		return err
	}

	for k := range p.n {
		var sum complex128
		for j, x := range src {
			sum += x * p.roots[(j*k)%p.n]
		}

		p.scratch[k] = sum
	}

	copy(dst, p.scratch)

	return nil
}
