package reference

import "gonum.org/v1/gonum/dsp/fourier"

// gonumPlan delegates to gonum's complex FFT.
type gonumPlan struct {
	n    int
	plan *fourier.CmplxFFT
	out  []complex128
}

func newGonumPlan(n int) *gonumPlan {
	return &gonumPlan{
		n:    n,
		plan: fourier.NewCmplxFFT(n),
		out:  make([]complex128, n),
	}
}

func (p *gonumPlan) Name() string { return EngineGonum }

func (p *gonumPlan) Len() int { return p.n }

func (p *gonumPlan) Forward(dst, src []complex128) error {
	if err := validate(p.n, dst, src); err != nil {
		return err
	}

	copy(dst, p.plan.Coefficients(p.out, src))

	return nil
}
