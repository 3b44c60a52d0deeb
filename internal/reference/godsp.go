package reference

import "github.com/mjibson/go-dsp/fft"

// goDSPPlan delegates to mjibson/go-dsp. The library caches its factors
// per size internally, so the plan only carries the length.
type goDSPPlan struct {
	n int
}

func newGoDSPPlan(n int) *goDSPPlan {
	return &goDSPPlan{n: n}
}

func (p *goDSPPlan) Name() string { return EngineGoDSP }

func (p *goDSPPlan) Len() int { return p.n }

func (p *goDSPPlan) Forward(dst, src []complex128) error {
	if err := validate(p.n, dst, src); err != nil {
		return err
	}

	copy(dst, fft.FFT(src))

	return nil
}
