package reference

// nativePlan is an iterative radix-2 decimation-in-time FFT.
type nativePlan struct {
	n       int
	tables  *radix2Tables
	scratch []complex128
}

func newNativePlan(n int) *nativePlan {
	return &nativePlan{
		n:       n,
		tables:  tablesFor(n),
		scratch: make([]complex128, n),
	}
}

func (p *nativePlan) Name() string { return EngineNative }

func (p *nativePlan) Len() int { return p.n }

// Forward computes the transform into scratch first so dst and src may alias.
func (p *nativePlan) Forward(dst, src []complex128) error {
	if err := validate(p.n, dst, src); err != nil {
		return err
	}

	work := p.scratch
	bitrev := p.tables.bitrev
	twiddle := p.tables.twiddle

	for i, j := range bitrev {
		work[i] = src[j]
	}

	for size := 2; size <= p.n; size <<= 1 {
		half := size >> 1
		step := p.n / size

		for base := 0; base < p.n; base += size {
			for k := range half {
				w := twiddle[k*step]
				a := work[base+k]
				t := w * work[base+k+half]
				work[base+k], work[base+k+half] = a+t, a-t
			}
		}
	}

	copy(dst, work)

	return nil
}
