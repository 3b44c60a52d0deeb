package reference

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

func randomFrame(rnd *rand.Rand, n int) []complex128 {
	frame := make([]complex128, n)
	for i := range frame {
		frame[i] = complex(rnd.Float64()*2-1, rnd.Float64()*2-1)
	}

	return frame
}

func TestEnginesMatchDFT(t *testing.T) {
	t.Parallel()

	for _, name := range Engines() {
		for _, n := range []int{2, 4, 8, 16, 64, 256} {
			t.Run(fmt.Sprintf("%s/%d", name, n), func(t *testing.T) {
				t.Parallel()

				rnd := rand.New(rand.NewSource(int64(n)))
				src := randomFrame(rnd, n)

				plan, err := New(name, n)
				if err != nil {
					t.Fatalf("New(%q, %d): %v", name, n, err)
				}

				truth, err := New(EngineDFT, n)
				if err != nil {
					t.Fatalf("New(dft, %d): %v", n, err)
				}

				got := make([]complex128, n)
				want := make([]complex128, n)

				if err := plan.Forward(got, src); err != nil {
					t.Fatalf("Forward: %v", err)
				}

				if err := truth.Forward(want, src); err != nil {
					t.Fatalf("dft Forward: %v", err)
				}

				tol := 1e-9 * float64(n)
				for k := range n {
					if cmplx.Abs(got[k]-want[k]) > tol {
						t.Errorf("bin %d: got %v want %v", k, got[k], want[k])
					}
				}
			})
		}
	}
}

func TestForwardImpulse(t *testing.T) {
	t.Parallel()

	const (
		n    = 8
		bin  = 3
		ampl = 127.0
	)

	plan, err := New(EngineNative, n)
	if err != nil {
		t.Fatal(err)
	}

	src := make([]complex128, n)
	src[bin] = ampl

	dst := make([]complex128, n)
	if err := plan.Forward(dst, src); err != nil {
		t.Fatal(err)
	}

	for k := range n {
		angle := -2 * math.Pi * float64(bin*k) / n

		want := complex(ampl*math.Cos(angle), ampl*math.Sin(angle))
		if cmplx.Abs(dst[k]-want) > 1e-9 {
			t.Errorf("bin %d: got %v want %v", k, dst[k], want)
		}

		if math.Abs(cmplx.Abs(dst[k])-ampl) > 1e-9 {
			t.Errorf("bin %d: |X| = %v, want %v", k, cmplx.Abs(dst[k]), ampl)
		}
	}
}

func TestForwardInPlace(t *testing.T) {
	t.Parallel()

	rnd := rand.New(rand.NewSource(7))
	src := randomFrame(rnd, 32)

	for _, name := range Engines() {
		plan, err := New(name, 32)
		if err != nil {
			t.Fatal(err)
		}

		want := make([]complex128, 32)
		if err := plan.Forward(want, src); err != nil {
			t.Fatal(err)
		}

		buf := append([]complex128(nil), src...)
		if err := plan.Forward(buf, buf); err != nil {
			t.Fatal(err)
		}

		for k := range buf {
			if cmplx.Abs(buf[k]-want[k]) > 1e-9 {
				t.Errorf("%s: in-place bin %d = %v, want %v", name, k, buf[k], want[k])
			}
		}
	}
}

func TestNewInvalid(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, -4, 3, 12} {
		if _, err := New(EngineNative, n); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("New(native, %d) error = %v, want ErrInvalidLength", n, err)
		}
	}

	if _, err := New("fftw", 8); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("New(fftw) error = %v, want ErrUnknownEngine", err)
	}
}

func TestForwardLengthMismatch(t *testing.T) {
	t.Parallel()

	for _, name := range Engines() {
		plan, err := New(name, 8)
		if err != nil {
			t.Fatal(err)
		}

		err = plan.Forward(make([]complex128, 8), make([]complex128, 4))
		if !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("%s: error = %v, want ErrLengthMismatch", name, err)
		}

		if plan.Name() != name || plan.Len() != 8 {
			t.Errorf("%s: Name/Len = %q/%d", name, plan.Name(), plan.Len())
		}
	}
}

func TestTablesShared(t *testing.T) {
	t.Parallel()

	a := newNativePlan(64)
	b := newNativePlan(64)

	if a.tables != b.tables {
		t.Error("plans of the same size should share twiddle tables")
	}

	if &a.scratch[0] == &b.scratch[0] {
		t.Error("plans must not share scratch buffers")
	}
}

func BenchmarkForward(b *testing.B) {
	for _, name := range Engines() {
		if name == EngineDFT {
			continue
		}

		b.Run(name, func(b *testing.B) {
			plan, err := New(name, 1024)
			if err != nil {
				b.Fatal(err)
			}

			src := randomFrame(rand.New(rand.NewSource(1)), 1024)
			dst := make([]complex128, 1024)

			b.ReportAllocs()

			for range b.N {
				_ = plan.Forward(dst, src)
			}
		})
	}
}
