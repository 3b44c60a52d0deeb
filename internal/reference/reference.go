// Package reference wraps the floating-point transform engines used to
// compute the expected spectrum of every input frame.
//
// All engines implement the same contract: Forward(dst, src) writes the
// unnormalized forward DFT of src into dst in natural bin order,
//
//	dst[k] = Σ src[j]·exp(-2πijk/n)
//
// Engines keep per-size plan data between calls and nothing else.
package reference

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cwbudde/fftverify/internal/fixed"
)

// Sentinel errors returned by the reference engines.
var (
	// ErrInvalidLength is returned when the transform size is not a
	// positive power of two.
	ErrInvalidLength = errors.New("reference: invalid transform length")

	// ErrLengthMismatch is returned when dst or src does not match the
	// transformer's length.
	ErrLengthMismatch = errors.New("reference: slice length mismatch")

	// ErrUnknownEngine is returned by New for an unregistered engine name.
	ErrUnknownEngine = errors.New("reference: unknown engine")
)

// Transformer computes forward DFTs of a fixed length.
type Transformer interface {
	Name() string
	Len() int
	Forward(dst, src []complex128) error
}

// Engine names accepted by New.
const (
	EngineNative = "native"
	EngineGonum  = "gonum"
	EngineGoDSP  = "go-dsp"
	EngineDFT    = "dft"
)

var constructors = map[string]func(n int) Transformer{
	EngineNative: func(n int) Transformer { return newNativePlan(n) },
	EngineGonum:  func(n int) Transformer { return newGonumPlan(n) },
	EngineGoDSP:  func(n int) Transformer { return newGoDSPPlan(n) },
	EngineDFT:    func(n int) Transformer { return newDFTPlan(n) },
}

// New returns a transformer of length n backed by the named engine.
func New(name string, n int) (Transformer, error) {
	if !fixed.IsPowerOf2(n) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, n)
	}

	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownEngine, name, Engines())
	}

	return ctor(n), nil
}

// Engines lists the registered engine names in sorted order.
func Engines() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func validate(n int, dst, src []complex128) error {
	if len(dst) != n || len(src) != n {
		return fmt.Errorf("%w: dst=%d src=%d want %d", ErrLengthMismatch, len(dst), len(src), n)
	}

	return nil
}
