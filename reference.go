package fftverify

import "github.com/cwbudde/fftverify/internal/reference"

// Transformer is a forward DFT of fixed length with the unnormalized
// convention dst[k] = Σ src[j]·exp(-2πijk/n), natural bin order.
type Transformer = reference.Transformer

// Reference engine names.
const (
	ReferenceNative = reference.EngineNative
	ReferenceGonum  = reference.EngineGonum
	ReferenceGoDSP  = reference.EngineGoDSP
	ReferenceDFT    = reference.EngineDFT
)

// NewReference returns a length-n transformer backed by the named engine.
// Each call returns a fresh plan; plans must not be shared between runs.
func NewReference(name string, n int) (Transformer, error) {
	return reference.New(name, n)
}

// ReferenceEngines lists the accepted engine names.
func ReferenceEngines() []string {
	return reference.Engines()
}
