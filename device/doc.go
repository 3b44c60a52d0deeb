// Package device defines the synchronous hardware boundary driven by the
// verification engine, together with a CPU-backed behavioural model of a
// streaming fixed-point FFT and a fault-injection wrapper.
//
// A Device is advanced one clock cycle at a time with Tick. Inputs and
// outputs carry raw two's-complement bit patterns in the low bits of a
// uint64, exactly as they would appear on the block's ports.
package device
