package fftverify

import (
	"errors"

	"github.com/cwbudde/fftverify/device"
	"github.com/cwbudde/fftverify/internal/reference"
)

// Sentinel errors returned by the verification engine.
var (
	// ErrInvalidLength is returned when the device frame length is not a
	// positive power of 2. It is the same value the device package returns.
	ErrInvalidLength = device.ErrInvalidLength

	// ErrInvalidWidth is returned for unusable port widths.
	ErrInvalidWidth = device.ErrInvalidWidth

	// ErrInvalidTolerance is returned when the tolerance policy yields a
	// negative, infinite or NaN bound, or cannot be parsed.
	ErrInvalidTolerance = errors.New("fftverify: invalid tolerance")

	// ErrInvalidConfig is returned for other out-of-range configuration values.
	ErrInvalidConfig = errors.New("fftverify: invalid configuration")

	// ErrNilDevice is returned by New when no device is supplied.
	ErrNilDevice = errors.New("fftverify: nil device")

	// ErrDesync is returned when the device presents a valid output while no
	// reference sample is pending. The stimulus and output streams have
	// drifted apart, which means the latency model is wrong.
	ErrDesync = errors.New("fftverify: output without pending reference sample")

	// ErrStalled is returned when MaxCycles elapse before the requested
	// number of frames has been verified.
	ErrStalled = errors.New("fftverify: cycle budget exhausted")

	// ErrUnknownEngine is returned for an unregistered reference engine name.
	ErrUnknownEngine = reference.ErrUnknownEngine
)
