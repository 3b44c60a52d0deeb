// Package fftverify is a self-checking harness for streaming fixed-point FFT
// blocks.
//
// An Engine clocks a device.Device cycle by cycle, feeds it pulses, complex
// sinusoids and noise with gaps in the valid signal, transforms every
// completed input frame with a floating-point reference, and checks each
// output sample against the oldest pending reference sample. Data errors
// beyond the tolerance, frame-start flag errors and internal clip events are
// counted; a run passes when all three counts are zero.
//
// Basic usage:
//
//	dev, _ := device.NewModel(device.ModelConfig{
//	    Geometry: device.Geometry{Len: 64, InputWidth: 12, OutputWidth: 19},
//	})
//	eng, err := fftverify.New(dev, fftverify.Config{Frames: 30, Seed: 0xC0FFEE})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := eng.Run()
//	if err != nil {
//	    log.Fatal(err) // desynchronized or stalled
//	}
//	report.WriteTo(os.Stderr)
package fftverify
