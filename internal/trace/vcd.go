// Package trace records port activity as a Value Change Dump (IEEE 1364
// VCD) so runs can be inspected in a waveform viewer.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrSignalCount is returned by Dump when the number of values does not
// match the declared signals.
var ErrSignalCount = errors.New("trace: value count does not match signals")

// Signal declares one traced wire.
type Signal struct {
	Name  string
	Width int
}

// Writer emits a VCD stream. Only values that changed since the previous
// Dump are written.
type Writer struct {
	w       *bufio.Writer
	signals []Signal
	ids     []string
	last    []uint64
	started bool
	lastT   int64
}

// NewWriter writes the VCD header for signals under scope and returns a
// writer ready for Dump. Times are in picoseconds.
func NewWriter(w io.Writer, scope string, signals []Signal) (*Writer, error) {
	tw := &Writer{
		w:       bufio.NewWriter(w),
		signals: signals,
		ids:     make([]string, len(signals)),
		last:    make([]uint64, len(signals)),
		lastT:   -1,
	}

	fmt.Fprintf(tw.w, "$timescale 1ps $end\n")
	fmt.Fprintf(tw.w, "$scope module %s $end\n", scope)

	for i, s := range signals {
		tw.ids[i] = identifier(i)
		fmt.Fprintf(tw.w, "$var wire %d %s %s $end\n", s.Width, tw.ids[i], s.Name)
	}

	fmt.Fprintf(tw.w, "$upscope $end\n$enddefinitions $end\n")

	return tw, tw.w.Flush()
}

// Dump records values at time t. values[i] belongs to the i-th signal.
func (tw *Writer) Dump(t int64, values ...uint64) error {
	if len(values) != len(tw.signals) {
		return fmt.Errorf("%w: got %d, want %d", ErrSignalCount, len(values), len(tw.signals))
	}

	wroteTime := false

	for i, v := range values {
		if tw.signals[i].Width < 64 {
			v &= uint64(1)<<tw.signals[i].Width - 1
		}

		if tw.started && v == tw.last[i] {
			continue
		}

		if !wroteTime && t != tw.lastT {
			fmt.Fprintf(tw.w, "#%d\n", t)
			tw.lastT = t
		}

		wroteTime = true
		tw.last[i] = v

		if tw.signals[i].Width == 1 {
			fmt.Fprintf(tw.w, "%d%s\n", v, tw.ids[i])
		} else {
			fmt.Fprintf(tw.w, "b%s %s\n", strconv.FormatUint(v, 2), tw.ids[i])
		}
	}

	tw.started = true

	return nil
}

// Flush writes buffered data to the underlying writer.
func (tw *Writer) Flush() error {
	return tw.w.Flush()
}

// identifier returns the compact printable VCD id of signal i.
func identifier(i int) string {
	const first, span = '!', '~' - '!' + 1

	id := []byte{byte(first + i%span)}
	for i /= span; i > 0; i /= span {
		id = append(id, byte(first+i%span))
	}

	return string(id)
}
