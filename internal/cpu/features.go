// Package cpu reports the host CPU features that are printed in the run
// banner and recorded in reports, so a failing run can be reproduced on a
// comparable machine.
package cpu

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
)

// Features describes CPU capabilities of the host running the harness.
type Features struct {
	HasAVX2      bool
	HasAVX512    bool
	HasSSE2      bool
	HasNEON      bool
	Architecture string
}

// DetectFeatures reports the available CPU features for the current process.
func DetectFeatures() Features {
	return Features{
		HasAVX2:      cpu.X86.HasAVX2,
		HasAVX512:    cpu.X86.HasAVX512F,
		HasSSE2:      cpu.X86.HasSSE2,
		HasNEON:      cpu.ARM64.HasASIMD,
		Architecture: runtime.GOARCH,
	}
}

// String returns e.g. "amd64 (sse2 avx2)" or "riscv64 (generic)".
func (f Features) String() string {
	var names []string

	if f.HasSSE2 {
		names = append(names, "sse2")
	}

	if f.HasAVX2 {
		names = append(names, "avx2")
	}

	if f.HasAVX512 {
		names = append(names, "avx512")
	}

	if f.HasNEON {
		names = append(names, "neon")
	}

	if len(names) == 0 {
		names = append(names, "generic")
	}

	return f.Architecture + " (" + strings.Join(names, " ") + ")"
}
