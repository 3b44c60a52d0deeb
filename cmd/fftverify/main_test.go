package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func TestRunPass(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := run([]string{"-len", "16", "-inw", "8", "-outw", "13", "-frames", "6", "-seed", "1"},
		noEnv, &stdout, &stderr, false)

	require.Equal(t, exitPass, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Seed:               1\n")
	assert.Contains(t, out, "Model latency:      4\n")
	assert.Contains(t, out, "PASS!\n")
	assert.True(t, strings.HasSuffix(out, "PASS\n"))
	assert.Empty(t, stderr.String())
}

func TestRunParallelWithTraces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	traceFile := filepath.Join(dir, "waves.vcd")

	var stdout, stderr bytes.Buffer

	code := run([]string{"-len", "8", "-inw", "8", "-outw", "12", "-frames", "3", "-runs", "3", "-seed", "A0"},
		func(k string) string {
			switch k {
			case "DUMPTRACES":
				return "1"
			case "DUMP_F":
				return traceFile
			default:
				return ""
			}
		}, &stdout, &stderr, false)

	require.Equal(t, exitPass, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "3 of 3 runs passed\n")

	for i, seed := range []string{"A0", "A1", "A2"} {
		assert.Contains(t, out, "Seed:               "+seed+"\n")

		data, err := os.ReadFile(filepath.Join(dir, "waves_"+string(rune('0'+i))+".vcd"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "$enddefinitions $end")
	}
}

func TestRunFailure(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	code := run([]string{"-len", "8", "-inw", "8", "-outw", "12", "-frames", "4", "-tolerance", "const:0",
		"-modes", "noise", "-seed", "0x2f"}, noEnv, &stdout, &stderr, true)

	assert.Equal(t, exitFail, code)
	assert.Contains(t, stdout.String(), "FAIL!\n")
	assert.Contains(t, stdout.String(), "run 0 failed, rerun with -seed 2F\n")
	assert.Contains(t, stdout.String(), "\x1b[31mFAIL\x1b[0m")

	// Mismatches are logged by default, without -v.
	assert.Contains(t, stderr.String(), "level=WARN")
	assert.Contains(t, stderr.String(), "output mismatch")
}

func TestRunLogsClipByDefault(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	// A 1-bit growth budget is far too narrow for a 16-point transform.
	code := run([]string{"-len", "16", "-inw", "8", "-outw", "9", "-frames", "3", "-tolerance", "const:1e9",
		"-modes", "sinusoid", "-period", "4", "-seed", "5"},
		noEnv, &stdout, &stderr, false)

	assert.Equal(t, exitFail, code)
	assert.Contains(t, stderr.String(), "internal clip detected")
	assert.Contains(t, stderr.String(), "frame=")
}

func TestRunConfigError(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer

	assert.Equal(t, exitConfig, run([]string{"-len", "100"}, noEnv, &stdout, &stderr, false))
	assert.Contains(t, stderr.String(), "power of 2")

	stderr.Reset()
	assert.Equal(t, exitConfig, run([]string{"-twiddle", "2"}, noEnv, &stdout, &stderr, false))

	stderr.Reset()
	assert.Equal(t, exitPass, run([]string{"-h"}, noEnv, &stdout, &stderr, false))
	assert.Contains(t, stderr.String(), "-tolerance")
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "PASS", verdict(true, false))
	assert.Equal(t, "FAIL", verdict(false, false))
	assert.Equal(t, "\x1b[32mPASS\x1b[0m", verdict(true, true))
}
