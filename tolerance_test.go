package fftverify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTolerances(t *testing.T) {
	t.Parallel()

	g := Geometry{Len: 64, InputWidth: 12, OutputWidth: 19}

	assert.Equal(t, 128.0, GrowthTolerance(g))
	assert.Equal(t, 6.0, StageTolerance(1)(g))
	assert.Equal(t, 9.0, StageTolerance(1.5)(g))
	assert.Equal(t, 2.0, StageTolerance(2)(Geometry{Len: 1, InputWidth: 8, OutputWidth: 8}))
	assert.Equal(t, 3.25, ConstantTolerance(3.25)(g))
}

func TestScriptTolerance(t *testing.T) {
	t.Parallel()

	g := Geometry{Len: 16, InputWidth: 8, OutputWidth: 13}

	tests := []struct {
		expr string
		want float64
	}{
		{"2^(ow-iw)", 32},
		{"stages * 1.5", 6},
		{"math.sqrt(n) + 2", 6},
		{"iw", 8},
	}

	for _, tc := range tests {
		tol, err := ScriptTolerance(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.InDelta(t, tc.want, tol(g), 1e-12, tc.expr)
	}

	// The compiled policy can be evaluated repeatedly and for other geometries.
	tol, err := ScriptTolerance("n / 2")
	require.NoError(t, err)
	assert.Equal(t, 8.0, tol(g))
	assert.Equal(t, 512.0, tol(Geometry{Len: 1024, InputWidth: 8, OutputWidth: 20}))
}

func TestScriptToleranceErrors(t *testing.T) {
	t.Parallel()

	_, err := ScriptTolerance("2 ^")
	require.ErrorIs(t, err, ErrInvalidTolerance)

	tol, err := ScriptTolerance("'many'")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(tol(Geometry{Len: 8, InputWidth: 8, OutputWidth: 12})))

	tol, err = ScriptTolerance("undefined_fn()")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(tol(Geometry{Len: 8, InputWidth: 8, OutputWidth: 12})))
}

func TestParseTolerance(t *testing.T) {
	t.Parallel()

	g := Geometry{Len: 256, InputWidth: 10, OutputWidth: 19}

	tests := []struct {
		in   string
		want float64
	}{
		{"", 512},
		{"growth", 512},
		{"GROWTH", 512},
		{"stages", 8},
		{"stages:0.5", 4},
		{"const:17", 17},
		{"lua:stages + ow - iw", 17},
		{" const:1.5 ", 1.5},
	}

	for _, tc := range tests {
		tol, err := ParseTolerance(tc.in)
		require.NoError(t, err, "%q", tc.in)
		assert.Equal(t, tc.want, tol(g), "%q", tc.in)
	}

	for _, bad := range []string{"fixed", "const:", "const:abc", "stages:x", "lua:(("} {
		_, err := ParseTolerance(bad)
		assert.ErrorIs(t, err, ErrInvalidTolerance, "%q", bad)
	}
}

func TestEngineUsesInjectedTolerance(t *testing.T) {
	t.Parallel()

	md := newModel(t, 16, 8, 13)

	eng, err := New(md, Config{Tolerance: StageTolerance(2), Frames: 6})
	require.NoError(t, err)
	assert.Equal(t, 8.0, eng.Tolerance())

	report, err := eng.Run()
	require.NoError(t, err)
	assert.Equal(t, 8.0, report.Tolerance)
	assert.True(t, report.Passed(), "max error %v", report.MaxError)

	// A zero bound turns every inexact output into a data error.
	strict, err := New(newModel(t, 16, 8, 13), Config{Tolerance: ConstantTolerance(0), Frames: 6, Modes: []Mode{ModeNoise}})
	require.NoError(t, err)

	report, err = strict.Run()
	require.NoError(t, err)
	assert.Positive(t, report.DataErrors)
	assert.False(t, report.Passed())
}
