package fftverify

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ToleranceFunc derives the largest acceptable per-sample error from the
// device geometry. Neither built-in formula is known to be tight for every
// architecture, so the policy is always injectable.
type ToleranceFunc func(g Geometry) float64

// GrowthTolerance allows 2^(OutputWidth-InputWidth) units of error.
func GrowthTolerance(g Geometry) float64 {
	return math.Ldexp(1, g.OutputWidth-g.InputWidth)
}

// StageTolerance allows perStage units of error per radix-2 stage, and at
// least perStage for single-point transforms.
func StageTolerance(perStage float64) ToleranceFunc {
	return func(g Geometry) float64 {
		return perStage * math.Max(1, float64(g.Stages()))
	}
}

// ConstantTolerance ignores the geometry.
func ConstantTolerance(v float64) ToleranceFunc {
	return func(Geometry) float64 { return v }
}

// ScriptTolerance evaluates a Lua expression with the globals n, iw, ow and
// stages bound to the geometry, e.g. "2^(ow-iw)" or "stages * 1.5".
// The expression is compiled once here; evaluation failures yield NaN, which
// New rejects.
func ScriptTolerance(expr string) (ToleranceFunc, error) {
	src := "return " + expr

	L := lua.NewState()
	defer L.Close()

	if _, err := L.LoadString(src); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTolerance, expr, err)
	}

	return func(g Geometry) float64 {
		v, err := evalLua(src, g)
		if err != nil {
			return math.NaN()
		}

		return v
	}, nil
}

func evalLua(src string, g Geometry) (float64, error) {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("n", lua.LNumber(g.Len))
	L.SetGlobal("iw", lua.LNumber(g.InputWidth))
	L.SetGlobal("ow", lua.LNumber(g.OutputWidth))
	L.SetGlobal("stages", lua.LNumber(g.Stages()))

	if err := L.DoString(src); err != nil {
		return 0, err
	}

	ret := L.Get(-1)
	L.Pop(1)

	num, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("expression returned %s, not a number", ret.Type())
	}

	return float64(num), nil
}

// ParseTolerance builds a policy from its command-line form:
//
//	growth          2^(ow-iw)
//	stages[:k]      k per stage (k defaults to 1)
//	const:v         fixed bound v
//	lua:<expr>      Lua expression over n, iw, ow, stages
func ParseTolerance(s string) (ToleranceFunc, error) {
	kind, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")

	switch strings.ToLower(kind) {
	case "", "growth":
		return GrowthTolerance, nil
	case "stages":
		k := 1.0

		if hasArg {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTolerance, s, err)
			}

			k = v
		}

		return StageTolerance(k), nil
	case "const":
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTolerance, s, err)
		}

		return ConstantTolerance(v), nil
	case "lua":
		return ScriptTolerance(arg)
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidTolerance, s)
	}
}
