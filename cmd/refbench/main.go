// Command refbench times the reference transform engines, and optionally the
// behavioural device model, across frame lengths.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/cwbudde/fftverify"
	"github.com/cwbudde/fftverify/device"
	"github.com/cwbudde/fftverify/internal/cpu"
	"github.com/cwbudde/fftverify/internal/fixed"
)

type benchResult struct {
	size    int
	engine  string
	nsPerOp float64
}

func main() {
	var (
		sizeList   = flag.String("sizes", "64,256,1024,4096", "comma-separated frame lengths")
		engineList = flag.String("engines", strings.Join(fftverify.ReferenceEngines(), ","), "comma-separated reference engines")
		iters      = flag.Int("iters", 50, "benchmark iterations")
		warmup     = flag.Int("warmup", 5, "warmup iterations")
		model      = flag.Bool("model", false, "also time one frame through the device model")
		inWidth    = flag.Int("inw", 12, "model input width in bits")
		seed       = flag.Uint64("seed", 1, "rng seed")
	)
	flag.Parse()

	sizes := parseSizes(*sizeList)
	if len(sizes) == 0 {
		fmt.Println("no sizes specified")
		return
	}

	engines := parseList(*engineList)

	rnd := rand.New(rand.NewPCG(*seed, 0))

	fmt.Printf("host=%s iters=%d warmup=%d\n", cpu.DetectFeatures(), *iters, *warmup)
	fmt.Printf("%8s  %10s  %12s\n", "size", "engine", "ns/op")

	for _, n := range sizes {
		results := benchmarkSize(rnd, n, *iters, *warmup, engines)

		if *model {
			res, err := benchmarkModel(rnd, n, *inWidth, *iters, *warmup)
			if err != nil {
				fmt.Fprintf(os.Stderr, "model %d: %v\n", n, err)
			} else {
				results = append(results, res)
			}
		}

		sort.Slice(results, func(i, j int) bool {
			return results[i].nsPerOp < results[j].nsPerOp
		})

		for _, res := range results {
			fmt.Printf("%8d  %10s  %12.1f\n", n, res.engine, res.nsPerOp)
		}
	}
}

func benchmarkSize(rnd *rand.Rand, n, iters, warmup int, engines []string) []benchResult {
	src := make([]complex128, n)
	for i := range src {
		src[i] = complex(rnd.Float64(), rnd.Float64())
	}

	dst := make([]complex128, n)

	results := make([]benchResult, 0, len(engines))

	for _, name := range engines {
		ref, err := fftverify.NewReference(name, n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %d: %v\n", name, n, err)
			continue
		}

		ok := true

		for range warmup {
			if err := ref.Forward(dst, src); err != nil {
				ok = false
				break
			}
		}

		if !ok {
			continue
		}

		runtime.GC()

		start := time.Now()

		for range iters {
			if err := ref.Forward(dst, src); err != nil {
				ok = false
				break
			}
		}

		if !ok {
			continue
		}

		elapsed := time.Since(start)

		results = append(results, benchResult{
			size:    n,
			engine:  name,
			nsPerOp: float64(elapsed.Nanoseconds()) / float64(iters),
		})
	}

	return results
}

// benchmarkModel clocks one gap-free frame of noise through the model per
// iteration. The model is never reset, so frames pipeline back to back.
func benchmarkModel(rnd *rand.Rand, n, iw, iters, warmup int) (benchResult, error) {
	geom := device.Geometry{Len: n, InputWidth: iw}
	geom.OutputWidth = iw + geom.Stages() + 1

	md, err := device.NewModel(device.ModelConfig{Geometry: geom})
	if err != nil {
		return benchResult{}, err
	}

	ampl := fixed.MaxAmplitude(iw)
	frame := make([]device.Inputs, n)

	for i := range frame {
		frame[i] = device.Inputs{
			Valid: true,
			I:     fixed.Encode(rnd.Int64N(2*ampl+1)-ampl, iw),
			Q:     fixed.Encode(rnd.Int64N(2*ampl+1)-ampl, iw),
		}
	}

	md.Tick(device.Inputs{Init: true})

	for range warmup {
		for _, in := range frame {
			md.Tick(in)
		}
	}

	runtime.GC()

	start := time.Now()

	for range iters {
		for _, in := range frame {
			md.Tick(in)
		}
	}

	elapsed := time.Since(start)

	return benchResult{
		size:    n,
		engine:  "model",
		nsPerOp: float64(elapsed.Nanoseconds()) / float64(iters),
	}, nil
}

func parseSizes(list string) []int {
	parts := parseList(list)

	out := make([]int, 0, len(parts))
	for _, part := range parts {
		var n int

		_, err := fmt.Sscanf(part, "%d", &n)
		if err != nil || !fixed.IsPowerOf2(n) {
			continue
		}

		out = append(out, n)
	}

	return out
}

func parseList(list string) []string {
	var out []string

	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}
