// Command fftverify drives the behavioural streaming FFT model through a
// randomized verification run and reports PASS or FAIL.
//
// Exit status is 0 when every run passes, 1 when any run fails verification
// and 2 for configuration errors.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/tebeka/atexit"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/cwbudde/fftverify"
	"github.com/cwbudde/fftverify/device"
	"github.com/cwbudde/fftverify/internal/config"
)

const (
	exitPass   = 0
	exitFail   = 1
	exitConfig = 2
)

func main() {
	stdout := bufio.NewWriter(os.Stdout)
	atexit.Register(func() { _ = stdout.Flush() })

	color := term.IsTerminal(int(os.Stdout.Fd()))

	atexit.Exit(run(os.Args[1:], os.Getenv, stdout, os.Stderr, color))
}

// outcome is the result of one run, kept until every run has finished so
// that reports print in run order.
type outcome struct {
	out    bytes.Buffer
	report fftverify.Report
	err    error
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer, color bool) int {
	cfg, err := config.Parse(args, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitPass
		}

		fmt.Fprintf(stderr, "fftverify: %v\n", err)

		return exitConfig
	}

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	outcomes := make([]*outcome, cfg.Runs)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range outcomes {
		oc := &outcome{}
		outcomes[i] = oc

		g.Go(func() error {
			return runOnce(cfg, i, logger.With("run", i), oc)
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "fftverify: %v\n", err)

		return exitConfig
	}

	failed := 0

	for i, oc := range outcomes {
		_, _ = stdout.Write(oc.out.Bytes())

		seed := config.FormatSeed(cfg.RunSeed(i))

		if oc.err != nil {
			fmt.Fprintf(stdout, "run %d (seed %s) aborted: %v\n", i, seed, oc.err)
		}

		if oc.err != nil || !oc.report.Passed() {
			failed++

			fmt.Fprintf(stdout, "run %d failed, rerun with -seed %s\n", i, seed)
		}
	}

	if cfg.Runs > 1 {
		fmt.Fprintf(stdout, "%d of %d runs passed\n", cfg.Runs-failed, cfg.Runs)
	}

	fmt.Fprintln(stdout, verdict(failed == 0, color))

	if failed > 0 {
		return exitFail
	}

	return exitPass
}

// runOnce builds a private model, engine and trace file for run i. Only
// setup failures are returned; verification results land in oc.
func runOnce(cfg *config.Config, i int, logger *slog.Logger, oc *outcome) error {
	md, err := device.NewModel(cfg.ModelConfig())
	if err != nil {
		return err
	}

	ec := cfg.Engine(i)
	ec.Logger = logger

	if cfg.Trace {
		f, err := os.Create(cfg.TracePath(i))
		if err != nil {
			return err
		}
		defer f.Close()

		ec.Trace = f
	}

	eng, err := fftverify.New(md, ec)
	if err != nil {
		return err
	}

	if err := eng.WriteBanner(&oc.out); err != nil {
		return err
	}

	fmt.Fprintf(&oc.out, "\tModel latency:      %d\n", md.Latency())

	if cfg.Trace {
		fmt.Fprintf(&oc.out, "\tTrace:              %s\n", cfg.TracePath(i))
	}

	oc.report, oc.err = eng.Run()

	_, err = oc.report.WriteTo(&oc.out)

	return err
}

func verdict(passed, color bool) string {
	const (
		green = "\x1b[32m"
		red   = "\x1b[31m"
		reset = "\x1b[0m"
	)

	text, code := "PASS", green
	if !passed {
		text, code = "FAIL", red
	}

	if !color {
		return text
	}

	return code + text + reset
}
