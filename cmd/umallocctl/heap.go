package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/pkg/trace"
	"github.com/joshuapare/heapkit/umalloc"
	"github.com/joshuapare/heapkit/umalloc/sbrk"
)

// heapOptions holds the flags shared by every command that builds a heap.
type heapOptions struct {
	backend       string
	limit         sizeValue
	growthFactor  int
	maxChunk      sizeValue
	check         bool
	panicOnMisuse bool
}

func defaultHeapOptions() heapOptions {
	return heapOptions{
		backend:      "memory",
		limit:        64 << 20,
		growthFactor: umalloc.DefaultGrowthFactor,
	}
}

var heapFlags = defaultHeapOptions()

func addHeapFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&heapFlags.backend, "backend", heapFlags.backend, "Growth backend: memory or mmap")
	cmd.Flags().Var(&heapFlags.limit, "limit", "Maximum heap size (e.g. 64MB)")
	cmd.Flags().IntVar(&heapFlags.growthFactor, "growth-factor", heapFlags.growthFactor, "Growth over-allocation factor (power of two)")
	cmd.Flags().Var(&heapFlags.maxChunk, "max-chunk", "Largest growth chunk and request (default 64 pages)")
	cmd.Flags().BoolVar(&heapFlags.check, "check", false, "Run the heap checker after every operation")
	cmd.Flags().BoolVar(&heapFlags.panicOnMisuse, "panic-on-misuse", false, "Panic on allocator contract violations")
}

// newHeap builds and initializes an allocator from the heap flags.
func newHeap() (*umalloc.Allocator, error) {
	var g umalloc.Grower
	switch heapFlags.backend {
	case "memory":
		g = sbrk.NewMemory(int(heapFlags.limit))
	case "mmap":
		m, err := sbrk.Reserve(int(heapFlags.limit))
		if err != nil {
			return nil, fmt.Errorf("failed to reserve %s: %w", heapFlags.limit.String(), err)
		}
		g = m
	default:
		return nil, fmt.Errorf("unknown backend %q (want memory or mmap)", heapFlags.backend)
	}

	cfg := umalloc.DefaultConfig()
	cfg.GrowthFactor = heapFlags.growthFactor
	if heapFlags.maxChunk != 0 {
		cfg.MaxChunk = int(heapFlags.maxChunk)
	}
	cfg.PanicOnMisuse = heapFlags.panicOnMisuse
	if verbose && !quiet {
		cfg.Logger = newLogger()
	}

	a, err := umalloc.New(g, &cfg)
	if err != nil {
		if c, ok := g.(io.Closer); ok {
			c.Close()
		}
		return nil, err
	}
	if err := a.Init(); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize heap: %w", err)
	}
	printVerbose("Heap: backend=%s limit=%s growth=%d max-chunk=%d\n",
		heapFlags.backend, heapFlags.limit.String(), cfg.GrowthFactor, cfg.MaxChunk)
	return a, nil
}

// readTrace parses the trace at path, or stdin for "-".
func readTrace(path string) ([]trace.Op, error) {
	if path == "-" {
		return trace.Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	ops, err := trace.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	printVerbose("Loaded %d operations from %s\n", len(ops), path)
	return ops, nil
}

// replayOptions returns the trace options for the current flags.
func replayOptions() trace.Options {
	opts := trace.Options{Check: heapFlags.check}
	if verbose && !quiet {
		opts.Logger = newLogger()
	}
	return opts
}
