package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/pkg/report"
	"github.com/joshuapare/heapkit/pkg/trace"
	"github.com/joshuapare/heapkit/umalloc"
	"github.com/joshuapare/heapkit/umalloc/metrics"
)

var (
	replayMetrics bool
)

func init() {
	cmd := newReplayCmd()
	addHeapFlags(cmd)
	cmd.Flags().BoolVar(&replayMetrics, "metrics", false, "Print allocator metrics in Prometheus text format")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace",
		Long: `The replay command runs every operation of a trace against a fresh heap.
Each payload is filled with a pattern derived from its id and verified before
it is freed, so blocks handed out twice are caught. With --check the heap
checker runs after every operation.

Example:
  umallocctl replay workload.trace
  umallocctl replay workload.trace --check --backend mmap --limit 256MB
  umallocctl gen --ops 1000 | umallocctl replay - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
	return cmd
}

// ReplaySummary is the JSON form of a replay.
type ReplaySummary struct {
	Trace         string        `json:"trace"`
	Ops           int           `json:"ops"`
	Allocs        int           `json:"allocs"`
	Frees         int           `json:"frees"`
	Checks        int           `json:"checks"`
	LiveBlocks    int           `json:"live_blocks"`
	PeakLiveBytes uint64        `json:"peak_live_bytes"`
	HeapBytes     int           `json:"heap_bytes"`
	FreeBytes     int           `json:"free_bytes"`
	CheckCode     int           `json:"check_code"`
	Violations    string        `json:"violations,omitempty"`
	Stats         umalloc.Stats `json:"stats"`
	Error         string        `json:"error,omitempty"`
}

func runReplay(args []string) error {
	path := args[0]

	ops, err := readTrace(path)
	if err != nil {
		return err
	}
	a, err := newHeap()
	if err != nil {
		return err
	}
	defer a.Close()

	res, replayErr := trace.Replay(a, ops, replayOptions())

	summary := ReplaySummary{
		Trace:         path,
		Ops:           res.Ops,
		Allocs:        res.Allocs,
		Frees:         res.Frees,
		Checks:        res.Checks,
		LiveBlocks:    res.LiveBlocks,
		PeakLiveBytes: res.PeakLiveBytes,
		HeapBytes:     a.HeapSize(),
		FreeBytes:     a.FreeBytes(),
		CheckCode:     res.Report.Code(),
		Stats:         a.Stats(),
	}
	if !res.Report.OK() {
		summary.Violations = res.Report.Violations.String()
	}
	if replayErr != nil {
		summary.Error = replayErr.Error()
	}

	switch {
	case replayMetrics:
		if err := writeMetrics(a); err != nil {
			return err
		}
	case jsonOut:
		if err := printJSON(summary); err != nil {
			return err
		}
	default:
		printReplay(summary, res)
	}

	if replayErr != nil {
		var opErr *trace.OpError
		if errors.As(replayErr, &opErr) && errors.Is(replayErr, umalloc.ErrMisuse) {
			printError("trace misuses the allocator at op %d\n", opErr.Index)
		}
		return fmt.Errorf("replay failed: %w", replayErr)
	}
	if !res.Report.OK() {
		return fmt.Errorf("heap inconsistent after replay (code %d)", res.Report.Code())
	}
	return nil
}

func printReplay(s ReplaySummary, res *trace.Result) {
	r := report.Default()
	printInfo("\nReplay: %s\n", s.Trace)
	printInfo("  Operations: %d (%d allocs, %d frees, %d checks)\n", s.Ops, s.Allocs, s.Frees, s.Checks)
	printInfo("  Live at end: %d blocks\n", s.LiveBlocks)
	printInfo("  Peak live payload: %s\n\n", r.Size(int64(s.PeakLiveBytes)))

	w := stdout()
	if err := r.Stats(w, report.Heap{Stats: s.Stats, HeapBytes: s.HeapBytes, FreeBytes: s.FreeBytes}); err != nil {
		printError("%v\n", err)
	}
	printInfo("\n")
	if err := r.Check(w, res.Report); err != nil {
		printError("%v\n", err)
	}
}

// writeMetrics gathers the allocator collector and prints every family in the
// Prometheus text exposition format.
func writeMetrics(a *umalloc.Allocator) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector(a, true)); err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	mfs, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return err
		}
	}
	return nil
}
