package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/pkg/report"
	"github.com/joshuapare/heapkit/pkg/trace"
	"github.com/joshuapare/heapkit/umalloc"
)

var (
	dumpUntil     int
	dumpMaxBlocks int
)

func init() {
	cmd := newDumpCmd()
	addHeapFlags(cmd)
	cmd.Flags().IntVar(&dumpUntil, "until", 0, "Stop after this many operations (0 = whole trace)")
	cmd.Flags().IntVar(&dumpMaxBlocks, "max-blocks", 0, "Limit the number of blocks shown (0 = all)")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <trace>",
		Short: "Show the block map after replaying a trace",
		Long: `The dump command replays a trace (or its first --until operations) and
prints every block of the resulting heap in address order: the sentinel, each
allocated block and each free block with its free-list successor.

Example:
  umallocctl dump workload.trace --until 20
  umallocctl dump workload.trace --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

// DumpOutput is the JSON form of a block map.
type DumpOutput struct {
	Trace     string          `json:"trace"`
	Ops       int             `json:"ops"`
	HeapBytes int             `json:"heap_bytes"`
	CheckCode int             `json:"check_code"`
	Blocks    []umalloc.Block `json:"blocks"`
}

func runDump(args []string) error {
	ops, err := readTrace(args[0])
	if err != nil {
		return err
	}
	if dumpUntil < 0 {
		return fmt.Errorf("--until must not be negative")
	}
	if dumpUntil > 0 && dumpUntil < len(ops) {
		ops = ops[:dumpUntil]
	}

	a, err := newHeap()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := trace.Replay(a, ops, replayOptions())
	if err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	blocks := a.Blocks()
	if jsonOut {
		return printJSON(DumpOutput{
			Trace:     args[0],
			Ops:       res.Ops,
			HeapBytes: a.HeapSize(),
			CheckCode: res.Report.Code(),
			Blocks:    blocks,
		})
	}

	printInfo("Heap after %d operations: %d blocks, %d bytes\n\n", res.Ops, len(blocks), a.HeapSize())
	if err := report.Default().Blocks(stdout(), blocks, dumpMaxBlocks); err != nil {
		return err
	}
	if !res.Report.OK() {
		printInfo("\nCheck code %d: %s\n", res.Report.Code(), res.Report.Violations)
	}
	return nil
}
