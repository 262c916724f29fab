package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/pkg/trace"
)

var (
	genOps     int
	genSeed    int64
	genMaxSize sizeValue = 4096
	genOutput  string
)

func init() {
	cmd := newGenCmd()
	cmd.Flags().IntVar(&genOps, "ops", 1000, "Number of allocations (the trace holds twice as many operations)")
	cmd.Flags().Int64Var(&genSeed, "seed", 1, "Random seed")
	cmd.Flags().Var(&genMaxSize, "max-size", "Largest request size (e.g. 4KB)")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Write the trace to a file instead of stdout")
	rootCmd.AddCommand(cmd)
}

func newGenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random allocation trace",
		Long: `The gen command writes a random trace of interleaved allocations and frees.
Every block is freed by the end of the trace. The same seed always produces the
same trace.

Example:
  umallocctl gen --ops 10000 --seed 42 -o stress.trace
  umallocctl gen --max-size 64KB`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen()
		},
	}
	return cmd
}

func runGen() error {
	if genOps <= 0 {
		return fmt.Errorf("--ops must be positive, got %d", genOps)
	}
	if genMaxSize <= 0 {
		return fmt.Errorf("--max-size must be positive")
	}
	ops := trace.Generate(genSeed, genOps, uint64(genMaxSize))

	var w io.Writer = os.Stdout
	if genOutput != "" {
		f, err := os.Create(genOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := fmt.Fprintf(w, "# umallocctl gen --ops %d --seed %d --max-size %d\n", genOps, genSeed, int(genMaxSize)); err != nil {
		return err
	}
	if err := trace.Write(w, ops); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	if genOutput != "" {
		printVerbose("Wrote %d operations to %s\n", len(ops), genOutput)
	}
	return nil
}
