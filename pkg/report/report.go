// Package report renders allocator statistics, checker reports and block maps
// as human-readable text.
package report

import (
	"io"

	"github.com/inhies/go-bytesize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/heapkit/umalloc"
	"github.com/joshuapare/heapkit/umalloc/verify"
)

// Printer formats reports for one locale.
type Printer struct {
	p *message.Printer
}

// New returns a printer for tag. Numbers are grouped per the locale.
func New(tag language.Tag) *Printer {
	return &Printer{p: message.NewPrinter(tag)}
}

// Default returns an English printer.
func Default() *Printer { return New(language.English) }

// Size renders n bytes as a grouped count with a binary-unit approximation.
func (r *Printer) Size(n int64) string {
	if n < 1024 {
		return r.p.Sprintf("%d B", n)
	}
	return r.p.Sprintf("%d B (%s)", n, bytesize.New(float64(n)).String())
}

// Heap is the allocator-level view rendered by Stats.
type Heap struct {
	Stats     umalloc.Stats
	HeapBytes int
	FreeBytes int
}

// Stats writes the allocator counters.
func (r *Printer) Stats(w io.Writer, h Heap) error {
	st := h.Stats
	ew := &errWriter{w: w}
	ew.printf(r.p, "Heap:\n")
	ew.printf(r.p, "  Size:            %s\n", r.Size(int64(h.HeapBytes)))
	ew.printf(r.p, "  Free payload:    %s\n", r.Size(int64(h.FreeBytes)))
	if h.HeapBytes > 0 {
		ew.printf(r.p, "  Free ratio:      %.1f%%\n", float64(h.FreeBytes)*100/float64(h.HeapBytes))
	}
	ew.printf(r.p, "\nRequests:\n")
	ew.printf(r.p, "  Alloc calls:     %d (%d from free list, %d after growth)\n", st.AllocCalls, st.AllocFastPath, st.AllocSlowPath)
	ew.printf(r.p, "  Free calls:      %d\n", st.FreeCalls)
	ew.printf(r.p, "  Bytes allocated: %s\n", r.Size(st.BytesAllocated))
	ew.printf(r.p, "  Bytes freed:     %s\n", r.Size(st.BytesFreed))
	if st.Misuse > 0 {
		ew.printf(r.p, "  Misuse:          %d\n", st.Misuse)
	}
	ew.printf(r.p, "\nBlocks:\n")
	ew.printf(r.p, "  Splits:          %d\n", st.SplitCount)
	ew.printf(r.p, "  Exact fits:      %d\n", st.ExactFits)
	ew.printf(r.p, "  Merges:          %d backward, %d forward\n", st.CoalesceBackward, st.CoalesceForward)
	ew.printf(r.p, "\nGrowth:\n")
	ew.printf(r.p, "  Calls:           %d (%d failed)\n", st.GrowCalls, st.FailedGrows)
	ew.printf(r.p, "  Bytes:           %s\n", r.Size(st.GrowBytes))
	return ew.err
}

// Check writes a checker report: a one-line verdict, the walk totals and every
// recorded finding.
func (r *Printer) Check(w io.Writer, rep *verify.Report) error {
	ew := &errWriter{w: w}
	if rep.OK() {
		ew.printf(r.p, "Heap check: OK\n")
	} else {
		ew.printf(r.p, "Heap check: FAILED (code %d: %s)\n", rep.Code(), rep.Violations)
	}
	ew.printf(r.p, "  Blocks:    %d\n", rep.Blocks)
	ew.printf(r.p, "  Allocated: %d blocks, %s\n", rep.AllocatedBlocks, r.Size(int64(rep.AllocatedBytes)))
	ew.printf(r.p, "  Free:      %d blocks, %s\n", rep.FreeBlocks, r.Size(int64(rep.FreeBytes)))
	for _, e := range rep.Errors {
		ew.printf(r.p, "  - %s\n", e.Error())
	}
	if rep.Truncated > 0 {
		ew.printf(r.p, "  ... %d more findings\n", rep.Truncated)
	}
	return ew.err
}

// Blocks writes one line per block in address order. A positive limit caps
// the number of lines.
func (r *Printer) Blocks(w io.Writer, blocks []umalloc.Block, limit int) error {
	ew := &errWriter{w: w}
	ew.printf(r.p, "%-12s %12s  %-9s  %s\n", "OFFSET", "SIZE", "STATE", "NEXT")
	for i, b := range blocks {
		if limit > 0 && i >= limit {
			ew.printf(r.p, "... %d more blocks\n", len(blocks)-limit)
			break
		}
		state := "free"
		switch {
		case i == 0 && b.Size == 0 && !b.Allocated:
			state = "sentinel"
		case b.Allocated:
			state = "allocated"
		}
		next := "-"
		if b.Next != 0 {
			next = r.p.Sprintf("0x%08X", b.Next)
		}
		ew.printf(r.p, "0x%08X   %12d  %-9s  %s\n", b.Offset, b.Size, state, next)
	}
	return ew.err
}

// errWriter keeps the first write error so callers check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(p *message.Printer, format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = p.Fprintf(ew.w, format, args...)
}
