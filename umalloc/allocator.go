package umalloc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/umalloc/verify"
)

// Allocator is a first-fit allocator over one address-ordered free list.
// Every structure it maintains lives inside the arena handed out by its Grower.
type Allocator struct {
	g   Grower
	cfg Config
	log *slog.Logger

	head  int // sentinel header offset
	brk   int // end of the last granted region
	ready bool

	stats Stats

	// Test hook: called with the chunk payload size before each growth (nil in production)
	onGrow func(chunk int)
}

// New creates an allocator on top of g.
//
// Parameters:
//   - g: The growth primitive backing the heap
//   - cfg: Tuning (use nil for DefaultConfig)
//
// The heap is not usable until Init succeeds.
func New(g Grower, cfg *Config) (*Allocator, error) {
	if g == nil {
		return nil, errors.New("umalloc: nil grower")
	}
	if cfg == nil {
		def := DefaultConfig()
		cfg = &def
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Allocator{
		g:   g,
		cfg: *cfg,
		log: cfg.logger(),
	}, nil
}

// Init carves the sentinel head out of the first growth and makes the heap
// usable. On failure nothing has been written and Init may be retried.
func (a *Allocator) Init() error {
	if a.ready {
		return a.misuse("init", 0, ErrAlreadyInitialized)
	}
	off, err := a.g.Grow(format.HeaderSize)
	if err != nil {
		a.stats.FailedGrows++
		return fmt.Errorf("init: %w: %w", ErrOutOfMemory, err)
	}
	if !format.IsAligned(off) {
		return fmt.Errorf("init: sentinel at 0x%X: %w", off, ErrBadRegion)
	}
	if err := format.PutBlock(a.g.Bytes(), off, 0, false); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	a.head = off
	a.brk = off + format.HeaderSize
	a.ready = true
	a.stats.GrowCalls++
	a.stats.GrowBytes += format.HeaderSize

	a.log.Debug("heap initialized", "sentinel", off)
	return nil
}

// Close tears the heap down, closing the grower when it is an io.Closer.
// Every pointer handed out becomes invalid.
func (a *Allocator) Close() error {
	a.ready = false
	if c, ok := a.g.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Check runs the consistency checker and returns zero when every invariant
// holds, otherwise the verify.Violation mask.
func (a *Allocator) Check() int {
	return a.Verify().Code()
}

// Verify runs the consistency checker and returns the full report.
func (a *Allocator) Verify() *verify.Report {
	if !a.ready {
		return verify.Heap(nil, 0)
	}
	return verify.Heap(a.data(), a.head)
}

// Stats returns a copy of the allocator counters.
func (a *Allocator) Stats() Stats { return a.stats }

// HeapSize returns the number of bytes obtained from the growth primitive.
func (a *Allocator) HeapSize() int {
	if !a.ready {
		return 0
	}
	return a.brk - a.head
}

// FreeBytes walks the free list and sums the payload of every free block.
func (a *Allocator) FreeBytes() int {
	if !a.ready {
		return 0
	}
	data := a.data()
	total := 0
	for cur := format.Next(data, a.head); cur != format.Nil; cur = format.Next(data, cur) {
		total += format.Size(data, cur)
	}
	return total
}

// Blocks returns every block of the heap in address order, sentinel first.
// The walk stops early at the first undecodable header.
func (a *Allocator) Blocks() []Block {
	if !a.ready {
		return nil
	}
	data := a.data()
	var out []Block
	for off := a.head; off < len(data); {
		b, err := format.Decode(data, off)
		if err != nil {
			break
		}
		out = append(out, b)
		off = b.End()
	}
	return out
}

// Payload returns the payload of the allocated block at p.
func (a *Allocator) Payload(p Ptr) ([]byte, error) {
	if !a.ready {
		return nil, a.misuse("payload", p, ErrNotInitialized)
	}
	blk, err := a.blockOf(p)
	if err != nil {
		return nil, a.misuse("payload", p, err)
	}
	data := a.data()
	return data[format.PayloadOf(blk):format.End(data, blk)], nil
}

// data returns the arena up to the allocator's own break. Bytes the grower
// handed out in a rejected growth stay outside the heap.
func (a *Allocator) data() []byte { return a.g.Bytes()[:a.brk] }

// blockOf validates a client pointer and returns its header offset. Besides
// the header checks, the block must be reachable on the physical chain:
// between the last free block below it and itself there are only allocated
// blocks, so the walk from that free block's end must land on it exactly.
func (a *Allocator) blockOf(p Ptr) (int, error) {
	data := a.data()
	if p == 0 || p > uint64(len(data)) {
		return 0, ErrBadPointer
	}
	off := format.BlockOf(int(p))
	if off <= a.head || !format.IsAligned(off) || !buf.Has(data, off, format.HeaderSize) {
		return 0, ErrBadPointer
	}
	if format.Reserved(data, off) != 0 || format.End(data, off) > len(data) {
		return 0, ErrBadPointer
	}
	if !format.IsAllocated(data, off) {
		return 0, ErrDoubleFree
	}

	cur := format.End(data, a.predecessorOf(off))
	for cur < off && buf.Has(data, cur, format.HeaderSize) {
		cur = format.End(data, cur)
	}
	if cur != off {
		return 0, ErrBadPointer
	}
	return off, nil
}

// misuse reports a caller contract violation: as an error, or as a panic when
// the configuration asks for assertion-style failures.
func (a *Allocator) misuse(op string, p Ptr, err error) error {
	a.stats.Misuse++
	err = fmt.Errorf("%s(0x%X): %w", op, p, err)
	a.log.Error("contract violation", "op", op, "ptr", p, "err", err)
	if a.cfg.PanicOnMisuse {
		panic(err)
	}
	return err
}

// selfCheck runs the checker after a mutating operation when configured to.
func (a *Allocator) selfCheck(op string) error {
	if !a.cfg.CheckEveryOp {
		return nil
	}
	r := a.Verify()
	if r.OK() {
		return nil
	}
	a.log.LogAttrs(context.Background(), slog.LevelError, "heap check failed",
		slog.String("op", op), slog.String("violations", r.Violations.String()))
	return fmt.Errorf("%w after %s: %w", ErrCorrupt, op, r.Err())
}
