package umalloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// chunkFor returns the payload size of the growth chunk serving a request of
// size bytes: size*GrowthFactor, halved until it fits MaxChunk. Alloc caps
// size at MaxChunk, so the result never drops below size.
func (a *Allocator) chunkFor(size int) int {
	chunk, ok := buf.MulOverflowSafe(size, a.cfg.GrowthFactor)
	if !ok {
		chunk = a.cfg.MaxChunk
	}
	for chunk > a.cfg.MaxChunk {
		chunk /= 2
	}
	return chunk
}

// extend grows the heap for a request of size bytes and returns the allocated
// block serving it. The grown chunk enters the heap through release, so it
// merges with a free tail block and obeys every free-list invariant before it
// is split again.
func (a *Allocator) extend(size int) (int, error) {
	chunk := a.chunkFor(size)
	total := format.HeaderSize + chunk

	if a.onGrow != nil {
		a.onGrow(chunk)
	}

	off, err := a.g.Grow(total)
	if err != nil {
		a.stats.FailedGrows++
		a.log.Warn("grow failed", "request", size, "chunk", chunk, "err", err)
		return 0, fmt.Errorf("grow %d bytes for %d-byte request: %w: %w", total, size, ErrOutOfMemory, err)
	}
	if off != a.brk {
		return 0, fmt.Errorf("grow returned 0x%X, break at 0x%X: %w", off, a.brk, ErrBadRegion)
	}
	a.brk = off + total
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(total)

	a.log.Debug("grow", "request", size, "chunk", chunk, "offset", off, "break", a.brk)

	if err := format.PutBlock(a.data(), off, chunk, true); err != nil {
		return 0, fmt.Errorf("%w: grow: %w", ErrCorrupt, err)
	}
	if chunk == size {
		return off, nil
	}

	a.release(off)
	pred := a.find(size)
	if format.Next(a.data(), pred) == format.Nil {
		return 0, fmt.Errorf("%w: grown chunk at 0x%X not on the free list", ErrCorrupt, off)
	}
	return a.place(pred, size)
}
