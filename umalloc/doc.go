// Package umalloc provides a user-space dynamic memory allocator over a
// contiguous arena that grows on demand.
//
// # Overview
//
// The allocator manages a single address-ordered free list threaded through
// the headers of the blocks it manages, with first-fit placement. It needs no
// bookkeeping memory outside the arena: every block carries a 16-byte header
// (packed size/flag word plus free-list link), and the list is anchored by a
// zero-size sentinel block at the start of the arena.
//
// # Allocator Lifecycle
//
//	g := sbrk.NewMemory(64 << 20)
//	a, err := umalloc.New(g, nil)
//	if err != nil {
//	    return err
//	}
//	if err := a.Init(); err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	p, buf, err := a.Alloc(100) // buf has len 112, p is 16-byte aligned
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	if err := a.Free(p); err != nil {
//	    return err
//	}
//
// # Placement
//
// Alloc rounds the request up to 16 bytes and walks the free list from the
// sentinel for the first block whose payload fits. A block with room for the
// request plus a header plus at least 16 bytes is split: the allocated part is
// carved from its high end, so the free remainder keeps its address and its
// place in the list. Otherwise the whole block is unlinked and handed out.
//
// # Growth
//
// When nothing fits, the heap grows by request*GrowthFactor bytes, halved
// until it fits MaxChunk. The new region is formatted as one allocated block,
// released through Free (so it merges with a free tail block left by earlier
// growth) and split again. Requests above MaxChunk are rejected.
//
// # Coalescing
//
// Free reinserts the block at its address-ordered position, merging with the
// free block that ends where it starts and with the free block that starts
// where it ends. No two free blocks are ever physically adjacent afterwards.
//
// # Errors
//
// Caller misuse (freeing a bad or already freed pointer, zero-size or
// oversized requests, use before Init) returns errors matching ErrMisuse, or
// panics when Config.PanicOnMisuse is set. Growth failure returns
// ErrOutOfMemory and leaves the heap untouched.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize every call,
// including Check and Stats, behind a single mutex.
//
// # Related Packages
//
//   - github.com/joshuapare/heapkit/umalloc/sbrk: Growth primitives
//   - github.com/joshuapare/heapkit/umalloc/verify: Heap consistency checker
//   - github.com/joshuapare/heapkit/umalloc/metrics: Prometheus collector
package umalloc
