package umalloc

import "github.com/joshuapare/heapkit/internal/format"

// Ptr is a payload address: a byte offset into the arena. Zero is never a
// valid payload and serves as the nil pointer.
type Ptr = uint64

// Block is the decoded view of one block header.
type Block = format.Block

// HeaderSize is the per-block overhead in bytes.
const HeaderSize = format.HeaderSize

// Alignment is the alignment of every payload address and payload size.
const Alignment = format.Alignment

// Grower is the growth primitive the allocator sits on.
//
// Grow extends the granted range by exactly n bytes and returns the offset of
// the first new byte, which must equal the previous break. Bytes returns the
// granted range [0:break); its backing array must not move between calls.
type Grower interface {
	Grow(n int) (int, error)
	Bytes() []byte
}

// Stats holds allocator counters for testing and instrumentation.
type Stats struct {
	AllocCalls       int   // Total Alloc() calls
	FreeCalls        int   // Total Free() calls
	AllocFastPath    int   // Allocations satisfied from the free list
	AllocSlowPath    int   // Allocations that required growth
	ExactFits        int   // Blocks handed out whole (no split)
	SplitCount       int   // Block splits
	CoalesceForward  int   // Merges with the following free block
	CoalesceBackward int   // Merges into the preceding free block
	GrowCalls        int   // Successful growth primitive calls
	GrowBytes        int64 // Bytes obtained from the growth primitive
	FailedGrows      int   // Growth primitive failures
	BytesAllocated   int64 // Payload bytes handed out
	BytesFreed       int64 // Payload bytes returned
	Misuse           int   // Contract violations reported
}
