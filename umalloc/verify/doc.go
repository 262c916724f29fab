// Package verify provides the heap consistency checker for umalloc arenas.
//
// # Overview
//
// Heap walks a raw arena twice: once along the physical block chain (header
// by header, from the sentinel to the break) and once along the free list
// (from the sentinel's link). It never writes to the arena and never panics,
// however corrupted the headers are, so it can run after every allocator
// operation in tests.
//
// # Invariants
//
// Each violation sets one bit of Report.Violations:
//
//	FreeListAllocated   1   an allocated block is reachable from the free list
//	Ordering            2   free list not strictly address ordered (or cyclic)
//	Overlap             4   a block runs past its neighbor or past the break
//	Uncoalesced         8   two physically adjacent free blocks
//	Sentinel           16   sentinel head has a size, an allocated flag, or is unreadable
//	Alignment          32   header off the 16-byte grid or reserved flag bits set
//	Linkage            64   free list and block chain disagree
//
// Report.Code returns the mask as an int: zero means consistent.
//
// # Usage
//
//	r := verify.Heap(arena.Bytes(), 0)
//	if !r.OK() {
//	    return fmt.Errorf("heap corrupted: %w", r.Err())
//	}
//
// Every finding is also recorded as a *ValidationError carrying the offending
// header offset and details, capped at MaxErrors entries per report.
package verify
