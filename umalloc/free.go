package umalloc

import "github.com/joshuapare/heapkit/internal/format"

// Free returns the block at p to the heap. p must come from Alloc and must not
// have been freed since.
func (a *Allocator) Free(p Ptr) error {
	a.stats.FreeCalls++

	if !a.ready {
		return a.misuse("free", p, ErrNotInitialized)
	}
	blk, err := a.blockOf(p)
	if err != nil {
		return a.misuse("free", p, err)
	}
	a.stats.BytesFreed += int64(format.Size(a.data(), blk))

	a.release(blk)
	return a.selfCheck("free")
}

// release marks blk free, links it into the free list at its address-ordered
// position and merges it with free neighbors on either side. One merge per
// side suffices: no two free blocks were adjacent before the call.
func (a *Allocator) release(blk int) {
	data := a.data()
	format.Deallocate(data, blk)

	pred := a.predecessorOf(blk)

	// The sentinel never absorbs a neighbor; its size stays zero.
	cur := blk
	if pred != a.head && format.End(data, pred) == blk {
		format.Absorb(data, pred, blk)
		cur = pred
		a.stats.CoalesceBackward++
		a.log.Debug("coalesce backward", "into", pred, "block", blk)
	} else {
		format.SetNext(data, blk, format.Next(data, pred))
		format.SetNext(data, pred, blk)
	}

	if next := format.Next(data, cur); next != format.Nil && format.End(data, cur) == next {
		format.Absorb(data, cur, next)
		format.SetNext(data, cur, format.Next(data, next))
		a.stats.CoalesceForward++
		a.log.Debug("coalesce forward", "block", cur, "absorbed", next)
	}
}
