package umalloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Alloc hands out a block of at least n bytes and returns its payload address
// and the payload itself (len is the block size, n rounded up to 16 or more).
// The payload contents are undefined.
func (a *Allocator) Alloc(n uint64) (Ptr, []byte, error) {
	a.stats.AllocCalls++

	if !a.ready {
		return 0, nil, a.misuse("alloc", 0, ErrNotInitialized)
	}
	if n == 0 {
		return 0, nil, a.misuse("alloc", 0, ErrZeroSize)
	}
	if n > uint64(a.cfg.MaxChunk) {
		return 0, nil, a.misuse("alloc", 0, fmt.Errorf("%w: %d > %d", ErrTooLarge, n, a.cfg.MaxChunk))
	}
	size := format.Align16(int(n))

	var blk int
	var err error
	pred := a.find(size)
	if format.Next(a.data(), pred) == format.Nil {
		blk, err = a.extend(size)
		if err != nil {
			return 0, nil, err
		}
		a.stats.AllocSlowPath++
	} else {
		blk, err = a.place(pred, size)
		if err != nil {
			return 0, nil, err
		}
		a.stats.AllocFastPath++
	}

	data := a.data()
	end := format.End(data, blk)
	a.stats.BytesAllocated += int64(end - format.PayloadOf(blk))

	if err := a.selfCheck("alloc"); err != nil {
		return 0, nil, err
	}
	return Ptr(format.PayloadOf(blk)), data[format.PayloadOf(blk):end], nil
}

// split carves an allocated block of size bytes from the high end of the free
// block blk and returns it. blk keeps its offset and its free-list links and
// shrinks to the remainder.
func (a *Allocator) split(blk, size int) (int, error) {
	data := a.data()
	rem := format.Size(data, blk) - size - format.HeaderSize
	if err := format.SetSize(data, blk, rem); err != nil {
		return 0, fmt.Errorf("%w: split 0x%X: %w", ErrCorrupt, blk, err)
	}
	carved := format.PayloadOf(blk) + rem
	if err := format.PutBlock(data, carved, size, true); err != nil {
		return 0, fmt.Errorf("%w: split 0x%X: %w", ErrCorrupt, blk, err)
	}
	a.stats.SplitCount++

	a.log.Debug("split", "block", blk, "remainder", rem, "carved", carved, "size", size)
	return carved, nil
}
