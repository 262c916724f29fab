package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Block is the decoded view of a block header. It is the only representation
// of a header that leaves this package; the packed word stays here.
type Block struct {
	Offset    int  // Header offset within the arena
	Size      int  // Payload size in bytes, excluding the header
	Allocated bool // True while the block is handed out to a client
	Next      int  // Free-list successor, Nil when unlinked
}

// Payload returns the offset of the block's first payload byte.
func (b Block) Payload() int { return b.Offset + HeaderSize }

// End returns the offset of the physically following block.
func (b Block) End() int { return b.Offset + HeaderSize + b.Size }

// The accessors below assume off denotes a valid header inside data. Passing
// anything else is a caller bug and faults on the slice bounds check.

func word(data []byte, off int) uint64 {
	return buf.U64LE(data[off+SizeOffset : off+HeaderSize])
}

func putWord(data []byte, off int, w uint64) {
	buf.PutU64LE(data[off+SizeOffset:off+NextOffset], w)
}

// IsAllocated reports whether the block at off is marked allocated.
func IsAllocated(data []byte, off int) bool {
	return word(data, off)&AllocatedBit != 0
}

// Size returns the payload size of the block at off with the flag bits masked out.
func Size(data []byte, off int) int {
	return int(word(data, off) & SizeMask)
}

// Reserved returns the reserved flag bits of the block at off. Always zero
// for headers written by this package.
func Reserved(data []byte, off int) uint64 {
	return word(data, off) & ReservedMask
}

// Next returns the free-list successor of the block at off.
func Next(data []byte, off int) int {
	return int(buf.U64LE(data[off+NextOffset : off+HeaderSize]))
}

// SetNext links the block at off to next.
func SetNext(data []byte, off, next int) {
	buf.PutU64LE(data[off+NextOffset:off+HeaderSize], uint64(next))
}

// SetSize rewrites the payload size of the block at off, keeping its flag.
func SetSize(data []byte, off, size int) error {
	if size < 0 || !IsAligned(size) {
		return fmt.Errorf("set size %d at 0x%X: %w", size, off, ErrMisaligned)
	}
	putWord(data, off, uint64(size)|word(data, off)&AllocatedBit)
	return nil
}

// Allocate marks the block at off allocated and clears its free-list link.
func Allocate(data []byte, off int) {
	putWord(data, off, word(data, off)|AllocatedBit)
	SetNext(data, off, Nil)
}

// Deallocate clears the allocated flag of the block at off. The link is left
// for the caller to splice.
func Deallocate(data []byte, off int) {
	putWord(data, off, word(data, off)&^AllocatedBit)
}

// Absorb extends the block at off over the block at next, which must follow it
// physically. The flags of off are kept and the link of off is left alone.
// Both sizes come from masked words, so the sum stays aligned.
func Absorb(data []byte, off, next int) {
	w := word(data, off)
	size := (w & SizeMask) + HeaderSize + (word(data, next) & SizeMask)
	putWord(data, off, size|w&^SizeMask)
}

// PutBlock initializes a header at off with the given payload size and flag
// and clears its link. The size must already be 16-byte aligned.
func PutBlock(data []byte, off, size int, allocated bool) error {
	if size < 0 || !IsAligned(size) {
		return fmt.Errorf("put block size %d at 0x%X: %w", size, off, ErrMisaligned)
	}
	w := uint64(size)
	if allocated {
		w |= AllocatedBit
	}
	putWord(data, off, w)
	SetNext(data, off, Nil)
	return nil
}

// PayloadOf converts a header offset to its payload offset.
func PayloadOf(off int) int { return off + HeaderSize }

// BlockOf converts a payload offset back to its header offset.
func BlockOf(payload int) int { return payload - HeaderSize }

// End returns the offset of the block physically following the one at off.
func End(data []byte, off int) int {
	return off + HeaderSize + Size(data, off)
}

// Decode reads the header at off with full bounds checking. It is meant for
// read-only consumers that must tolerate corrupted arenas.
func Decode(data []byte, off int) (Block, error) {
	hdr, ok := buf.Slice(data, off, HeaderSize)
	if !ok {
		return Block{}, fmt.Errorf("block at 0x%X (len 0x%X): %w", off, len(data), ErrTruncated)
	}
	w := buf.U64LE(hdr[SizeOffset:])
	b := Block{
		Offset:    off,
		Size:      int(w & SizeMask),
		Allocated: w&AllocatedBit != 0,
		Next:      int(buf.U64LE(hdr[NextOffset:])),
	}
	if w&ReservedMask != 0 {
		return b, fmt.Errorf("block at 0x%X: %w (0x%X)", off, ErrReservedBits, w&ReservedMask)
	}
	if b.Size < 0 {
		return b, fmt.Errorf("block at 0x%X: size overflows int: %w", off, ErrTruncated)
	}
	return b, nil
}
