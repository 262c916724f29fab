// Package format houses the low-level block header codec for the heap arena.
// The goal is to keep the packed header layout confined here so higher-level
// packages work with decoded sizes, flags and offsets only.
package format

// Block header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    8     size | flags. Payload size in bytes (multiple of 16); bit 0 is
//	              the allocated flag, bits 1-3 are reserved and must be zero.
//	0x08    8     Free-list successor offset. Zero (Nil) when unlinked.
//	0x10    ...   Payload.
const (
	// HeaderSize is the number of bytes used by the header preceding every
	// block (free or allocated).
	HeaderSize = 0x10

	// SizeOffset is the offset of the packed size/flag word within the header.
	SizeOffset = 0x00

	// NextOffset is the offset of the free-list link within the header.
	NextOffset = 0x08

	// Alignment is the required alignment of block headers, payloads and
	// payload sizes.
	Alignment = 16

	// AlignmentMask is the bitmask used for aligning to 16-byte boundaries (Alignment - 1).
	AlignmentMask = Alignment - 1

	// Nil is the free-list terminator. Offset 0 always holds the sentinel
	// head, which is never a successor of any block.
	Nil = 0
)

const (
	// AllocatedBit marks a block as handed out to a client.
	AllocatedBit uint64 = 0x1

	// ReservedMask covers the flag bits freed up by alignment but not in use.
	ReservedMask uint64 = AlignmentMask &^ AllocatedBit

	// SizeMask extracts the payload size from the packed word.
	SizeMask uint64 = ^uint64(AlignmentMask)
)
