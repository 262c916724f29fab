package format

import "errors"

var (
	// ErrMisaligned indicates a block size or offset that is not a multiple of 16.
	ErrMisaligned = errors.New("format: misaligned block")
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrReservedBits indicates a header with reserved flag bits set.
	ErrReservedBits = errors.New("format: reserved header bits set")
)
