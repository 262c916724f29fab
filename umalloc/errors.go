package umalloc

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory indicates the growth primitive could not extend the heap.
	ErrOutOfMemory = errors.New("umalloc: out of memory")

	// ErrBadRegion indicates the growth primitive returned a region that is
	// misaligned or does not start at the previous break.
	ErrBadRegion = errors.New("umalloc: growth primitive returned an unusable region")

	// ErrCorrupt indicates the heap failed its own consistency check.
	ErrCorrupt = errors.New("umalloc: heap corrupted")

	// ErrMisuse is the root of every caller contract violation.
	ErrMisuse = errors.New("umalloc: contract violation")
)

var (
	// ErrNotInitialized indicates use of an allocator before Init (or after Close).
	ErrNotInitialized = fmt.Errorf("%w: allocator not initialized", ErrMisuse)

	// ErrAlreadyInitialized indicates a second Init call.
	ErrAlreadyInitialized = fmt.Errorf("%w: allocator already initialized", ErrMisuse)

	// ErrZeroSize indicates a zero-byte request.
	ErrZeroSize = fmt.Errorf("%w: zero-size request", ErrMisuse)

	// ErrTooLarge indicates a request above Config.MaxChunk.
	ErrTooLarge = fmt.Errorf("%w: request exceeds maximum chunk", ErrMisuse)

	// ErrBadPointer indicates a pointer that does not name a block of this heap.
	ErrBadPointer = fmt.Errorf("%w: pointer does not name a block", ErrMisuse)

	// ErrDoubleFree indicates freeing a block that is not allocated.
	ErrDoubleFree = fmt.Errorf("%w: block is not allocated", ErrMisuse)
)
