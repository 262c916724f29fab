// Package sbrk provides growth primitives for the umalloc allocator: regions
// that hand out contiguous address space on demand, like the classic program
// break, and never give it back.
package sbrk

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSpace indicates the reservation backing the break is exhausted.
	ErrNoSpace = errors.New("sbrk: reservation exhausted")

	// ErrBadIncrement indicates a non-positive growth request.
	ErrBadIncrement = errors.New("sbrk: increment must be positive")

	// ErrClosed indicates growth on a region that has been torn down.
	ErrClosed = errors.New("sbrk: region closed")
)

// Memory is a break over a Go byte slice with a fixed capacity. The backing
// array is allocated once, so slices handed out by Bytes never move.
type Memory struct {
	buf    []byte
	closed bool
}

// NewMemory reserves limit bytes of Go heap for the break.
func NewMemory(limit int) *Memory {
	if limit < 0 {
		limit = 0
	}
	return &Memory{buf: make([]byte, 0, limit)}
}

// Grow moves the break forward by n bytes and returns the offset of the first
// new byte. Contents of the new range are undefined.
func (m *Memory) Grow(n int) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, fmt.Errorf("grow %d: %w", n, ErrBadIncrement)
	}
	off := len(m.buf)
	if n > cap(m.buf)-off {
		return 0, fmt.Errorf("grow %d at break 0x%X (limit 0x%X): %w", n, off, cap(m.buf), ErrNoSpace)
	}
	m.buf = m.buf[:off+n]
	return off, nil
}

// Bytes returns the granted range [0:break).
func (m *Memory) Bytes() []byte { return m.buf }

// Limit returns the reservation size.
func (m *Memory) Limit() int { return cap(m.buf) }

// Close releases the reservation. Further growth fails with ErrClosed.
func (m *Memory) Close() error {
	m.buf = nil
	m.closed = true
	return nil
}

func alignPage(n, page int) int {
	return (n + page - 1) &^ (page - 1)
}
