//go:build linux || darwin

package sbrk

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Mapping is a break over an anonymous memory reservation. The whole range is
// mapped PROT_NONE up front and pages are committed read/write as the break
// passes them, so the arena never moves and bytes past the break fault.
type Mapping struct {
	mem       []byte
	brk       int
	committed int
	page      int
}

// Reserve maps limit bytes (rounded up to whole pages) of inaccessible
// address space for a new break.
func Reserve(limit int) (*Mapping, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("reserve %d: %w", limit, ErrBadIncrement)
	}
	page := PageSize()
	size := alignPage(limit, page)
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("sbrk: mmap reservation of %d bytes: %w", size, err)
	}
	return &Mapping{mem: mem, page: page}, nil
}

// Grow moves the break forward by n bytes, committing pages as needed, and
// returns the offset of the first new byte.
func (m *Mapping) Grow(n int) (int, error) {
	if m.mem == nil {
		return 0, ErrClosed
	}
	if n <= 0 {
		return 0, fmt.Errorf("grow %d: %w", n, ErrBadIncrement)
	}
	if n > len(m.mem)-m.brk {
		return 0, fmt.Errorf("grow %d at break 0x%X (limit 0x%X): %w", n, m.brk, len(m.mem), ErrNoSpace)
	}
	want := alignPage(m.brk+n, m.page)
	if want > m.committed {
		if err := unix.Mprotect(m.mem[m.committed:want], unix.PROT_READ|unix.PROT_WRITE); err != nil {
			return 0, fmt.Errorf("sbrk: commit 0x%X-0x%X: %w", m.committed, want, err)
		}
		m.committed = want
	}
	off := m.brk
	m.brk += n
	return off, nil
}

// Bytes returns the granted range [0:break).
func (m *Mapping) Bytes() []byte {
	if m.mem == nil {
		return nil
	}
	return m.mem[:m.brk]
}

// Limit returns the reservation size.
func (m *Mapping) Limit() int { return len(m.mem) }

// Close unmaps the reservation.
func (m *Mapping) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}

// PageSize returns the system page size.
func PageSize() int { return unix.Getpagesize() }
