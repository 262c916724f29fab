//go:build !linux && !darwin

package sbrk

import (
	"fmt"
	"os"
)

// Mapping falls back to a Go-heap break where anonymous mappings with page
// protection are not available.
type Mapping struct {
	*Memory
}

// Reserve allocates limit bytes of Go heap for a new break.
func Reserve(limit int) (*Mapping, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("reserve %d: %w", limit, ErrBadIncrement)
	}
	return &Mapping{Memory: NewMemory(alignPage(limit, PageSize()))}, nil
}

// PageSize returns the system page size.
func PageSize() int { return os.Getpagesize() }
