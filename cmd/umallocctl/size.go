package main

import (
	"fmt"
	"strconv"

	"github.com/inhies/go-bytesize"
)

// sizeValue is a byte-count flag accepting plain integers or unit suffixes
// such as 64KB or 1.5MB (binary multiples).
type sizeValue int

func (s *sizeValue) String() string {
	return bytesize.New(float64(*s)).String()
}

func (s *sizeValue) Set(v string) error {
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 {
			return fmt.Errorf("negative size %d", n)
		}
		*s = sizeValue(n)
		return nil
	}
	b, err := bytesize.Parse(v)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", v, err)
	}
	if b < 0 || float64(b) > float64(1<<62) {
		return fmt.Errorf("size %q out of range", v)
	}
	*s = sizeValue(b)
	return nil
}

func (s *sizeValue) Type() string { return "size" }
