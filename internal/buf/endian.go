// Package buf contains helpers for endian-safe decoding routines.
package buf

import "encoding/binary"

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// PutU64LE writes v as a little-endian uint64 into b. It reports false and
// writes nothing when b is too short.
func PutU64LE(b []byte, v uint64) bool {
	if len(b) < 8 {
		return false
	}
	binary.LittleEndian.PutUint64(b, v)
	return true
}

// Fill writes the repeating pattern p over b.
func Fill(b []byte, p uint64) {
	var w [8]byte
	binary.LittleEndian.PutUint64(w[:], p)
	for i := range b {
		b[i] = w[i&7]
	}
}

// Matches reports whether b consists of the repeating pattern p, and if not,
// the index of the first mismatching byte.
func Matches(b []byte, p uint64) (int, bool) {
	var w [8]byte
	binary.LittleEndian.PutUint64(w[:], p)
	for i := range b {
		if b[i] != w[i&7] {
			return i, false
		}
	}
	return -1, true
}
