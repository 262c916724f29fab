package format

// Align16 returns n aligned up to the next 16-byte boundary.
// Used for request sizes before they reach the free list.
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// IsAligned reports whether n sits on a 16-byte boundary.
func IsAligned(n int) bool {
	return n&AlignmentMask == 0
}
