package format

// Align8 returns n aligned up to the next 8-byte boundary.
//
// Example:
//
//	Align8(1)  = 8
//	Align8(8)  = 8
//	Align8(9)  = 16
//	Align8(16) = 16
func Align8(n int) int {
	return (n + AlignMask) & ^AlignMask
}

// AlignUp returns n aligned up to the next multiple of align, which must be a
// power of two.
//
// Example:
//
//	AlignUp(1, 4096)    = 4096
//	AlignUp(4096, 4096) = 4096
//	AlignUp(4097, 4096) = 8192
func AlignUp(n, align int) int {
	return (n + align - 1) & ^(align - 1)
}

// DivUp returns the ceiling of n / d.
func DivUp(n, d int) int {
	return (n + d - 1) / d
}

// IsAligned reports whether n is a multiple of the word size.
func IsAligned(n int) bool {
	return n&AlignMask == 0
}
