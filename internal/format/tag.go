package format

// EncodeTag packs a block size and free flag into one boundary-tag word.
func EncodeTag(size int, free bool) uint64 {
	w := uint64(size) & SizeMask
	if free {
		w |= FreeBit
	}
	return w
}

// DecodeTag unpacks a boundary-tag word.
func DecodeTag(w uint64) (size int, free bool) {
	return int(w & SizeMask), w&FreeBit != 0
}

// FooterOffset returns the offset of the footer of a block of the given size.
func FooterOffset(off, size int) int {
	return off + size - FooterSize
}

// BlockSize returns the total block size needed to carry a payload of n bytes,
// never smaller than MinBlockSize.
func BlockSize(n int) int {
	size := Align8(n) + Overhead
	if size < MinBlockSize {
		return MinBlockSize
	}
	return size
}

// PayloadSize returns the usable payload bytes of a block of the given size.
func PayloadSize(size int) int {
	return size - Overhead
}
