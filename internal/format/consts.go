// Package format describes the in-memory layout of allocator blocks: the
// boundary-tag word written at both ends of every block, the free-list link
// slots carried by free blocks, and the alignment rules that keep every block
// a whole number of words.
package format

import "github.com/joshuapare/mallockit/internal/buf"

// Block layout (all offsets relative to the block start, 8-byte words):
//
//	0x00        header    size | free bit
//	0x08        next      free blocks only, address of next block in the bin
//	0x10        prev      free blocks only, address of previous block in the bin
//	size-0x08   footer    size | free bit (mirror of header)
const (
	// WordSize is the native word size; every block and payload is aligned to it.
	WordSize = buf.WordSize

	// HeaderSize is the size of the leading boundary tag.
	HeaderSize = WordSize

	// FooterSize is the size of the trailing boundary tag.
	FooterSize = WordSize

	// Overhead is the per-block metadata cost paid by an allocated block.
	Overhead = HeaderSize + FooterSize

	// NextOffset is the offset of the forward free-list link.
	NextOffset = HeaderSize

	// PrevOffset is the offset of the backward free-list link.
	PrevOffset = HeaderSize + WordSize

	// MinBlockSize is the smallest block able to host a free-list node:
	// header, two links and footer.
	MinBlockSize = HeaderSize + 2*WordSize + FooterSize

	// DefaultChunkSize is the size of one OS mapping carved into blocks (64 KiB).
	DefaultChunkSize = 1 << 16

	// AlignMask masks the low bits that must be zero in an aligned size.
	AlignMask = WordSize - 1

	// FreeBit marks a block as free in its boundary tags. Sizes are always
	// word multiples so bit 0 is never part of the size.
	FreeBit uint64 = 1

	// SizeMask extracts the size from a boundary tag.
	SizeMask = ^uint64(AlignMask)
)
