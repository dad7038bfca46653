package malloc

import (
	"fmt"

	"github.com/joshuapare/mallockit/internal/buf"
	"github.com/joshuapare/mallockit/internal/format"
)

// neighbor describes a block adjacent to the one being freed.
type neighbor struct {
	off  int
	size int
	free bool
}

// readTag decodes the boundary tag at mem[off:].
func readTag(mem []byte, off int) (size int, free bool, ok bool) {
	w, ok := buf.Word(mem, off)
	if !ok {
		return 0, false, false
	}
	size, free = format.DecodeTag(w)
	return size, free, true
}

// writeTags stamps matching header and footer words for the block at off.
func writeTags(mem []byte, off, size int, free bool) bool {
	w := format.EncodeTag(size, free)
	return buf.PutWord(mem, off, w) && buf.PutWord(mem, format.FooterOffset(off, size), w)
}

// leftNeighbor finds the block ending at off through its footer. A block at
// the chunk base has no left neighbor.
func leftNeighbor(mem []byte, off int) (neighbor, bool, error) {
	if off == 0 {
		return neighbor{}, false, nil
	}
	fw, ok := buf.Word(mem, off-format.FooterSize)
	if !ok {
		return neighbor{}, false, fmt.Errorf("%w: footer before %#x out of range", ErrCorrupt, off)
	}
	size, free := format.DecodeTag(fw)
	start := off - size
	if size < format.MinBlockSize || start < 0 {
		return neighbor{}, false, fmt.Errorf("%w: footer before %#x claims size %d", ErrCorrupt, off, size)
	}
	if free {
		if hw, _ := buf.Word(mem, start); hw != fw {
			return neighbor{}, false, fmt.Errorf("%w: block %#x header %#x != footer %#x", ErrCorrupt, start, hw, fw)
		}
	}
	return neighbor{off: start, size: size, free: free}, true, nil
}

// rightNeighbor finds the block starting right after the block at off. The
// region length marks the chunk end; the last block has no right neighbor.
func rightNeighbor(mem []byte, off, size int) (neighbor, bool, error) {
	start := off + size
	if start >= len(mem) {
		return neighbor{}, false, nil
	}
	hw, ok := buf.Word(mem, start)
	if !ok {
		return neighbor{}, false, fmt.Errorf("%w: header at %#x out of range", ErrCorrupt, start)
	}
	rsize, free := format.DecodeTag(hw)
	if rsize < format.MinBlockSize || start+rsize > len(mem) {
		return neighbor{}, false, fmt.Errorf("%w: header at %#x claims size %d", ErrCorrupt, start, rsize)
	}
	if free {
		if fw, _ := buf.Word(mem, format.FooterOffset(start, rsize)); fw != hw {
			return neighbor{}, false, fmt.Errorf("%w: block %#x header %#x != footer %#x", ErrCorrupt, start, hw, fw)
		}
	}
	return neighbor{off: start, size: rsize, free: free}, true, nil
}

// memOf returns the region holding ref, or nil when ref is dangling.
func (a *Allocator) memOf(ref blockRef) []byte {
	slot := ref.slot()
	if slot < 0 || slot >= len(a.regions) {
		return nil
	}
	return a.regions[slot].mem
}

// tagOf decodes the header of ref.
func (a *Allocator) tagOf(ref blockRef) (size int, free bool) {
	size, free, _ = readTag(a.memOf(ref), ref.off())
	return size, free
}

func (a *Allocator) next(ref blockRef) blockRef {
	w, _ := buf.Word(a.memOf(ref), ref.off()+format.NextOffset)
	return blockRef(w)
}

func (a *Allocator) prev(ref blockRef) blockRef {
	w, _ := buf.Word(a.memOf(ref), ref.off()+format.PrevOffset)
	return blockRef(w)
}

func (a *Allocator) setNext(ref, v blockRef) {
	buf.PutWord(a.memOf(ref), ref.off()+format.NextOffset, uint64(v))
}

func (a *Allocator) setPrev(ref, v blockRef) {
	buf.PutWord(a.memOf(ref), ref.off()+format.PrevOffset, uint64(v))
}
