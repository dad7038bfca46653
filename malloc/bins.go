package malloc

// maxStartBinScan bounds the first-fit walk inside the bin that contains the
// request; its members may be smaller than the request. Higher bins only ever
// need their head inspected.
const maxStartBinScan = 32

// bin is one size class: a lower-bound threshold and an intrusive doubly
// linked list of free blocks threaded through the blocks themselves.
type bin struct {
	threshold int
	head      blockRef
	count     int
}

// insert files a free block of the given size at the front of its bin and
// stamps its header and footer as free.
func (a *Allocator) insert(ref blockRef, size int) {
	writeTags(a.memOf(ref), ref.off(), size, true)

	b := &a.bins[a.sizes.getSizeClass(size)]
	a.setPrev(ref, 0)
	a.setNext(ref, b.head)
	if b.head != 0 {
		a.setPrev(b.head, ref)
	}
	b.head = ref
	b.count++
}

// remove unlinks ref from bin i using the block's own links.
func (a *Allocator) remove(i int, ref blockRef) {
	next, prev := a.next(ref), a.prev(ref)
	if prev == 0 {
		a.bins[i].head = next
	} else {
		a.setNext(prev, next)
	}
	if next != 0 {
		a.setPrev(next, prev)
	}
	a.bins[i].count--
}

// findFit returns the first free block of at least need bytes, searching the
// bin containing need and then upward. It does not unlink the block.
//
// Only the first maxStartBinScan members of the starting bin are inspected.
// A fitting block queued behind more undersized ones is missed when every
// higher bin is empty, and the caller then maps a fresh chunk.
func (a *Allocator) findFit(need int) (int, blockRef, int, bool) {
	start := a.sizes.getSizeClass(need)

	ref := a.bins[start].head
	for n := 0; ref != 0 && n < maxStartBinScan; n++ {
		if size, _ := a.tagOf(ref); size >= need {
			return start, ref, size, true
		}
		ref = a.next(ref)
	}

	// Every member of a higher bin is at least its threshold > need.
	for i := start + 1; i < len(a.bins); i++ {
		if head := a.bins[i].head; head != 0 {
			size, _ := a.tagOf(head)
			return i, head, size, true
		}
	}
	return 0, 0, 0, false
}

// freeLength walks every bin and counts free blocks.
func (a *Allocator) freeLength() int64 {
	var n int64
	for i := range a.bins {
		for ref := a.bins[i].head; ref != 0; ref = a.next(ref) {
			n++
		}
	}
	return n
}
