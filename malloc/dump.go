package malloc

import (
	"io"
	"os"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Dump writes every non-empty bin and its free blocks (address, size and
// links) to w, or to stderr when w is nil. The format is for debugging only.
func (a *Allocator) Dump(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	p := message.NewPrinter(language.English)
	p.Fprintf(w, "=== malloc free bins: %s, %d classes, chunk %d bytes ===\n",
		a.sizes, a.sizes.NumClasses(), a.chunkSize)

	total := 0
	for i := range a.bins {
		b := &a.bins[i]
		if b.head == 0 {
			continue
		}
		lo, hi := a.sizes.bounds(i)
		if i == len(a.bins)-1 {
			p.Fprintf(w, "bin %2d [%d, +inf): %d blocks\n", i, lo, b.count)
		} else {
			p.Fprintf(w, "bin %2d [%d, %d): %d blocks\n", i, lo, hi, b.count)
		}
		// Bounded by count so a corrupted cycle cannot hang the dump.
		ref := b.head
		for n := 0; ref != 0 && n <= b.count; n++ {
			size, _ := a.tagOf(ref)
			p.Fprintf(w, "  %v: size=%d next=%v prev=%v\n", ref, size, a.next(ref), a.prev(ref))
			ref = a.next(ref)
			total++
		}
	}
	p.Fprintf(w, "total: %d free blocks\n", total)
}
