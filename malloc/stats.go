package malloc

// Stats is a snapshot of allocator counters. A "page" is one chunk-size
// unit: a chunk counts as one page, a large object as ceil(mapping / chunk size).
type Stats struct {
	PagesMapped     int64 // Pages obtained from the OS
	PagesUnmapped   int64 // Pages returned to the OS (large objects only)
	ChunksAllocated int64 // Blocks handed out, small and large
	ChunksFreed     int64 // Blocks taken back, small and large
	FreeLength      int64 // Free blocks across all bins, walked at query time

	Chunks        int   // Chunks currently mapped
	LargeLive     int   // Large objects currently mapped
	Splits        int64 // Free blocks split on allocation
	CoalesceLeft  int64 // Merges with the left neighbor on free
	CoalesceRight int64 // Merges with the right neighbor on free
}

// Stats returns current counters. FreeLength is recomputed by walking every
// bin under the lock, so the call costs O(free blocks).
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.stats
	s.FreeLength = a.freeLength()
	return s
}
