// Package malloc provides a general-purpose allocate/free/reallocate engine
// over memory mapped straight from the operating system.
//
// # Overview
//
// Memory is obtained in fixed-size chunks (64 KiB by default) of anonymous,
// private, read-write pages. Each chunk is carved into blocks delimited by
// boundary tags, and free blocks are kept in segregated size-class lists
// ("bins"). Requests larger than a chunk bypass the bins and get a dedicated
// mapping that is unmapped again on Free.
//
// # Allocator Interface
//
//   - Allocate(size): returns a handle and a payload slice of len size
//   - Free(ptr): returns the block, merging it with free neighbors
//   - Reallocate(ptr, size): allocate-new, copy, free-old
//   - Stats(): counters, with the free-list length walked at query time
//   - Check(): full invariant walk, for tests and debugging
//   - Dump(w): human-readable bin listing, for debugging
//
// # Usage Example
//
//	a, err := malloc.New(nil)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	p, buf, err := a.Allocate(40)
//	if err != nil {
//	    return err
//	}
//	copy(buf, "hello")
//
//	p, buf, err = a.Reallocate(p, 400) // first 40 bytes carried over
//	if err != nil {
//	    return err
//	}
//	err = a.Free(p)
//
// # Handles
//
// A Ptr is not a machine address: it encodes a region slot and a byte offset
// inside that region. Payload bytes are reached through the slice returned by
// Allocate/Reallocate or through Bytes. Slices stay valid until the block is
// freed; chunk memory never moves.
//
// # Block Layout
//
//	+--------+------------------------------+--------+
//	| header |   payload (or next, prev)    | footer |
//	+--------+------------------------------+--------+
//	 size|F                                  size|F
//
// Header and footer both hold the total block size with the free flag in bit
// 0. Free blocks reuse the first two payload words as bin links. The smallest
// block is 32 bytes; sizes and payloads are 8-byte aligned.
//
// Freeing reads the left neighbor's footer and the right neighbor's header,
// so both merges are O(1). The first block of a chunk has no left neighbor
// and the chunk length bounds the right one; merges never cross chunks.
//
// # Size Classes
//
// Bin thresholds step linearly for small blocks and geometrically for larger
// ones, ending in one unbounded bin at the chunk size. See SizeClassConfig
// and the predefined ConfigFineGrained, ConfigBalanced (default) and
// ConfigCoarse. A lookup walks at most a few dozen nodes of the bin holding
// the request, then takes the head of the first non-empty higher bin.
//
// # Zero-Size Requests
//
// Allocate(0) returns a nil Ptr and nil slice with no error and no mapping.
// Free(nil) is a no-op, Reallocate(nil, n) allocates and Reallocate(p, 0)
// frees.
//
// # Memory Retention
//
// Chunks are kept for the allocator's lifetime even when entirely free; only
// large objects are returned to the OS on Free. Close unmaps everything.
//
// # Thread Safety
//
// One mutex guards all metadata. Allocate, Free and the other methods are
// safe for concurrent use and fully serialized. Reallocate copies payload
// bytes outside the lock.
//
// # Debugging
//
// Set MALLOC_LOG to any value to log chunk and large-object mapping to
// stderr, or pass a Logger in Config. Config.Verify runs Check after every
// mutating call.
package malloc
