package malloc

import "errors"

var (
	// ErrInvalidSize indicates a negative or unrepresentable request size.
	ErrInvalidSize = errors.New("malloc: invalid size")

	// ErrNoSpace indicates that no free block fit even after mapping a fresh chunk.
	ErrNoSpace = errors.New("malloc: no free block large enough")

	// ErrMapFailed indicates that the OS refused to map or unmap memory.
	ErrMapFailed = errors.New("malloc: os mapping failed")

	// ErrBadPtr indicates a handle that does not address a live block of this allocator.
	ErrBadPtr = errors.New("malloc: bad pointer")

	// ErrDoubleFree indicates a free of a block whose tags already mark it free.
	ErrDoubleFree = errors.New("malloc: block already free")

	// ErrCorrupt indicates inconsistent boundary tags or free lists.
	ErrCorrupt = errors.New("malloc: heap corrupted")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("malloc: allocator closed")

	// ErrBadConfig indicates an invalid Config or SizeClassConfig.
	ErrBadConfig = errors.New("malloc: bad config")

	// ErrAddressSpace indicates that every region slot a Ptr can encode is in use.
	ErrAddressSpace = errors.New("malloc: region slots exhausted")
)
