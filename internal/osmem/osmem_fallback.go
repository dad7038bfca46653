//go:build !linux && !darwin && !freebsd && !windows

package osmem

import (
	"fmt"
	"os"
)

// Map hands out Go-heap memory when no anonymous mapping facility is available.
func Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("osmem: invalid mapping size %d", size)
	}
	return make([]byte, size), nil
}

// Unmap is a no-op; the garbage collector reclaims fallback memory.
func Unmap([]byte) error { return nil }

// PageSize returns the OS page size.
func PageSize() int {
	return os.Getpagesize()
}
