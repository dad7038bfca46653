//go:build linux || darwin || freebsd

// Package osmem provides platform-specific helpers for obtaining anonymous,
// private, read-write memory straight from the operating system.
package osmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Map maps size bytes of zeroed anonymous memory.
func Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("osmem: invalid mapping size %d", size)
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("osmem: mmap %d bytes: %w", size, err)
	}
	return mem, nil
}

// Unmap releases memory returned by Map. It must be passed the same slice
// Map returned, not a derived one.
func Unmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	err := unix.Munmap(mem)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	if err != nil {
		return fmt.Errorf("osmem: munmap: %w", err)
	}
	return nil
}

// PageSize returns the OS page size.
func PageSize() int {
	return unix.Getpagesize()
}
