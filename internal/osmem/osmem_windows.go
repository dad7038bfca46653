//go:build windows

package osmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Map commits size bytes of zeroed read-write memory.
func Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("osmem: invalid mapping size %d", size)
	}
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("osmem: VirtualAlloc %d bytes: %w", size, err)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

// Unmap releases memory returned by Map.
func Unmap(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mem[0]))
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return fmt.Errorf("osmem: VirtualFree: %w", err)
	}
	return nil
}

// PageSize returns the allocation granularity used for rounding.
func PageSize() int {
	return windows.Getpagesize()
}
