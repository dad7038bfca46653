// Package buf contains bounds-checked helpers for reading and writing
// machine words inside raw memory regions.
package buf

import "encoding/binary"

// WordSize is the size in bytes of one metadata word.
const WordSize = 8

// Word reads the word stored at b[off:off+8]. ok is false when the window
// falls outside b.
func Word(b []byte, off int) (uint64, bool) {
	w, ok := Slice(b, off, WordSize)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(w), true
}

// PutWord stores v at b[off:off+8]. Reports false when the window falls
// outside b; nothing is written in that case.
func PutWord(b []byte, off int, v uint64) bool {
	w, ok := Slice(b, off, WordSize)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint64(w, v)
	return true
}
