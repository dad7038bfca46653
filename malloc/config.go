package malloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/mallockit/internal/format"
	"github.com/joshuapare/mallockit/internal/osmem"
)

// Mapper is the OS facility the chunk provider draws memory from.
// Map must return zeroed, read-write memory of at least size bytes; Unmap is
// handed back exactly the slice Map returned.
type Mapper interface {
	Map(size int) ([]byte, error)
	Unmap(mem []byte) error
}

// osMapper maps anonymous private memory through internal/osmem.
type osMapper struct{}

func (osMapper) Map(size int) ([]byte, error) { return osmem.Map(size) }
func (osMapper) Unmap(mem []byte) error       { return osmem.Unmap(mem) }

// Config tunes an Allocator. The zero value, or a nil *Config, selects defaults.
type Config struct {
	// ChunkSize is the size of each mapping carved into blocks, and the
	// threshold above which a request bypasses the bins. Default 64 KiB.
	ChunkSize int

	// SizeClasses shapes the bins. Nil selects DefaultConfig.
	SizeClasses *SizeClassConfig

	// Mapper supplies OS memory. Nil selects anonymous mmap (VirtualAlloc on Windows).
	Mapper Mapper

	// PageSize is the rounding granularity for large-object mappings.
	// Zero selects the OS page size.
	PageSize int

	// Logger receives debug events (chunk and large-object mapping). Nil
	// discards them unless MALLOC_LOG is set in the environment.
	Logger *slog.Logger

	// Verify runs Check after every mutating call and reports corruption as
	// an error. Expensive: O(heap size) per call.
	Verify bool
}

// resolve fills defaults and validates the result.
func (c *Config) resolve() (Config, error) {
	var out Config
	if c != nil {
		out = *c
	}
	if out.ChunkSize == 0 {
		out.ChunkSize = format.DefaultChunkSize
	}
	if out.SizeClasses == nil {
		sc := DefaultConfig
		out.SizeClasses = &sc
	}
	if out.Mapper == nil {
		out.Mapper = osMapper{}
	}
	if out.PageSize == 0 {
		out.PageSize = osmem.PageSize()
	}
	if out.Logger == nil {
		out.Logger = defaultLogger()
	}

	switch {
	case out.ChunkSize < 2*format.MinBlockSize:
		return out, fmt.Errorf("%w: chunk size %d below %d", ErrBadConfig, out.ChunkSize, 2*format.MinBlockSize)
	case !format.IsAligned(out.ChunkSize):
		return out, fmt.Errorf("%w: chunk size %d not a multiple of %d", ErrBadConfig, out.ChunkSize, format.WordSize)
	case out.ChunkSize > maxRegionSize:
		return out, fmt.Errorf("%w: chunk size %d exceeds %d", ErrBadConfig, out.ChunkSize, maxRegionSize)
	case out.PageSize <= 0 || out.PageSize&(out.PageSize-1) != 0:
		return out, fmt.Errorf("%w: page size %d not a power of two", ErrBadConfig, out.PageSize)
	}
	if err := out.SizeClasses.validate(); err != nil {
		return out, err
	}
	return out, nil
}
