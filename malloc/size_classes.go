package malloc

import (
	"fmt"
	"math"

	"github.com/joshuapare/mallockit/internal/format"
)

// SizeClassConfig defines the bin layout.
// Different configurations trade bin count against list length.
type SizeClassConfig struct {
	// Name for this configuration (for diagnostics)
	Name string

	// Small block settings (linear increments)
	SmallMin       int // Start of the linear range, at least format.MinBlockSize
	SmallMax       int // End of the linear range
	SmallIncrement int // Step between linear thresholds, a multiple of 8

	// Medium block settings (exponential growth)
	MediumMax    int     // Threshold of the unbounded last bin; 0 means the chunk size
	GrowthFactor float64 // Ratio between consecutive medium thresholds, > 1
}

// Predefined configurations.
var (
	// FineGrained: many small bins, short lists for varied workloads.
	// 32-256 step 8 (28 bins) + 256-64K x1.5 (~14 bins) + 1 unbounded.
	ConfigFineGrained = SizeClassConfig{
		Name:           "FineGrained",
		SmallMin:       format.MinBlockSize,
		SmallMax:       256,
		SmallIncrement: 8,
		GrowthFactor:   1.5,
	}

	// Balanced: good balance between bin count and granularity.
	// 32-512 step 16 (30 bins) + 512-64K x1.5 (~12 bins) + 1 unbounded.
	ConfigBalanced = SizeClassConfig{
		Name:           "Balanced",
		SmallMin:       format.MinBlockSize,
		SmallMax:       512,
		SmallIncrement: 16,
		GrowthFactor:   1.5,
	}

	// Coarse: fewer bins, more internal fragmentation.
	// 32-512 step 32 (15 bins) + 512-64K x2 (7 bins) + 1 unbounded.
	ConfigCoarse = SizeClassConfig{
		Name:           "Coarse",
		SmallMin:       format.MinBlockSize,
		SmallMax:       512,
		SmallIncrement: 32,
		GrowthFactor:   2.0,
	}

	// DefaultConfig is used when none is specified.
	DefaultConfig = ConfigBalanced
)

func (c *SizeClassConfig) validate() error {
	switch {
	case c.SmallMin < format.MinBlockSize || !format.IsAligned(c.SmallMin):
		return fmt.Errorf("%w: size classes %q: SmallMin %d", ErrBadConfig, c.Name, c.SmallMin)
	case c.SmallIncrement <= 0 || !format.IsAligned(c.SmallIncrement):
		return fmt.Errorf("%w: size classes %q: SmallIncrement %d", ErrBadConfig, c.Name, c.SmallIncrement)
	case c.SmallMax < c.SmallMin:
		return fmt.Errorf("%w: size classes %q: SmallMax %d < SmallMin %d", ErrBadConfig, c.Name, c.SmallMax, c.SmallMin)
	case c.MediumMax < 0 || (c.MediumMax > 0 && c.MediumMax <= c.SmallMin):
		return fmt.Errorf("%w: size classes %q: MediumMax %d", ErrBadConfig, c.Name, c.MediumMax)
	case !(c.GrowthFactor > 1):
		return fmt.Errorf("%w: size classes %q: GrowthFactor %v", ErrBadConfig, c.Name, c.GrowthFactor)
	}
	return nil
}

// sizeClassTable holds the computed bin thresholds.
type sizeClassTable struct {
	config     SizeClassConfig
	thresholds []int // Lower bound of each bin, ascending; the last bin is unbounded
}

// newSizeClassTable computes bin thresholds from config. limit caps the
// table when config.MediumMax is zero.
func newSizeClassTable(config SizeClassConfig, limit int) *sizeClassTable {
	if config.MediumMax > 0 {
		limit = config.MediumMax
	}
	table := &sizeClassTable{
		config:     config,
		thresholds: make([]int, 0, 64),
	}

	// Split remainders can be as small as MinBlockSize, so the first bin
	// always starts there even when SmallMin is higher.
	if config.SmallMin > format.MinBlockSize {
		table.thresholds = append(table.thresholds, format.MinBlockSize)
	}

	// Phase 1: small blocks (linear increments)
	size := config.SmallMin
	for ; size < config.SmallMax && size < limit; size += config.SmallIncrement {
		table.thresholds = append(table.thresholds, size)
	}

	// Phase 2: medium blocks (exponential growth)
	for size < limit {
		table.thresholds = append(table.thresholds, size)
		next := format.Align8(int(math.Ceil(float64(size) * config.GrowthFactor)))
		if next <= size {
			next = size + format.WordSize // Ensure progress
		}
		size = next
	}

	// Everything at or above limit shares the last bin.
	table.thresholds = append(table.thresholds, limit)
	return table
}

// getSizeClass returns the bin index for a block of the given size: the last
// bin whose threshold is <= size. Sizes below the first threshold map to 0.
func (t *sizeClassTable) getSizeClass(size int) int {
	// Binary search for the first threshold above size
	lo, hi := 0, len(t.thresholds)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if t.thresholds[mid] <= size {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0
	}
	return lo - 1
}

// bounds returns the half-open size range [lo, hi) of bin i.
// hi is math.MaxInt for the last bin.
func (t *sizeClassTable) bounds(i int) (lo, hi int) {
	lo = t.thresholds[i]
	if i+1 < len(t.thresholds) {
		return lo, t.thresholds[i+1]
	}
	return lo, math.MaxInt
}

// String returns the configuration name.
func (t *sizeClassTable) String() string {
	return t.config.Name
}

// NumClasses returns the number of bins, including the unbounded last bin.
func (t *sizeClassTable) NumClasses() int {
	return len(t.thresholds)
}
