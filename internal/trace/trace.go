// Package trace produces key access sequences for exercising caches.
package trace

import (
	"math/bits"
	"math/rand"
	"slices"
)

type (
	// Generator builds an access sequence sized for a cache of capacity entries.
	Generator = func(capacity int, rng *rand.Rand) []uint32
	// Pattern is a named [Generator].
	Pattern struct {
		Name        string
		Description string
		Generate    Generator
	}
)

// DefaultLength is the sequence length used by the built-in patterns.
// It is a power of two so callers can index with a mask.
const DefaultLength = 1 << 16

// Patterns returns the built-in access patterns.
func Patterns() []Pattern {
	return []Pattern{
		{
			"sequential",
			"scan over a key space much larger than the cache",
			func(int, *rand.Rand) []uint32 {
				const universe = 1 << 16 // Key space large enough to force misses.
				return Sequential(universe, DefaultLength/2)
			},
		},
		{
			"loop",
			"90% of accesses to a capacity-sized hot set",
			func(capacity int, rng *rand.Rand) []uint32 {
				const (
					universe = 8192
					hotRatio = 0.9
				)
				return Looping(capacity, universe, DefaultLength, hotRatio, rng)
			},
		},
		{
			"zipf",
			"skewed popularity over 16384 keys",
			func(_ int, rng *rand.Rand) []uint32 {
				const (
					universe = 16384
					skew     = 1.2
					bias     = 1.0
				)
				return Zipf(universe, DefaultLength, skew, bias, rng)
			},
		},
		{
			"uniform",
			"uniform random keys over 4x the capacity",
			func(capacity int, rng *rand.Rand) []uint32 {
				return Uniform(capacity*4, DefaultLength, rng)
			},
		},
	}
}

// Lookup returns the built-in pattern with the given name.
func Lookup(name string) (Pattern, bool) {
	patterns := Patterns()
	i := slices.IndexFunc(patterns, func(p Pattern) bool {
		return p.Name == name
	})
	if i < 0 {
		return Pattern{}, false
	}
	return patterns[i], true
}

// Names returns the names of the built-in patterns.
func Names() []string {
	patterns := Patterns()
	names := make([]string, len(patterns))
	for i, pattern := range patterns {
		names[i] = pattern.Name
	}
	return names
}

// Sequential returns keys 0, 1, 2... wrapping at universe,
// padded to a power-of-two length.
func Sequential(universe, length int) []uint32 {
	seq := make([]uint32, NextPow2(length))
	for i := range seq {
		seq[i] = uint32(i % universe)
	}
	return seq
}

// Looping returns a sequence where hotRatio of accesses
// fall in [0, capacity) and the rest in [capacity, universe).
func Looping(capacity, universe, length int, hotRatio float64, rng *rand.Rand) []uint32 {
	var (
		seq      = make([]uint32, NextPow2(length))
		hotSize  = max(1, capacity)
		coldSize = max(1, universe-hotSize)
	)
	for i := range seq {
		if rng.Float64() < hotRatio {
			seq[i] = uint32(rng.Intn(hotSize))
		} else {
			seq[i] = uint32(hotSize + rng.Intn(coldSize))
		}
	}
	return seq
}

// Zipf returns a Zipf-distributed sequence over [0, universe).
// Skew must be greater than 1 and bias at least 1.
func Zipf(universe, length int, skew, bias float64, rng *rand.Rand) []uint32 {
	var (
		seq  = make([]uint32, NextPow2(length))
		imax = uint64(max(universe, 2) - 1)
		zipf = rand.NewZipf(rng, skew, bias, imax)
	)
	for i := range seq {
		seq[i] = uint32(zipf.Uint64())
	}
	return seq
}

// Uniform returns length keys drawn uniformly from [0, upperBound).
func Uniform(upperBound, length int, rng *rand.Rand) []uint32 {
	seq := make([]uint32, NextPow2(length))
	for i := range seq {
		seq[i] = uint32(rng.Intn(max(upperBound, 1)))
	}
	return seq
}

// NextPow2 returns the smallest power of two >= x.
func NextPow2(x int) int {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(x)-1)
}

// NewRNG returns a deterministic source for the generators.
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
