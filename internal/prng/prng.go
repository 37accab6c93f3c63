// Package prng implements the seeded pseudo-random generator shared by the
// game client and the verification server.
//
// The generator is Mulberry32: 32-bit state, wrap-around integer arithmetic
// only. Its output for a given seed is part of the wire contract; changing
// it invalidates every session issued before the change.
package prng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// Algorithm is the published name of the generator.
const Algorithm = "mulberry32"

// MaxSeed is the largest valid seed (31 bits).
const MaxSeed = 1<<31 - 1

// Rand is a Mulberry32 stream. It is not safe for concurrent use; every
// replay owns its own instance.
type Rand struct {
	state uint32
	draws int
}

// New creates a stream positioned at the start of the sequence for seed.
// Seeds are masked to 31 bits.
func New(seed int64) *Rand {
	r := &Rand{}
	r.Seed(seed)
	return r
}

// Seed reinitializes the stream.
func (r *Rand) Seed(seed int64) {
	r.state = uint32(seed & MaxSeed)
	r.draws = 0
}

// Draws returns how many values have been taken from the stream.
func (r *Rand) Draws() int {
	return r.draws
}

// Uint32 returns the next raw 32-bit value.
func (r *Rand) Uint32() uint32 {
	r.draws++
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Float64 returns a value in [0, 1). The division is exact in float64, so
// every platform sees the same value.
func (r *Rand) Float64() float64 {
	return float64(r.Uint32()) / (1 << 32)
}

// Intn returns a value in [0, n). Returns 0 when n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int((uint64(r.Uint32()) * uint64(n)) >> 32)
}

// Range returns a value in [lo, hi]. When hi <= lo it returns lo without
// consuming a draw.
func (r *Rand) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Chance returns true with probability permille/1000.
func (r *Rand) Chance(permille int) bool {
	return r.Intn(1000) < permille
}

// ValidSeed reports whether seed is inside the published seed range.
func ValidSeed(seed int64) bool {
	return seed >= 0 && seed <= MaxSeed
}

// RandomSeed draws a uniformly distributed seed from the operating system's
// entropy source.
func RandomSeed() (int64, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("prng: cannot read entropy: %w", err)
	}
	return int64(binary.LittleEndian.Uint32(buf[:]) & MaxSeed), nil
}
