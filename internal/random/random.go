// Package random provides the seeded pseudo-random source behind every
// reproducible draw. Two sources built from the same seed yield the same
// sequence.
package random

import (
	"math"

	"github.com/valyala/fastrand"
)

// Source is the sequence of draws consumed by oversampling and training.
type Source interface {
	// Intn returns a uniform int in [0, n). It panics if n <= 0.
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
	Int31() int32
	Int63() int64
}

var _ Source = (*Rand)(nil)

// Rand is a xorshift32 source. It is not safe for concurrent use.
type Rand struct {
	rng fastrand.RNG
}

func New(seed int64) *Rand {
	r := &Rand{}
	r.rng.Seed(fold(seed))
	return r
}

// fold mixes a 64 bit seed down to a non-zero 32 bit xorshift state
// (splitmix64 finalizer). A zero state would make fastrand reseed itself from
// the system source.
func fold(seed int64) uint32 {
	z := uint64(seed) + 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	s := uint32(z) ^ uint32(z>>32)
	if s == 0 {
		s = 0x9E3779B9
	}
	return s
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("random: invalid argument to Intn")
	}
	if uint64(n) > math.MaxUint32 {
		return int(r.Int63() % int64(n))
	}
	return int(r.rng.Uint32n(uint32(n)))
}

func (r *Rand) Float64() float64 {
	return float64(r.rng.Uint32()) / (1 << 32)
}

func (r *Rand) Int31() int32 {
	return int32(r.rng.Uint32() >> 1)
}

func (r *Rand) Int63() int64 {
	hi := uint64(r.rng.Uint32())
	lo := uint64(r.rng.Uint32())
	return int64((hi<<32 | lo) >> 1)
}

// Shuffle permutes idx in place (Fisher-Yates).
func Shuffle(src Source, idx []int) {
	for i := len(idx) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		idx[i], idx[j] = idx[j], idx[i]
	}
}
