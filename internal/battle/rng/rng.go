// Package rng provides the seeded pseudo-random source consumed by every
// battle calculation.
//
// The generator is a 32-bit linear congruential generator. All state updates
// happen in uint32 arithmetic and floats are produced by dividing the top 24
// bits of state by 2^24, so a given seed yields the identical sequence on
// every platform. It is a simulation primitive and must never be used for
// anything security sensitive.
package rng

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf16"
)

const (
	multiplier uint32 = 1664525
	increment  uint32 = 1013904223
	seedMask   uint32 = 0xdeadbeef
	stringMul  uint32 = 31
)

// StreamRoster names the stream used to build rosters before a battle starts.
const StreamRoster = "roster"

// ErrInvalidSeed indicates a seed value that cannot be mapped to generator state.
var ErrInvalidSeed = errors.New("seed must be an integer or a string")

// Source produces floats in [0,1).
type Source interface {
	Next() float64
}

// LCG is the deterministic battle generator.
type LCG struct {
	state uint32
}

// New returns a generator for a numeric seed.
func New(seed uint32) *LCG {
	return &LCG{state: seed ^ seedMask}
}

// FromInt64 maps a signed seed onto 32 bits by truncation.
func FromInt64(seed int64) *LCG {
	return New(uint32(seed))
}

// FromString hashes a textual seed over its UTF-16 code units.
func FromString(seed string) *LCG {
	var h uint32
	for _, unit := range utf16.Encode([]rune(seed)) {
		h = h*stringMul + uint32(unit)
	}
	return New(h)
}

// FromValue accepts the seed shapes callers commonly carry around: integers,
// finite floats (truncated toward zero) and strings.
func FromValue(seed any) (*LCG, error) {
	switch v := seed.(type) {
	case string:
		return FromString(v), nil
	case int:
		return FromInt64(int64(v)), nil
	case int32:
		return FromInt64(int64(v)), nil
	case int64:
		return FromInt64(v), nil
	case uint32:
		return New(v), nil
	case uint64:
		return New(uint32(v)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, v)
		}
		return FromInt64(int64(math.Trunc(math.Mod(v, 1<<32)))), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidSeed, seed)
	}
}

// Derive returns a generator for a named stream of seed. Streams of the same
// seed are independent of each other and of FromValue(seed).
func Derive(seed any, stream string) (*LCG, error) {
	base, err := FromValue(seed)
	if err != nil {
		return nil, err
	}
	return FromString(fmt.Sprintf("%d/%s", base.State(), stream)), nil
}

// Next advances the generator and returns a float in [0,1).
func (g *LCG) Next() float64 {
	g.state = multiplier*g.state + increment
	return float64(g.state>>8) / float64(1<<24)
}

// State exposes the raw generator state for diagnostics.
func (g *LCG) State() uint32 {
	return g.state
}

// Intn returns an int in [0,n) drawn from src. n must be positive.
func Intn(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(math.Floor(src.Next() * float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}

// Sequence replays a fixed list of draws. Once exhausted it returns 0.
type Sequence struct {
	values []float64
	drawn  int
}

// NewSequence returns a scripted source.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: append([]float64(nil), values...)}
}

// Next returns the next scripted value.
func (s *Sequence) Next() float64 {
	defer func() { s.drawn++ }()
	if s.drawn >= len(s.values) {
		return 0
	}
	return s.values[s.drawn]
}

// Drawn reports how many values were consumed.
func (s *Sequence) Drawn() int {
	return s.drawn
}
