package constraint

import "math/rand"

// RandSource supplies the angle constraint's pivot tiebreak when both
// endpoints of a segment are free. Parameterized so tests can pin it.
type RandSource interface {
	Float64() float64
}

// defaultRand wraps math/rand's global source.
type defaultRand struct{}

func (defaultRand) Float64() float64 { return rand.Float64() }

// DefaultRand is the engine's rand source when none is supplied.
var DefaultRand RandSource = defaultRand{}

// FixedRand is a deterministic RandSource for tests that need to pin the
// angle constraint's endpoint tiebreak.
type FixedRand struct {
	Value float64
}

func (f FixedRand) Float64() float64 { return f.Value }
