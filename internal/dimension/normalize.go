package dimension

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonPositive is returned when a token's value cannot be a length.
var ErrNonPositive = errors.New("dimension value must be positive and finite")

// Normalized is a token converted to meters.
type Normalized struct {
	// ValueM is the length in meters.
	ValueM float64 `json:"value_m"`

	// Source is the token this value was computed from.
	Source Token `json:"source"`
}

// Normalize converts a token to meters.
func Normalize(t Token) (Normalized, error) {
	if !t.Unit.valid() {
		return Normalized{}, fmt.Errorf("cannot normalize %q: %w", t.RawText, fmt.Errorf("invalid unit %d", int(t.Unit)))
	}
	if t.Value <= 0 || math.IsNaN(t.Value) || math.IsInf(t.Value, 0) {
		return Normalized{}, fmt.Errorf("cannot normalize %q: %w", t.RawText, ErrNonPositive)
	}
	return Normalized{
		ValueM: t.Value * t.Unit.ToMeters(),
		Source: t,
	}, nil
}

// NormalizeAll converts every token it can, preserving input order, and
// returns the number of tokens that were rejected.
func NormalizeAll(tokens []Token) ([]Normalized, int) {
	out := make([]Normalized, 0, len(tokens))
	rejected := 0
	for _, t := range tokens {
		n, err := Normalize(t)
		if err != nil {
			rejected++
			continue
		}
		out = append(out, n)
	}
	return out, rejected
}
