// Package bounds holds the numeric guards shared by every subsystem: range
// clipping and finiteness checks at public entry points.
package bounds

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned when a public operation receives a non-finite value.
var ErrInvalidInput = errors.New("invalid input")

// Clip restricts v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite returns an ErrInvalidInput-wrapped error naming the first non-finite value.
// names and values are paired by index.
func Finite(names []string, values ...float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			name := "value"
			if i < len(names) {
				name = names[i]
			}
			return fmt.Errorf("%w: %s is %v", ErrInvalidInput, name, v)
		}
	}
	return nil
}

// Check is the single-value form of Finite.
func Check(name string, v float64) error {
	return Finite([]string{name}, v)
}
