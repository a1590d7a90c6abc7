package memutils

import (
	cerrors "github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Number is any integer type the alignment helpers can operate on
type Number interface {
	constraints.Integer
}

// CheckPow2 returns a wrapped PowerOfTwoError if number is not a positive power of two
func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to the next multiple of alignment. Alignments of 0 and 1 leave value unchanged.
// The alignment does not need to be a power of two.
func AlignUp[T Number](value, alignment T) T {
	if alignment <= 1 {
		return value
	}

	if alignment&(alignment-1) == 0 {
		return (value + alignment - 1) & ^(alignment - 1)
	}

	return ((value + alignment - 1) / alignment) * alignment
}

// AlignDown rounds value down to the previous multiple of alignment
func AlignDown[T Number](value, alignment T) T {
	if alignment <= 1 {
		return value
	}

	if alignment&(alignment-1) == 0 {
		return value & ^(alignment - 1)
	}

	return (value / alignment) * alignment
}

// DivideRoundingUp returns the number of divisor-sized units needed to hold value
func DivideRoundingUp[T Number](value, divisor T) T {
	return (value + divisor - 1) / divisor
}
