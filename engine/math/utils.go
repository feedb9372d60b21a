package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// AlignUp rounds `value` up to the next multiple of `align`. `align` must be
// non-zero; it is not required to be a power of two.
func AlignUp[T constraints.Unsigned](value, align T) T {
	m := value % align
	if m == 0 {
		return value
	}
	return value - m + align
}
