package common

import (
	"errors"
	"math/bits"
)

// ErrOverflow is returned whenever a supply, balance, or ratio computation
// would wrap, underflow, or divide by zero. Callers must abort the whole
// request; silent wraparound here corrupts solvency accounting.
var ErrOverflow = errors.New("arithmetic overflow")

// AddU64 returns a+b, failing instead of wrapping.
func AddU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// SubU64 returns a-b, failing instead of underflowing.
func SubU64(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, ErrOverflow
	}
	return diff, nil
}

// MulU64 returns a*b, failing instead of truncating the high word.
func MulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return lo, nil
}

// MulDivU64 returns a*b/den with a 128-bit intermediate, truncated toward
// zero. It fails when den is zero or the quotient does not fit in 64 bits.
func MulDivU64(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ErrOverflow
	}
	quo, _ := bits.Div64(hi, lo, den)
	return quo, nil
}
