package common

import (
	"errors"
	"math"
	"testing"
)

func TestAddU64(t *testing.T) {
	sum, err := AddU64(1, 2)
	if err != nil || sum != 3 {
		t.Fatalf("expected 3, got %d err=%v", sum, err)
	}
	if _, err := AddU64(math.MaxUint64, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if sum, err := AddU64(math.MaxUint64, 0); err != nil || sum != math.MaxUint64 {
		t.Fatalf("boundary add failed: %d err=%v", sum, err)
	}
}

func TestSubU64(t *testing.T) {
	diff, err := SubU64(5, 3)
	if err != nil || diff != 2 {
		t.Fatalf("expected 2, got %d err=%v", diff, err)
	}
	if _, err := SubU64(3, 5); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow on underflow, got %v", err)
	}
}

func TestMulU64(t *testing.T) {
	prod, err := MulU64(1<<32, 1<<31)
	if err != nil || prod != 1<<63 {
		t.Fatalf("expected 1<<63, got %d err=%v", prod, err)
	}
	if _, err := MulU64(1<<32, 1<<32); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestMulDivU64(t *testing.T) {
	// 100 * 15000 / 10000 = 150, the worked collateral-ratio case.
	got, err := MulDivU64(100, 15000, 10000)
	if err != nil || got != 150 {
		t.Fatalf("expected 150, got %d err=%v", got, err)
	}

	// Intermediate product exceeds 64 bits but the quotient fits.
	got, err = MulDivU64(math.MaxUint64, 2, 4)
	if err != nil {
		t.Fatalf("muldiv with wide intermediate: %v", err)
	}
	if want := uint64(math.MaxUint64 / 2); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}

	if _, err := MulDivU64(math.MaxUint64, 3, 2); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow when quotient exceeds 64 bits, got %v", err)
	}
	if _, err := MulDivU64(1, 1, 0); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow on zero denominator, got %v", err)
	}
}
