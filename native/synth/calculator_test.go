package synth

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"synthchain/native/oracle"
)

func TestRequiredCollateralWorkedExample(t *testing.T) {
	price := new(big.Rat).SetInt64(2)
	got, err := RequiredCollateral(100, price, 15_000)
	if err != nil {
		t.Fatalf("required collateral: %v", err)
	}
	if got != 300 {
		t.Fatalf("expected 300 collateral units, got %d", got)
	}
}

func TestComputeCollateralTruncatesTowardZero(t *testing.T) {
	price := big.NewRat(1, 3)
	got, err := RequiredCollateral(10, price, RatioScale)
	if err != nil {
		t.Fatalf("required collateral: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected 10/3 to truncate to 3, got %d", got)
	}
	got, err = RequiredCollateral(1, price, RatioScale)
	if err != nil {
		t.Fatalf("required collateral: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 1/3 to truncate to 0, got %d", got)
	}
}

func TestMintAndBurnShareOneFormula(t *testing.T) {
	cases := []struct {
		amount uint64
		price  *big.Rat
		ratio  uint64
	}{
		{100, new(big.Rat).SetInt64(2), 15_000},
		{1, big.NewRat(1, 7), 10_000},
		{987_654_321, big.NewRat(3, 2), 12_345},
		{42, big.NewRat(19, 4), 20_000},
	}
	for _, tc := range cases {
		required, err := RequiredCollateral(tc.amount, tc.price, tc.ratio)
		if err != nil {
			t.Fatalf("required collateral for %d: %v", tc.amount, err)
		}
		returned, err := CollateralReturn(tc.amount, tc.price, tc.ratio)
		if err != nil {
			t.Fatalf("collateral return for %d: %v", tc.amount, err)
		}
		if required != returned {
			t.Fatalf("amount %d: required %d but returned %d", tc.amount, required, returned)
		}
	}
}

func TestComputeCollateralRejectsBadInputs(t *testing.T) {
	price := new(big.Rat).SetInt64(2)
	if _, err := RequiredCollateral(0, price, RatioScale); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero amount, got %v", err)
	}
	if _, err := RequiredCollateral(10, nil, RatioScale); !errors.Is(err, oracle.ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable for nil price, got %v", err)
	}
	if _, err := RequiredCollateral(10, big.NewRat(-1, 2), RatioScale); !errors.Is(err, oracle.ErrPriceUnavailable) {
		t.Fatalf("expected ErrPriceUnavailable for negative price, got %v", err)
	}
	if _, err := RequiredCollateral(10, price, 0); !errors.Is(err, ErrInvalidRatio) {
		t.Fatalf("expected ErrInvalidRatio for zero ratio, got %v", err)
	}
}

func TestComputeCollateralOverflow(t *testing.T) {
	price := new(big.Rat).SetInt64(3)
	if _, err := RequiredCollateral(math.MaxUint64, price, RatioScale); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestComputeCollateralWholeNumberPrices(t *testing.T) {
	cases := []struct {
		amount uint64
		price  int64
		ratio  uint64
		want   uint64
	}{
		{100, 2, 15_000, 300},
		{7, 3, 12_500, 26},
		{1, 1, 1, 0},
		// amount*price fits in 64 bits but the bps product needs the wide
		// intermediate.
		{1_000_000_000_000_000_000, 7, 15_000, 10_500_000_000_000_000_000},
	}
	for _, tc := range cases {
		got, err := RequiredCollateral(tc.amount, new(big.Rat).SetInt64(tc.price), tc.ratio)
		if err != nil {
			t.Fatalf("amount %d price %d: %v", tc.amount, tc.price, err)
		}
		if got != tc.want {
			t.Fatalf("amount %d price %d: expected %d, got %d", tc.amount, tc.price, tc.want, got)
		}
	}
}

func TestComputeCollateralValueBeyond64Bits(t *testing.T) {
	// amount*price overflows a uint64 while the final result still fits, so
	// the computation must come out of the rational path.
	amount := uint64(1) << 63
	got, err := RequiredCollateral(amount, new(big.Rat).SetInt64(4), 100)
	if err != nil {
		t.Fatalf("required collateral: %v", err)
	}
	want := uint64(368_934_881_474_191_032)
	if got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}
