package synth

import (
	"math/big"

	nativecommon "synthchain/native/common"
	"synthchain/native/oracle"
)

// Collateral amounts are derived as
//
//	collateral = amount * price * ratioBps / RatioScale
//
// with price quoted in collateral base units per synthetic base unit (the
// feed is expected to pre-scale for the asset's decimals). Intermediates are
// computed over arbitrary-precision rationals, the result is truncated toward
// zero, and a result that does not fit in 64 bits fails with ErrOverflow.
// Mint and burn share one formula and one rounding rule so a mint-then-burn
// round trip at an unchanged price returns exactly the required collateral.

// RequiredCollateral computes the collateral that must be posted to mint
// amount synthetic units at the supplied price and ratio.
func RequiredCollateral(amount uint64, price *big.Rat, ratioBps uint64) (uint64, error) {
	return computeCollateral(amount, price, ratioBps)
}

// CollateralReturn computes the collateral released when burning amount
// synthetic units at the supplied price and ratio. Because the burn-time
// price is used, the release may differ from what was originally posted; the
// vault absorbs the difference.
func CollateralReturn(amount uint64, price *big.Rat, ratioBps uint64) (uint64, error) {
	return computeCollateral(amount, price, ratioBps)
}

func computeCollateral(amount uint64, price *big.Rat, ratioBps uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	if price == nil || price.Sign() <= 0 {
		return 0, oracle.ErrPriceUnavailable
	}
	if ratioBps == 0 {
		return 0, ErrInvalidRatio
	}
	// Whole-number prices resolve through checked integer arithmetic. The
	// rational path below is the fallback for fractional prices and for
	// intermediates that exceed 64 bits while the final result still fits.
	if price.IsInt() && price.Num().IsUint64() {
		if value, err := nativecommon.MulU64(amount, price.Num().Uint64()); err == nil {
			if out, err := nativecommon.MulDivU64(value, ratioBps, RatioScale); err == nil {
				return out, nil
			}
		}
	}
	ratio := new(big.Rat).SetFrac(new(big.Int).SetUint64(ratioBps), big.NewInt(RatioScale))
	value := new(big.Rat).Mul(new(big.Rat).SetUint64(amount), price)
	value.Mul(value, ratio)
	collateral := new(big.Int).Quo(value.Num(), value.Denom())
	if !collateral.IsUint64() {
		return 0, ErrOverflow
	}
	return collateral.Uint64(), nil
}
