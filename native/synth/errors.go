package synth

import (
	"errors"

	nativecommon "synthchain/native/common"
)

var (
	// ErrNameTooLong indicates the asset name exceeds 32 bytes.
	ErrNameTooLong = errors.New("synth: name must be 32 bytes or less")
	// ErrSymbolTooLong indicates the asset symbol exceeds 10 bytes.
	ErrSymbolTooLong = errors.New("synth: symbol must be 10 bytes or less")
	// ErrInvalidDecimals indicates the decimals setting exceeds 9.
	ErrInvalidDecimals = errors.New("synth: decimals must be 9 or less")
	// ErrInvalidRatio indicates a zero collateral ratio.
	ErrInvalidRatio = errors.New("synth: collateral ratio must be positive")
	// ErrInvalidAmount indicates a zero synthetic amount on mint or burn.
	ErrInvalidAmount = errors.New("synth: amount must be greater than 0")
	// ErrInvalidCollateralAmount indicates a zero collateral offer on mint.
	ErrInvalidCollateralAmount = errors.New("synth: collateral amount must be greater than 0")
	// ErrInsufficientCollateral indicates the offered collateral does not
	// cover the requirement, or the vault cannot cover the return on burn.
	ErrInsufficientCollateral = errors.New("synth: insufficient collateral")
	// ErrAssetPaused indicates mint and burn are administratively blocked.
	ErrAssetPaused = errors.New("synth: asset is paused")
	// ErrAssetExists indicates a creation request for an existing symbol.
	ErrAssetExists = errors.New("synth: asset already exists")
	// ErrAssetNotFound indicates the symbol is not registered.
	ErrAssetNotFound = errors.New("synth: asset not found")
	// ErrUnknownCollateral indicates the collateral mint is not registered
	// with the engine's injected asset-type configuration.
	ErrUnknownCollateral = errors.New("synth: collateral mint not registered")
	// ErrNotAuthority indicates an administrative request signed by an
	// account other than the asset authority.
	ErrNotAuthority = errors.New("synth: caller is not the asset authority")
)

// ErrOverflow aliases the shared checked-arithmetic failure so callers can
// match it on results from any synth operation.
var ErrOverflow = nativecommon.ErrOverflow
