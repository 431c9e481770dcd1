package synth

import (
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"synthchain/crypto"
)

const (
	// MaxNameLen bounds the human-readable asset name.
	MaxNameLen = 32
	// MaxSymbolLen bounds the asset symbol.
	MaxSymbolLen = 10
	// MaxDecimals bounds the decimal precision of a synthetic mint.
	MaxDecimals = 9
	// RatioScale is the fixed-point denominator for collateral ratios.
	// Ratios are expressed in basis points: 15_000 means 150%.
	RatioScale = 10_000
)

// SyntheticAsset is the per-asset registry record. Identity fields are set
// once at creation and never change; TotalSupply moves only through the two
// delta operations and Paused only through the authority-gated toggle.
type SyntheticAsset struct {
	Name               string
	Symbol             string
	Decimals           uint8
	Authority          crypto.Address
	CollateralMint     string
	SyntheticMint      string
	CollateralRatioBps uint64
	TotalSupply        uint64
	Paused             bool
	CreatedAt          int64
}

// Clone returns a deep copy so callers cannot mutate registry state through
// a shared pointer.
func (a *SyntheticAsset) Clone() *SyntheticAsset {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

// Vault returns the derived custody address for the asset. The address is a
// function of the symbol alone, the key-derivation analogue of a program
// derived account: nobody holds a private key for it, and only the engine's
// vault capability can move funds out.
func (a *SyntheticAsset) Vault() crypto.Address {
	return DeriveVaultAddress(a.Symbol)
}

// DeriveVaultAddress computes the custody address for an asset symbol.
func DeriveVaultAddress(symbol string) crypto.Address {
	seed := []byte("synth/vault/" + normalizeSymbol(symbol))
	digest := ethcrypto.Keccak256(seed)
	return crypto.MustNewAddress(crypto.VaultPrefix, digest[12:])
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func validateAssetParams(name, symbol string, decimals uint8, ratioBps uint64) error {
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	if len(symbol) == 0 || len(symbol) > MaxSymbolLen {
		return ErrSymbolTooLong
	}
	if decimals > MaxDecimals {
		return ErrInvalidDecimals
	}
	if ratioBps == 0 {
		return ErrInvalidRatio
	}
	return nil
}
