package synth

import (
	"errors"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/rlp"

	"synthchain/core/state"
	"synthchain/crypto"
	nativecommon "synthchain/native/common"
)

// Registry owns the per-asset records. Every supply change routes through
// exactly one of the two delta operations so the running total always equals
// units minted minus units burned.
type Registry struct {
	kv    state.KV
	clock func() time.Time
}

// NewRegistry binds a registry to the provided state view.
func NewRegistry(kv state.KV) *Registry {
	return &Registry{kv: kv, clock: time.Now}
}

// SetClock overrides the time source, primarily for deterministic testing.
func (r *Registry) SetClock(clock func() time.Time) {
	if r == nil || clock == nil {
		return
	}
	r.clock = clock
}

// CreateParams carries the caller-supplied fields of an asset creation.
type CreateParams struct {
	Name               string
	Symbol             string
	Decimals           uint8
	Authority          crypto.Address
	CollateralMint     string
	CollateralRatioBps uint64
}

// Create validates the parameters and persists a fresh record with zero
// supply and the pause flag cleared. Requests for an existing symbol fail
// with ErrAssetExists.
func (r *Registry) Create(params CreateParams) (*SyntheticAsset, error) {
	if r == nil || r.kv == nil {
		return nil, errors.New("synth: registry not configured")
	}
	if err := validateAssetParams(params.Name, params.Symbol, params.Decimals, params.CollateralRatioBps); err != nil {
		return nil, err
	}
	if params.Authority.IsZero() {
		return nil, errors.New("synth: authority required")
	}
	symbol := normalizeSymbol(params.Symbol)
	ok, err := r.kv.KVGet(assetKey(symbol), nil)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, ErrAssetExists
	}
	asset := &SyntheticAsset{
		Name:               params.Name,
		Symbol:             symbol,
		Decimals:           params.Decimals,
		Authority:          params.Authority,
		CollateralMint:     normalizeSymbol(params.CollateralMint),
		SyntheticMint:      symbol,
		CollateralRatioBps: params.CollateralRatioBps,
		TotalSupply:        0,
		Paused:             false,
		CreatedAt:          r.clock().Unix(),
	}
	if err := r.put(asset); err != nil {
		return nil, err
	}
	return asset.Clone(), nil
}

// Get loads the record for a symbol, failing with ErrAssetNotFound when the
// symbol is not registered.
func (r *Registry) Get(symbol string) (*SyntheticAsset, error) {
	if r == nil || r.kv == nil {
		return nil, errors.New("synth: registry not configured")
	}
	var raw []byte
	ok, err := r.kv.KVGet(assetKey(symbol), &raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAssetNotFound
	}
	return decodeAsset(raw)
}

// List returns all registered assets ordered by symbol.
func (r *Registry) List() ([]*SyntheticAsset, error) {
	if r == nil || r.kv == nil {
		return nil, errors.New("synth: registry not configured")
	}
	var assets []*SyntheticAsset
	var decodeErr error
	err := r.kv.KVIteratePrefix(assetPrefix, func(_, value []byte) bool {
		// Values arrive RLP encoded; strip the byte-string header the
		// same way KVGet would.
		var raw []byte
		if err := rlp.DecodeBytes(value, &raw); err != nil {
			decodeErr = err
			return false
		}
		asset, err := decodeAsset(raw)
		if err != nil {
			decodeErr = err
			return false
		}
		assets = append(assets, asset)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })
	return assets, nil
}

func (r *Registry) put(asset *SyntheticAsset) error {
	raw, err := encodeAsset(asset)
	if err != nil {
		return err
	}
	return r.kv.KVPut(assetKey(asset.Symbol), raw)
}

// ApplyMintDelta raises the running supply through checked arithmetic and
// persists the record.
func (r *Registry) ApplyMintDelta(asset *SyntheticAsset, amount uint64) error {
	if r == nil || r.kv == nil {
		return errors.New("synth: registry not configured")
	}
	if asset == nil {
		return ErrAssetNotFound
	}
	updated, err := nativecommon.AddU64(asset.TotalSupply, amount)
	if err != nil {
		return err
	}
	asset.TotalSupply = updated
	return r.put(asset)
}

// ApplyBurnDelta lowers the running supply; burning more than the supply
// fails with ErrOverflow, matching the generic arithmetic failure used for
// both directions.
func (r *Registry) ApplyBurnDelta(asset *SyntheticAsset, amount uint64) error {
	if r == nil || r.kv == nil {
		return errors.New("synth: registry not configured")
	}
	if asset == nil {
		return ErrAssetNotFound
	}
	updated, err := nativecommon.SubU64(asset.TotalSupply, amount)
	if err != nil {
		return err
	}
	asset.TotalSupply = updated
	return r.put(asset)
}

// SetPaused toggles the administrative pause flag and persists the record.
func (r *Registry) SetPaused(asset *SyntheticAsset, paused bool) error {
	if r == nil || r.kv == nil {
		return errors.New("synth: registry not configured")
	}
	if asset == nil {
		return ErrAssetNotFound
	}
	asset.Paused = paused
	return r.put(asset)
}

// CheckActive rejects mutating requests against paused assets. Read-only
// queries remain allowed while paused.
func CheckActive(asset *SyntheticAsset) error {
	if asset == nil {
		return ErrAssetNotFound
	}
	if asset.Paused {
		return ErrAssetPaused
	}
	return nil
}
