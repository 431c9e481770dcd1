package synth

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"synthchain/core/state"
	"synthchain/core/types"
	"synthchain/crypto"
	nativecommon "synthchain/native/common"
	"synthchain/native/oracle"
	"synthchain/native/token"
)

const moduleName = "synth"

// rateDisplayPrecision bounds the decimal rendering of the sampled rate in
// emitted events.
const rateDisplayPrecision = 9

// TokenLedger is the fungible-token surface the engine drives. Every call is
// made against the request transaction, so a failure after partial staging
// leaves committed state untouched.
type TokenLedger interface {
	Balance(addr crypto.Address, mint string) (uint64, error)
	Transfer(from, to crypto.Address, mint string, amount uint64) error
	Mint(mint string, to crypto.Address, amount uint64, cap token.MintCapability) error
	Burn(mint string, from crypto.Address, amount uint64) error
	VaultWithdraw(cap token.VaultCapability, vault, to crypto.Address, mint string, amount uint64) error
}

// Engine coordinates asset registration, collateral custody and supply
// changes. Each request locks the asset record and every account it touches
// before opening its transaction, so two requests that share a balance (the
// same caller minting two assets against one collateral mint, for instance)
// serialize instead of committing blind overwrites of each other's debits.
// Requests with disjoint lock sets proceed concurrently.
type Engine struct {
	state      *state.Manager
	oracle     oracle.PriceOracle
	pauses     nativecommon.PauseView
	emitter    EventEmitter
	clock      func() time.Time
	collateral map[string]struct{}
	newLedger  func(kv state.KV) TokenLedger
	locks      sync.Map
}

// NewEngine binds an engine to the provided state manager.
func NewEngine(mgr *state.Manager) *Engine {
	return &Engine{
		state:      mgr,
		collateral: make(map[string]struct{}),
		clock:      time.Now,
		newLedger:  func(kv state.KV) TokenLedger { return token.NewLedger(kv) },
	}
}

// SetOracle wires the price source consulted on mint and burn.
func (e *Engine) SetOracle(src oracle.PriceOracle) {
	if e == nil {
		return
	}
	e.oracle = src
}

// SetPauseView wires the module-level pause switch.
func (e *Engine) SetPauseView(p nativecommon.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetEmitter wires the event sink. A nil emitter drops events.
func (e *Engine) SetEmitter(emitter EventEmitter) {
	if e == nil {
		return
	}
	e.emitter = emitter
}

// SetClock overrides the time source. Tests use it for deterministic
// creation timestamps.
func (e *Engine) SetClock(clock func() time.Time) {
	if e == nil || clock == nil {
		return
	}
	e.clock = clock
}

// RegisterCollateral allows the mint as backing for new assets. Creation
// requests naming an unregistered mint fail with ErrUnknownCollateral.
func (e *Engine) RegisterCollateral(mint string) {
	if e == nil {
		return
	}
	mint = normalizeSymbol(mint)
	if mint == "" {
		return
	}
	e.collateral[mint] = struct{}{}
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errors.New("synth: engine not configured")
	}
	return nil
}

func (e *Engine) emit(evt *types.Event) {
	if e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func assetLockKey(symbol string) string {
	return "asset/" + normalizeSymbol(symbol)
}

func accountLockKey(addr crypto.Address) string {
	return "acct/" + addr.String()
}

// lockResources acquires one mutex per named resource in canonical (sorted)
// order so overlapping lock sets cannot deadlock, and returns the release for
// the whole set. Every resource a request reads or writes outside its own
// transaction overlay must be in the set; the overlay commit is a blind
// write, so only these locks keep concurrent requests from clobbering a
// shared balance.
func (e *Engine) lockResources(keys ...string) func() {
	sort.Strings(keys)
	locked := make([]*sync.Mutex, 0, len(keys))
	for i, key := range keys {
		if i > 0 && key == keys[i-1] {
			continue
		}
		v, _ := e.locks.LoadOrStore(key, &sync.Mutex{})
		mu := v.(*sync.Mutex)
		mu.Lock()
		locked = append(locked, mu)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

func (e *Engine) registry(kv state.KV) *Registry {
	r := NewRegistry(kv)
	r.SetClock(e.clock)
	return r
}

// samplePrice consults the oracle exactly once for the asset's pair. Both
// legs of a request reuse the returned quote.
func (e *Engine) samplePrice(asset *SyntheticAsset) (oracle.PriceQuote, error) {
	if e.oracle == nil {
		return oracle.PriceQuote{}, oracle.ErrPriceUnavailable
	}
	quote, err := e.oracle.GetPrice(asset.Symbol, asset.CollateralMint)
	if err != nil {
		if errors.Is(err, oracle.ErrPriceUnavailable) {
			return oracle.PriceQuote{}, err
		}
		return oracle.PriceQuote{}, fmt.Errorf("%w: %v", oracle.ErrPriceUnavailable, err)
	}
	return quote, nil
}

// CreateAsset registers a new synthetic asset with zero supply. The caller
// becomes the asset authority.
func (e *Engine) CreateAsset(params CreateParams) (*SyntheticAsset, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	mint := normalizeSymbol(params.CollateralMint)
	if _, ok := e.collateral[mint]; !ok {
		return nil, ErrUnknownCollateral
	}
	unlock := e.lockResources(assetLockKey(params.Symbol))
	defer unlock()

	txn := e.state.Begin()
	defer txn.Discard()
	asset, err := e.registry(txn).Create(params)
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(NewAssetCreatedEvent(asset))
	return asset, nil
}

// MintResult reports the outcome of a successful mint.
type MintResult struct {
	Asset              *SyntheticAsset
	Minted             uint64
	CollateralLocked   uint64
	RequiredCollateral uint64
	Rate               string
}

// Mint issues amount synthetic units to the caller against collateral. The
// caller offers collateralAmount units of the asset's collateral mint; the
// full offer moves into the vault once it covers the oracle-priced
// requirement.
func (e *Engine) Mint(caller crypto.Address, symbol string, amount, collateralAmount uint64) (*MintResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if caller.IsZero() {
		return nil, token.ErrInvalidAddress
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if collateralAmount == 0 {
		return nil, ErrInvalidCollateralAmount
	}
	unlock := e.lockResources(assetLockKey(symbol), accountLockKey(caller))
	defer unlock()

	txn := e.state.Begin()
	defer txn.Discard()
	registry := e.registry(txn)
	asset, err := registry.Get(symbol)
	if err != nil {
		return nil, err
	}
	if err := CheckActive(asset); err != nil {
		return nil, err
	}
	quote, err := e.samplePrice(asset)
	if err != nil {
		return nil, err
	}
	required, err := RequiredCollateral(amount, quote.Rate, asset.CollateralRatioBps)
	if err != nil {
		return nil, err
	}
	if collateralAmount < required {
		return nil, ErrInsufficientCollateral
	}
	ledger := e.newLedger(txn)
	if err := ledger.Transfer(caller, asset.Vault(), asset.CollateralMint, collateralAmount); err != nil {
		return nil, err
	}
	cap := token.NewMintCapability(asset.SyntheticMint)
	if err := ledger.Mint(asset.SyntheticMint, caller, amount, cap); err != nil {
		return nil, err
	}
	if err := registry.ApplyMintDelta(asset, amount); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	rate := quote.RateString(rateDisplayPrecision)
	e.emit(NewMintedEvent(asset, caller.String(), amount, collateralAmount, rate))
	return &MintResult{
		Asset:              asset.Clone(),
		Minted:             amount,
		CollateralLocked:   collateralAmount,
		RequiredCollateral: required,
		Rate:               rate,
	}, nil
}

// BurnResult reports the outcome of a successful burn.
type BurnResult struct {
	Asset              *SyntheticAsset
	Burned             uint64
	CollateralReturned uint64
	Rate               string
}

// Burn destroys amount synthetic units held by the caller and releases the
// oracle-priced collateral from the vault. The release uses the rate at burn
// time, not the rate the position was opened at.
func (e *Engine) Burn(caller crypto.Address, symbol string, amount uint64) (*BurnResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if caller.IsZero() {
		return nil, token.ErrInvalidAddress
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	unlock := e.lockResources(assetLockKey(symbol), accountLockKey(caller))
	defer unlock()

	txn := e.state.Begin()
	defer txn.Discard()
	registry := e.registry(txn)
	asset, err := registry.Get(symbol)
	if err != nil {
		return nil, err
	}
	if err := CheckActive(asset); err != nil {
		return nil, err
	}
	quote, err := e.samplePrice(asset)
	if err != nil {
		return nil, err
	}
	returned, err := CollateralReturn(amount, quote.Rate, asset.CollateralRatioBps)
	if err != nil {
		return nil, err
	}
	ledger := e.newLedger(txn)
	if err := ledger.Burn(asset.SyntheticMint, caller, amount); err != nil {
		return nil, err
	}
	if returned > 0 {
		cap := token.NewVaultCapability(asset.Vault(), asset.CollateralMint)
		if err := ledger.VaultWithdraw(cap, asset.Vault(), caller, asset.CollateralMint, returned); err != nil {
			if errors.Is(err, token.ErrInsufficientFunds) {
				return nil, ErrInsufficientCollateral
			}
			return nil, err
		}
	}
	if err := registry.ApplyBurnDelta(asset, amount); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	rate := quote.RateString(rateDisplayPrecision)
	e.emit(NewBurnedEvent(asset, caller.String(), amount, returned, rate))
	return &BurnResult{
		Asset:              asset.Clone(),
		Burned:             amount,
		CollateralReturned: returned,
		Rate:               rate,
	}, nil
}

// Pause blocks mint and burn for the asset. Only the asset authority may
// pause.
func (e *Engine) Pause(caller crypto.Address, symbol string) (*SyntheticAsset, error) {
	return e.setPaused(caller, symbol, true)
}

// Resume lifts an administrative pause. Only the asset authority may resume.
func (e *Engine) Resume(caller crypto.Address, symbol string) (*SyntheticAsset, error) {
	return e.setPaused(caller, symbol, false)
}

func (e *Engine) setPaused(caller crypto.Address, symbol string, paused bool) (*SyntheticAsset, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	unlock := e.lockResources(assetLockKey(symbol))
	defer unlock()

	txn := e.state.Begin()
	defer txn.Discard()
	registry := e.registry(txn)
	asset, err := registry.Get(symbol)
	if err != nil {
		return nil, err
	}
	if !asset.Authority.Equal(caller) {
		return nil, ErrNotAuthority
	}
	if err := registry.SetPaused(asset, paused); err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	e.emit(NewPauseEvent(asset, paused))
	return asset.Clone(), nil
}

// GetAsset loads the current record for a symbol.
func (e *Engine) GetAsset(symbol string) (*SyntheticAsset, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.registry(e.state).Get(symbol)
}

// ListAssets returns every registered asset ordered by symbol.
func (e *Engine) ListAssets() ([]*SyntheticAsset, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.registry(e.state).List()
}

// BalanceOf reports the caller's holdings of a mint against committed state.
func (e *Engine) BalanceOf(addr crypto.Address, mint string) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	return e.newLedger(e.state).Balance(addr, mint)
}
