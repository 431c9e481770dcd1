package synth

import (
	"bytes"
	"errors"
	"math"
	"testing"
	"time"

	"synthchain/core/state"
	"synthchain/crypto"
	"synthchain/storage"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	registry := NewRegistry(state.NewManager(storage.NewMemDB()))
	registry.SetClock(func() time.Time { return time.Unix(1_756_000_000, 0) })
	return registry
}

func testAddress(t *testing.T, fill byte) crypto.Address {
	t.Helper()
	return crypto.MustNewAddress(crypto.SynPrefix, bytes.Repeat([]byte{fill}, 20))
}

func testCreateParams(t *testing.T) CreateParams {
	t.Helper()
	return CreateParams{
		Name:               "Synthetic Gold",
		Symbol:             "sgold",
		Decimals:           6,
		Authority:          testAddress(t, 0xaa),
		CollateralMint:     "usdc",
		CollateralRatioBps: 15_000,
	}
}

func TestRegistryCreateAndGet(t *testing.T) {
	registry := newTestRegistry(t)
	created, err := registry.Create(testCreateParams(t))
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if created.Symbol != "SGOLD" {
		t.Fatalf("expected normalized symbol SGOLD, got %q", created.Symbol)
	}
	if created.CollateralMint != "USDC" {
		t.Fatalf("expected normalized collateral mint USDC, got %q", created.CollateralMint)
	}
	if created.TotalSupply != 0 || created.Paused {
		t.Fatalf("expected fresh asset with zero supply and unpaused, got %+v", created)
	}
	if created.CreatedAt != 1_756_000_000 {
		t.Fatalf("expected clock timestamp, got %d", created.CreatedAt)
	}
	loaded, err := registry.Get("sgold")
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if loaded.Name != created.Name || loaded.Symbol != created.Symbol {
		t.Fatalf("loaded asset mismatch: %+v", loaded)
	}
	if !loaded.Authority.Equal(created.Authority) {
		t.Fatalf("authority mismatch: %s != %s", loaded.Authority, created.Authority)
	}
}

func TestRegistryRejectsDuplicateSymbol(t *testing.T) {
	registry := newTestRegistry(t)
	if _, err := registry.Create(testCreateParams(t)); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	params := testCreateParams(t)
	params.Name = "Other Gold"
	if _, err := registry.Create(params); !errors.Is(err, ErrAssetExists) {
		t.Fatalf("expected ErrAssetExists, got %v", err)
	}
}

func TestRegistryValidation(t *testing.T) {
	registry := newTestRegistry(t)
	params := testCreateParams(t)
	params.Name = string(bytes.Repeat([]byte{'a'}, MaxNameLen+1))
	if _, err := registry.Create(params); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	params = testCreateParams(t)
	params.Symbol = "TOOLONGSYMB"
	if _, err := registry.Create(params); !errors.Is(err, ErrSymbolTooLong) {
		t.Fatalf("expected ErrSymbolTooLong, got %v", err)
	}
	params = testCreateParams(t)
	params.Symbol = ""
	if _, err := registry.Create(params); !errors.Is(err, ErrSymbolTooLong) {
		t.Fatalf("expected ErrSymbolTooLong for empty symbol, got %v", err)
	}
	params = testCreateParams(t)
	params.Decimals = MaxDecimals + 1
	if _, err := registry.Create(params); !errors.Is(err, ErrInvalidDecimals) {
		t.Fatalf("expected ErrInvalidDecimals, got %v", err)
	}
	params = testCreateParams(t)
	params.CollateralRatioBps = 0
	if _, err := registry.Create(params); !errors.Is(err, ErrInvalidRatio) {
		t.Fatalf("expected ErrInvalidRatio, got %v", err)
	}
}

func TestRegistryGetUnknownSymbol(t *testing.T) {
	registry := newTestRegistry(t)
	if _, err := registry.Get("MISSING"); !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestRegistryListSortedBySymbol(t *testing.T) {
	registry := newTestRegistry(t)
	for _, symbol := range []string{"ZINC", "ALPHA", "MID"} {
		params := testCreateParams(t)
		params.Symbol = symbol
		if _, err := registry.Create(params); err != nil {
			t.Fatalf("create %s: %v", symbol, err)
		}
	}
	assets, err := registry.List()
	if err != nil {
		t.Fatalf("list assets: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(assets))
	}
	want := []string{"ALPHA", "MID", "ZINC"}
	for i, asset := range assets {
		if asset.Symbol != want[i] {
			t.Fatalf("expected %s at index %d, got %s", want[i], i, asset.Symbol)
		}
	}
}

func TestRegistrySupplyDeltas(t *testing.T) {
	registry := newTestRegistry(t)
	asset, err := registry.Create(testCreateParams(t))
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if err := registry.ApplyMintDelta(asset, 500); err != nil {
		t.Fatalf("mint delta: %v", err)
	}
	if asset.TotalSupply != 500 {
		t.Fatalf("expected supply 500, got %d", asset.TotalSupply)
	}
	if err := registry.ApplyBurnDelta(asset, 200); err != nil {
		t.Fatalf("burn delta: %v", err)
	}
	if asset.TotalSupply != 300 {
		t.Fatalf("expected supply 300, got %d", asset.TotalSupply)
	}
	if err := registry.ApplyBurnDelta(asset, 301); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow burning past supply, got %v", err)
	}
	loaded, err := registry.Get(asset.Symbol)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if loaded.TotalSupply != 300 {
		t.Fatalf("expected persisted supply 300, got %d", loaded.TotalSupply)
	}
}

func TestRegistryPauseToggle(t *testing.T) {
	registry := newTestRegistry(t)
	asset, err := registry.Create(testCreateParams(t))
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if err := CheckActive(asset); err != nil {
		t.Fatalf("fresh asset should be active: %v", err)
	}
	if err := registry.SetPaused(asset, true); err != nil {
		t.Fatalf("pause: %v", err)
	}
	loaded, err := registry.Get(asset.Symbol)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if err := CheckActive(loaded); !errors.Is(err, ErrAssetPaused) {
		t.Fatalf("expected ErrAssetPaused, got %v", err)
	}
	if err := registry.SetPaused(loaded, false); err != nil {
		t.Fatalf("resume: %v", err)
	}
	loaded, err = registry.Get(asset.Symbol)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if err := CheckActive(loaded); err != nil {
		t.Fatalf("resumed asset should be active: %v", err)
	}
}

func TestRegistryMintDeltaOverflow(t *testing.T) {
	registry := newTestRegistry(t)
	asset, err := registry.Create(testCreateParams(t))
	if err != nil {
		t.Fatalf("create asset: %v", err)
	}
	if err := registry.ApplyMintDelta(asset, math.MaxUint64); err != nil {
		t.Fatalf("mint delta to max: %v", err)
	}
	if err := registry.ApplyMintDelta(asset, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow minting past max supply, got %v", err)
	}
	loaded, err := registry.Get(asset.Symbol)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if loaded.TotalSupply != math.MaxUint64 {
		t.Fatalf("failed delta must not change supply, got %d", loaded.TotalSupply)
	}
}
