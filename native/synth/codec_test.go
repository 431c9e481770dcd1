package synth

import (
	"bytes"
	"reflect"
	"testing"

	"synthchain/crypto"
)

func TestAssetCodecRoundTrip(t *testing.T) {
	authority := crypto.MustNewAddress(crypto.SynPrefix, bytes.Repeat([]byte{0x5a}, 20))
	asset := &SyntheticAsset{
		Name:               "Synthetic Gold",
		Symbol:             "SGOLD",
		Decimals:           6,
		Authority:          authority,
		CollateralMint:     "USDC",
		SyntheticMint:      "SGOLD",
		CollateralRatioBps: 15_000,
		TotalSupply:        1_234_567,
		Paused:             true,
		CreatedAt:          1_756_000_000,
	}
	raw, err := encodeAsset(asset)
	if err != nil {
		t.Fatalf("encode asset: %v", err)
	}
	if len(raw) != assetRecordLen {
		t.Fatalf("expected %d byte record, got %d", assetRecordLen, len(raw))
	}
	if raw[0] != assetRecordTag {
		t.Fatalf("expected leading tag %#x, got %#x", assetRecordTag, raw[0])
	}
	decoded, err := decodeAsset(raw)
	if err != nil {
		t.Fatalf("decode asset: %v", err)
	}
	if !reflect.DeepEqual(decoded, asset) {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, asset)
	}
}

func TestAssetCodecRejectsMalformedRecords(t *testing.T) {
	authority := crypto.MustNewAddress(crypto.SynPrefix, bytes.Repeat([]byte{0x01}, 20))
	raw, err := encodeAsset(&SyntheticAsset{Name: "x", Symbol: "X", Authority: authority, CollateralRatioBps: 1})
	if err != nil {
		t.Fatalf("encode asset: %v", err)
	}
	if _, err := decodeAsset(raw[:len(raw)-1]); err == nil {
		t.Fatal("expected truncated record to fail")
	}
	bad := append([]byte(nil), raw...)
	bad[0] = 0x7f
	if _, err := decodeAsset(bad); err == nil {
		t.Fatal("expected unknown tag to fail")
	}
}

func TestEncodeAssetRejectsOversizedFields(t *testing.T) {
	authority := crypto.MustNewAddress(crypto.SynPrefix, bytes.Repeat([]byte{0x02}, 20))
	long := string(bytes.Repeat([]byte{'a'}, MaxNameLen+1))
	if _, err := encodeAsset(&SyntheticAsset{Name: long, Symbol: "X", Authority: authority}); err != ErrNameTooLong {
		t.Fatalf("expected ErrNameTooLong, got %v", err)
	}
	longSym := string(bytes.Repeat([]byte{'B'}, MaxSymbolLen+1))
	if _, err := encodeAsset(&SyntheticAsset{Name: "ok", Symbol: longSym, Authority: authority}); err != ErrSymbolTooLong {
		t.Fatalf("expected ErrSymbolTooLong, got %v", err)
	}
}
