package synth

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"synthchain/crypto"
)

// Asset records are persisted with a fixed-width layout so external tooling
// can parse state dumps without a schema service. The leading tag byte
// versions the layout; any change to widths or field order must bump it.
//
//	tag(1) name(32) symbol(10) decimals(1) authority(32)
//	collateralMint(32) syntheticMint(32) totalSupply(8)
//	collateralRatio(8) paused(1) createdAt(8)
const (
	assetRecordTag = 0x01
	assetRecordLen = 1 + 32 + 10 + 1 + 32 + 32 + 32 + 8 + 8 + 1 + 8
)

func encodeAsset(a *SyntheticAsset) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("synth: cannot encode nil asset")
	}
	if len(a.Name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	if len(a.Symbol) > MaxSymbolLen {
		return nil, ErrSymbolTooLong
	}
	if len(a.CollateralMint) > 32 || len(a.SyntheticMint) > 32 {
		return nil, fmt.Errorf("synth: mint identifier exceeds 32 bytes")
	}
	buf := make([]byte, assetRecordLen)
	offset := 0
	buf[offset] = assetRecordTag
	offset++
	copy(buf[offset:offset+32], a.Name)
	offset += 32
	copy(buf[offset:offset+10], a.Symbol)
	offset += 10
	buf[offset] = a.Decimals
	offset++
	// Authority occupies a 32-byte slot; the 20-byte address is right
	// aligned with zero padding.
	copy(buf[offset+12:offset+32], a.Authority.Bytes())
	offset += 32
	copy(buf[offset:offset+32], a.CollateralMint)
	offset += 32
	copy(buf[offset:offset+32], a.SyntheticMint)
	offset += 32
	binary.BigEndian.PutUint64(buf[offset:offset+8], a.TotalSupply)
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:offset+8], a.CollateralRatioBps)
	offset += 8
	if a.Paused {
		buf[offset] = 1
	}
	offset++
	binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(a.CreatedAt))
	return buf, nil
}

func decodeAsset(raw []byte) (*SyntheticAsset, error) {
	if len(raw) != assetRecordLen {
		return nil, fmt.Errorf("synth: asset record length %d, want %d", len(raw), assetRecordLen)
	}
	if raw[0] != assetRecordTag {
		return nil, fmt.Errorf("synth: unsupported asset record tag %#x", raw[0])
	}
	a := &SyntheticAsset{}
	offset := 1
	a.Name = string(bytes.TrimRight(raw[offset:offset+32], "\x00"))
	offset += 32
	a.Symbol = string(bytes.TrimRight(raw[offset:offset+10], "\x00"))
	offset += 10
	a.Decimals = raw[offset]
	offset++
	authority, err := crypto.NewAddress(crypto.SynPrefix, raw[offset+12:offset+32])
	if err != nil {
		return nil, err
	}
	a.Authority = authority
	offset += 32
	a.CollateralMint = string(bytes.TrimRight(raw[offset:offset+32], "\x00"))
	offset += 32
	a.SyntheticMint = string(bytes.TrimRight(raw[offset:offset+32], "\x00"))
	offset += 32
	a.TotalSupply = binary.BigEndian.Uint64(raw[offset : offset+8])
	offset += 8
	a.CollateralRatioBps = binary.BigEndian.Uint64(raw[offset : offset+8])
	offset += 8
	a.Paused = raw[offset] == 1
	offset++
	a.CreatedAt = int64(binary.BigEndian.Uint64(raw[offset : offset+8]))
	return a, nil
}
