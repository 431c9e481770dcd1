package crypto

import (
	"bytes"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := key.PubKey().Address()
	if addr.Prefix() != SynPrefix {
		t.Fatalf("expected syn prefix, got %s", addr.Prefix())
	}

	decoded, err := DecodeAddress(addr.String())
	if err != nil {
		t.Fatalf("decode address: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), addr.Bytes()) {
		t.Fatalf("round trip mismatch: %x != %x", decoded.Bytes(), addr.Bytes())
	}
}

func TestNewAddressRejectsBadLength(t *testing.T) {
	if _, err := NewAddress(SynPrefix, make([]byte, 19)); err == nil {
		t.Fatal("expected error for 19-byte address")
	}
}

func TestDecodeAddressRejectsUnknownPrefix(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	addr := Address{prefix: AddressPrefix("bogus"), bytes: key.PubKey().Address().Bytes()}
	if _, err := DecodeAddress(addr.String()); err == nil {
		t.Fatal("expected unknown prefix to be rejected")
	}
}

func TestIsZero(t *testing.T) {
	var empty Address
	if !empty.IsZero() {
		t.Fatal("empty address should be zero")
	}
	addr := MustNewAddress(SynPrefix, bytes.Repeat([]byte{0x01}, 20))
	if addr.IsZero() {
		t.Fatal("non-zero address reported zero")
	}
}
