package state

import (
	"testing"

	"synthchain/storage"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	if err := m.KVPut([]byte("k"), uint64(42)); err != nil {
		t.Fatalf("put: %v", err)
	}
	var got uint64
	ok, err := m.KVGet([]byte("k"), &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || got != 42 {
		t.Fatalf("expected 42, got ok=%v value=%d", ok, got)
	}

	ok, err = m.KVGet([]byte("absent"), &got)
	if err != nil {
		t.Fatalf("get absent: %v", err)
	}
	if ok {
		t.Fatal("expected absent key to report not found")
	}
}

func TestTxnIsolatedUntilCommit(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	txn := m.Begin()
	if err := txn.KVPut([]byte("supply"), uint64(100)); err != nil {
		t.Fatalf("txn put: %v", err)
	}

	var outside uint64
	ok, err := m.KVGet([]byte("supply"), &outside)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("staged write visible before commit")
	}

	var inside uint64
	ok, err = txn.KVGet([]byte("supply"), &inside)
	if err != nil {
		t.Fatalf("txn get: %v", err)
	}
	if !ok || inside != 100 {
		t.Fatalf("txn should see its own write, got ok=%v value=%d", ok, inside)
	}

	if err := txn.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	ok, err = m.KVGet([]byte("supply"), &outside)
	if err != nil {
		t.Fatalf("get after commit: %v", err)
	}
	if !ok || outside != 100 {
		t.Fatalf("expected committed value 100, got ok=%v value=%d", ok, outside)
	}
}

func TestTxnDiscardDropsWrites(t *testing.T) {
	m := NewManager(storage.NewMemDB())

	txn := m.Begin()
	if err := txn.KVPut([]byte("supply"), uint64(7)); err != nil {
		t.Fatalf("txn put: %v", err)
	}
	txn.Discard()

	var got uint64
	ok, err := m.KVGet([]byte("supply"), &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("discarded write leaked into committed state")
	}

	if err := txn.KVPut([]byte("supply"), uint64(8)); err == nil {
		t.Fatal("expected put after discard to fail")
	}
}

func TestTxnDeleteShadowsCommitted(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	if err := m.KVPut([]byte("k"), uint64(1)); err != nil {
		t.Fatalf("put: %v", err)
	}

	txn := m.Begin()
	if err := txn.KVDelete([]byte("k")); err != nil {
		t.Fatalf("txn delete: %v", err)
	}
	var got uint64
	ok, err := txn.KVGet([]byte("k"), &got)
	if err != nil {
		t.Fatalf("txn get: %v", err)
	}
	if ok {
		t.Fatal("deleted key still visible inside transaction")
	}
	if err := txn.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	ok, err = m.KVGet([]byte("k"), &got)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("deleted key survived commit")
	}
}

func TestTxnIteratePrefixMergesOverlay(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	if err := m.KVPut([]byte("synth/asset/sBTC"), uint64(1)); err != nil {
		t.Fatalf("put: %v", err)
	}

	txn := m.Begin()
	if err := txn.KVPut([]byte("synth/asset/sUSD"), uint64(2)); err != nil {
		t.Fatalf("txn put: %v", err)
	}

	seen := make(map[string]bool)
	err := txn.KVIteratePrefix([]byte("synth/asset/"), func(key, _ []byte) bool {
		seen[string(key)] = true
		return true
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if !seen["synth/asset/sBTC"] || !seen["synth/asset/sUSD"] {
		t.Fatalf("expected both committed and staged keys, got %v", seen)
	}
}
