package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"synthchain/storage"
)

// KV is the narrow state access surface consumed by the native modules.
// Values are encoded with RLP on the way in and decoded on the way out.
type KV interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVDelete(key []byte) error
	KVIteratePrefix(prefix []byte, fn func(key, value []byte) bool) error
}

// Manager provides typed key-value access over the raw storage backend.
type Manager struct {
	mu sync.RWMutex
	db storage.Database
}

// NewManager constructs a state manager bound to the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) KVGet(key []byte, out interface{}) (bool, error) {
	if m == nil || m.db == nil {
		return false, fmt.Errorf("state: manager not configured")
	}
	m.mu.RLock()
	raw, err := m.db.Get(key)
	m.mu.RUnlock()
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if out != nil {
		if err := rlp.DecodeBytes(raw, out); err != nil {
			return false, fmt.Errorf("state: decode %q: %w", key, err)
		}
	}
	return true, nil
}

func (m *Manager) KVPut(key []byte, value interface{}) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: manager not configured")
	}
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Put(key, raw)
}

func (m *Manager) KVDelete(key []byte) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: manager not configured")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db.Delete(key)
}

func (m *Manager) KVIteratePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: manager not configured")
	}
	return m.db.IteratePrefix(prefix, fn)
}

// Begin opens a buffered transaction. Reads see the transaction's own writes
// first and fall through to the committed state; nothing touches the backend
// until Commit, which applies every staged mutation as one atomic batch.
func (m *Manager) Begin() *Txn {
	return &Txn{
		manager: m,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

// Txn is an all-or-nothing overlay over the manager. It is not safe for
// concurrent use; each request owns exactly one transaction.
type Txn struct {
	manager *Manager
	order   []string
	writes  map[string][]byte
	deletes map[string]struct{}
	done    bool
}

func (t *Txn) KVGet(key []byte, out interface{}) (bool, error) {
	if t == nil || t.manager == nil {
		return false, fmt.Errorf("state: transaction not configured")
	}
	if _, deleted := t.deletes[string(key)]; deleted {
		return false, nil
	}
	if raw, ok := t.writes[string(key)]; ok {
		if out != nil {
			if err := rlp.DecodeBytes(raw, out); err != nil {
				return false, fmt.Errorf("state: decode %q: %w", key, err)
			}
		}
		return true, nil
	}
	return t.manager.KVGet(key, out)
}

func (t *Txn) KVPut(key []byte, value interface{}) error {
	if t == nil || t.manager == nil {
		return fmt.Errorf("state: transaction not configured")
	}
	if t.done {
		return fmt.Errorf("state: transaction already finished")
	}
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	k := string(key)
	if _, seen := t.writes[k]; !seen {
		if _, seen := t.deletes[k]; !seen {
			t.order = append(t.order, k)
		}
	}
	delete(t.deletes, k)
	t.writes[k] = raw
	return nil
}

func (t *Txn) KVDelete(key []byte) error {
	if t == nil || t.manager == nil {
		return fmt.Errorf("state: transaction not configured")
	}
	if t.done {
		return fmt.Errorf("state: transaction already finished")
	}
	k := string(key)
	if _, seen := t.writes[k]; !seen {
		if _, seen := t.deletes[k]; !seen {
			t.order = append(t.order, k)
		}
	}
	delete(t.writes, k)
	t.deletes[k] = struct{}{}
	return nil
}

// KVIteratePrefix walks committed state merged with the staged overlay.
func (t *Txn) KVIteratePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	if t == nil || t.manager == nil {
		return fmt.Errorf("state: transaction not configured")
	}
	visited := make(map[string]struct{})
	err := t.manager.KVIteratePrefix(prefix, func(key, value []byte) bool {
		k := string(key)
		visited[k] = struct{}{}
		if _, deleted := t.deletes[k]; deleted {
			return true
		}
		if staged, ok := t.writes[k]; ok {
			return fn(key, staged)
		}
		return fn(key, value)
	})
	if err != nil {
		return err
	}
	for _, k := range t.order {
		if _, seen := visited[k]; seen {
			continue
		}
		raw, ok := t.writes[k]
		if !ok {
			continue
		}
		if len(k) < len(prefix) || k[:len(prefix)] != string(prefix) {
			continue
		}
		if !fn([]byte(k), raw) {
			break
		}
	}
	return nil
}

// Commit flushes every staged mutation to the backend in one batch.
func (t *Txn) Commit() error {
	if t == nil || t.manager == nil {
		return fmt.Errorf("state: transaction not configured")
	}
	if t.done {
		return fmt.Errorf("state: transaction already finished")
	}
	t.done = true
	if len(t.order) == 0 {
		return nil
	}
	batch := make([]storage.BatchOp, 0, len(t.order))
	for _, k := range t.order {
		if _, deleted := t.deletes[k]; deleted {
			batch = append(batch, storage.BatchOp{Key: []byte(k)})
			continue
		}
		batch = append(batch, storage.BatchOp{Key: []byte(k), Value: t.writes[k]})
	}
	t.manager.mu.Lock()
	defer t.manager.mu.Unlock()
	return t.manager.db.WriteBatch(batch)
}

// Discard drops all staged mutations.
func (t *Txn) Discard() {
	if t == nil {
		return
	}
	t.done = true
	t.order = nil
	t.writes = make(map[string][]byte)
	t.deletes = make(map[string]struct{})
}
