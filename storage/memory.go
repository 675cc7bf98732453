package storage

import (
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/cidutil"
)

// Memory is an in-memory datum store, safe for concurrent use. The ledger
// simulator and tests use it as their default backend.
type Memory struct {
	mu   sync.RWMutex
	data map[cid.Cid][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[cid.Cid][]byte)}
}

var _ Store = (*Memory)(nil)

func (m *Memory) Put(bytes []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(bytes)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, ErrInvalidCID
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		m.data[id] = append([]byte(nil), bytes...)
	}
	return id, nil
}

func (m *Memory) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, ErrInvalidCID
	}
	m.mu.RLock()
	b, ok := m.data[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[id]
	return ok
}
