package storage

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// MultiStore provides deterministic, ordered fallback across multiple
// datum-store backends.
//
// Resolution order is the slice order in Backends; callers MUST supply a
// fixed order. This avoids map-iteration nondeterminism and makes the
// retrieval strategy explicit.
//
// Put is defined to write only to the first backend.
type MultiStore struct {
	Backends []Store
}

var _ Store = MultiStore{}

func (m MultiStore) Put(bytes []byte) (cid.Cid, error) {
	if len(m.Backends) == 0 {
		return cid.Undef, errors.New("storage: MultiStore has no backends")
	}
	return m.Backends[0].Put(bytes)
}

func (m MultiStore) Get(id cid.Cid) ([]byte, error) {
	for _, s := range m.Backends {
		b, err := s.Get(id)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (m MultiStore) Has(id cid.Cid) bool {
	for _, s := range m.Backends {
		if s.Has(id) {
			return true
		}
	}
	return false
}
