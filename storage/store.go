// Package storage provides content-addressed datum storage.
//
// Outputs may carry a datum hash instead of inline datum bytes; before a
// transaction is evaluated, hashes are resolved to canonical bytes
// through a Store. The store is downstream plumbing for the transaction
// builder and the indexing layer; the validation units themselves only
// ever see resolved bytes.
package storage

import "github.com/ipfs/go-cid"

// Store is a minimal content-addressed datum store.
//
// Contract:
//   - Put MUST be idempotent.
//   - Stored objects MUST be immutable.
//   - CIDs MUST be derived from the bytes written (callers are responsible
//     for supplying canonical datum bytes).
//   - Get MUST return ErrNotFound when the CID is absent.
type Store interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
