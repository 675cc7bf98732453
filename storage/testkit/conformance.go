// Package testkit provides a reusable conformance harness for datum-store
// backends. Backend packages call RunStoreConformance from their own tests
// so every implementation is held to the same contract.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/cidutil"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage"
)

// RunStoreConformance exercises the storage.Store contract against the
// store returned by newStore. Each subtest receives a fresh store.
func RunStoreConformance(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()

	t.Run("put get roundtrip", func(t *testing.T) {
		s := newStore(t)
		payload := []byte("protocol datum payload")
		id, err := s.Put(payload)
		if err != nil {
			t.Fatalf("Put: %v", err)
		}
		want, err := cidutil.CIDv1RawSHA256CID(payload)
		if err != nil {
			t.Fatalf("cid: %v", err)
		}
		if id != want {
			t.Fatalf("Put cid = %s, want %s", id, want)
		}
		got, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("Get = %q, want %q", got, payload)
		}
	})

	t.Run("put is idempotent", func(t *testing.T) {
		s := newStore(t)
		payload := []byte("idempotent datum")
		first, err := s.Put(payload)
		if err != nil {
			t.Fatalf("first Put: %v", err)
		}
		second, err := s.Put(payload)
		if err != nil {
			t.Fatalf("second Put: %v", err)
		}
		if first != second {
			t.Fatalf("Put not idempotent: %s vs %s", first, second)
		}
	})

	t.Run("get missing is ErrNotFound", func(t *testing.T) {
		s := newStore(t)
		id, err := cidutil.CIDv1RawSHA256CID([]byte("never stored"))
		if err != nil {
			t.Fatalf("cid: %v", err)
		}
		if _, err := s.Get(id); !storage.IsNotFound(err) {
			t.Fatalf("Get missing = %v, want ErrNotFound", err)
		}
	})

	t.Run("has reflects presence", func(t *testing.T) {
		s := newStore(t)
		payload := []byte("presence check")
		id, err := cidutil.CIDv1RawSHA256CID(payload)
		if err != nil {
			t.Fatalf("cid: %v", err)
		}
		if s.Has(id) {
			t.Fatal("Has before Put = true")
		}
		if _, err := s.Put(payload); err != nil {
			t.Fatalf("Put: %v", err)
		}
		if !s.Has(id) {
			t.Fatal("Has after Put = false")
		}
	})

	t.Run("undefined cid rejected", func(t *testing.T) {
		s := newStore(t)
		if s.Has(cid.Undef) {
			t.Fatal("Has(cid.Undef) = true")
		}
		if _, err := s.Get(cid.Undef); err == nil {
			t.Fatal("Get(cid.Undef) succeeded")
		}
	})

	t.Run("distinct payloads distinct cids", func(t *testing.T) {
		s := newStore(t)
		a, err := s.Put([]byte("payload a"))
		if err != nil {
			t.Fatalf("Put a: %v", err)
		}
		b, err := s.Put([]byte("payload b"))
		if err != nil {
			t.Fatalf("Put b: %v", err)
		}
		if a == b {
			t.Fatalf("distinct payloads share cid %s", a)
		}
	})
}
