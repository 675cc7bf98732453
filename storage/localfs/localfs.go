// Package localfs implements a filesystem-backed datum store.
//
// Objects are stored under root/objects/<shard>/<cid>, where shard is the
// first two characters of the canonical CID string. Writes are immutable:
// re-putting identical bytes is a no-op, re-putting different bytes under
// a colliding path fails with storage.ErrImmutable.
package localfs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/cidutil"
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/storage"
)

// Store is a local-filesystem datum store rooted at a directory.
type Store struct {
	root string
}

var _ storage.Store = (*Store)(nil)

// Open prepares a store rooted at dir, creating the object directory if
// needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("localfs: empty root directory")
	}
	if err := os.MkdirAll(filepath.Join(dir, "objects"), 0o755); err != nil {
		return nil, fmt.Errorf("localfs: create root: %w", err)
	}
	return &Store{root: dir}, nil
}

func (s *Store) pathFor(id cid.Cid) (string, error) {
	if !id.Defined() {
		return "", storage.ErrInvalidCID
	}
	name := id.String()
	if len(name) < 2 {
		return "", storage.ErrInvalidCID
	}
	return filepath.Join(s.root, "objects", name[:2], name), nil
}

func (s *Store) Put(b []byte) (cid.Cid, error) {
	id, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return cid.Undef, err
	}
	path, err := s.pathFor(id)
	if err != nil {
		return cid.Undef, err
	}

	if existing, err := os.ReadFile(path); err == nil {
		if !bytes.Equal(existing, b) {
			return cid.Undef, storage.ErrImmutable
		}
		return id, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return cid.Undef, fmt.Errorf("localfs: read existing object: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, fmt.Errorf("localfs: create shard: %w", err)
	}

	// Write-then-rename so readers never observe a partial object.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return cid.Undef, fmt.Errorf("localfs: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return cid.Undef, fmt.Errorf("localfs: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return cid.Undef, fmt.Errorf("localfs: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return cid.Undef, fmt.Errorf("localfs: rename temp: %w", err)
	}
	return id, nil
}

func (s *Store) Get(id cid.Cid) ([]byte, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("localfs: read object: %w", err)
	}
	// Verify on read so on-disk corruption never masquerades as a datum.
	got, err := cidutil.CIDv1RawSHA256CID(b)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (s *Store) Has(id cid.Cid) bool {
	path, err := s.pathFor(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
