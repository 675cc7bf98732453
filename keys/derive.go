package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
)

// WalletKeyFromSeed returns the wallet-key string for an Ed25519 seed.
func WalletKeyFromSeed(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	out, _ := WalletKeyFromPublicKey(pub)
	return out
}

// KeyHashFromSeed returns the key hash for an Ed25519 seed.
func KeyHashFromSeed(seed []byte) (khOut string, err error) {
	priv := ed25519.NewKeyFromSeed(seed)
	kh, err := HashPubKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return "", err
	}
	return string(kh), nil
}

// DeriveRoleSeed deterministically derives a role-specific Ed25519 seed
// from a root seed. Stakeholder roles (administrator, owner, certifier,
// buffer, ...) each get their own subkey so the registered key hash in a
// project datum never exposes the root.
func DeriveRoleSeed(rootSeed []byte, role string) ([]byte, error) {
	if len(rootSeed) != ed25519.SeedSize {
		return nil, fmt.Errorf("root seed must be %d bytes", ed25519.SeedSize)
	}
	if err := CheckRole(role); err != nil {
		return nil, err
	}

	h := sha256.New()
	_, _ = h.Write(rootSeed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("terrasacha-kms-lite-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte("role:"))
	_, _ = h.Write([]byte(role))
	sum := h.Sum(nil)
	if len(sum) < ed25519.SeedSize {
		return nil, errors.New("kdf output too short")
	}
	out := make([]byte, ed25519.SeedSize)
	copy(out, sum[:ed25519.SeedSize])
	return out, nil
}
