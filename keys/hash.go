package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// KeyHashSize is the byte length of a payment key hash (blake2b-224).
const KeyHashSize = 28

// HashPubKey returns the hex-encoded blake2b-224 hash of an Ed25519
// public key. This is the identity the validation units compare: admin
// keys, stakeholder keys, and required signers are all key hashes.
func HashPubKey(pub ed25519.PublicKey) (ledger.KeyHash, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return "", fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
	}
	h, err := blake2b.New(KeyHashSize, nil)
	if err != nil {
		return "", err
	}
	_, _ = h.Write(pub)
	return ledger.KeyHash(hex.EncodeToString(h.Sum(nil))), nil
}

// HashWalletKey returns the key hash for a wallet-key string
// ("ed25519:" + base64 public key).
func HashWalletKey(walletKey string) (ledger.KeyHash, error) {
	pub, err := ParseWalletKey(walletKey)
	if err != nil {
		return "", err
	}
	return HashPubKey(pub)
}
