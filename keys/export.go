package keys

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"strings"
)

// WalletKeyFromPublicKey encodes an Ed25519 public key into the wallet-key
// string: "ed25519:" + base64(pubkey).
func WalletKeyFromPublicKey(pub ed25519.PublicKey) (string, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return "", fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, l)
	}
	return "ed25519:" + base64.StdEncoding.EncodeToString(pub), nil
}

// ParseWalletKey decodes a wallet-key string back into the public key.
func ParseWalletKey(walletKey string) (ed25519.PublicKey, error) {
	rest, ok := strings.CutPrefix(walletKey, "ed25519:")
	if !ok {
		return nil, fmt.Errorf("wallet key must start with %q", "ed25519:")
	}
	raw, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet key encoding: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return ed25519.PublicKey(raw), nil
}
