package receipt

import (
	"fmt"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/cidutil"
)

// CID returns an IPFS-compatible CIDv1 (raw + sha2-256) for receipt bytes.
//
// Receipts must be canonical before CID derivation. If input is not
// canonical, this function fails.
func CID(b []byte) (string, error) {
	canon, err := Canonicalize(b)
	if err != nil {
		return "", fmt.Errorf("canonical receipt required: %w", err)
	}
	return cidutil.CIDv1RawSHA256(canon), nil
}

// RenderWithCID renders a transition receipt and returns its CID.
func RenderWithCID(tr *Transition, opts RenderOptions) ([]byte, string, error) {
	b := Render(tr, opts)
	id, err := CID(b)
	if err != nil {
		return nil, "", err
	}
	return b, id, nil
}

// RenderSignedWithCID renders a signed receipt and returns its CID.
//
// Unlike RenderWithCID, this fails explicitly if signing cannot be performed.
func RenderSignedWithCID(tr *Transition, opts RenderOptions) ([]byte, string, error) {
	b, err := RenderSigned(tr, opts)
	if err != nil {
		return nil, "", err
	}
	id, err := CID(b)
	if err != nil {
		return nil, "", err
	}
	return b, id, nil
}
