package receipt

import (
	"github.com/SuanBlockchain/terrasacha-contracts-sub000/cidutil"
)

// Document is a first-class receipt object.
//
// Bytes are canonical receipt bytes. CID is derived from Bytes.
//
// Receipts are intentionally treated as documents (not ephemeral output)
// so they can be archived, inspected, and re-verified.
type Document struct {
	Bytes []byte
	CID   string
}

// NewDocumentFromBytes canonicalizes receipt bytes and computes the receipt CID.
func NewDocumentFromBytes(b []byte) (*Document, error) {
	canon, err := Canonicalize(b)
	if err != nil {
		return nil, err
	}
	return &Document{Bytes: canon, CID: cidutil.CIDv1RawSHA256(canon)}, nil
}

// RenderDocument renders a transition and returns a canonical Document
// (bytes + CID).
func RenderDocument(tr *Transition, opts RenderOptions) (*Document, error) {
	return NewDocumentFromBytes(Render(tr, opts))
}
