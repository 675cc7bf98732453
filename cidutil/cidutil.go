// Package cidutil derives the content identifiers the protocol uses for
// record identity: datum-store keys, receipt CIDs, and the
// collision-resistant suffixes of authorization-token names.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1 length,
		// this should be unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// TokenSuffix returns the collision-resistant suffix shared by an
// authorization-token pair, derived from the canonical identity bytes of
// the record the pair was minted from.
//
// The suffix is the CIDv1 (raw + sha2-256) string of identity. Because the
// consumed record is unique, the suffix is too: the same record can never
// seed a second pair.
func TokenSuffix(identity []byte) string {
	return CIDv1RawSHA256(identity)
}
