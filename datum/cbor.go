package datum

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/SuanBlockchain/terrasacha-contracts-sub000/ledger"
)

// Datums are serialized with deterministic (core deterministic profile)
// CBOR: definite lengths, canonical integer forms, sorted keys. Encoding
// the same datum twice yields identical bytes, so datum hashes and CIDs
// are stable.

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// EncodeProtocol returns the canonical CBOR bytes of a protocol datum.
func EncodeProtocol(d *ProtocolDatum) ([]byte, error) {
	b, err := encMode.Marshal(d)
	if err != nil {
		return nil, ledger.WrapError(ledger.KindEncoding, "DATUM-ENC-001", "encode protocol datum", err)
	}
	return b, nil
}

// DecodeProtocol parses protocol-datum bytes. Trailing bytes and
// indefinite-length items are rejected.
func DecodeProtocol(b []byte) (*ProtocolDatum, error) {
	var d ProtocolDatum
	if err := decMode.Unmarshal(b, &d); err != nil {
		return nil, ledger.WrapError(ledger.KindEncoding, "DATUM-ENC-002", "decode protocol datum", err)
	}
	return &d, nil
}

// EncodeProject returns the canonical CBOR bytes of a project datum.
func EncodeProject(d *ProjectDatum) ([]byte, error) {
	b, err := encMode.Marshal(d)
	if err != nil {
		return nil, ledger.WrapError(ledger.KindEncoding, "DATUM-ENC-003", "encode project datum", err)
	}
	return b, nil
}

// DecodeProject parses project-datum bytes.
func DecodeProject(b []byte) (*ProjectDatum, error) {
	var d ProjectDatum
	if err := decMode.Unmarshal(b, &d); err != nil {
		return nil, ledger.WrapError(ledger.KindEncoding, "DATUM-ENC-004", "decode project datum", err)
	}
	return &d, nil
}
